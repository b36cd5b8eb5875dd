package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-authix/internal/domain"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

const userColumns = `id, tenant_id, username, phone, email, password_hash, created_by, created_at, updated_at, last_login_at`

// UserRepo is the embedded credential store. Identifier uniqueness is
// enforced by UNIQUE indexes; ids come from AUTOINCREMENT.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo opens (or creates) the database at path and applies the schema.
func NewUserRepo(path string) (*UserRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &UserRepo{db: db}, nil
}

func (r *UserRepo) Close() error { return r.db.Close() }

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.getBy(ctx, "phone", phone)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepo) Get(ctx context.Context, userID uint64) (*domain.User, error) {
	return r.getBy(ctx, "id", userID)
}

// Create inserts u and returns it with the assigned id and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (tenant_id, username, phone, email, password_hash, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.TenantID, nullString(u.Username), nullString(u.Phone), nullString(u.Email),
		u.PasswordHash, nullString(u.CreatedBy), now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("identifier already registered: %w", domain.ErrConflict)
		}
		return nil, infra("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, infra("last insert id", err)
	}
	created := *u
	created.ID = uint64(id)
	created.CreatedAt = time.UnixMilli(now.UnixMilli()).UTC()
	created.UpdatedAt = created.CreatedAt
	return &created, nil
}

// UpdateLastLogin stamps the current time as the user's last login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uint64) (*domain.User, error) {
	now := time.Now().UTC().UnixMilli()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`, now, now, userID)
	if err != nil {
		return nil, infra("update last login", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return r.Get(ctx, userID)
}

func (r *UserRepo) Delete(ctx context.Context, userID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return infra("delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) GetProfile(ctx context.Context, userID uint64) (*domain.Profile, error) {
	u, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := u.ToProfile()
	return &p, nil
}

// GetProfiles returns the profiles of the given users in the order of ids.
// Unknown ids are skipped.
func (r *UserRepo) GetProfiles(ctx context.Context, ids []uint64) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return []domain.Profile{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, infra("query profiles", err)
	}
	defer rows.Close()

	byID := make(map[uint64]domain.Profile, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, infra("scan profile", err)
		}
		byID[u.ID] = u.ToProfile()
	}
	if err := rows.Err(); err != nil {
		return nil, infra("iterate profiles", err)
	}
	out := make([]domain.Profile, 0, len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *UserRepo) getBy(ctx context.Context, column string, value interface{}) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user by %s: %w", column, domain.ErrNotFound)
	}
	if err != nil {
		return nil, infra("get user", err)
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u                      domain.User
		username, phone, email sql.NullString
		createdBy              sql.NullString
		createdAt, updatedAt   int64
		lastLogin              sql.NullInt64
	)
	if err := s.Scan(&u.ID, &u.TenantID, &username, &phone, &email, &u.PasswordHash,
		&createdBy, &createdAt, &updatedAt, &lastLogin); err != nil {
		return nil, err
	}
	u.Username = stringPtr(username)
	u.Phone = stringPtr(phone)
	u.Email = stringPtr(email)
	u.CreatedBy = stringPtr(createdBy)
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	u.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if lastLogin.Valid {
		t := time.UnixMilli(lastLogin.Int64).UTC()
		u.LastLoginAt = &t
	}
	return &u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func infra(op string, err error) error {
	return fmt.Errorf("sqlite %s: %w: %w", op, domain.ErrInfrastructure, err)
}
