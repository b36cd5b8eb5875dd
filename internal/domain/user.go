package domain

import "time"

// User is the persisted credential record. Exactly one of Username, Phone or
// Email is set, matching the strategy the account was registered with.
type User struct {
	ID           uint64     `json:"id" dynamodbav:"user_id"`
	TenantID     uint64     `json:"tenant_id" dynamodbav:"tenant_id"`
	Username     *string    `json:"username,omitempty" dynamodbav:"username,omitempty"`
	Phone        *string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Email        *string    `json:"email,omitempty" dynamodbav:"email,omitempty"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	CreatedBy    *string    `json:"created_by,omitempty" dynamodbav:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" dynamodbav:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at,omitempty"`
}

// Identifier returns the login identifier the account was registered with.
func (u *User) Identifier() string {
	switch {
	case u.Username != nil:
		return *u.Username
	case u.Phone != nil:
		return *u.Phone
	case u.Email != nil:
		return *u.Email
	}
	return ""
}

// Profile is the public projection of a User.
type Profile struct {
	ID          uint64     `json:"id"`
	TenantID    uint64     `json:"tenant_id"`
	Username    *string    `json:"username,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Email       *string    `json:"email,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToProfile strips the credential material from u.
func (u *User) ToProfile() Profile {
	return Profile{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Username:    u.Username,
		Phone:       u.Phone,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
