package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-authix/internal/config"
	"github.com/go-authix/internal/domain"
)

// BatchGetItem accepts at most 100 keys per request.
const batchGetLimit = 100

// UserRepo provides typed DynamoDB operations for the credential store.
// Each user owns one item in the users table plus one item in the identifiers
// table keyed by "<kind>#<value>"; both are written in a single transaction so
// an identifier can never be claimed twice. Numeric ids come from an atomic
// counter item.
type UserRepo struct {
	client      *dynamodb.Client
	users       string
	identifiers string
	counters    string
}

func NewUserRepo(client *dynamodb.Client, tables config.DynamoTables) *UserRepo {
	return &UserRepo{
		client:      client,
		users:       tables.Users,
		identifiers: tables.UserIdentifiers,
		counters:    tables.Counters,
	}
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getByIdentifier(ctx, identifierKey(kindUsername, username))
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.getByIdentifier(ctx, identifierKey(kindPhone, phone))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getByIdentifier(ctx, identifierKey(kindEmail, email))
}

func (r *UserRepo) Get(ctx context.Context, userID uint64) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.users),
		Key:            numKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, infra("get user", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, infra("unmarshal user", err)
	}
	return &u, nil
}

// Create assigns the next id and writes the user together with its identifier claim.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	identKey, err := userIdentifierKey(u)
	if err != nil {
		return nil, err
	}
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	created := *u
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	item, err := attributevalue.MarshalMap(&created)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	ident := map[string]types.AttributeValue{
		fieldIdentifier: &types.AttributeValueMemberS{Value: identKey},
		fieldUserID:     &types.AttributeValueMemberN{Value: strconv.FormatUint(id, 10)},
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.identifiers),
				Item:                ident,
				ConditionExpression: aws.String("attribute_not_exists(#k)"),
				ExpressionAttributeNames: map[string]string{
					"#k": fieldIdentifier,
				},
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.users),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(#k)"),
				ExpressionAttributeNames: map[string]string{
					"#k": fieldUserID,
				},
			}},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return nil, fmt.Errorf("identifier already registered: %w", domain.ErrConflict)
		}
		return nil, infra("create user", err)
	}
	return &created, nil
}

// UpdateLastLogin stamps the current time as the user's last login.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uint64) (*domain.User, error) {
	now := time.Now().UTC()
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldLastLoginAt: now,
		fieldUpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	ue.Names["#id"] = fieldUserID
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.users),
		Key:                       numKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, infra("update last login", err)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Attributes, &u); err != nil {
		return nil, infra("unmarshal user", err)
	}
	return &u, nil
}

// Delete removes the user and releases its identifier.
func (r *UserRepo) Delete(ctx context.Context, userID uint64) error {
	u, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	identKey, err := userIdentifierKey(u)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(r.users),
				Key:       numKey(fieldUserID, userID),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.identifiers),
				Key:       strKey(fieldIdentifier, identKey),
			}},
		},
	})
	if err != nil {
		return infra("delete user", err)
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
	byID := make(map[uint64]domain.Profile, len(ids))
	for start := 0; start < len(ids); start += batchGetLimit {
		end := min(start+batchGetLimit, len(ids))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		seen := make(map[uint64]bool, end-start)
		for _, id := range ids[start:end] {
			if !seen[id] {
				seen[id] = true
				keys = append(keys, numKey(fieldUserID, id))
			}
		}
		request := map[string]types.KeysAndAttributes{r.users: {Keys: keys}}
		for len(request) > 0 {
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, infra("batch get users", err)
			}
			var users []domain.User
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.users], &users); err != nil {
				return nil, infra("unmarshal users", err)
			}
			for i := range users {
				byID[users[i].ID] = users[i].ToProfile()
			}
			request = out.UnprocessedKeys
		}
	}
	out := make([]domain.Profile, 0, len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *UserRepo) getByIdentifier(ctx context.Context, key string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.identifiers),
		Key:            strKey(fieldIdentifier, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, infra("get identifier", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("identifier %s: %w", key, domain.ErrNotFound)
	}
	idAttr, ok := out.Item[fieldUserID].(*types.AttributeValueMemberN)
	if !ok {
		return nil, infra("get identifier", errors.New("identifier item has no user_id"))
	}
	userID, err := strconv.ParseUint(idAttr.Value, 10, 64)
	if err != nil {
		return nil, infra("parse user_id", err)
	}
	return r.Get(ctx, userID)
}

// nextID atomically increments the users counter and returns the new value.
func (r *UserRepo) nextID(ctx context.Context) (uint64, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.counters),
		Key:                      strKey(fieldCounterName, userIDCounter),
		UpdateExpression:         aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{"#v": fieldCounterVal},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, infra("next user id", err)
	}
	v, ok := out.Attributes[fieldCounterVal].(*types.AttributeValueMemberN)
	if !ok {
		return 0, infra("next user id", errors.New("counter value missing"))
	}
	id, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return 0, infra("next user id", err)
	}
	return id, nil
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
