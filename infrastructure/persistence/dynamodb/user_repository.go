package dynamodb

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/entities"
	pkgerrors "audiohub-backend/pkg/errors"
)

// UserRepository implements ports.UserRepository on the single-table
// store. GSI1 indexes users by email, GSI2 by role.
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi1Name  string
	gsi2Name  string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName, gsi1Name, gsi2Name string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		gsi1Name:  gsi1Name,
		gsi2Name:  gsi2Name,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	PK            string               `dynamodbav:"PK"`
	SK            string               `dynamodbav:"SK"`
	GSI1PK        string               `dynamodbav:"GSI1PK"`
	GSI1SK        string               `dynamodbav:"GSI1SK"`
	GSI2PK        string               `dynamodbav:"GSI2PK"`
	GSI2SK        string               `dynamodbav:"GSI2SK"`
	EntityType    string               `dynamodbav:"EntityType"`
	UserID        string               `dynamodbav:"user_id"`
	CognitoID     string               `dynamodbav:"cognito_id,omitempty"`
	Email         string               `dynamodbav:"email"`
	Username      string               `dynamodbav:"username"`
	FullName      string               `dynamodbav:"full_name"`
	Role          string               `dynamodbav:"role"`
	AvatarURL     string               `dynamodbav:"avatar_url,omitempty"`
	Phone         string               `dynamodbav:"phone,omitempty"`
	Preferences   entities.Preferences `dynamodbav:"preferences"`
	Profile       entities.ProfileInfo `dynamodbav:"profile"`
	Stats         entities.Stats       `dynamodbav:"stats"`
	Status        string               `dynamodbav:"status"`
	EmailVerified bool                 `dynamodbav:"email_verified"`
	PhoneVerified bool                 `dynamodbav:"phone_verified"`
	CreatedAt     string               `dynamodbav:"created_at"`
	UpdatedAt     string               `dynamodbav:"updated_at"`
	LastActiveAt  string               `dynamodbav:"last_active_at"`
}

func toUserItem(user *entities.User) userItem {
	return userItem{
		PK:            userPK(user.UserID),
		SK:            userSK,
		GSI1PK:        emailGSI1PK(user.Email),
		GSI1SK:        "USER",
		GSI2PK:        roleGSI2PK(user.Role),
		GSI2SK:        user.UserID,
		EntityType:    entityTypeUser,
		UserID:        user.UserID,
		CognitoID:     user.CognitoID,
		Email:         user.Email,
		Username:      user.Username,
		FullName:      user.FullName,
		Role:          user.Role,
		AvatarURL:     user.AvatarURL,
		Phone:         user.Phone,
		Preferences:   user.Preferences,
		Profile:       user.Profile,
		Stats:         user.Stats,
		Status:        user.Status,
		EmailVerified: user.EmailVerified,
		PhoneVerified: user.PhoneVerified,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
		LastActiveAt:  user.LastActiveAt,
	}
}

func (i userItem) toEntity() *entities.User {
	return &entities.User{
		UserID:        i.UserID,
		CognitoID:     i.CognitoID,
		Email:         i.Email,
		Username:      i.Username,
		FullName:      i.FullName,
		Role:          i.Role,
		AvatarURL:     i.AvatarURL,
		Phone:         i.Phone,
		Preferences:   i.Preferences,
		Profile:       i.Profile,
		Stats:         i.Stats,
		Status:        i.Status,
		EmailVerified: i.EmailVerified,
		PhoneVerified: i.PhoneVerified,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
		LastActiveAt:  i.LastActiveAt,
	}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: userSK},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get user", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("User").WithCode("USER_NOT_FOUND")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}
	return item.toEntity(), nil
}

// GetByEmail looks the user up through the email index
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(emailGSI1PK(email))).
		And(expression.Key("GSI1SK").Equal(expression.Value("USER")))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build user query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query user by email", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}
	return item.toEntity(), nil
}

// ListByRole returns the users holding the given role
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]*entities.User, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(roleGSI2PK(role)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build role query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi2Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query users by role", err)
	}

	users := make([]*entities.User, 0, len(out.Items))
	for _, raw := range out.Items {
		var item userItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
		}
		users = append(users, item.toEntity())
	}
	return users, nil
}

// Create stores a new user, refusing to overwrite an existing one
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	av, err := attributevalue.MarshalMap(toUserItem(user))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal user", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("User already exists").WithCode("USER_EXISTS")
		}
		return pkgerrors.NewDatabaseError("create user", err)
	}

	r.logger.Info("User created",
		zap.String("userID", user.UserID),
		zap.String("role", user.Role),
	)
	return nil
}

// PatchProfile applies an allow-listed partial profile update
func (r *UserRepository) PatchProfile(ctx context.Context, userID string, patch entities.UserPatch) (*entities.User, error) {
	update, changed := userProfilePatch(patch)
	if !changed {
		return nil, pkgerrors.NewValidationError("No valid fields provided for update").WithCode("EMPTY_UPDATE")
	}
	return r.update(ctx, userID, update, "patch user profile")
}

// UpdateStats applies a partial stats update
func (r *UserRepository) UpdateStats(ctx context.Context, userID string, patch entities.StatsPatch) error {
	update, changed := userStatsPatch(patch)
	if !changed {
		return nil
	}
	_, err := r.update(ctx, userID, update, "update user stats")
	return err
}

// RecordLogin refreshes activity timestamps and increments the login
// counter atomically
func (r *UserRepository) RecordLogin(ctx context.Context, userID string) error {
	_, err := r.update(ctx, userID, userLoginPatch(), "record user login")
	return err
}

func (r *UserRepository) update(ctx context.Context, userID string, update expression.UpdateBuilder, operation string) (*entities.User, error) {
	condition := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError(operation, err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: userSK},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, pkgerrors.NewNotFoundError("User").WithCode("USER_NOT_FOUND")
		}
		return nil, pkgerrors.NewDatabaseError(operation, err)
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal user", err)
	}
	return item.toEntity(), nil
}
