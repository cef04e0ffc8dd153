// Package cognito adapts AWS Cognito as the identity provider.
// Credentials live entirely in the user pool; the application never
// stores or verifies passwords.
package cognito

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/entities"
	pkgerrors "audiohub-backend/pkg/errors"
)

// Provider implements ports.IdentityProvider against a Cognito user
// pool.
type Provider struct {
	client     *cip.Client
	userPoolID string
	clientID   string
	logger     *zap.Logger
}

// NewProvider creates a new Provider
func NewProvider(client *cip.Client, userPoolID, clientID string, logger *zap.Logger) ports.IdentityProvider {
	return &Provider{
		client:     client,
		userPoolID: userPoolID,
		clientID:   clientID,
		logger:     logger,
	}
}

// SignUp registers a new identity with a permanent password and adds
// it to the role group. Returns the identity's sub.
func (p *Provider) SignUp(ctx context.Context, email, password, fullName, role string) (string, error) {
	created, err := p.client.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
			{Name: aws.String("name"), Value: aws.String(fullName)},
			{Name: aws.String("custom:role"), Value: aws.String(role)},
		},
		MessageAction: types.MessageActionTypeSuppress,
	})
	if err != nil {
		return "", p.mapError("sign up", err)
	}

	if _, err := p.client.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(email),
		GroupName:  aws.String(role),
	}); err != nil {
		// Group membership mirrors the role attribute; proceed without it.
		p.logger.Warn("Failed to add identity to role group",
			zap.String("email", email),
			zap.String("role", role),
			zap.Error(err),
		)
	}

	if _, err := p.client.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(email),
		Password:   aws.String(password),
		Permanent:  true,
	}); err != nil {
		return "", p.mapError("set password", err)
	}

	var sub string
	if created.User != nil {
		for _, attr := range created.User.Attributes {
			if aws.ToString(attr.Name) == "sub" {
				sub = aws.ToString(attr.Value)
			}
		}
	}
	if sub == "" {
		return "", pkgerrors.NewExternalError("cognito", errors.New("created identity has no sub attribute"))
	}
	return sub, nil
}

// Authenticate verifies credentials through USER_PASSWORD_AUTH.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (*ports.AuthTokens, error) {
	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, p.mapError("authenticate", err)
	}
	if out.AuthenticationResult == nil {
		return nil, pkgerrors.NewUnauthorizedError("Authentication challenge not supported")
	}

	result := out.AuthenticationResult
	return &ports.AuthTokens{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		TokenType:    aws.ToString(result.TokenType),
		ExpiresIn:    result.ExpiresIn,
	}, nil
}

// Describe fetches the identity's attributes.
func (p *Provider) Describe(ctx context.Context, username string) (entities.IdentityAttributes, error) {
	out, err := p.client.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return entities.IdentityAttributes{}, p.mapError("describe identity", err)
	}

	attrs := entities.IdentityAttributes{
		Confirmed: out.UserStatus == types.UserStatusTypeConfirmed,
	}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			attrs.IdentityID = aws.ToString(attr.Value)
		case "email":
			attrs.Email = aws.ToString(attr.Value)
		case "name":
			attrs.Name = aws.ToString(attr.Value)
		case "custom:role":
			attrs.Role = aws.ToString(attr.Value)
		case "email_verified":
			attrs.EmailVerified = aws.ToString(attr.Value) == "true"
		}
	}
	return attrs, nil
}

// Delete removes the identity. Used to roll back registrations.
func (p *Provider) Delete(ctx context.Context, username string) error {
	_, err := p.client.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return p.mapError("delete identity", err)
	}
	return nil
}

// mapError translates Cognito failures onto the error taxonomy.
func (p *Provider) mapError(operation string, err error) error {
	var (
		usernameExists   *types.UsernameExistsException
		notAuthorized    *types.NotAuthorizedException
		userNotFound     *types.UserNotFoundException
		userNotConfirmed *types.UserNotConfirmedException
		passwordReset    *types.PasswordResetRequiredException
		invalidPassword  *types.InvalidPasswordException
	)

	switch {
	case errors.As(err, &usernameExists):
		return pkgerrors.NewConflictError("An account with this email already exists").WithCode("USER_EXISTS")
	case errors.As(err, &notAuthorized):
		return pkgerrors.NewUnauthorizedError("Invalid email or password").WithCode("INVALID_CREDENTIALS")
	case errors.As(err, &userNotFound):
		return pkgerrors.NewNotFoundError("User").WithCode("USER_NOT_FOUND")
	case errors.As(err, &userNotConfirmed):
		return pkgerrors.NewForbiddenError("Account is not confirmed").WithCode("USER_NOT_CONFIRMED")
	case errors.As(err, &passwordReset):
		return pkgerrors.NewForbiddenError("Password reset required").WithCode("PASSWORD_RESET_REQUIRED")
	case errors.As(err, &invalidPassword):
		return pkgerrors.NewValidationError("Password does not meet the policy requirements").WithCode("INVALID_PASSWORD")
	default:
		p.logger.Error("Identity provider call failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return pkgerrors.NewExternalError("cognito", err)
	}
}
