// Package di wires the application together. Construction is explicit
// and ordered: config, logger, AWS clients, repositories, services,
// handlers, router.
package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awscognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/application/services"
	"audiohub-backend/infrastructure/config"
	"audiohub-backend/infrastructure/identity/cognito"
	"audiohub-backend/infrastructure/messaging/eventbridge"
	"audiohub-backend/infrastructure/observability"
	dynamorepo "audiohub-backend/infrastructure/persistence/dynamodb"
	"audiohub-backend/interfaces/http/rest"
	"audiohub-backend/interfaces/http/rest/handlers"
	"audiohub-backend/interfaces/http/rest/middleware"
	"audiohub-backend/pkg/auth"
)

// Container holds every constructed dependency.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Repositories and adapters
	DeviceRepository ports.DeviceRepository
	PresetRepository ports.PresetRepository
	UserRepository   ports.UserRepository
	Identity         ports.IdentityProvider
	Events           ports.UsagePublisher
	Metrics          ports.MetricsRecorder

	// Services
	AuthService   *services.AuthService
	DeviceService *services.DeviceService
	PresetService *services.PresetService
	UserService   *services.UserService

	// HTTP surface
	Router *rest.Router
}

// InitializeContainer builds the full dependency graph.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	c.buildAdapters(awsCfg)
	c.buildServices()
	c.buildHTTP()

	return c, nil
}

// buildAdapters constructs the AWS-backed repositories and side-effect
// publishers.
func (c *Container) buildAdapters(awsCfg aws.Config) {
	cfg := c.Config

	dynamoClient := awsdynamodb.NewFromConfig(awsCfg)
	c.DeviceRepository = dynamorepo.NewDeviceRepository(dynamoClient, cfg.DynamoDBTable, cfg.GSI1Name, c.Logger)
	c.PresetRepository = dynamorepo.NewPresetRepository(dynamoClient, cfg.DynamoDBTable, cfg.GSI1Name, c.Logger)
	c.UserRepository = dynamorepo.NewUserRepository(dynamoClient, cfg.DynamoDBTable, cfg.GSI1Name, cfg.GSI2Name, c.Logger)

	cognitoClient := awscognito.NewFromConfig(awsCfg)
	c.Identity = cognito.NewProvider(cognitoClient, cfg.CognitoUserPoolID, cfg.CognitoClientID, c.Logger)

	if cfg.EventBusName != "" {
		eventClient := awseventbridge.NewFromConfig(awsCfg)
		c.Events = eventbridge.NewPublisher(eventClient, cfg.EventBusName, c.Logger)
	} else {
		c.Events = eventbridge.NopPublisher{}
	}

	if cfg.EnableMetrics {
		cloudwatchClient := awscloudwatch.NewFromConfig(awsCfg)
		c.Metrics = observability.NewMetrics(cloudwatchClient, cfg.MetricsNamespace, c.Logger)
	} else {
		c.Metrics = observability.NopMetrics{}
	}
}

func (c *Container) buildServices() {
	c.AuthService = services.NewAuthService(
		c.Identity,
		c.UserRepository,
		c.DeviceRepository,
		c.Events,
		c.Metrics,
		c.Logger,
	)
	c.DeviceService = services.NewDeviceService(
		c.DeviceRepository,
		c.PresetRepository,
		c.Events,
		c.Metrics,
		c.Logger,
	)
	c.PresetService = services.NewPresetService(c.PresetRepository, c.Logger)
	c.UserService = services.NewUserService(
		c.UserRepository,
		c.DeviceRepository,
		c.PresetRepository,
		c.Logger,
	)
}

func (c *Container) buildHTTP() {
	cfg := c.Config

	validator := auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
	authenticator := middleware.NewAuthenticator(
		validator,
		cfg.IsLambda,
		cfg.RateLimitPerIP,
		cfg.RateLimitPerUser,
		c.Logger,
	)

	c.Router = rest.NewRouter(
		handlers.NewAuthHandler(c.AuthService, c.Logger),
		handlers.NewDeviceHandler(c.DeviceService, c.Logger),
		handlers.NewPresetHandler(c.PresetService, c.Logger),
		handlers.NewUserHandler(c.UserService, c.Logger),
		authenticator,
		cfg.CORSOrigins,
		cfg.EnableTracing,
		c.Logger,
	)
}

// Shutdown flushes buffered resources. Safe to call more than once.
func (c *Container) Shutdown() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
