package dynamodb

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	"audiohub-backend/domain/audio"
	"audiohub-backend/domain/entities"
	pkgerrors "audiohub-backend/pkg/errors"
)

// PresetRepository implements ports.PresetRepository on the
// single-table store.
type PresetRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi1Name  string
	logger    *zap.Logger
}

// NewPresetRepository creates a new PresetRepository
func NewPresetRepository(client *dynamodb.Client, tableName, gsi1Name string, logger *zap.Logger) ports.PresetRepository {
	return &PresetRepository{
		client:    client,
		tableName: tableName,
		gsi1Name:  gsi1Name,
		logger:    logger,
	}
}

// presetItem represents the DynamoDB item structure for a preset
type presetItem struct {
	PK             string        `dynamodbav:"PK"`
	SK             string        `dynamodbav:"SK"`
	GSI1PK         string        `dynamodbav:"GSI1PK"`
	GSI1SK         string        `dynamodbav:"GSI1SK"`
	EntityType     string        `dynamodbav:"EntityType"`
	PresetID       string        `dynamodbav:"preset_id"`
	PresetName     string        `dynamodbav:"preset_name"`
	PresetCategory string        `dynamodbav:"preset_category,omitempty"`
	Profile        audio.Profile `dynamodbav:"profile"`
	CreatedBy      string        `dynamodbav:"created_by"`
	CreatorRole    string        `dynamodbav:"creator_role"`
	IsPublic       bool          `dynamodbav:"is_public"`
	Description    string        `dynamodbav:"description,omitempty"`
	UsageCount     int           `dynamodbav:"usage_count"`
	DeviceID       string        `dynamodbav:"device_id,omitempty"`
	CreatedAt      string        `dynamodbav:"created_at"`
	UpdatedAt      string        `dynamodbav:"updated_at"`
}

func toPresetItem(preset *entities.Preset) presetItem {
	return presetItem{
		PK:             presetPK(preset.PresetID),
		SK:             presetSK,
		GSI1PK:         ownerGSI1PK(preset.CreatedBy),
		GSI1SK:         presetGSI1SK(preset.PresetID),
		EntityType:     entityTypePreset,
		PresetID:       preset.PresetID,
		PresetName:     preset.PresetName,
		PresetCategory: preset.PresetCategory,
		Profile:        preset.Profile,
		CreatedBy:      preset.CreatedBy,
		CreatorRole:    preset.CreatorRole,
		IsPublic:       preset.IsPublic,
		Description:    preset.Description,
		UsageCount:     preset.UsageCount,
		DeviceID:       preset.DeviceID,
		CreatedAt:      preset.CreatedAt,
		UpdatedAt:      preset.UpdatedAt,
	}
}

func (i presetItem) toEntity() *entities.Preset {
	return &entities.Preset{
		PresetID:       i.PresetID,
		PresetName:     i.PresetName,
		PresetCategory: i.PresetCategory,
		Profile:        i.Profile,
		CreatedBy:      i.CreatedBy,
		CreatorRole:    i.CreatorRole,
		IsPublic:       i.IsPublic,
		Description:    i.Description,
		UsageCount:     i.UsageCount,
		DeviceID:       i.DeviceID,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// GetByID retrieves a preset by its ID
func (r *PresetRepository) GetByID(ctx context.Context, presetID string) (*entities.Preset, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: presetPK(presetID)},
			"SK": &types.AttributeValueMemberS{Value: presetSK},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get preset", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("Preset").WithCode("PRESET_NOT_FOUND")
	}

	var item presetItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal preset", err)
	}
	return item.toEntity(), nil
}

// Create stores a new preset, refusing to overwrite an existing one
func (r *PresetRepository) Create(ctx context.Context, preset *entities.Preset) error {
	av, err := attributevalue.MarshalMap(toPresetItem(preset))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal preset", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("Preset already exists").WithCode("PRESET_EXISTS")
		}
		return pkgerrors.NewDatabaseError("create preset", err)
	}

	r.logger.Info("Preset created",
		zap.String("presetID", preset.PresetID),
		zap.String("createdBy", preset.CreatedBy),
		zap.Bool("isPublic", preset.IsPublic),
	)
	return nil
}

// ListAll returns every preset in the table. Visibility filtering
// happens in the service layer.
func (r *PresetRepository) ListAll(ctx context.Context) ([]*entities.Preset, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityTypePreset))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build preset scan", err)
	}

	var presets []*entities.Preset
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan presets", err)
		}

		page, err := unmarshalPresets(out.Items)
		if err != nil {
			return nil, err
		}
		presets = append(presets, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sortPresetsNewestFirst(presets)
	return presets, nil
}

// ListByOwner returns the presets created by the given user
func (r *PresetRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Preset, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(ownerGSI1PK(ownerID))).
		And(expression.Key("GSI1SK").BeginsWith(presetPKPrefix))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build preset query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query presets by owner", err)
	}

	return unmarshalPresets(out.Items)
}

// FindByOwnerAndName returns the owner's preset with the given name,
// or nil when none exists. Backs the duplicate-name guard.
func (r *PresetRepository) FindByOwnerAndName(ctx context.Context, ownerID, name string) (*entities.Preset, error) {
	presets, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, preset := range presets {
		if preset.PresetName == name {
			return preset, nil
		}
	}
	return nil, nil
}

// IncrementUsage bumps the usage counter atomically
func (r *PresetRepository) IncrementUsage(ctx context.Context, presetID string) error {
	condition := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(presetUsagePatch()).WithCondition(condition).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("increment preset usage", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: presetPK(presetID)},
			"SK": &types.AttributeValueMemberS{Value: presetSK},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("Preset").WithCode("PRESET_NOT_FOUND")
		}
		return pkgerrors.NewDatabaseError("increment preset usage", err)
	}
	return nil
}

func unmarshalPresets(items []map[string]types.AttributeValue) ([]*entities.Preset, error) {
	presets := make([]*entities.Preset, 0, len(items))
	for _, raw := range items {
		var item presetItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal preset", err)
		}
		presets = append(presets, item.toEntity())
	}
	sortPresetsNewestFirst(presets)
	return presets, nil
}

func sortPresetsNewestFirst(presets []*entities.Preset) {
	sort.Slice(presets, func(i, j int) bool {
		return presets[i].CreatedAt > presets[j].CreatedAt
	})
}
