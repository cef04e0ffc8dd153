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

// DeviceRepository implements ports.DeviceRepository on the
// single-table store.
type DeviceRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi1Name  string
	logger    *zap.Logger
}

// NewDeviceRepository creates a new DeviceRepository
func NewDeviceRepository(client *dynamodb.Client, tableName, gsi1Name string, logger *zap.Logger) ports.DeviceRepository {
	return &DeviceRepository{
		client:    client,
		tableName: tableName,
		gsi1Name:  gsi1Name,
		logger:    logger,
	}
}

// deviceItem represents the DynamoDB item structure for a device
type deviceItem struct {
	PK          string        `dynamodbav:"PK"`
	SK          string        `dynamodbav:"SK"`
	GSI1PK      string        `dynamodbav:"GSI1PK"`
	GSI1SK      string        `dynamodbav:"GSI1SK"`
	EntityType  string        `dynamodbav:"EntityType"`
	DeviceID    string        `dynamodbav:"device_id"`
	DeviceName  string        `dynamodbav:"device_name"`
	DeviceModel string        `dynamodbav:"device_model"`
	OwnerID     string        `dynamodbav:"owner_id"`
	State       audio.Profile `dynamodbav:"state"`
	IsOnline    bool          `dynamodbav:"is_online"`
	LastSeen    string        `dynamodbav:"last_seen,omitempty"`
	CreatedAt   string        `dynamodbav:"created_at"`
	UpdatedAt   string        `dynamodbav:"updated_at"`
}

func toDeviceItem(device *entities.Device) deviceItem {
	return deviceItem{
		PK:          devicePK(device.DeviceID),
		SK:          deviceSK,
		GSI1PK:      ownerGSI1PK(device.OwnerID),
		GSI1SK:      deviceGSI1SK(device.DeviceID),
		EntityType:  entityTypeDevice,
		DeviceID:    device.DeviceID,
		DeviceName:  device.DeviceName,
		DeviceModel: device.DeviceModel,
		OwnerID:     device.OwnerID,
		State:       device.State,
		IsOnline:    device.IsOnline,
		LastSeen:    device.LastSeen,
		CreatedAt:   device.CreatedAt,
		UpdatedAt:   device.UpdatedAt,
	}
}

func (i deviceItem) toEntity() *entities.Device {
	return &entities.Device{
		DeviceID:    i.DeviceID,
		DeviceName:  i.DeviceName,
		DeviceModel: i.DeviceModel,
		OwnerID:     i.OwnerID,
		State:       i.State,
		IsOnline:    i.IsOnline,
		LastSeen:    i.LastSeen,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// GetByID retrieves a device by its ID
func (r *DeviceRepository) GetByID(ctx context.Context, deviceID string) (*entities.Device, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: devicePK(deviceID)},
			"SK": &types.AttributeValueMemberS{Value: deviceSK},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get device", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("Device").WithCode("DEVICE_NOT_FOUND")
	}

	var item deviceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal device", err)
	}
	return item.toEntity(), nil
}

// Create stores a new device, refusing to overwrite an existing one
func (r *DeviceRepository) Create(ctx context.Context, device *entities.Device) error {
	av, err := attributevalue.MarshalMap(toDeviceItem(device))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal device", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("Device already exists").WithCode("DEVICE_EXISTS")
		}
		return pkgerrors.NewDatabaseError("create device", err)
	}

	r.logger.Info("Device created",
		zap.String("deviceID", device.DeviceID),
		zap.String("ownerID", device.OwnerID),
	)
	return nil
}

// ListByOwner returns the owner's devices, newest first
func (r *DeviceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Device, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(ownerGSI1PK(ownerID))).
		And(expression.Key("GSI1SK").BeginsWith(devicePKPrefix))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build device query", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query devices by owner", err)
	}

	return unmarshalDevices(out.Items)
}

// ListAll returns every device in the table
func (r *DeviceRepository) ListAll(ctx context.Context) ([]*entities.Device, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(entityTypeDevice))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build device scan", err)
	}

	var devices []*entities.Device
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
			return nil, pkgerrors.NewDatabaseError("scan devices", err)
		}

		page, err := unmarshalDevices(out.Items)
		if err != nil {
			return nil, err
		}
		devices = append(devices, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sortDevicesNewestFirst(devices)
	return devices, nil
}

// Patch applies a partial metadata/state update in place
func (r *DeviceRepository) Patch(ctx context.Context, deviceID string, patch entities.DevicePatch) (*entities.Device, error) {
	return r.update(ctx, deviceID, devicePatch(patch), "patch device")
}

// ApplyProfile replaces the device's whole audio state
func (r *DeviceRepository) ApplyProfile(ctx context.Context, deviceID string, profile audio.Profile) (*entities.Device, error) {
	return r.update(ctx, deviceID, deviceProfileReplace(profile), "apply device profile")
}

// SetPresence flips the online flag and refreshes last_seen
func (r *DeviceRepository) SetPresence(ctx context.Context, deviceID string, online bool) error {
	_, err := r.update(ctx, deviceID, devicePresencePatch(online), "set device presence")
	return err
}

// update runs a conditional update against an existing device and
// returns the new state.
func (r *DeviceRepository) update(ctx context.Context, deviceID string, update expression.UpdateBuilder, operation string) (*entities.Device, error) {
	condition := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError(operation, err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: devicePK(deviceID)},
			"SK": &types.AttributeValueMemberS{Value: deviceSK},
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
			return nil, pkgerrors.NewNotFoundError("Device").WithCode("DEVICE_NOT_FOUND")
		}
		return nil, pkgerrors.NewDatabaseError(operation, err)
	}

	var item deviceItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal device", err)
	}
	return item.toEntity(), nil
}

func unmarshalDevices(items []map[string]types.AttributeValue) ([]*entities.Device, error) {
	devices := make([]*entities.Device, 0, len(items))
	for _, raw := range items {
		var item deviceItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, pkgerrors.NewDatabaseError("unmarshal device", err)
		}
		devices = append(devices, item.toEntity())
	}
	sortDevicesNewestFirst(devices)
	return devices, nil
}

// sortDevicesNewestFirst orders by creation time, newest first.
// RFC3339 strings sort lexically in time order.
func sortDevicesNewestFirst(devices []*entities.Device) {
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].CreatedAt > devices[j].CreatedAt
	})
}
