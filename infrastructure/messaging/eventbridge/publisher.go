// Package eventbridge publishes usage analytics events. Publishing is
// best-effort: callers log failures and never fail a request over them.
package eventbridge

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"audiohub-backend/application/ports"
	pkgerrors "audiohub-backend/pkg/errors"
)

const eventSource = "audiohub.backend"

// Detail types emitted on the bus.
const (
	DetailTypePresetApplied = "preset.applied"
	DetailTypeUserLoggedIn  = "user.logged_in"
)

// Publisher implements ports.UsagePublisher on an EventBridge bus.
type Publisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(client *eventbridge.Client, busName string, logger *zap.Logger) ports.UsagePublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// PresetApplied emits a preset.applied event.
func (p *Publisher) PresetApplied(ctx context.Context, event ports.PresetAppliedEvent) error {
	return p.publish(ctx, DetailTypePresetApplied, event)
}

// UserLoggedIn emits a user.logged_in event.
func (p *Publisher) UserLoggedIn(ctx context.Context, event ports.UserLoggedInEvent) error {
	return p.publish(ctx, DetailTypeUserLoggedIn, event)
}

// NopPublisher drops every event. Used when no event bus is configured.
type NopPublisher struct{}

func (NopPublisher) PresetApplied(context.Context, ports.PresetAppliedEvent) error { return nil }
func (NopPublisher) UserLoggedIn(context.Context, ports.UserLoggedInEvent) error   { return nil }

func (p *Publisher) publish(ctx context.Context, detailType string, detail interface{}) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal event detail")
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.busName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(string(payload)),
			},
		},
	})
	if err != nil {
		return pkgerrors.NewExternalError("eventbridge", err)
	}
	if out.FailedEntryCount > 0 {
		p.logger.Warn("Event entry rejected by bus",
			zap.String("detailType", detailType),
			zap.Int32("failedCount", out.FailedEntryCount),
		)
	}
	return nil
}
