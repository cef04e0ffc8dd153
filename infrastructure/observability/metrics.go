// Package observability holds the CloudWatch metrics adapter. Metric
// publication is best-effort and never fails a request.
package observability

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"audiohub-backend/application/ports"
)

// Metrics implements ports.MetricsRecorder on CloudWatch. Counter
// names ("PresetsApplied", "DevicesUpdated", "Logins",
// "Registrations") are chosen by the services.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewMetrics creates a new Metrics recorder
func NewMetrics(client *cloudwatch.Client, namespace string, logger *zap.Logger) ports.MetricsRecorder {
	return &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// IncrementCounter records a count-of-one datapoint.
func (m *Metrics) IncrementCounter(ctx context.Context, name string) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
			},
		},
	})
	if err != nil {
		m.logger.Warn("Failed to publish metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}

// NopMetrics discards every datapoint. Used when metrics are disabled
// and in tests.
type NopMetrics struct{}

// IncrementCounter implements ports.MetricsRecorder
func (NopMetrics) IncrementCounter(context.Context, string) {}
