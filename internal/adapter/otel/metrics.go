package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "consultd"

// Metrics holds all consultd metric instruments.
type Metrics struct {
	WorkflowsStarted   metric.Int64Counter
	WorkflowsCompleted metric.Int64Counter
	WorkflowsFailed    metric.Int64Counter
	PollAttempts       metric.Int64Counter
	WorkflowDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.WorkflowsStarted, err = meter.Int64Counter("consultd.workflows.started",
		metric.WithDescription("Number of workflow invocations started"))
	if err != nil {
		return nil, err
	}

	m.WorkflowsCompleted, err = meter.Int64Counter("consultd.workflows.completed",
		metric.WithDescription("Number of workflow invocations completed successfully"))
	if err != nil {
		return nil, err
	}

	m.WorkflowsFailed, err = meter.Int64Counter("consultd.workflows.failed",
		metric.WithDescription("Number of workflow invocations that failed"))
	if err != nil {
		return nil, err
	}

	m.PollAttempts, err = meter.Int64Counter("consultd.poll.attempts",
		metric.WithDescription("Number of run status polls issued"))
	if err != nil {
		return nil, err
	}

	m.WorkflowDuration, err = meter.Float64Histogram("consultd.workflow.duration_seconds",
		metric.WithDescription("Workflow invocation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
