package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "consultd"

// StartWorkflowSpan starts a span covering one workflow invocation.
func StartWorkflowSpan(ctx context.Context, workflow, invocationID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "workflow",
		trace.WithAttributes(
			attribute.String("workflow.name", workflow),
			attribute.String("workflow.invocation_id", invocationID),
		),
	)
}

// StartStepSpan starts a span for one pipeline step within a workflow.
func StartStepSpan(ctx context.Context, step, threadID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, step,
		trace.WithAttributes(
			attribute.String("thread.id", threadID),
		),
	)
}
