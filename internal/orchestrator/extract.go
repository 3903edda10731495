package orchestrator

import (
	"context"
	"errors"

	consultotel "github.com/consultologist/consultd/internal/adapter/otel"
	"github.com/consultologist/consultd/internal/domain"
	"github.com/consultologist/consultd/internal/domain/agent"
)

// extractResponse pulls the agent's reply off the thread after a completed
// run. Messages are requested newest-first so the selection is "most recent
// agent reply" by construction, independent of the service's default order.
func (o *Orchestrator) extractResponse(ctx context.Context, threadID, runID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", o.deadlineError("extract_response", threadID, runID, err)
	}

	ctx, span := consultotel.StartStepSpan(ctx, "extract_response", threadID)
	defer span.End()

	messages, err := o.svc.ListMessages(ctx, threadID, agent.OrderDescending)
	if err != nil {
		return "", o.classify("extract_response", threadID, runID, domain.KindUpstream, err)
	}

	for _, m := range messages {
		if m.Role != agent.RoleAgent {
			continue
		}
		if text, ok := m.FirstText(); ok {
			return text, nil
		}
		// Run completed but its newest reply carries no text part
		// (e.g. file-only output). That is a miss, not an empty success.
		return "", o.classify("extract_response", threadID, runID, domain.KindExtraction,
			errors.New("agent message has no text content"))
	}

	return "", o.classify("extract_response", threadID, runID, domain.KindExtraction,
		errors.New("no agent message found on thread"))
}
