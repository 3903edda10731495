// Package orchestrator drives the remote agent service through its
// thread -> message -> run -> poll -> extract lifecycle, turning one user
// input into one agent response. Both workflow variants (freeform chat and
// structured extraction) are configured call sites of this one component.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	consultotel "github.com/consultologist/consultd/internal/adapter/otel"
	"github.com/consultologist/consultd/internal/domain"
	"github.com/consultologist/consultd/internal/domain/agent"
	"github.com/consultologist/consultd/internal/domain/consult"
	"github.com/consultologist/consultd/internal/port/agentservice"
	"github.com/consultologist/consultd/internal/port/audit"
)

// cancelTimeout bounds the best-effort run cancellation issued after a poll
// timeout. The cancellation runs detached from the invocation.
const cancelTimeout = 5 * time.Second

// Options parameterizes one workflow variant.
type Options struct {
	// Workflow names the variant ("chat" or "extract") for logs, spans,
	// and audit events.
	Workflow string
	// AgentID identifies the remote agent the runs execute against.
	AgentID string
	// PollInterval is the sleep between run status fetches.
	PollInterval time.Duration
	// MaxAttempts caps the number of status fetches before the invocation
	// is classified as timed out.
	MaxAttempts int
}

// ProgressEvent describes one observed run status, delivered to the optional
// progress hook on every poll.
type ProgressEvent struct {
	InvocationID string
	Workflow     string
	ThreadID     string
	RunID        string
	Status       agent.Status
}

// Orchestrator executes one workflow invocation at a time against the remote
// agent service. It holds no mutable state across invocations; concurrent
// invocations are safe because each owns its own thread/run references.
type Orchestrator struct {
	svc      agentservice.Client
	opts     Options
	events   audit.Publisher // nil disables audit publishing
	metrics  *consultotel.Metrics
	progress func(ctx context.Context, ev ProgressEvent)
	log      *slog.Logger
}

// New creates an Orchestrator for one workflow variant.
func New(svc agentservice.Client, opts Options, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{svc: svc, opts: opts, log: log}
}

// WithAudit attaches an audit publisher. One event is published per finished
// invocation, fire-and-forget.
func (o *Orchestrator) WithAudit(p audit.Publisher) *Orchestrator {
	o.events = p
	return o
}

// WithMetrics attaches workflow metric instruments.
func (o *Orchestrator) WithMetrics(m *consultotel.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// OnProgress registers a hook invoked on every observed run status. The hook
// must not block; it runs on the polling goroutine.
func (o *Orchestrator) OnProgress(fn func(ctx context.Context, ev ProgressEvent)) {
	o.progress = fn
}

// Workflow returns the variant name this orchestrator was configured with.
func (o *Orchestrator) Workflow() string { return o.opts.Workflow }

// Execute runs one full workflow invocation: acquire a thread, submit the
// user content, launch a run, poll it to a terminal state, and extract the
// agent's reply. On failure it returns a *domain.Error carrying the failure
// kind, the failing step, and whatever thread/run ids were obtained.
func (o *Orchestrator) Execute(ctx context.Context, threadID, content string) (res *consult.Result, err error) {
	invocationID := uuid.NewString()
	start := time.Now()

	ctx, span := consultotel.StartWorkflowSpan(ctx, o.opts.Workflow, invocationID)
	defer span.End()

	// The invocation always carries a deadline so a hung remote service
	// cannot pin resources. Callers may supply a tighter one.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.overallTimeout())
		defer cancel()
	}

	// The caller must always receive a classified result, never a panic.
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("workflow panic",
				"workflow", o.opts.Workflow,
				"invocation_id", invocationID,
				"panic", r,
			)
			res = nil
			err = &domain.Error{Kind: domain.KindInternal, Err: fmt.Errorf("panic: %v", r)}
		}
		o.finish(invocationID, threadID, start, err)
	}()

	if o.metrics != nil {
		o.metrics.WorkflowsStarted.Add(ctx, 1)
	}
	if o.opts.AgentID == "" {
		return nil, o.classify("config", threadID, "", domain.KindConfiguration,
			errors.New("agent id is not configured"))
	}

	threadID, err = o.acquireThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err = o.submitMessage(ctx, threadID, content); err != nil {
		return nil, err
	}
	run, err := o.startRun(ctx, threadID)
	if err != nil {
		return nil, err
	}
	run, err = o.pollRun(ctx, invocationID, run)
	if err != nil {
		return nil, err
	}
	payload, err := o.extractResponse(ctx, threadID, run.ID)
	if err != nil {
		return nil, err
	}

	o.log.Info("workflow completed",
		"workflow", o.opts.Workflow,
		"invocation_id", invocationID,
		"thread_id", threadID,
		"run_id", run.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &consult.Result{
		Success:  true,
		Payload:  payload,
		ThreadID: threadID,
		RunID:    run.ID,
	}, nil
}

// overallTimeout derives the default invocation deadline from the poll budget,
// with headroom for the submission and extraction calls.
func (o *Orchestrator) overallTimeout() time.Duration {
	return time.Duration(o.opts.MaxAttempts)*o.opts.PollInterval + 30*time.Second
}

// acquireThread reuses the caller-supplied thread id when present, otherwise
// creates a new thread. A supplied id is not verified; an invalid one surfaces
// as an upstream error on the next call, trading early validation for one
// fewer round trip.
func (o *Orchestrator) acquireThread(ctx context.Context, threadID string) (string, error) {
	if threadID != "" {
		return threadID, nil
	}
	if err := ctx.Err(); err != nil {
		return "", o.deadlineError("create_thread", "", "", err)
	}

	ctx, span := consultotel.StartStepSpan(ctx, "create_thread", "")
	defer span.End()

	thread, err := o.svc.CreateThread(ctx)
	if err != nil {
		return "", o.classify("create_thread", "", "", domain.KindUpstream, err)
	}
	return thread.ID, nil
}

func (o *Orchestrator) submitMessage(ctx context.Context, threadID, content string) error {
	if err := ctx.Err(); err != nil {
		return o.deadlineError("submit_message", threadID, "", err)
	}

	ctx, span := consultotel.StartStepSpan(ctx, "submit_message", threadID)
	defer span.End()

	if _, err := o.svc.CreateMessage(ctx, threadID, agent.RoleUser, content); err != nil {
		// A thread without a message is not cleaned up; orphaned threads
		// are harmless on the remote service.
		return o.classify("submit_message", threadID, "", domain.KindUpstream, err)
	}
	return nil
}

func (o *Orchestrator) startRun(ctx context.Context, threadID string) (*agent.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, o.deadlineError("start_run", threadID, "", err)
	}

	ctx, span := consultotel.StartStepSpan(ctx, "start_run", threadID)
	defer span.End()

	run, err := o.svc.CreateRun(ctx, threadID, o.opts.AgentID)
	if err != nil {
		return nil, o.classify("start_run", threadID, "", domain.KindUpstream, err)
	}
	return run, nil
}

// pollRun refetches run status on a fixed interval until a terminal state or
// the attempt budget is exhausted. The sleep is cancellable: a caller
// deadline fires inside the select, not between iterations.
func (o *Orchestrator) pollRun(ctx context.Context, invocationID string, run *agent.Run) (*agent.Run, error) {
	ctx, span := consultotel.StartStepSpan(ctx, "poll_run", run.ThreadID)
	defer span.End()

	o.notify(ctx, invocationID, run)

	for attempt := 0; attempt < o.opts.MaxAttempts; attempt++ {
		if run.Status.Terminal() {
			break
		}

		timer := time.NewTimer(o.opts.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			o.cancelRunDetached(run)
			return nil, o.deadlineError("poll_run", run.ThreadID, run.ID, ctx.Err())
		case <-timer.C:
		}

		next, err := o.svc.GetRun(ctx, run.ThreadID, run.ID)
		if err != nil {
			return nil, o.classify("poll_run", run.ThreadID, run.ID, domain.KindUpstream, err)
		}
		if o.metrics != nil {
			o.metrics.PollAttempts.Add(ctx, 1)
		}
		if next.Status != run.Status {
			o.notify(ctx, invocationID, next)
		}
		run = next
	}

	switch run.Status {
	case agent.StatusCompleted:
		return run, nil
	case agent.StatusFailed, agent.StatusCancelled, agent.StatusExpired:
		detail := fmt.Errorf("run ended %s", run.Status)
		if run.LastError != "" {
			detail = fmt.Errorf("run ended %s: %s", run.Status, run.LastError)
		}
		return nil, o.classify("poll_run", run.ThreadID, run.ID, domain.KindRun, detail)
	default:
		// Attempts exhausted while the run is still live. The remote run
		// keeps executing; cancel it best-effort so it does not burn
		// capacity with no consumer.
		o.cancelRunDetached(run)
		return nil, o.classify("poll_run", run.ThreadID, run.ID, domain.KindTimeout,
			fmt.Errorf("run still %s after %d attempts", run.Status, o.opts.MaxAttempts))
	}
}

// cancelRunDetached issues a fire-and-forget cancellation on its own
// short-lived context so it survives the invocation's deadline.
func (o *Orchestrator) cancelRunDetached(run *agent.Run) {
	threadID, runID := run.ThreadID, run.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cancelTimeout)
		defer cancel()
		if err := o.svc.CancelRun(ctx, threadID, runID); err != nil {
			o.log.Warn("run cancel failed", "thread_id", threadID, "run_id", runID, "error", err)
		}
	}()
}

func (o *Orchestrator) notify(ctx context.Context, invocationID string, run *agent.Run) {
	if o.progress == nil {
		return
	}
	o.progress(ctx, ProgressEvent{
		InvocationID: invocationID,
		Workflow:     o.opts.Workflow,
		ThreadID:     run.ThreadID,
		RunID:        run.ID,
		Status:       run.Status,
	})
}

// classify converts err to the uniform workflow error shape, preserving an
// already-assigned kind (e.g. authentication failures surfaced by the agent
// service client) and filling in the failing step and ids.
func (o *Orchestrator) classify(step, threadID, runID string, fallback domain.Kind, err error) *domain.Error {
	out := &domain.Error{Kind: fallback, Step: step, ThreadID: threadID, RunID: runID, Err: err}
	var we *domain.Error
	if errors.As(err, &we) {
		out.Kind = we.Kind
		out.Err = we.Err
		if we.Step != "" {
			out.Step = we.Step
		}
	}
	o.log.Error("workflow step failed",
		"workflow", o.opts.Workflow,
		"step", out.Step,
		"kind", string(out.Kind),
		"thread_id", threadID,
		"run_id", runID,
		"error", out.Err,
	)
	return out
}

// deadlineError classifies a cancelled or expired context as a timeout.
func (o *Orchestrator) deadlineError(step, threadID, runID string, err error) *domain.Error {
	return o.classify(step, threadID, runID, domain.KindTimeout,
		&domain.Error{Kind: domain.KindTimeout, Err: err})
}

// finish records terminal metrics and publishes the audit event.
func (o *Orchestrator) finish(invocationID, threadID string, start time.Time, err error) {
	elapsed := time.Since(start)
	ev := audit.Event{
		InvocationID: invocationID,
		Workflow:     o.opts.Workflow,
		ThreadID:     threadID,
		DurationMS:   elapsed.Milliseconds(),
		OccurredAt:   time.Now().UTC(),
	}
	subject := audit.SubjectWorkflowCompleted

	if err != nil {
		subject = audit.SubjectWorkflowFailed
		ev.Kind = string(domain.KindOf(err))
		var we *domain.Error
		if errors.As(err, &we) {
			if we.ThreadID != "" {
				ev.ThreadID = we.ThreadID
			}
			ev.RunID = we.RunID
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if o.metrics != nil {
		if err != nil {
			o.metrics.WorkflowsFailed.Add(ctx, 1)
		} else {
			o.metrics.WorkflowsCompleted.Add(ctx, 1)
		}
		o.metrics.WorkflowDuration.Record(ctx, elapsed.Seconds())
	}
	if o.events == nil {
		return
	}
	data, mErr := json.Marshal(ev)
	if mErr != nil {
		return
	}
	if pErr := o.events.Publish(ctx, subject, data); pErr != nil {
		o.log.Warn("audit publish failed", "subject", subject, "error", pErr)
	}
}
