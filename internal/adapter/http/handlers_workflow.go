package http

import (
	"errors"
	"net/http"

	"github.com/consultologist/consultd/internal/adapter/ws"
	"github.com/consultologist/consultd/internal/domain"
	"github.com/consultologist/consultd/internal/domain/consult"
	"github.com/consultologist/consultd/internal/orchestrator"
)

// HandleChat handles POST /api/v1/chat: one clinician message in, the agent's
// reply out.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[consult.ChatRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeWorkflowError(w, domain.NewError(domain.KindValidation, "validate", err))
		return
	}
	h.runWorkflow(w, r, h.Chat, req.EncounterID, req.ThreadID, req.Message)
}

// HandleExtract handles POST /api/v1/extract: a note draft plus a JSON schema
// in, the structured extraction out.
func (h *Handlers) HandleExtract(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[consult.ExtractRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeWorkflowError(w, domain.NewError(domain.KindValidation, "validate", err))
		return
	}
	content, err := orchestrator.BuildExtractPrompt(req.Draft, req.Schema)
	if err != nil {
		writeWorkflowError(w, domain.NewError(domain.KindInternal, "build_prompt", err))
		return
	}
	h.runWorkflow(w, r, h.Extract, req.EncounterID, req.ThreadID, content)
}

// runWorkflow resolves the thread (directly or via an encounter), executes the
// workflow, records a newly created thread on the encounter, and renders the
// uniform result shape.
func (h *Handlers) runWorkflow(w http.ResponseWriter, r *http.Request, orc *orchestrator.Orchestrator, encounterID, threadID, content string) {
	ctx := r.Context()

	var hadThread bool
	if encounterID != "" {
		enc, err := h.Store.GetEncounter(ctx, encounterID)
		if err != nil {
			writeDomainError(w, err, "encounter not found")
			return
		}
		threadID = enc.ThreadID
		hadThread = enc.ThreadID != ""
	}

	res, err := orc.Execute(ctx, threadID, content)
	if err != nil {
		failed := &consult.Result{Success: false, Error: err.Error()}
		var we *domain.Error
		if errors.As(err, &we) {
			failed.ThreadID = we.ThreadID
			failed.RunID = we.RunID
		}
		h.broadcastResult(r, orc, failed)
		writeWorkflowError(w, err)
		return
	}

	if encounterID != "" && !hadThread && res.ThreadID != "" {
		if err := h.Store.SetEncounterThread(ctx, encounterID, res.ThreadID); err != nil {
			h.Log.Warn("failed to record encounter thread",
				"encounter_id", encounterID, "thread_id", res.ThreadID, "error", err)
		}
	}

	h.broadcastResult(r, orc, res)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) broadcastResult(r *http.Request, orc *orchestrator.Orchestrator, res *consult.Result) {
	if h.Hub == nil {
		return
	}
	h.Hub.BroadcastEvent(r.Context(), ws.EventWorkflowResult, ws.WorkflowResultEvent{
		Workflow: orc.Workflow(),
		ThreadID: res.ThreadID,
		RunID:    res.RunID,
		Success:  res.Success,
		Error:    res.Error,
	})
}
