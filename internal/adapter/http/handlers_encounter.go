package http

import (
	"net/http"
	"strings"

	"github.com/consultologist/consultd/internal/domain/agent"
	"github.com/consultologist/consultd/internal/domain/consult"
)

// CreateEncounter handles POST /api/v1/encounters
func (h *Handlers) CreateEncounter(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[consult.CreateEncounterRequest](w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	enc, err := h.Store.CreateEncounter(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "create encounter")
		return
	}
	writeJSON(w, http.StatusCreated, enc)
}

// ListEncounters handles GET /api/v1/encounters
func (h *Handlers) ListEncounters(w http.ResponseWriter, r *http.Request) {
	encounters, err := h.Store.ListEncounters(r.Context())
	if err != nil {
		writeDomainError(w, err, "list encounters")
		return
	}
	if encounters == nil {
		encounters = []consult.Encounter{}
	}
	writeJSON(w, http.StatusOK, encounters)
}

// GetEncounter handles GET /api/v1/encounters/{id}
func (h *Handlers) GetEncounter(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	enc, err := h.Store.GetEncounter(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "encounter not found")
		return
	}
	writeJSON(w, http.StatusOK, enc)
}

// DeleteEncounter handles DELETE /api/v1/encounters/{id}
func (h *Handlers) DeleteEncounter(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if err := h.Store.DeleteEncounter(r.Context(), id); err != nil {
		writeDomainError(w, err, "encounter not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEncounterMessages handles GET /api/v1/encounters/{id}/messages. It is a
// read-only passthrough of the remote thread transcript, oldest first.
func (h *Handlers) ListEncounterMessages(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	enc, err := h.Store.GetEncounter(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "encounter not found")
		return
	}
	if enc.ThreadID == "" {
		writeJSON(w, http.StatusOK, []agent.Message{})
		return
	}

	messages, err := h.Agents.ListMessages(r.Context(), enc.ThreadID, agent.OrderAscending)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	if messages == nil {
		messages = []agent.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}
