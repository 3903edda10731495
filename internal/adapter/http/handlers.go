// Package http provides the REST API surface: workflow invocation, the
// encounter registry, and the transcript proxy.
package http

import (
	"log/slog"
	"net/http"

	"github.com/consultologist/consultd/internal/adapter/ws"
	"github.com/consultologist/consultd/internal/orchestrator"
	"github.com/consultologist/consultd/internal/port/agentservice"
	"github.com/consultologist/consultd/internal/port/database"
)

// Handlers holds the API's collaborators.
type Handlers struct {
	Chat    *orchestrator.Orchestrator
	Extract *orchestrator.Orchestrator
	Store   database.Store
	Agents  agentservice.Client
	Hub     *ws.Hub
	Log     *slog.Logger
}

// HandleHealth reports liveness.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
