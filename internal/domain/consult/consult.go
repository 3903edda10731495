// Package consult defines the consultation workflow's request and result
// shapes plus the encounter entity that ties a clinician's session to a
// remote conversation thread.
package consult

import "time"

// ChatRequest is the freeform workflow input: one clinician message, with an
// optional thread id to continue an earlier conversation. EncounterID binds
// the invocation to a registered encounter instead; the encounter's stored
// thread id is used and recorded.
type ChatRequest struct {
	Message     string `json:"message"`
	ThreadID    string `json:"thread_id,omitempty"`
	EncounterID string `json:"encounter_id,omitempty"`
}

// ExtractRequest is the structured-extraction workflow input: a consultation
// note draft plus the JSON schema the agent should populate from it.
type ExtractRequest struct {
	Draft       string `json:"draft"`
	Schema      string `json:"schema"`
	ThreadID    string `json:"thread_id,omitempty"`
	EncounterID string `json:"encounter_id,omitempty"`
}

// Result is the uniform workflow outcome. Success implies a non-empty Payload
// and empty Error; failure implies no Payload. ThreadID is returned whenever
// one was obtained so the caller can resume the conversation.
type Result struct {
	Success  bool   `json:"success"`
	Payload  string `json:"payload,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	RunID    string `json:"run_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Encounter is one clinician consultation session. It owns at most one remote
// thread id, filled in after the first successful workflow invocation.
type Encounter struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	PatientRef string    `json:"patient_ref,omitempty"`
	ThreadID   string    `json:"thread_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateEncounterRequest is the request body for creating an encounter.
type CreateEncounterRequest struct {
	Title      string `json:"title"`
	PatientRef string `json:"patient_ref,omitempty"`
}
