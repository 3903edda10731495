// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/consultologist/consultd/internal/domain/consult"
)

// Store is the port interface for encounter persistence.
type Store interface {
	ListEncounters(ctx context.Context) ([]consult.Encounter, error)
	GetEncounter(ctx context.Context, id string) (*consult.Encounter, error)
	CreateEncounter(ctx context.Context, req consult.CreateEncounterRequest) (*consult.Encounter, error)
	// SetEncounterThread records the remote thread id after the first
	// successful workflow invocation for the encounter.
	SetEncounterThread(ctx context.Context, id, threadID string) error
	DeleteEncounter(ctx context.Context, id string) error
}
