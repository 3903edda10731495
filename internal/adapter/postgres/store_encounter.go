package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/consultologist/consultd/internal/domain"
	"github.com/consultologist/consultd/internal/domain/consult"
)

func (s *Store) CreateEncounter(ctx context.Context, req consult.CreateEncounterRequest) (*consult.Encounter, error) {
	var created consult.Encounter
	err := s.pool.QueryRow(ctx,
		`INSERT INTO encounters (title, patient_ref)
		 VALUES ($1, $2)
		 RETURNING id, title, patient_ref, thread_id, created_at, updated_at`,
		req.Title, req.PatientRef,
	).Scan(&created.ID, &created.Title, &created.PatientRef, &created.ThreadID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create encounter: %w", err)
	}
	return &created, nil
}

func (s *Store) GetEncounter(ctx context.Context, id string) (*consult.Encounter, error) {
	var e consult.Encounter
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, patient_ref, thread_id, created_at, updated_at
		 FROM encounters WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.PatientRef, &e.ThreadID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("get encounter %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get encounter %s: %w", id, err)
	}
	return &e, nil
}

func (s *Store) ListEncounters(ctx context.Context) ([]consult.Encounter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, patient_ref, thread_id, created_at, updated_at
		 FROM encounters ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var result []consult.Encounter
	for rows.Next() {
		var e consult.Encounter
		if err := rows.Scan(&e.ID, &e.Title, &e.PatientRef, &e.ThreadID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) SetEncounterThread(ctx context.Context, id, threadID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE encounters SET thread_id = $2, updated_at = NOW() WHERE id = $1`,
		id, threadID)
	if err != nil {
		return fmt.Errorf("set encounter thread %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set encounter thread %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteEncounter(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM encounters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete encounter %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete encounter %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
