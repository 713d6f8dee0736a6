package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
)

// LedgerStore is the append-only assignment ledger. Records are never
// updated or deleted; reassignment and escalation both append.
type LedgerStore interface {
	Append(ctx context.Context, record *domain.AssignmentRecord) error
	// Latest returns the record with the greatest assigned_at for the case,
	// ties broken by insertion order. Returns (nil, nil) when the case has
	// never been assigned.
	Latest(ctx context.Context, caseID string) (*domain.AssignmentRecord, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.AssignmentRecord, error)
}

type ledgerStore struct {
	db Querier
}

// NewLedgerStore instantiates the store.
func NewLedgerStore(db Querier) LedgerStore {
	return &ledgerStore{db: db}
}

func (s *ledgerStore) Append(ctx context.Context, record *domain.AssignmentRecord) error {
	const query = `
        INSERT INTO incident_assignments (id, incident_id, assigned_to_id, assigned_by_id, assigned_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING seq`
	return s.db.QueryRow(ctx, query,
		record.ID,
		record.CaseID,
		record.AssignedToID,
		record.AssignedByID,
		record.AssignedAt,
	).Scan(&record.Seq)
}

func (s *ledgerStore) Latest(ctx context.Context, caseID string) (*domain.AssignmentRecord, error) {
	const query = `
        SELECT id, seq, incident_id, assigned_to_id, assigned_by_id, assigned_at
        FROM incident_assignments WHERE incident_id=$1
        ORDER BY assigned_at DESC, seq DESC LIMIT 1`
	var record domain.AssignmentRecord
	err := s.db.QueryRow(ctx, query, caseID).Scan(
		&record.ID,
		&record.Seq,
		&record.CaseID,
		&record.AssignedToID,
		&record.AssignedByID,
		&record.AssignedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *ledgerStore) ListByCase(ctx context.Context, caseID string) ([]domain.AssignmentRecord, error) {
	const query = `
        SELECT id, seq, incident_id, assigned_to_id, assigned_by_id, assigned_at
        FROM incident_assignments WHERE incident_id=$1
        ORDER BY assigned_at ASC, seq ASC`
	rows, err := s.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentRecord
	for rows.Next() {
		var record domain.AssignmentRecord
		if err := rows.Scan(
			&record.ID,
			&record.Seq,
			&record.CaseID,
			&record.AssignedToID,
			&record.AssignedByID,
			&record.AssignedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
