package repository

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
)

// JournalStore is the append-only activity journal.
type JournalStore interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	// ListByCase returns the timeline ordered ascending by changed_at.
	ListByCase(ctx context.Context, caseID string) ([]domain.ActivityLogEntry, error)
}

type journalStore struct {
	db Querier
}

// NewJournalStore instantiates the store.
func NewJournalStore(db Querier) JournalStore {
	return &journalStore{db: db}
}

func (s *journalStore) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO incident_status_logs (id, incident_id, old_status, new_status, comments, user_id, changed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := s.db.Exec(ctx, query,
		entry.ID,
		entry.CaseID,
		entry.OldStatus,
		entry.NewStatus,
		entry.Comments,
		entry.UserID,
		entry.ChangedAt,
	)
	return err
}

func (s *journalStore) ListByCase(ctx context.Context, caseID string) ([]domain.ActivityLogEntry, error) {
	const query = `
        SELECT id, incident_id, old_status, new_status, comments, user_id, changed_at
        FROM incident_status_logs WHERE incident_id=$1 ORDER BY changed_at ASC`
	rows, err := s.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.CaseID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Comments,
			&entry.UserID,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
