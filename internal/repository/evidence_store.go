package repository

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
)

// EvidenceStore persists evidence file references and case comments.
type EvidenceStore interface {
	AddEvidence(ctx context.Context, ref *domain.EvidenceRef) error
	ListEvidence(ctx context.Context, caseID string) ([]domain.EvidenceRef, error)
	AddComment(ctx context.Context, comment *domain.CaseComment) error
	ListComments(ctx context.Context, caseID string) ([]domain.CaseComment, error)
}

type evidenceStore struct {
	db Querier
}

// NewEvidenceStore instantiates the store.
func NewEvidenceStore(db Querier) EvidenceStore {
	return &evidenceStore{db: db}
}

func (s *evidenceStore) AddEvidence(ctx context.Context, ref *domain.EvidenceRef) error {
	const query = `
        INSERT INTO incident_media (id, incident_id, file_url, file_type, uploader_role, uploaded_by_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING uploaded_at`
	return s.db.QueryRow(ctx, query,
		ref.ID,
		ref.CaseID,
		ref.FileURL,
		ref.FileType,
		ref.UploaderRole,
		ref.UploadedByID,
	).Scan(&ref.UploadedAt)
}

func (s *evidenceStore) ListEvidence(ctx context.Context, caseID string) ([]domain.EvidenceRef, error) {
	const query = `
        SELECT id, incident_id, file_url, file_type, uploader_role, uploaded_by_id, uploaded_at
        FROM incident_media WHERE incident_id=$1 ORDER BY uploaded_at DESC`
	rows, err := s.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EvidenceRef
	for rows.Next() {
		var ref domain.EvidenceRef
		if err := rows.Scan(
			&ref.ID,
			&ref.CaseID,
			&ref.FileURL,
			&ref.FileType,
			&ref.UploaderRole,
			&ref.UploadedByID,
			&ref.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ref)
	}
	return result, rows.Err()
}

func (s *evidenceStore) AddComment(ctx context.Context, comment *domain.CaseComment) error {
	const query = `
        INSERT INTO incident_comments (id, incident_id, user_id, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	return s.db.QueryRow(ctx, query,
		comment.ID,
		comment.CaseID,
		comment.UserID,
		comment.Comment,
	).Scan(&comment.CreatedAt)
}

func (s *evidenceStore) ListComments(ctx context.Context, caseID string) ([]domain.CaseComment, error) {
	const query = `
        SELECT id, incident_id, user_id, comment, created_at
        FROM incident_comments WHERE incident_id=$1 ORDER BY created_at ASC`
	rows, err := s.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CaseComment
	for rows.Next() {
		var comment domain.CaseComment
		if err := rows.Scan(
			&comment.ID,
			&comment.CaseID,
			&comment.UserID,
			&comment.Comment,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
