package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
)

// TrackedCaseRow joins a tracking row with its rule snapshot and the case
// fields the SLA list view exposes.
type TrackedCaseRow struct {
	Tracking    domain.SLATracking
	Rule        domain.SLARule
	CaseNumber  string
	Category    string
	Severity    string
	Status      domain.CaseStatus
	IsEscalated bool
	AssignedTo  *domain.UserRef
}

// SLAStore persists rules, per-case tracking rows, and the breach flags.
type SLAStore interface {
	// FindRule matches a rule by exact (category, severity); (nil, nil)
	// when no rule matches.
	FindRule(ctx context.Context, category, severity string) (*domain.SLARule, error)
	CreateTracking(ctx context.Context, tracking *domain.SLATracking) error
	// GetTrackingByCase returns (nil, nil) for untracked cases.
	GetTrackingByCase(ctx context.Context, caseID string) (*domain.SLATracking, error)
	// ListTracking returns one row per non-deleted tracked case, soonest
	// resolution deadline first.
	ListTracking(ctx context.Context) ([]TrackedCaseRow, error)
	// SweepBreaches flips breach flags false->true for deadlines behind
	// now and reports how many flags it set. It never unsets a flag, so
	// replays are idempotent.
	SweepBreaches(ctx context.Context, now time.Time) (int64, error)
}

type slaStore struct {
	db Querier
}

// NewSLAStore instantiates the store.
func NewSLAStore(db Querier) SLAStore {
	return &slaStore{db: db}
}

func (s *slaStore) FindRule(ctx context.Context, category, severity string) (*domain.SLARule, error) {
	const query = `
        SELECT id, category, severity, response_minutes, resolution_minutes, created_at
        FROM slas WHERE category=$1 AND severity=$2 LIMIT 1`
	var rule domain.SLARule
	err := s.db.QueryRow(ctx, query, category, severity).Scan(
		&rule.ID,
		&rule.Category,
		&rule.Severity,
		&rule.ResponseMinutes,
		&rule.ResolutionMinutes,
		&rule.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *slaStore) CreateTracking(ctx context.Context, tracking *domain.SLATracking) error {
	const query = `
        INSERT INTO incident_sla_tracking (id, incident_id, sla_id, response_due_at, resolution_due_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return s.db.QueryRow(ctx, query,
		tracking.ID,
		tracking.CaseID,
		tracking.SLAID,
		tracking.ResponseDueAt,
		tracking.ResolutionDueAt,
	).Scan(&tracking.CreatedAt)
}

func (s *slaStore) GetTrackingByCase(ctx context.Context, caseID string) (*domain.SLATracking, error) {
	const query = `
        SELECT id, incident_id, sla_id, response_due_at, resolution_due_at,
               response_breached, resolution_breached, created_at
        FROM incident_sla_tracking WHERE incident_id=$1`
	var tracking domain.SLATracking
	err := s.db.QueryRow(ctx, query, caseID).Scan(
		&tracking.ID,
		&tracking.CaseID,
		&tracking.SLAID,
		&tracking.ResponseDueAt,
		&tracking.ResolutionDueAt,
		&tracking.ResponseBreached,
		&tracking.ResolutionBreached,
		&tracking.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (s *slaStore) ListTracking(ctx context.Context) ([]TrackedCaseRow, error) {
	const query = `
        SELECT t.id, t.incident_id, t.sla_id, t.response_due_at, t.resolution_due_at,
               t.response_breached, t.resolution_breached, t.created_at,
               r.id, r.category, r.severity, r.response_minutes, r.resolution_minutes, r.created_at,
               i.case_number, i.category, i.severity, i.status, i.is_escalated,
               u.id, u.name, u.email
        FROM incident_sla_tracking t
        JOIN slas r ON r.id = t.sla_id
        JOIN incidents i ON i.id = t.incident_id AND i.deleted_at IS NULL
        LEFT JOIN LATERAL (
            SELECT a.assigned_to_id FROM incident_assignments a
            WHERE a.incident_id = i.id
            ORDER BY a.assigned_at DESC, a.seq DESC LIMIT 1
        ) latest ON true
        LEFT JOIN users u ON u.id = latest.assigned_to_id
        ORDER BY t.resolution_due_at ASC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TrackedCaseRow
	for rows.Next() {
		var row TrackedCaseRow
		var assigneeID, assigneeName, assigneeEmail *string
		if err := rows.Scan(
			&row.Tracking.ID,
			&row.Tracking.CaseID,
			&row.Tracking.SLAID,
			&row.Tracking.ResponseDueAt,
			&row.Tracking.ResolutionDueAt,
			&row.Tracking.ResponseBreached,
			&row.Tracking.ResolutionBreached,
			&row.Tracking.CreatedAt,
			&row.Rule.ID,
			&row.Rule.Category,
			&row.Rule.Severity,
			&row.Rule.ResponseMinutes,
			&row.Rule.ResolutionMinutes,
			&row.Rule.CreatedAt,
			&row.CaseNumber,
			&row.Category,
			&row.Severity,
			&row.Status,
			&row.IsEscalated,
			&assigneeID,
			&assigneeName,
			&assigneeEmail,
		); err != nil {
			return nil, err
		}
		if assigneeID != nil {
			row.AssignedTo = &domain.UserRef{ID: *assigneeID}
			if assigneeName != nil {
				row.AssignedTo.Name = *assigneeName
			}
			if assigneeEmail != nil {
				row.AssignedTo.Email = *assigneeEmail
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *slaStore) SweepBreaches(ctx context.Context, now time.Time) (int64, error) {
	const responseQuery = `
        UPDATE incident_sla_tracking SET response_breached=true
        WHERE response_breached=false AND response_due_at < $1`
	cmd, err := s.db.Exec(ctx, responseQuery, now)
	if err != nil {
		return 0, err
	}
	flagged := cmd.RowsAffected()

	const resolutionQuery = `
        UPDATE incident_sla_tracking SET resolution_breached=true
        WHERE resolution_breached=false AND resolution_due_at < $1`
	cmd, err = s.db.Exec(ctx, resolutionQuery, now)
	if err != nil {
		return flagged, err
	}
	return flagged + cmd.RowsAffected(), nil
}
