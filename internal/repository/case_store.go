package repository

import (
	"fmt"
	"strings"
	"time"

	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
)

// CaseFilter captures case listing parameters. Severity and category match
// case-insensitively.
type CaseFilter struct {
	Status       *domain.CaseStatus
	BuildingID   *string
	ReportedByID *string
	Type         *domain.CaseType
	Severity     *string
	Category     *string
	IsEscalated  *bool
	AssignedToID *string
	Take         int
	Skip         int
}

// CaseStore encapsulates incident persistence. Soft-deleted cases are
// invisible to every lookup except Update/SoftDelete by primary key.
type CaseStore interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByNumber(ctx context.Context, number string) (*domain.Case, error)
	// GetForUpdate locks the case row for the remainder of the enclosing
	// transaction, serializing concurrent operations on the same case.
	GetForUpdate(ctx context.Context, id string) (*domain.Case, error)
	Update(ctx context.Context, c *domain.Case) error
	SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, int64, error)
	CountByTypeStatus(ctx context.Context, caseType domain.CaseType, statuses []domain.CaseStatus) (int64, error)
	Categories(ctx context.Context) ([]string, error)
}

type caseStore struct {
	db Querier
}

// NewCaseStore instantiates the store.
func NewCaseStore(db Querier) CaseStore {
	return &caseStore{db: db}
}

const caseColumns = `id, case_number, type, category, severity, status, description,
	location, latitude, longitude, immediate_actions, people_impacted,
	is_escalated, escalated_at, escalation_reason, reported_by_id, building_id,
	department_id, occurred_at, created_at, updated_at, deleted_at`

func (s *caseStore) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO incidents (id, case_number, type, category, severity, status, description,
            location, latitude, longitude, immediate_actions, people_impacted,
            reported_by_id, building_id, department_id, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING created_at, updated_at`
	return s.db.QueryRow(ctx, query,
		c.ID,
		c.CaseNumber,
		c.Type,
		c.Category,
		c.Severity,
		c.Status,
		c.Description,
		c.Location,
		c.Latitude,
		c.Longitude,
		c.ImmediateActions,
		c.PeopleImpacted,
		c.ReportedByID,
		c.BuildingID,
		c.DepartmentID,
		c.OccurredAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *caseStore) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE id=$1 AND deleted_at IS NULL`, caseColumns)
	return s.fetchSingle(ctx, query, id)
}

func (s *caseStore) GetByNumber(ctx context.Context, number string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE case_number=$1 AND deleted_at IS NULL`, caseColumns)
	return s.fetchSingle(ctx, query, number)
}

func (s *caseStore) GetForUpdate(ctx context.Context, id string) (*domain.Case, error) {
	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE id=$1 AND deleted_at IS NULL FOR UPDATE`, caseColumns)
	return s.fetchSingle(ctx, query, id)
}

func (s *caseStore) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE incidents SET category=$1, severity=$2, status=$3, description=$4,
            building_id=$5, department_id=$6, is_escalated=$7, escalated_at=$8,
            escalation_reason=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := s.db.Exec(ctx, query,
		c.Category,
		c.Severity,
		c.Status,
		c.Description,
		c.BuildingID,
		c.DepartmentID,
		c.IsEscalated,
		c.EscalatedAt,
		c.EscalationReason,
		c.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *caseStore) SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Case, error) {
	query := fmt.Sprintf(`
        UPDATE incidents SET deleted_at=$1, updated_at=NOW()
        WHERE id=$2 AND deleted_at IS NULL
        RETURNING %s`, caseColumns)
	return s.scanRow(s.db.QueryRow(ctx, query, at, id))
}

func (s *caseStore) List(ctx context.Context, filter CaseFilter) ([]domain.Case, int64, error) {
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.BuildingID != nil {
		args = append(args, *filter.BuildingID)
		clauses = append(clauses, fmt.Sprintf("building_id=$%d", len(args)))
	}
	if filter.ReportedByID != nil {
		args = append(args, *filter.ReportedByID)
		clauses = append(clauses, fmt.Sprintf("reported_by_id=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.Severity != nil {
		args = append(args, *filter.Severity)
		clauses = append(clauses, fmt.Sprintf("LOWER(severity)=LOWER($%d)", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("LOWER(category)=LOWER($%d)", len(args)))
	}
	if filter.IsEscalated != nil {
		args = append(args, *filter.IsEscalated)
		clauses = append(clauses, fmt.Sprintf("is_escalated=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM incident_assignments a WHERE a.incident_id=incidents.id AND a.assigned_to_id=$%d)", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM incidents WHERE %s`, where)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	take := filter.Take
	if take <= 0 {
		take = 50
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		caseColumns, where, take, skip)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanCases(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *caseStore) CountByTypeStatus(ctx context.Context, caseType domain.CaseType, statuses []domain.CaseStatus) (int64, error) {
	args := []any{caseType}
	query := `SELECT COUNT(*) FROM incidents WHERE deleted_at IS NULL AND type=$1`
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}
	var total int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *caseStore) Categories(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT category FROM incidents WHERE deleted_at IS NULL ORDER BY category`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func (s *caseStore) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	return s.scanRow(s.db.QueryRow(ctx, query, arg))
}

func (s *caseStore) scanRow(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	if err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.Type,
		&c.Category,
		&c.Severity,
		&c.Status,
		&c.Description,
		&c.Location,
		&c.Latitude,
		&c.Longitude,
		&c.ImmediateActions,
		&c.PeopleImpacted,
		&c.IsEscalated,
		&c.EscalatedAt,
		&c.EscalationReason,
		&c.ReportedByID,
		&c.BuildingID,
		&c.DepartmentID,
		&c.OccurredAt,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCases(rows pgx.Rows) ([]domain.Case, error) {
	var result []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := rows.Scan(
			&c.ID,
			&c.CaseNumber,
			&c.Type,
			&c.Category,
			&c.Severity,
			&c.Status,
			&c.Description,
			&c.Location,
			&c.Latitude,
			&c.Longitude,
			&c.ImmediateActions,
			&c.PeopleImpacted,
			&c.IsEscalated,
			&c.EscalatedAt,
			&c.EscalationReason,
			&c.ReportedByID,
			&c.BuildingID,
			&c.DepartmentID,
			&c.OccurredAt,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
