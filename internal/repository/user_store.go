package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
)

// UserStore reads the organizational directory. User and role management
// belong to an external identity system; this service never writes users.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	// DefaultBuilding resolves the building attached to the user's
	// department; (nil, nil) when the user has no department or the
	// department has no building.
	DefaultBuilding(ctx context.Context, userID string) (*domain.Building, error)
}

type userStore struct {
	db Querier
}

// NewUserStore instantiates the store.
func NewUserStore(db Querier) UserStore {
	return &userStore{db: db}
}

const userColumns = `id, name, email, password_hash, role, department_id, created_at, updated_at`

func (s *userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email)
}

func (s *userStore) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role=$1 ORDER BY created_at ASC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (s *userStore) DefaultBuilding(ctx context.Context, userID string) (*domain.Building, error) {
	const query = `
        SELECT b.id, b.name, b.province_id, b.created_at
        FROM users u
        JOIN departments d ON d.id = u.department_id
        JOIN buildings b ON b.id = d.building_id
        WHERE u.id=$1`
	var building domain.Building
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&building.ID,
		&building.Name,
		&building.ProvinceID,
		&building.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &building, nil
}

func (s *userStore) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(s.db.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.DepartmentID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
