package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inviteplanner/internal/domain"
)

// roleRepository reads the roles seeded by Migrate and their assignments.
// Assignments are written through the user repository.
type roleRepository struct {
	db *sql.DB
}

// NewRoleRepository returns a domain.RoleRepository implemented with Postgres.
func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{db: db}
}

const selectRoleByCode = `SELECT id, code FROM roles WHERE code = $1`

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx, selectRoleByCode, code).Scan(&role.ID, &role.Code)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("role %q: %w", code, domain.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("select role %q: %w", code, err)
	}
	return &role, nil
}

const selectRoleCodesByUser = `
	SELECT r.code
	FROM user_roles ur
	JOIN roles r ON r.id = ur.role_id
	WHERE ur.user_id = $1
	ORDER BY r.code`

func (r *roleRepository) ListCodesByUserID(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectRoleCodesByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("select roles of user: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan role code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles of user: %w", err)
	}
	return codes, nil
}
