package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store resolves grants from the roles and role_permissions tables.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions rp
    JOIN roles r ON r.id = rp.role_id
    WHERE r.id::text = $1 AND rp.permission = $2
  `, roleID, permission).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// StaticPermissions answers from RolePermissions. Role ids are role names
// when no database is configured.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	for _, perm := range RolePermissions[roleID] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}
