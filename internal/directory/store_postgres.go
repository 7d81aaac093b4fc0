package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"access-gate/pkg/platform/sentinel"
)

// PostgresStore persists the directory graph. Entities live in one table
// each; adjacency lives in the user_roles, role_permissions, and
// resource_permissions join tables, keyed by the stable entity names so the
// policy read path never joins through surrogate IDs.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) RoleGrants(ctx context.Context, roleNames []string, permission string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_permissions
			WHERE role_name = ANY($1) AND permission_name = $2
		)
	`, pq.Array(roleNames), permission).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query role grants: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Username, nullable(user.Email), user.PasswordHash)
	if err != nil {
		return translatePQ("insert user", err)
	}
	if err := replaceUserRoles(ctx, tx, user.ID, user.RoleNames); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, COALESCE(u.email, ''), u.password_hash,
		       COALESCE(array_agg(ur.role_name) FILTER (WHERE ur.role_name IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id, u.username, u.email, u.password_hash
	`, id)

	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, pq.Array(&user.RoleNames))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, COALESCE(u.email, ''), u.password_hash,
		       COALESCE(array_agg(ur.role_name) FILTER (WHERE ur.role_name IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		GROUP BY u.id, u.username, u.email, u.password_hash
		ORDER BY u.username
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, pq.Array(&user.RoleNames)); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update user tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET username = $2, email = $3, password_hash = $4
		WHERE id = $1
	`, user.ID, user.Username, nullable(user.Email), user.PasswordHash)
	if err != nil {
		return translatePQ("update user", err)
	}
	if err := requireRow(res, "update user"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
		return fmt.Errorf("clear user roles: %w", err)
	}
	if err := replaceUserRoles(ctx, tx, user.ID, user.RoleNames); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res, "delete user")
}

func (s *PostgresStore) CreateRole(ctx context.Context, role Role) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create role tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO roles (id, name, description)
		VALUES ($1, $2, $3)
	`, role.ID, role.Name, nullable(role.Description))
	if err != nil {
		return translatePQ("insert role", err)
	}
	for _, perm := range role.PermissionNames {
		if err := grantTx(ctx, tx, role.Name, perm); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, COALESCE(r.description, ''),
		       COALESCE(array_agg(rp.permission_name) FILTER (WHERE rp.permission_name IS NOT NULL), '{}')
		FROM roles r
		LEFT JOIN role_permissions rp ON rp.role_name = r.name
		GROUP BY r.id, r.name, r.description
		ORDER BY r.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, pq.Array(&role.PermissionNames)); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateRole(ctx context.Context, role Role) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update role tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE roles SET name = $2, description = $3 WHERE id = $1
	`, role.ID, role.Name, nullable(role.Description))
	if err != nil {
		return translatePQ("update role", err)
	}
	if err := requireRow(res, "update role"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_name = $1`, role.Name); err != nil {
		return fmt.Errorf("clear role grants: %w", err)
	}
	for _, perm := range role.PermissionNames {
		if err := grantTx(ctx, tx, role.Name, perm); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) DeleteRole(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return requireRow(res, "delete role")
}

func (s *PostgresStore) CreatePermission(ctx context.Context, permission Permission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO permissions (id, name, description)
		VALUES ($1, $2, $3)
	`, permission.ID, permission.Name, nullable(permission.Description))
	if err != nil {
		return translatePQ("insert permission", err)
	}
	return nil
}

func (s *PostgresStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, '') FROM permissions ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var out []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		out = append(out, perm)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdatePermission(ctx context.Context, permission Permission) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE permissions SET name = $2, description = $3 WHERE id = $1
	`, permission.ID, permission.Name, nullable(permission.Description))
	if err != nil {
		return translatePQ("update permission", err)
	}
	return requireRow(res, "update permission")
}

func (s *PostgresStore) DeletePermission(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return requireRow(res, "delete permission")
}

func (s *PostgresStore) GrantPermission(ctx context.Context, roleName, permissionName string) error {
	return grantTx(ctx, s.db, roleName, permissionName)
}

func (s *PostgresStore) CreateResource(ctx context.Context, resource Resource) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create resource tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resources (id, path, description)
		VALUES ($1, $2, $3)
	`, resource.ID, resource.Path, nullable(resource.Description))
	if err != nil {
		return translatePQ("insert resource", err)
	}
	for _, perm := range resource.PermissionNames {
		if err := linkTx(ctx, tx, perm, resource.Path); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListResources(ctx context.Context) ([]Resource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.path, COALESCE(r.description, ''),
		       COALESCE(array_agg(rp.permission_name) FILTER (WHERE rp.permission_name IS NOT NULL), '{}')
		FROM resources r
		LEFT JOIN resource_permissions rp ON rp.resource_path = r.path
		GROUP BY r.id, r.path, r.description
		ORDER BY r.path
	`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []Resource
	for rows.Next() {
		var resource Resource
		if err := rows.Scan(&resource.ID, &resource.Path, &resource.Description, pq.Array(&resource.PermissionNames)); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, resource)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateResource(ctx context.Context, resource Resource) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE resources SET path = $2, description = $3 WHERE id = $1
	`, resource.ID, resource.Path, nullable(resource.Description))
	if err != nil {
		return translatePQ("update resource", err)
	}
	return requireRow(res, "update resource")
}

func (s *PostgresStore) DeleteResource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return requireRow(res, "delete resource")
}

func (s *PostgresStore) LinkResource(ctx context.Context, permissionName, resourcePath string) error {
	return linkTx(ctx, s.db, permissionName, resourcePath)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func replaceUserRoles(ctx context.Context, tx execer, userID string, roleNames []string) error {
	for _, role := range roleNames {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_name)
			VALUES ($1, $2)
			ON CONFLICT (user_id, role_name) DO NOTHING
		`, userID, role)
		if err != nil {
			return translatePQ("assign role", err)
		}
	}
	return nil
}

func grantTx(ctx context.Context, tx execer, roleName, permissionName string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO role_permissions (role_name, permission_name)
		VALUES ($1, $2)
		ON CONFLICT (role_name, permission_name) DO NOTHING
	`, roleName, permissionName)
	if err != nil {
		return translatePQ("grant permission", err)
	}
	return nil
}

func linkTx(ctx context.Context, tx execer, permissionName, resourcePath string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO resource_permissions (resource_path, permission_name)
		VALUES ($1, $2)
		ON CONFLICT (resource_path, permission_name) DO NOTHING
	`, resourcePath, permissionName)
	if err != nil {
		return translatePQ("link resource", err)
	}
	return nil
}

// translatePQ maps constraint violations onto the store sentinels: unique
// violations are conflicts, foreign-key violations mean a referenced entity
// does not exist.
func translatePQ(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return sentinel.ErrConflict
		case "23503":
			return sentinel.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
