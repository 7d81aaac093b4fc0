package directory

import "context"

// Store persists the directory graph. Adjacency is kept in join collections
// keyed by stable identifiers, never live pointers.
//
// Uniqueness violations return sentinel.ErrConflict; missing entities return
// sentinel.ErrNotFound. The service layer translates both.
type Store interface {
	// RoleGrants is the policy read surface: it reports whether any of the
	// named roles has an edge to the named permission.
	RoleGrants(ctx context.Context, roleNames []string, permission string) (bool, error)

	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error

	CreateRole(ctx context.Context, role Role) error
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRole(ctx context.Context, role Role) error
	DeleteRole(ctx context.Context, id string) error

	CreatePermission(ctx context.Context, permission Permission) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	UpdatePermission(ctx context.Context, permission Permission) error
	DeletePermission(ctx context.Context, id string) error
	// GrantPermission adds a role -> permission edge. Idempotent.
	GrantPermission(ctx context.Context, roleName, permissionName string) error

	CreateResource(ctx context.Context, resource Resource) error
	ListResources(ctx context.Context) ([]Resource, error)
	UpdateResource(ctx context.Context, resource Resource) error
	DeleteResource(ctx context.Context, id string) error
	// LinkResource adds a permission -> resource edge. Idempotent.
	LinkResource(ctx context.Context, permissionName, resourcePath string) error
}
