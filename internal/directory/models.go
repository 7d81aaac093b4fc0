// Package directory manages the entities behind the permission graph: users,
// roles, permissions, and resources. It owns all mutation; the decision
// engine only ever reads the graph through the policy surface.
package directory

// User is an identity in the directory. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email,omitempty"`
	PasswordHash string   `json:"-"`
	RoleNames    []string `json:"roles"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	PermissionNames []string `json:"permissions"`
}

// Permission is an ACTION_RESOURCE capability token. Names follow the closed
// grammar enforced by the policy package.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Resource is a protected path, stored normalized with a leading slash.
type Resource struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
	// PermissionNames lists the permissions linked as protecting this
	// resource.
	PermissionNames []string `json:"permissions"`
}
