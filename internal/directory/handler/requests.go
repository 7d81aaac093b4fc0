package handler

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Absent fields keep the
// current value.
type UpdateUserRequest struct {
	Username *string  `json:"username"`
	Email    *string  `json:"email" validate:"omitempty"`
	Password *string  `json:"password"`
	Roles    []string `json:"roles"`
}

// CreateRoleRequest is the body of POST /roles.
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleRequest is the body of PUT /roles/{id}.
type UpdateRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// CreatePermissionRequest is the body of POST /permissions.
type CreatePermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdatePermissionRequest is the body of PUT /permissions/{id}.
type UpdatePermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// AssignResourceRequest is the body of POST /permissions/{name}/resource.
type AssignResourceRequest struct {
	ResourcePath string `json:"resourcePath" validate:"required"`
}

// CreateResourceRequest is the body of POST /resources.
type CreateResourceRequest struct {
	Path        string   `json:"path" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// UpdateResourceRequest is the body of PUT /resources/{id}.
type UpdateResourceRequest struct {
	Path        string `json:"path" validate:"required"`
	Description string `json:"description"`
}

// CreateIPRequest is the body of POST /ips.
type CreateIPRequest struct {
	Address    string `json:"address" validate:"required,ip"`
	Suspicious bool   `json:"isSuspicious"`
	UserID     string `json:"userId"`
}

// UpdateIPRequest is the body of PUT /ips/{address}.
type UpdateIPRequest struct {
	Suspicious bool `json:"isSuspicious"`
}
