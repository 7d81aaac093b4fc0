package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"access-gate/internal/policy"
	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/platform/sentinel"
	strutil "access-gate/pkg/platform/strings"
)

// Service validates and executes directory mutations. Permission names are
// checked against the closed grammar on every write path; a malformed name
// is rejected before anything is persisted.
type Service struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewService(store Store, logger *slog.Logger, storeTimeout time.Duration) *Service {
	return &Service{
		store:        store,
		logger:       logger.With(slog.String("component", "directory")),
		storeTimeout: storeTimeout,
	}
}

// CreateUserInput carries the provisioning fields for a new user.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	RoleNames []string
}

func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	if input.Username == "" {
		return User{}, dErrors.New(dErrors.CodeBadRequest, "username is required")
	}
	user := User{
		ID:        uuid.NewString(),
		Username:  input.Username,
		Email:     input.Email,
		RoleNames: strutil.DedupeAndTrim(input.RoleNames),
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
		}
		user.PasswordHash = string(hash)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.CreateUser(ctx, user); err != nil {
		return User{}, translate(err, "user")
	}
	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// UpdateUserInput carries partial user updates; nil fields keep the current
// value.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	Password  *string
	RoleNames []string
}

func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return User{}, translate(err, "user")
	}
	if input.Username != nil {
		if *input.Username == "" {
			return User{}, dErrors.New(dErrors.CodeBadRequest, "username is required")
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
		}
		user.PasswordHash = string(hash)
	}
	if input.RoleNames != nil {
		user.RoleNames = strutil.DedupeAndTrim(input.RoleNames)
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return User{}, translate(err, "user")
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return User{}, translate(err, "user")
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, translate(err, "user")
	}
	return users, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return translate(err, "user")
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// CreateRoleInput carries the fields for a new role.
type CreateRoleInput struct {
	Name            string
	Description     string
	PermissionNames []string
}

func (s *Service) CreateRole(ctx context.Context, input CreateRoleInput) (Role, error) {
	if input.Name == "" {
		return Role{}, dErrors.New(dErrors.CodeBadRequest, "role name is required")
	}
	role := Role{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Description:     input.Description,
		PermissionNames: strutil.DedupeAndTrim(input.PermissionNames),
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.CreateRole(ctx, role); err != nil {
		return Role{}, translate(err, "role")
	}
	return role, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, translate(err, "role")
	}
	return roles, nil
}

func (s *Service) UpdateRole(ctx context.Context, role Role) (Role, error) {
	if role.Name == "" {
		return Role{}, dErrors.New(dErrors.CodeBadRequest, "role name is required")
	}
	role.PermissionNames = strutil.DedupeAndTrim(role.PermissionNames)

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.UpdateRole(ctx, role); err != nil {
		return Role{}, translate(err, "role")
	}
	return role, nil
}

func (s *Service) DeleteRole(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.DeleteRole(ctx, id); err != nil {
		return translate(err, "role")
	}
	return nil
}

// CreatePermissionInput carries the fields for a new permission.
type CreatePermissionInput struct {
	Name        string
	Description string
}

func (s *Service) CreatePermission(ctx context.Context, input CreatePermissionInput) (Permission, error) {
	if err := policy.ValidatePermissionName(input.Name); err != nil {
		return Permission{}, err
	}
	permission := Permission{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.CreatePermission(ctx, permission); err != nil {
		return Permission{}, translate(err, "permission")
	}
	return permission, nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	permissions, err := s.store.ListPermissions(ctx)
	if err != nil {
		return nil, translate(err, "permission")
	}
	return permissions, nil
}

func (s *Service) UpdatePermission(ctx context.Context, permission Permission) (Permission, error) {
	if err := policy.ValidatePermissionName(permission.Name); err != nil {
		return Permission{}, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.UpdatePermission(ctx, permission); err != nil {
		return Permission{}, translate(err, "permission")
	}
	return permission, nil
}

func (s *Service) DeletePermission(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.DeletePermission(ctx, id); err != nil {
		return translate(err, "permission")
	}
	return nil
}

func (s *Service) GrantPermission(ctx context.Context, roleName, permissionName string) error {
	if roleName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "role name is required")
	}
	if err := policy.ValidatePermissionName(permissionName); err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.GrantPermission(ctx, roleName, permissionName); err != nil {
		return translate(err, "grant")
	}
	return nil
}

// CreateResourceInput carries the fields for a new resource.
type CreateResourceInput struct {
	Path            string
	Description     string
	PermissionNames []string
}

func (s *Service) CreateResource(ctx context.Context, input CreateResourceInput) (Resource, error) {
	path, err := normalizePath(input.Path)
	if err != nil {
		return Resource{}, err
	}
	resource := Resource{
		ID:              uuid.NewString(),
		Path:            path,
		Description:     input.Description,
		PermissionNames: strutil.DedupeAndTrim(input.PermissionNames),
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.CreateResource(ctx, resource); err != nil {
		return Resource{}, translate(err, "resource")
	}
	return resource, nil
}

func (s *Service) ListResources(ctx context.Context) ([]Resource, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	resources, err := s.store.ListResources(ctx)
	if err != nil {
		return nil, translate(err, "resource")
	}
	return resources, nil
}

func (s *Service) UpdateResource(ctx context.Context, resource Resource) (Resource, error) {
	path, err := normalizePath(resource.Path)
	if err != nil {
		return Resource{}, err
	}
	resource.Path = path

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.UpdateResource(ctx, resource); err != nil {
		return Resource{}, translate(err, "resource")
	}
	return resource, nil
}

func (s *Service) DeleteResource(ctx context.Context, id string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.DeleteResource(ctx, id); err != nil {
		return translate(err, "resource")
	}
	return nil
}

// LinkResource attaches a permission to the resource it protects.
func (s *Service) LinkResource(ctx context.Context, permissionName, resourcePath string) error {
	if err := policy.ValidatePermissionName(permissionName); err != nil {
		return err
	}
	path, err := normalizePath(resourcePath)
	if err != nil {
		return err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()
	if err := s.store.LinkResource(ctx, permissionName, path); err != nil {
		return translate(err, "link")
	}
	return nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// normalizePath enforces the leading-slash form and strips a trailing slash.
func normalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "resource path is required")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path, nil
}

func translate(err error, entity string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, entity+" already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "directory store failure")
	}
}
