// Package handler exposes the directory CRUD surface. Routes mirror the
// administrative dashboard: users, roles, permissions, resources, and
// tracked addresses.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"access-gate/internal/directory"
	"access-gate/internal/iptracker"
	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/platform/httputil"
	"access-gate/pkg/platform/sentinel"
)

// Handler wires directory endpoints to the directory service and the IP
// tracker store.
type Handler struct {
	service *directory.Service
	ips     iptracker.Store
	logger  *slog.Logger
}

func New(service *directory.Service, ips iptracker.Store, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		ips:     ips,
		logger:  logger,
	}
}

// Register mounts the directory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.HandleListUsers)
		r.Post("/", h.HandleCreateUser)
		r.Get("/{id}", h.HandleGetUser)
		r.Put("/{id}", h.HandleUpdateUser)
		r.Delete("/{id}", h.HandleDeleteUser)
		r.Get("/{id}/ips", h.HandleUserIPs)
	})
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.HandleListRoles)
		r.Post("/", h.HandleCreateRole)
		r.Put("/{id}", h.HandleUpdateRole)
		r.Delete("/{id}", h.HandleDeleteRole)
	})
	r.Route("/permissions", func(r chi.Router) {
		r.Get("/", h.HandleListPermissions)
		r.Post("/", h.HandleCreatePermission)
		r.Put("/{id}", h.HandleUpdatePermission)
		r.Delete("/{id}", h.HandleDeletePermission)
		r.Post("/{name}/resource", h.HandleAssignResource)
	})
	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.HandleListResources)
		r.Post("/", h.HandleCreateResource)
		r.Put("/{id}", h.HandleUpdateResource)
		r.Delete("/{id}", h.HandleDeleteResource)
	})
	r.Route("/ips", func(r chi.Router) {
		r.Get("/", h.HandleListIPs)
		r.Post("/", h.HandleCreateIP)
		r.Put("/{address}", h.HandleUpdateIP)
		r.Delete("/{address}", h.HandleDeleteIP)
	})
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}
	user, err := h.service.CreateUser(r.Context(), directory.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		RoleNames: req.Roles,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[UpdateUserRequest](w, r, h.logger)
	if !ok {
		return
	}
	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), directory.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		RoleNames: req.Roles,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) HandleUserIPs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.service.GetUser(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.ips.AddressesFor(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "list identity addresses"))
		return
	}
	if records == nil {
		records = []iptracker.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ips": records})
}

func (h *Handler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateRoleRequest](w, r, h.logger)
	if !ok {
		return
	}
	role, err := h.service.CreateRole(r.Context(), directory.CreateRoleInput{
		Name:            req.Name,
		Description:     req.Description,
		PermissionNames: req.Permissions,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[UpdateRoleRequest](w, r, h.logger)
	if !ok {
		return
	}
	role, err := h.service.UpdateRole(r.Context(), directory.Role{
		ID:              chi.URLParam(r, "id"),
		Name:            req.Name,
		Description:     req.Description,
		PermissionNames: req.Permissions,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) HandleDeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) HandleListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.service.ListPermissions(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"permissions": permissions})
}

func (h *Handler) HandleCreatePermission(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreatePermissionRequest](w, r, h.logger)
	if !ok {
		return
	}
	permission, err := h.service.CreatePermission(r.Context(), directory.CreatePermissionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, permission)
}

func (h *Handler) HandleUpdatePermission(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[UpdatePermissionRequest](w, r, h.logger)
	if !ok {
		return
	}
	permission, err := h.service.UpdatePermission(r.Context(), directory.Permission{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, permission)
}

func (h *Handler) HandleDeletePermission(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePermission(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) HandleAssignResource(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[AssignResourceRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.LinkResource(r.Context(), chi.URLParam(r, "name"), req.ResourcePath); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) HandleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.service.ListResources(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"resources": resources})
}

func (h *Handler) HandleCreateResource(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateResourceRequest](w, r, h.logger)
	if !ok {
		return
	}
	resource, err := h.service.CreateResource(r.Context(), directory.CreateResourceInput{
		Path:            req.Path,
		Description:     req.Description,
		PermissionNames: req.Permissions,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resource)
}

func (h *Handler) HandleUpdateResource(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[UpdateResourceRequest](w, r, h.logger)
	if !ok {
		return
	}
	resource, err := h.service.UpdateResource(r.Context(), directory.Resource{
		ID:          chi.URLParam(r, "id"),
		Path:        req.Path,
		Description: req.Description,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resource)
}

func (h *Handler) HandleDeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteResource(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) HandleListIPs(w http.ResponseWriter, r *http.Request) {
	records, err := h.ips.List(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "list addresses"))
		return
	}
	if records == nil {
		records = []iptracker.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ips": records})
}

func (h *Handler) HandleCreateIP(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateIPRequest](w, r, h.logger)
	if !ok {
		return
	}
	rec := iptracker.Record{
		Address:    req.Address,
		Suspicious: req.Suspicious,
	}
	if req.UserID != "" {
		rec.IdentityIDs = []string{req.UserID}
	}
	if err := h.ips.Upsert(r.Context(), rec); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "upsert address"))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) HandleUpdateIP(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[UpdateIPRequest](w, r, h.logger)
	if !ok {
		return
	}
	rec := iptracker.Record{
		Address:    chi.URLParam(r, "address"),
		Suspicious: req.Suspicious,
	}
	if err := h.ips.Upsert(r.Context(), rec); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "update address"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleDeleteIP(w http.ResponseWriter, r *http.Request) {
	err := h.ips.Remove(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, translateIPErr(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func translateIPErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "address not found")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "remove address")
}
