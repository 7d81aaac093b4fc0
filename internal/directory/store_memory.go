package directory

import (
	"context"
	"sort"
	"sync"

	"access-gate/pkg/platform/sentinel"
)

// InMemoryStore keeps the directory graph in maps with explicit adjacency
// sets. It backs deployments without a database and all unit tests.
type InMemoryStore struct {
	mu sync.RWMutex

	users     map[string]User // by id
	userIDs   map[string]string
	roles     map[string]Role // by id
	roleIDs   map[string]string
	perms     map[string]Permission // by id
	permIDs   map[string]string
	resources map[string]Resource // by id
	pathIDs   map[string]string

	// roleGrants is the Role -> Permission adjacency keyed by role name.
	roleGrants map[string]map[string]struct{}
	// resourceLinks is the Permission -> Resource adjacency keyed by
	// resource path.
	resourceLinks map[string]map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:         make(map[string]User),
		userIDs:       make(map[string]string),
		roles:         make(map[string]Role),
		roleIDs:       make(map[string]string),
		perms:         make(map[string]Permission),
		permIDs:       make(map[string]string),
		resources:     make(map[string]Resource),
		pathIDs:       make(map[string]string),
		roleGrants:    make(map[string]map[string]struct{}),
		resourceLinks: make(map[string]map[string]struct{}),
	}
}

func (s *InMemoryStore) RoleGrants(_ context.Context, roleNames []string, permission string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, role := range roleNames {
		if _, ok := s.roleGrants[role][permission]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) CreateUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.userIDs[user.Username]; exists {
		return sentinel.ErrConflict
	}
	for _, role := range user.RoleNames {
		if _, ok := s.roleIDs[role]; !ok {
			return sentinel.ErrNotFound
		}
	}
	s.users[user.ID] = user
	s.userIDs[user.Username] = user.ID
	return nil
}

func (s *InMemoryStore) GetUser(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (s *InMemoryStore) ListUsers(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *InMemoryStore) UpdateUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if other, taken := s.userIDs[user.Username]; taken && other != user.ID {
		return sentinel.ErrConflict
	}
	for _, role := range user.RoleNames {
		if _, ok := s.roleIDs[role]; !ok {
			return sentinel.ErrNotFound
		}
	}
	delete(s.userIDs, current.Username)
	s.users[user.ID] = user
	s.userIDs[user.Username] = user.ID
	return nil
}

func (s *InMemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.userIDs, user.Username)
	delete(s.users, id)
	return nil
}

func (s *InMemoryStore) CreateRole(_ context.Context, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.roleIDs[role.Name]; exists {
		return sentinel.ErrConflict
	}
	grants := make(map[string]struct{}, len(role.PermissionNames))
	for _, perm := range role.PermissionNames {
		if _, ok := s.permIDs[perm]; !ok {
			return sentinel.ErrNotFound
		}
		grants[perm] = struct{}{}
	}
	s.roles[role.ID] = role
	s.roleIDs[role.Name] = role.ID
	s.roleGrants[role.Name] = grants
	return nil
}

func (s *InMemoryStore) ListRoles(_ context.Context) ([]Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Role, 0, len(s.roles))
	for _, role := range s.roles {
		role.PermissionNames = sortedKeys(s.roleGrants[role.Name])
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) UpdateRole(_ context.Context, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.roles[role.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if other, taken := s.roleIDs[role.Name]; taken && other != role.ID {
		return sentinel.ErrConflict
	}
	grants := make(map[string]struct{}, len(role.PermissionNames))
	for _, perm := range role.PermissionNames {
		if _, ok := s.permIDs[perm]; !ok {
			return sentinel.ErrNotFound
		}
		grants[perm] = struct{}{}
	}

	if current.Name != role.Name {
		// Rekey adjacency and held-role references under the new name.
		delete(s.roleIDs, current.Name)
		delete(s.roleGrants, current.Name)
		for id, user := range s.users {
			for i, name := range user.RoleNames {
				if name == current.Name {
					user.RoleNames[i] = role.Name
				}
			}
			s.users[id] = user
		}
	}
	s.roles[role.ID] = role
	s.roleIDs[role.Name] = role.ID
	s.roleGrants[role.Name] = grants
	return nil
}

func (s *InMemoryStore) DeleteRole(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.roleIDs, role.Name)
	delete(s.roleGrants, role.Name)
	delete(s.roles, id)
	for uid, user := range s.users {
		kept := user.RoleNames[:0]
		for _, name := range user.RoleNames {
			if name != role.Name {
				kept = append(kept, name)
			}
		}
		user.RoleNames = kept
		s.users[uid] = user
	}
	return nil
}

func (s *InMemoryStore) CreatePermission(_ context.Context, permission Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.permIDs[permission.Name]; exists {
		return sentinel.ErrConflict
	}
	s.perms[permission.ID] = permission
	s.permIDs[permission.Name] = permission.ID
	return nil
}

func (s *InMemoryStore) ListPermissions(_ context.Context) ([]Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Permission, 0, len(s.perms))
	for _, perm := range s.perms {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) UpdatePermission(_ context.Context, permission Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.perms[permission.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if other, taken := s.permIDs[permission.Name]; taken && other != permission.ID {
		return sentinel.ErrConflict
	}
	if current.Name != permission.Name {
		delete(s.permIDs, current.Name)
		for role, grants := range s.roleGrants {
			if _, held := grants[current.Name]; held {
				delete(grants, current.Name)
				grants[permission.Name] = struct{}{}
				s.roleGrants[role] = grants
			}
		}
		for path, links := range s.resourceLinks {
			if _, held := links[current.Name]; held {
				delete(links, current.Name)
				links[permission.Name] = struct{}{}
				s.resourceLinks[path] = links
			}
		}
	}
	s.perms[permission.ID] = permission
	s.permIDs[permission.Name] = permission.ID
	return nil
}

func (s *InMemoryStore) DeletePermission(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	perm, ok := s.perms[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.permIDs, perm.Name)
	delete(s.perms, id)
	for _, grants := range s.roleGrants {
		delete(grants, perm.Name)
	}
	for _, links := range s.resourceLinks {
		delete(links, perm.Name)
	}
	return nil
}

func (s *InMemoryStore) GrantPermission(_ context.Context, roleName, permissionName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roleIDs[roleName]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.permIDs[permissionName]; !ok {
		return sentinel.ErrNotFound
	}
	if s.roleGrants[roleName] == nil {
		s.roleGrants[roleName] = make(map[string]struct{})
	}
	s.roleGrants[roleName][permissionName] = struct{}{}
	return nil
}

func (s *InMemoryStore) CreateResource(_ context.Context, resource Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pathIDs[resource.Path]; exists {
		return sentinel.ErrConflict
	}
	links := make(map[string]struct{}, len(resource.PermissionNames))
	for _, perm := range resource.PermissionNames {
		if _, ok := s.permIDs[perm]; !ok {
			return sentinel.ErrNotFound
		}
		links[perm] = struct{}{}
	}
	s.resources[resource.ID] = resource
	s.pathIDs[resource.Path] = resource.ID
	s.resourceLinks[resource.Path] = links
	return nil
}

func (s *InMemoryStore) ListResources(_ context.Context) ([]Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		resource.PermissionNames = sortedKeys(s.resourceLinks[resource.Path])
		out = append(out, resource)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *InMemoryStore) UpdateResource(_ context.Context, resource Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.resources[resource.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if other, taken := s.pathIDs[resource.Path]; taken && other != resource.ID {
		return sentinel.ErrConflict
	}
	if current.Path != resource.Path {
		delete(s.pathIDs, current.Path)
		s.resourceLinks[resource.Path] = s.resourceLinks[current.Path]
		delete(s.resourceLinks, current.Path)
	}
	s.resources[resource.ID] = resource
	s.pathIDs[resource.Path] = resource.ID
	return nil
}

func (s *InMemoryStore) DeleteResource(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resource, ok := s.resources[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.pathIDs, resource.Path)
	delete(s.resourceLinks, resource.Path)
	delete(s.resources, id)
	return nil
}

func (s *InMemoryStore) LinkResource(_ context.Context, permissionName, resourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permIDs[permissionName]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.pathIDs[resourcePath]; !ok {
		return sentinel.ErrNotFound
	}
	if s.resourceLinks[resourcePath] == nil {
		s.resourceLinks[resourcePath] = make(map[string]struct{})
	}
	s.resourceLinks[resourcePath][permissionName] = struct{}{}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
