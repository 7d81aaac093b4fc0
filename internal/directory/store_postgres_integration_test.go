//go:build integration

package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"access-gate/internal/directory"
	"access-gate/pkg/platform/sentinel"
	"access-gate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *directory.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = directory.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx, "users", "roles", "permissions", "resources")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedGraph() {
	s.Require().NoError(s.store.CreatePermission(s.ctx, directory.Permission{
		ID: uuid.NewString(), Name: "READ_DASHBOARD",
	}))
	s.Require().NoError(s.store.CreateRole(s.ctx, directory.Role{
		ID: uuid.NewString(), Name: "ANALYST", PermissionNames: []string{"READ_DASHBOARD"},
	}))
}

func (s *PostgresStoreSuite) TestRoleGrants() {
	s.seedGraph()

	granted, err := s.store.RoleGrants(s.ctx, []string{"ANALYST"}, "READ_DASHBOARD")
	s.Require().NoError(err)
	s.True(granted)

	granted, err = s.store.RoleGrants(s.ctx, []string{"ANALYST"}, "WRITE_SETTINGS")
	s.Require().NoError(err)
	s.False(granted)

	granted, err = s.store.RoleGrants(s.ctx, []string{"VIEWER", "ANALYST"}, "READ_DASHBOARD")
	s.Require().NoError(err)
	s.True(granted, "any role in the set may carry the grant")
}

func (s *PostgresStoreSuite) TestUserRoundTrip() {
	s.seedGraph()

	user := directory.User{
		ID:           uuid.NewString(),
		Username:     "casey",
		Email:        "casey@example.com",
		PasswordHash: "hash",
		RoleNames:    []string{"ANALYST"},
	}
	s.Require().NoError(s.store.CreateUser(s.ctx, user))

	got, err := s.store.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user.Username, got.Username)
	s.Equal(user.Email, got.Email)
	s.Equal([]string{"ANALYST"}, got.RoleNames)
}

func (s *PostgresStoreSuite) TestDuplicateUsernameIsConflict() {
	user := directory.User{ID: uuid.NewString(), Username: "casey"}
	s.Require().NoError(s.store.CreateUser(s.ctx, user))

	err := s.store.CreateUser(s.ctx, directory.User{ID: uuid.NewString(), Username: "casey"})
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUnknownRoleReferenceIsNotFound() {
	err := s.store.CreateUser(s.ctx, directory.User{
		ID: uuid.NewString(), Username: "casey", RoleNames: []string{"GHOST"},
	})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteRoleCascadesGrants() {
	s.seedGraph()

	roles, err := s.store.ListRoles(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(roles, 1)

	s.Require().NoError(s.store.DeleteRole(s.ctx, roles[0].ID))

	granted, err := s.store.RoleGrants(s.ctx, []string{"ANALYST"}, "READ_DASHBOARD")
	s.Require().NoError(err)
	s.False(granted)
}

func (s *PostgresStoreSuite) TestRenameRoleFollowsGrants() {
	s.seedGraph()

	roles, err := s.store.ListRoles(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(roles, 1)

	renamed := roles[0]
	renamed.Name = "SENIOR_ANALYST"
	s.Require().NoError(s.store.UpdateRole(s.ctx, renamed))

	granted, err := s.store.RoleGrants(s.ctx, []string{"SENIOR_ANALYST"}, "READ_DASHBOARD")
	s.Require().NoError(err)
	s.True(granted)
}

func (s *PostgresStoreSuite) TestResourceLinks() {
	s.seedGraph()
	s.Require().NoError(s.store.CreateResource(s.ctx, directory.Resource{
		ID: uuid.NewString(), Path: "/dashboard", PermissionNames: []string{"READ_DASHBOARD"},
	}))

	resources, err := s.store.ListResources(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(resources, 1)
	s.Equal([]string{"READ_DASHBOARD"}, resources[0].PermissionNames)

	err = s.store.LinkResource(s.ctx, "GHOST_PERMISSION", "/dashboard")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
