package directory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	dErrors "access-gate/pkg/domain-errors"
)

type DirectoryServiceSuite struct {
	suite.Suite
	store   *InMemoryStore
	service *Service
	ctx     context.Context
}

func TestDirectoryServiceSuite(t *testing.T) {
	suite.Run(t, new(DirectoryServiceSuite))
}

func (s *DirectoryServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store, logger, 2*time.Second)
	s.ctx = context.Background()
}

func (s *DirectoryServiceSuite) TestCreatePermissionGrammar() {
	s.Run("well-formed name is accepted", func() {
		perm, err := s.service.CreatePermission(s.ctx, CreatePermissionInput{Name: "READ_DASHBOARD"})
		s.Require().NoError(err)
		s.NotEmpty(perm.ID)
	})

	s.Run("camel case is rejected and nothing persists", func() {
		_, err := s.service.CreatePermission(s.ctx, CreatePermissionInput{Name: "readDashboard"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		perms, listErr := s.service.ListPermissions(s.ctx)
		s.Require().NoError(listErr)
		s.Len(perms, 1)
	})

	s.Run("unknown action is rejected", func() {
		_, err := s.service.CreatePermission(s.ctx, CreatePermissionInput{Name: "VIEW_DASHBOARD"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("duplicate name conflicts", func() {
		_, err := s.service.CreatePermission(s.ctx, CreatePermissionInput{Name: "READ_DASHBOARD"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *DirectoryServiceSuite) TestCreateUserHashesPassword() {
	user, err := s.service.CreateUser(s.ctx, CreateUserInput{
		Username: "alice",
		Password: "s3cret-passphrase",
	})
	s.Require().NoError(err)
	s.NotEqual("s3cret-passphrase", user.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-passphrase")))
}

func (s *DirectoryServiceSuite) TestCreateUserRequiresUsername() {
	_, err := s.service.CreateUser(s.ctx, CreateUserInput{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *DirectoryServiceSuite) TestUpdateUserPartial() {
	user, err := s.service.CreateUser(s.ctx, CreateUserInput{Username: "alice", Email: "alice@example.com"})
	s.Require().NoError(err)

	email := "new@example.com"
	updated, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{Email: &email})
	s.Require().NoError(err)
	s.Equal("alice", updated.Username)
	s.Equal("new@example.com", updated.Email)
}

func (s *DirectoryServiceSuite) TestResourcePathNormalization() {
	s.Run("missing leading slash is added", func() {
		resource, err := s.service.CreateResource(s.ctx, CreateResourceInput{Path: "reports"})
		s.Require().NoError(err)
		s.Equal("/reports", resource.Path)
	})

	s.Run("trailing slash is stripped", func() {
		resource, err := s.service.CreateResource(s.ctx, CreateResourceInput{Path: "/archive/"})
		s.Require().NoError(err)
		s.Equal("/archive", resource.Path)
	})

	s.Run("empty path is rejected", func() {
		_, err := s.service.CreateResource(s.ctx, CreateResourceInput{Path: "   "})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *DirectoryServiceSuite) TestLinkResourceValidatesBothEnds() {
	_, err := s.service.CreatePermission(s.ctx, CreatePermissionInput{Name: "READ_REPORTS"})
	s.Require().NoError(err)
	_, err = s.service.CreateResource(s.ctx, CreateResourceInput{Path: "/reports"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.LinkResource(s.ctx, "READ_REPORTS", "reports"))

	err = s.service.LinkResource(s.ctx, "badName", "/reports")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	err = s.service.LinkResource(s.ctx, "READ_REPORTS", "/missing")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DirectoryServiceSuite) TestGrantPermissionValidation() {
	_, err := s.service.CreatePermission(s.ctx, CreatePermissionInput{Name: "READ_REPORTS"})
	s.Require().NoError(err)
	_, err = s.service.CreateRole(s.ctx, CreateRoleInput{Name: "ANALYST"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.GrantPermission(s.ctx, "ANALYST", "READ_REPORTS"))

	err = s.service.GrantPermission(s.ctx, "", "READ_REPORTS")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	err = s.service.GrantPermission(s.ctx, "ANALYST", "not-a-permission")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
