package pathclass

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClassifierSuite struct {
	suite.Suite
	classifier *Classifier
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierSuite))
}

func (s *ClassifierSuite) SetupTest() {
	s.classifier = MustNew(DefaultPermissionTable())
}

func (s *ClassifierSuite) TestPublicPaths() {
	public := []string{
		"/",
		"/health",
		"/healthz",
		"/status",
		"/metrics",
		"/favicon.ico",
		"/auth/login",
		"/login",
		"/register",
		"/static/app.css",
		"/assets/logo.png",
		"/images/banner.jpg",
		"/docs/api",
		"/api-docs",
		"/public/terms",
	}
	for _, path := range public {
		s.Run(path, func() {
			cls := s.classifier.Classify(http.MethodGet, path)
			s.True(cls.IsPublic)
			s.Empty(cls.RequiredPermission)
		})
	}
}

func (s *ClassifierSuite) TestProtectedPaths() {
	cases := map[string]string{
		"/dashboard":         "READ_DASHBOARD",
		"/dashboard/widgets": "READ_DASHBOARD",
		"/users":             "READ_USERS",
		"/users/42":          "READ_USERS",
		"/roles":             "READ_ROLES",
		"/permissions":       "READ_PERMISSIONS",
		"/resources":         "READ_RESOURCES",
		"/ips":               "READ_IPS",
		"/access-attempts":   "READ_ACCESS_ATTEMPTS",
		"/access/attempts":   "READ_ACCESS_ATTEMPTS",
		"/graph":             "READ_GRAPH",
		"/profile":           "READ_PROFILE",
		"/settings":          "WRITE_SETTINGS",
		"/stats/summary":     "READ_DASHBOARD",
	}
	for path, want := range cases {
		s.Run(path, func() {
			cls := s.classifier.Classify(http.MethodGet, path)
			s.False(cls.IsPublic)
			s.Equal(want, cls.RequiredPermission)
		})
	}
}

func (s *ClassifierSuite) TestUnmappedProtectedPathRequiresAuthOnly() {
	cls := s.classifier.Classify(http.MethodGet, "/reports/weekly")
	s.False(cls.IsPublic)
	s.Empty(cls.RequiredPermission)
}

func (s *ClassifierSuite) TestLongestPrefixWins() {
	c := MustNew(map[string]string{
		"/reports":        "READ_REPORTS",
		"/reports/export": "WRITE_REPORTS",
	})
	s.Equal("WRITE_REPORTS", c.Classify(http.MethodGet, "/reports/export/csv").RequiredPermission)
	s.Equal("READ_REPORTS", c.Classify(http.MethodGet, "/reports/weekly").RequiredPermission)
}

func TestNewRejectsMalformedTable(t *testing.T) {
	_, err := New(map[string]string{"/reports": "manageReports"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/reports")

	_, err = New(map[string]string{"reports": "READ_REPORTS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with /")
}

func TestDefaultTableIsValid(t *testing.T) {
	_, err := New(DefaultPermissionTable())
	require.NoError(t, err)
}
