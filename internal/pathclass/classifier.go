// Package pathclass maps an HTTP method and path to a public/protected
// classification and the permission token the path requires.
//
// The path-to-permission mapping is a closed table validated at startup, not
// a rule that derives names from path segments at request time. Deriving
// names mechanically lets an unanticipated path silently acquire an
// unintended permission; a closed table makes the policy enumerable and
// testable.
package pathclass

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"access-gate/internal/policy"
)

// Classification is the outcome of classifying one request path.
type Classification struct {
	IsPublic bool
	// RequiredPermission is empty when the path only requires
	// authentication. That default is an explicit policy choice: callers
	// needing default-deny must register a mapping.
	RequiredPermission string
}

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	exactPublic    map[string]struct{}
	publicPrefixes []string
	publicPatterns []*regexp.Regexp
	// permissions holds protected path prefixes ordered longest-first so
	// the first prefix hit is the longest match.
	permissions []permissionRule
}

type permissionRule struct {
	prefix     string
	permission string
}

var defaultExactPublic = []string{"/", "/health", "/status", "/favicon.ico"}

var defaultPublicPrefixes = []string{"/auth/", "/static/", "/assets/", "/public/", "/docs/"}

// defaultPublicPatterns covers the prefix set plus root and the auxiliary
// public endpoints (login, register, health probes, API docs, images).
var defaultPublicPatterns = []string{
	`^/$`,
	`^/auth(/.*)?$`,
	`^/login(/.*)?$`,
	`^/register(/.*)?$`,
	`^/health(/.*)?$`,
	`^/status(/.*)?$`,
	`^/static(/.*)?$`,
	`^/assets(/.*)?$`,
	`^/images(/.*)?$`,
	`^/favicon\.ico$`,
	`^/docs(/.*)?$`,
	`^/api-docs(/.*)?$`,
	`^/public(/.*)?$`,
	`^/healthz$`,
	`^/readiness$`,
	`^/metrics$`,
}

// DefaultPermissionTable maps protected path prefixes to the permission each
// one requires. The /admin prefix from the legacy catalog is intentionally
// absent: administrator access is the bypass role, not a permission.
func DefaultPermissionTable() map[string]string {
	return map[string]string{
		"/dashboard":       "READ_DASHBOARD",
		"/users":           "READ_USERS",
		"/roles":           "READ_ROLES",
		"/permissions":     "READ_PERMISSIONS",
		"/resources":       "READ_RESOURCES",
		"/ips":             "READ_IPS",
		"/access-attempts": "READ_ACCESS_ATTEMPTS",
		"/access":          "READ_ACCESS_ATTEMPTS",
		"/graph":           "READ_GRAPH",
		"/profile":         "READ_PROFILE",
		"/settings":        "WRITE_SETTINGS",
		"/stats":           "READ_DASHBOARD",
	}
}

// New builds a classifier over the given permission table, validating every
// entry against the permission-name grammar. A malformed table is a
// programming error surfaced at startup, not at request time.
func New(permissionTable map[string]string) (*Classifier, error) {
	exact := make(map[string]struct{}, len(defaultExactPublic))
	for _, p := range defaultExactPublic {
		exact[p] = struct{}{}
	}

	patterns := make([]*regexp.Regexp, 0, len(defaultPublicPatterns))
	for _, expr := range defaultPublicPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile public path pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}

	rules := make([]permissionRule, 0, len(permissionTable))
	for prefix, permission := range permissionTable {
		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("permission table prefix %q must start with /", prefix)
		}
		if err := policy.ValidatePermissionName(permission); err != nil {
			return nil, fmt.Errorf("permission table entry %q: %w", prefix, err)
		}
		rules = append(rules, permissionRule{prefix: prefix, permission: permission})
	}
	sort.Slice(rules, func(i, j int) bool {
		return len(rules[i].prefix) > len(rules[j].prefix)
	})

	return &Classifier{
		exactPublic:    exact,
		publicPrefixes: append([]string(nil), defaultPublicPrefixes...),
		publicPatterns: patterns,
		permissions:    rules,
	}, nil
}

// MustNew is New for static tables known to be valid.
func MustNew(permissionTable map[string]string) *Classifier {
	c, err := New(permissionTable)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify determines whether the path is public and, if not, which
// permission it requires. Classification is a pure predicate: evaluation
// order across the public rule sets does not matter.
func (c *Classifier) Classify(method, path string) Classification {
	if c.isPublic(path) {
		return Classification{IsPublic: true}
	}
	return Classification{RequiredPermission: c.requiredPermission(path)}
}

func (c *Classifier) isPublic(path string) bool {
	if _, ok := c.exactPublic[path]; ok {
		return true
	}
	for _, prefix := range c.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, re := range c.publicPatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// requiredPermission returns the permission of the longest table prefix that
// is a prefix of path, or "" when no entry matches.
func (c *Classifier) requiredPermission(path string) string {
	for _, rule := range c.permissions {
		if strings.HasPrefix(path, rule.prefix) {
			return rule.permission
		}
	}
	return ""
}
