// Package audit is the append-only trail of access decisions.
//
// Attempts reference identity, resource, and address by value, never by live
// pointer: a record must stay meaningful after the entity it names is
// deleted. Appended records are never edited by this package; deletion is an
// administrative maintenance action outside its contract.
package audit

import (
	"strings"
	"time"
)

// Status is the verdict recorded for one evaluated request.
type Status string

const (
	StatusAuthorized Status = "AUTHORIZED"
	StatusRefused    Status = "REFUSED"
	StatusSuspicious Status = "SUSPICIOUS"
)

// Attempt is one immutable audit record. Identity fields are empty for
// unauthenticated requests.
type Attempt struct {
	ID           string
	Timestamp    time.Time
	IdentityID   string
	Username     string
	ResourcePath string
	IPAddress    string
	UserAgent    string
	Status       Status
	Reason       string
}

// Filter narrows a query. Zero-valued fields match everything.
type Filter struct {
	IdentityID string
	Status     Status
	IPAddress  string
	// ResourceContains is a substring match on the resource path.
	ResourceContains string
}

// Matches reports whether the attempt satisfies every set filter field.
func (f Filter) Matches(a Attempt) bool {
	if f.IdentityID != "" && a.IdentityID != f.IdentityID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.IPAddress != "" && a.IPAddress != f.IPAddress {
		return false
	}
	if f.ResourceContains != "" && !strings.Contains(a.ResourcePath, f.ResourceContains) {
		return false
	}
	return true
}

// Page is one window of a filtered query. Total counts every record matching
// the filter, independent of the window.
type Page struct {
	Records []Attempt
	Total   int
}
