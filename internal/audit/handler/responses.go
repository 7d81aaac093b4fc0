package handler

import (
	"time"

	"access-gate/internal/audit"
)

// UserRef names the identity an attempt was recorded for, or null when the
// request was unauthenticated.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ResourceRef names the resource path an attempt targeted.
type ResourceRef struct {
	Path string `json:"path"`
}

// IPRef names the origin address of an attempt.
type IPRef struct {
	Address string `json:"address"`
}

// AttemptResponse is one audit record as served to clients.
type AttemptResponse struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Status    string       `json:"status"`
	Reason    string       `json:"reason"`
	User      *UserRef     `json:"user"`
	Resource  *ResourceRef `json:"resource"`
	IP        *IPRef       `json:"ip"`
}

// Pagination carries the window cursors alongside the filtered total.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// ListResponse is the envelope for GET /access/attempts.
type ListResponse struct {
	Success    bool              `json:"success"`
	Data       []AttemptResponse `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// FromResult maps a query result into the response envelope.
func FromResult(result audit.QueryResult) ListResponse {
	data := make([]AttemptResponse, 0, len(result.Records))
	for _, rec := range result.Records {
		data = append(data, fromAttempt(rec))
	}
	return ListResponse{
		Success: true,
		Data:    data,
		Pagination: Pagination{
			Total:   result.Total,
			Limit:   result.Limit,
			Offset:  result.Offset,
			HasMore: result.HasMore,
		},
	}
}

func fromAttempt(rec audit.Attempt) AttemptResponse {
	resp := AttemptResponse{
		ID:        rec.ID,
		Timestamp: rec.Timestamp,
		Status:    string(rec.Status),
		Reason:    rec.Reason,
	}
	if rec.IdentityID != "" || rec.Username != "" {
		resp.User = &UserRef{ID: rec.IdentityID, Username: rec.Username}
	}
	if rec.ResourcePath != "" {
		resp.Resource = &ResourceRef{Path: rec.ResourcePath}
	}
	if rec.IPAddress != "" {
		resp.IP = &IPRef{Address: rec.IPAddress}
	}
	return resp
}
