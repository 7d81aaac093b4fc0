package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// PostgresStore persists the trail in the access_attempts table. The page
// and count queries share one WHERE clause and run concurrently; total must
// reflect the filter, not the window.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, attempt Attempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access_attempts (
			id, timestamp, identity_id, username, resource_path,
			ip_address, user_agent, status, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		attempt.ID,
		attempt.Timestamp,
		nullable(attempt.IdentityID),
		nullable(attempt.Username),
		nullable(attempt.ResourcePath),
		nullable(attempt.IPAddress),
		nullable(attempt.UserAgent),
		string(attempt.Status),
		attempt.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert access attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, filter Filter, limit, offset int) (Page, error) {
	where, args := buildWhere(filter)

	var (
		records []Attempt
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := fmt.Sprintf(`
			SELECT id, timestamp, identity_id, username, resource_path,
			       ip_address, user_agent, status, reason
			FROM access_attempts
			%s
			ORDER BY timestamp DESC
			LIMIT $%d OFFSET $%d
		`, where, len(args)+1, len(args)+2)
		rows, err := s.db.QueryContext(gctx, query, append(args, limit, offset)...)
		if err != nil {
			return fmt.Errorf("query access attempts: %w", err)
		}
		defer rows.Close()

		records, err = scanAttempts(rows)
		return err
	})

	g.Go(func() error {
		query := fmt.Sprintf(`SELECT count(*) FROM access_attempts %s`, where)
		if err := s.db.QueryRowContext(gctx, query, args...).Scan(&total); err != nil {
			return fmt.Errorf("count access attempts: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Page{}, err
	}
	if records == nil {
		records = []Attempt{}
	}
	return Page{Records: records, Total: total}, nil
}

func (s *PostgresStore) CountSince(ctx context.Context, status Status, since time.Time) (int, error) {
	query := `SELECT count(*) FROM access_attempts WHERE 1=1`
	var args []any
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count access attempts: %w", err)
	}
	return count, nil
}

func buildWhere(filter Filter) (string, []any) {
	where := "WHERE 1=1"
	var args []any
	if filter.IdentityID != "" {
		args = append(args, filter.IdentityID)
		where += fmt.Sprintf(" AND identity_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.IPAddress != "" {
		args = append(args, filter.IPAddress)
		where += fmt.Sprintf(" AND ip_address = $%d", len(args))
	}
	if filter.ResourceContains != "" {
		args = append(args, "%"+filter.ResourceContains+"%")
		where += fmt.Sprintf(" AND resource_path LIKE $%d", len(args))
	}
	return where, args
}

func scanAttempts(rows *sql.Rows) ([]Attempt, error) {
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var identityID, username, resourcePath, ip, agent sql.NullString
		var status string
		err := rows.Scan(&a.ID, &a.Timestamp, &identityID, &username,
			&resourcePath, &ip, &agent, &status, &a.Reason)
		if err != nil {
			return nil, fmt.Errorf("scan access attempt: %w", err)
		}
		a.IdentityID = identityID.String
		a.Username = username.String
		a.ResourcePath = resourcePath.String
		a.IPAddress = ip.String
		a.UserAgent = agent.String
		a.Status = Status(status)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access attempts: %w", err)
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
