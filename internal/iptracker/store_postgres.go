package iptracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"access-gate/pkg/platform/sentinel"
)

// PostgresStore persists the address graph in two tables: ip_records holds
// one row per address, ip_identity_links is the identity adjacency. Links
// grow monotonically and duplicate inserts are absorbed by ON CONFLICT.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) LinkIfNew(ctx context.Context, identityID, address string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin link tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ip_records (id, address, suspicious)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (address) DO NOTHING
	`, uuid.New(), address)
	if err != nil {
		return false, fmt.Errorf("upsert ip record: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO ip_identity_links (address, identity_id)
		VALUES ($1, $2)
		ON CONFLICT (address, identity_id) DO NOTHING
	`, address, identityID)
	if err != nil {
		return false, fmt.Errorf("insert identity link: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("link rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit link tx: %w", err)
	}
	// Zero inserted rows means the link already existed: the address was
	// known for this identity.
	return inserted == 0, nil
}

func (s *PostgresStore) IsFlagged(ctx context.Context, address string) (bool, error) {
	var suspicious bool
	err := s.db.QueryRowContext(ctx,
		`SELECT suspicious FROM ip_records WHERE address = $1`, address,
	).Scan(&suspicious)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query ip flag: %w", err)
	}
	return suspicious, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO ip_records (id, address, suspicious)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO UPDATE SET suspicious = EXCLUDED.suspicious
	`, id, rec.Address, rec.Suspicious)
	if err != nil {
		return fmt.Errorf("upsert ip record: %w", err)
	}

	for _, identityID := range rec.IdentityIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ip_identity_links (address, identity_id)
			VALUES ($1, $2)
			ON CONFLICT (address, identity_id) DO NOTHING
		`, rec.Address, identityID)
		if err != nil {
			return fmt.Errorf("insert identity link: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Remove(ctx context.Context, address string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ip_records WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete ip record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.address, r.suspicious,
		       COALESCE(array_agg(l.identity_id) FILTER (WHERE l.identity_id IS NOT NULL), '{}')
		FROM ip_records r
		LEFT JOIN ip_identity_links l ON l.address = r.address
		GROUP BY r.id, r.address, r.suspicious
		ORDER BY r.address
	`)
	if err != nil {
		return nil, fmt.Errorf("list ip records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) AddressesFor(ctx context.Context, identityID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.address, r.suspicious,
		       COALESCE(array_agg(l2.identity_id) FILTER (WHERE l2.identity_id IS NOT NULL), '{}')
		FROM ip_records r
		JOIN ip_identity_links l ON l.address = r.address AND l.identity_id = $1
		LEFT JOIN ip_identity_links l2 ON l2.address = r.address
		GROUP BY r.id, r.address, r.suspicious
		ORDER BY r.address
	`, identityID)
	if err != nil {
		return nil, fmt.Errorf("list identity addresses: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Address, &rec.Suspicious, pq.Array(&rec.IdentityIDs)); err != nil {
			return nil, fmt.Errorf("scan ip record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ip records: %w", err)
	}
	return out, nil
}
