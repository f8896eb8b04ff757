package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
)

// ErrNotFound is returned when no lead has the requested id.
var ErrNotFound = errors.New("lead not found")

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	const createTable = `
CREATE TABLE IF NOT EXISTS leads (
  id TEXT PRIMARY KEY,
  address TEXT NOT NULL,
  step TEXT NOT NULL,
  contact_json TEXT NOT NULL DEFAULT '{}',
  overrides_json TEXT NOT NULL DEFAULT '{}',
  attributes_json TEXT NOT NULL DEFAULT '{}',
  estimated_value REAL NOT NULL DEFAULT 0,
  record_found INTEGER NOT NULL DEFAULT 0,
  record_json TEXT NOT NULL DEFAULT '',
  recommendations_json TEXT NOT NULL DEFAULT '[]',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_leads_step ON leads(step);`); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);`); err != nil {
		return err
	}
	return nil
}

const leadColumns = `id, address, step, contact_json, overrides_json, attributes_json,
estimated_value, record_found, record_json, recommendations_json, created_at, updated_at`

type leadRow struct {
	contact, overrides, attributes, record, recs string
	createdAt, updatedAt                         string
}

func encodeLead(l domain.Lead) (leadRow, error) {
	var r leadRow
	parts := []struct {
		dst *string
		v   any
	}{
		{&r.contact, l.Contact},
		{&r.overrides, l.Overrides},
		{&r.attributes, l.Attributes},
		{&r.recs, l.Recommendations},
	}
	for _, p := range parts {
		b, err := json.Marshal(p.v)
		if err != nil {
			return leadRow{}, fmt.Errorf("encode lead %s: %w", l.ID, err)
		}
		*p.dst = string(b)
	}
	r.record = string(l.Record)
	r.createdAt = l.CreatedAt.UTC().Format(timeLayout)
	r.updatedAt = l.UpdatedAt.UTC().Format(timeLayout)
	return r, nil
}

func (s *SQLiteStore) CreateLead(ctx context.Context, l domain.Lead) error {
	r, err := encodeLead(l)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO leads (`+leadColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		l.ID, l.Address, string(l.Step), r.contact, r.overrides, r.attributes,
		l.EstimatedValue, l.RecordFound, r.record, r.recs, r.createdAt, r.updatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead %s: %w", l.ID, err)
	}
	return nil
}

// UpdateLead overwrites every mutable column. created_at is left untouched.
func (s *SQLiteStore) UpdateLead(ctx context.Context, l domain.Lead) error {
	r, err := encodeLead(l)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE leads SET
  address = ?, step = ?, contact_json = ?, overrides_json = ?, attributes_json = ?,
  estimated_value = ?, record_found = ?, record_json = ?, recommendations_json = ?, updated_at = ?
WHERE id = ?
`,
		l.Address, string(l.Step), r.contact, r.overrides, r.attributes,
		l.EstimatedValue, l.RecordFound, r.record, r.recs, r.updatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update lead %s: %w", l.ID, err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (domain.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead %s: %w", id, err)
	}
	return l, nil
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (s *SQLiteStore) CountLeads(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n)
	return n, err
}

// ListParams filters and pages ListLeads. An empty Step matches every lead.
type ListParams struct {
	Limit  int
	Offset int
	Step   domain.LeadStep
}

// ListLeads returns one page of leads, newest first, and the total number
// of leads matching the filter.
func (s *SQLiteStore) ListLeads(ctx context.Context, p ListParams) ([]domain.Lead, int, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	where := make([]string, 0, 1)
	args := make([]any, 0, 3)
	if step := strings.TrimSpace(string(p.Step)); step != "" {
		where = append(where, "step = ?")
		args = append(args, step)
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rowsSQL := "SELECT " + leadColumns + " FROM leads " + whereSQL +
		"\nORDER BY created_at DESC, id\nLIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, rowsSQL, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Lead, 0, p.Limit)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(sc scanner) (domain.Lead, error) {
	var (
		l    domain.Lead
		r    leadRow
		step string
	)
	if err := sc.Scan(
		&l.ID, &l.Address, &step, &r.contact, &r.overrides, &r.attributes,
		&l.EstimatedValue, &l.RecordFound, &r.record, &r.recs, &r.createdAt, &r.updatedAt,
	); err != nil {
		return domain.Lead{}, err
	}
	l.Step = domain.LeadStep(step)

	columns := []struct {
		name string
		raw  string
		dst  any
	}{
		{"contact_json", r.contact, &l.Contact},
		{"overrides_json", r.overrides, &l.Overrides},
		{"attributes_json", r.attributes, &l.Attributes},
		{"recommendations_json", r.recs, &l.Recommendations},
	}
	for _, c := range columns {
		if err := json.Unmarshal([]byte(c.raw), c.dst); err != nil {
			return domain.Lead{}, fmt.Errorf("lead %s: decode %s: %w", l.ID, c.name, err)
		}
	}
	if r.record != "" {
		l.Record = []byte(r.record)
	}

	var err error
	if l.CreatedAt, err = time.Parse(timeLayout, r.createdAt); err != nil {
		return domain.Lead{}, fmt.Errorf("lead %s: parse created_at: %w", l.ID, err)
	}
	if l.UpdatedAt, err = time.Parse(timeLayout, r.updatedAt); err != nil {
		return domain.Lead{}, fmt.Errorf("lead %s: parse updated_at: %w", l.ID, err)
	}
	return l, nil
}
