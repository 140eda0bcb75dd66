// Package store persists quotations and their line items in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

// Status is the lifecycle state of a quotation.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound          = errors.New("quotation not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrNoItems           = errors.New("quotation has no items")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Quotation is a row of the quotations table.
type Quotation struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Notes         string    `json:"notes,omitempty"`
	Status        Status    `json:"status"`
	ApprovalToken string    `json:"approval_token"`
	SourceFile    string    `json:"source_file,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LineItem is a stored quote.Item plus the derived numeric columns.
type LineItem struct {
	quote.Item
	ID        string   `json:"id"`
	Position  int      `json:"position"`
	DoseValue *float64 `json:"dose_value,omitempty"`
	Quantity  float64  `json:"quantity"`
	UnitPrice float64  `json:"unit_price"`
}

// NewQuotation is the input of Create.
type NewQuotation struct {
	Title      string
	Notes      string
	SourceFile string
	Items      []quote.Item
}

// Store manages the quotations database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS quotations (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	notes          TEXT,
	status         TEXT NOT NULL,
	approval_token TEXT NOT NULL UNIQUE,
	source_file    TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS quotation_items (
	id             TEXT PRIMARY KEY,
	quotation_id   TEXT NOT NULL REFERENCES quotations(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	product        TEXT NOT NULL,
	supplier       TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL,
	price_per_area REAL NOT NULL,
	dose           TEXT,
	dose_value     REAL,
	unit           TEXT,
	quantity       REAL NOT NULL DEFAULT 1,
	unit_price     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotation_items_quotation ON quotation_items(quotation_id, position);
`

// Open opens (or creates) the SQLite database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create stores a draft quotation and its items in one transaction.
func (s *Store) Create(ctx context.Context, nq NewQuotation) (*Quotation, error) {
	title := strings.TrimSpace(nq.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(nq.Items) == 0 {
		return nil, ErrNoItems
	}

	now := s.now().UTC().Truncate(time.Second)
	q := &Quotation{
		ID:            uuid.NewString(),
		Title:         title,
		Notes:         strings.TrimSpace(nq.Notes),
		Status:        StatusDraft,
		ApprovalToken: uuid.NewString(),
		SourceFile:    nq.SourceFile,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quotations (id, title, notes, status, approval_token, source_file, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Title, nullString(q.Notes), q.Status, q.ApprovalToken, q.SourceFile, now.Unix(), now.Unix(),
	); err != nil {
		return nil, fmt.Errorf("insert quotation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quotation_items (id, quotation_id, position, product, supplier, category,
			price_per_area, dose, dose_value, unit, quantity, unit_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare items: %w", err)
	}
	defer stmt.Close()

	for i, it := range nq.Items {
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), q.ID, i, it.Product, it.Supplier, it.Category,
			it.PricePerArea, nullString(it.Dose), doseValue(it.Dose), nullString(it.Unit), it.PricePerArea,
		); err != nil {
			return nil, fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return q, nil
}

const quotationCols = `id, title, notes, status, approval_token, source_file, created_at, updated_at`

// Get returns a quotation by id.
func (s *Store) Get(ctx context.Context, id string) (*Quotation, error) {
	return s.getOne(ctx, `SELECT `+quotationCols+` FROM quotations WHERE id = ?`, id)
}

// GetByToken returns the quotation shared under token.
func (s *Store) GetByToken(ctx context.Context, token string) (*Quotation, error) {
	return s.getOne(ctx, `SELECT `+quotationCols+` FROM quotations WHERE approval_token = ?`, token)
}

func (s *Store) getOne(ctx context.Context, query string, arg string) (*Quotation, error) {
	q, err := scanQuotation(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	return q, nil
}

// List returns all quotations, newest first.
func (s *Store) List(ctx context.Context) ([]Quotation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+quotationCols+` FROM quotations ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()

	list := []Quotation{}
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		list = append(list, *q)
	}
	return list, rows.Err()
}

// Items returns the line items of a quotation in spreadsheet order.
func (s *Store) Items(ctx context.Context, quotationID string) ([]LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, position, product, supplier, category, price_per_area,
		dose, dose_value, unit, quantity, unit_price
		FROM quotation_items WHERE quotation_id = ? ORDER BY position`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []LineItem{}
	for rows.Next() {
		var (
			it         LineItem
			dose, unit sql.NullString
			doseVal    sql.NullFloat64
		)
		if err := rows.Scan(&it.ID, &it.Position, &it.Product, &it.Supplier, &it.Category, &it.PricePerArea,
			&dose, &doseVal, &unit, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Dose, it.Unit = dose.String, unit.String
		if doseVal.Valid {
			v := doseVal.Float64
			it.DoseValue = &v
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkSent moves a draft quotation to sent and returns it.
func (s *Store) MarkSent(ctx context.Context, id string) (*Quotation, error) {
	if err := s.transition(ctx, "id", id, StatusSent, StatusDraft); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Decide records the producer's answer on a draft or sent quotation.
func (s *Store) Decide(ctx context.Context, token string, approved bool) (*Quotation, error) {
	to := StatusRejected
	if approved {
		to = StatusApproved
	}
	if err := s.transition(ctx, "approval_token", token, to, StatusDraft, StatusSent); err != nil {
		return nil, err
	}
	return s.GetByToken(ctx, token)
}

// Delete removes a quotation and its items.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quotation_items WHERE quotation_id = ?`, id); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quotations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// transition updates the status of the quotation where col = key, provided
// its current status is one of from.
func (s *Store) transition(ctx context.Context, col, key string, to Status, from ...Status) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := []any{to, s.now().UTC().Unix(), key}
	for _, f := range from {
		args = append(args, f)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE quotations SET status = ?, updated_at = ? WHERE `+col+` = ? AND status IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Nothing updated: unknown key or wrong state.
	var current Status
	err = s.db.QueryRowContext(ctx, `SELECT status FROM quotations WHERE `+col+` = ?`, key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuotation(sc scanner) (*Quotation, error) {
	var (
		q                Quotation
		notes            sql.NullString
		created, updated int64
	)
	if err := sc.Scan(&q.ID, &q.Title, &notes, &q.Status, &q.ApprovalToken, &q.SourceFile, &created, &updated); err != nil {
		return nil, err
	}
	q.Notes = notes.String
	q.CreatedAt = time.Unix(created, 0).UTC()
	q.UpdatedAt = time.Unix(updated, 0).UTC()
	return &q, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// doseValue is the numeric reading of a dose cell, NULL unless it is a
// positive number.
func doseValue(dose string) any {
	if v := quote.ParseDecimal(dose); v > 0 {
		return v
	}
	return nil
}
