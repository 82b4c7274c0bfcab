// CLAUDE:SUMMARY SQLite run history for imgwidths: opens DB with HOROS pragmas, saves and reads back run reports.
// Package store persists imgwidths run reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hazyhaar/rwd/dbopen"
	"github.com/hazyhaar/rwd/imgwidths/measure"
)

// Store is the run history database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// RunSummary is a runs row without the detail tables.
type RunSummary struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	Selector   string  `json:"selector"`
	Min        int     `json:"min_viewport"`
	Max        int     `json:"max_viewport"`
	Requested  int     `json:"requested"`
	TotalViews int     `json:"total_views"`
	Excluded   int     `json:"excluded"`
	Waste      float64 `json:"waste"`
	CreatedAt  int64   `json:"created_at"`
}

// SaveReport writes a report and its detail rows in one transaction.
func (s *Store) SaveReport(ctx context.Context, r *measure.Report) error {
	if r.RunID == "" {
		return errors.New("store: report has no run id")
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs
				(id, url, selector, min_viewport, max_viewport, requested,
				 total_views, excluded, waste, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			r.RunID, r.URL, r.Selector, r.Widths.Range.Min, r.Widths.Range.Max, r.Plan.Requested,
			r.Demand.TotalViews, r.Demand.Excluded, r.Plan.Waste, r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("store: insert run: %w", err)
		}

		if err := insertRows(ctx, tx, `INSERT INTO run_widths (run_id, viewport, width) VALUES (?,?,?)`,
			len(r.Widths.Samples), func(i int) []any {
				s := r.Widths.Samples[i]
				return []any{r.RunID, s.Viewport, s.Width}
			}); err != nil {
			return fmt.Errorf("store: insert widths: %w", err)
		}

		if err := insertRows(ctx, tx, `INSERT INTO run_demand (run_id, width, views, share) VALUES (?,?,?,?)`,
			len(r.Demand.Entries), func(i int) []any {
				e := r.Demand.Entries[i]
				return []any{r.RunID, e.Width, e.Views, e.Share}
			}); err != nil {
			return fmt.Errorf("store: insert demand: %w", err)
		}

		if err := insertRows(ctx, tx, `INSERT INTO run_plan (run_id, position, width) VALUES (?,?,?)`,
			len(r.Plan.Widths), func(i int) []any {
				return []any{r.RunID, i, r.Plan.Widths[i]}
			}); err != nil {
			return fmt.Errorf("store: insert plan: %w", err)
		}
		return nil
	})
}

func insertRows(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, url, selector, min_viewport, max_viewport, requested,
		       total_views, excluded, waste, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.URL, &r.Selector, &r.Min, &r.Max, &r.Requested,
			&r.TotalViews, &r.Excluded, &r.Waste, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun rebuilds a full report. It returns nil, nil when id is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*measure.Report, error) {
	r := &measure.Report{RunID: id}
	err := s.DB.QueryRowContext(ctx, `
		SELECT url, selector, min_viewport, max_viewport, requested,
		       total_views, excluded, waste, created_at
		FROM runs WHERE id = ?`, id).Scan(
		&r.URL, &r.Selector, &r.Widths.Range.Min, &r.Widths.Range.Max, &r.Plan.Requested,
		&r.Demand.TotalViews, &r.Demand.Excluded, &r.Plan.Waste, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT viewport, width FROM run_widths WHERE run_id = ? ORDER BY viewport`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var smp measure.Sample
		if err := rows.Scan(&smp.Viewport, &smp.Width); err != nil {
			rows.Close()
			return nil, err
		}
		r.Widths.Samples = append(r.Widths.Samples, smp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx,
		`SELECT width, views, share FROM run_demand WHERE run_id = ?`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var e measure.DemandEntry
		if err := rows.Scan(&e.Width, &e.Views, &e.Share); err != nil {
			rows.Close()
			return nil, err
		}
		r.Demand.Entries = append(r.Demand.Entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	measure.SortEntries(r.Demand.Entries)

	rows, err = s.DB.QueryContext(ctx,
		`SELECT width FROM run_plan WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var w int
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		r.Plan.Widths = append(r.Plan.Widths, w)
	}
	return r, rows.Err()
}
