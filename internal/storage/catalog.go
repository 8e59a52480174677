package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/spinlattice/internal/experiment"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS sweep_runs (
	sweep      TEXT    NOT NULL,
	run        INTEGER NOT NULL,
	label      TEXT    NOT NULL,
	dynamics   TEXT    NOT NULL,
	run_id     TEXT    NOT NULL DEFAULT '',
	j          REAL    NOT NULL,
	k          REAL    NOT NULL,
	t          REAL    NOT NULL,
	p1         REAL    NOT NULL,
	p2         REAL    NOT NULL,
	p3         REAL    NOT NULL,
	size       INTEGER NOT NULL,
	samples    INTEGER NOT NULL,
	stopped    INTEGER NOT NULL,
	quantities TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (sweep, run)
);
CREATE INDEX IF NOT EXISTS sweep_runs_dynamics ON sweep_runs (dynamics);
`

// CatalogRow is one run of a parameter sweep.
type CatalogRow struct {
	Sweep      string
	Run        int
	Label      string
	Dynamics   string
	RunID      string
	J          float64
	K          float64
	T          float64
	P1         float64
	P2         float64
	P3         float64
	Size       int
	Samples    int
	Stopped    bool
	Quantities map[string]float64
	CreatedAt  time.Time
}

// SweepInfo summarises one sweep in the catalog.
type SweepInfo struct {
	Sweep    string
	Dynamics string
	Runs     int
	Started  time.Time
}

// NewCatalogRow builds a catalog row from a finished run.
func NewCatalogRow(sweep string, run int, res *experiment.Result) CatalogRow {
	return CatalogRow{
		Sweep:      sweep,
		Run:        run,
		Label:      res.Label,
		Dynamics:   res.Dynamics,
		J:          res.Params.J,
		K:          res.Params.K,
		T:          res.Params.T,
		P1:         res.Params.P1,
		P2:         res.Params.P2,
		P3:         res.Params.P3,
		Size:       res.Width * res.Height,
		Samples:    res.Samples(),
		Stopped:    res.Stopped,
		Quantities: res.Quantities(),
	}
}

// Catalog indexes sweep results in a SQLite database.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens or creates the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Record inserts or replaces one row.
func (c *Catalog) Record(ctx context.Context, row CatalogRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if row.Sweep == "" {
		return fmt.Errorf("sweep id is required")
	}
	q, err := json.Marshal(row.Quantities)
	if err != nil {
		return fmt.Errorf("encode quantities: %w", err)
	}
	created := row.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sweep_runs (
		   sweep, run, label, dynamics, run_id,
		   j, k, t, p1, p2, p3,
		   size, samples, stopped, quantities, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Sweep, row.Run, row.Label, row.Dynamics, row.RunID,
		row.J, row.K, row.T, row.P1, row.P2, row.P3,
		row.Size, row.Samples, boolToInt(row.Stopped), string(q), created.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert sweep run %s/%d: %w", row.Sweep, row.Run, err)
	}
	return nil
}

// Rows returns the rows of one sweep ordered by run number.
func (c *Catalog) Rows(ctx context.Context, sweep string) ([]CatalogRow, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT sweep, run, label, dynamics, run_id,
		        j, k, t, p1, p2, p3,
		        size, samples, stopped, quantities, created_at
		   FROM sweep_runs
		  WHERE sweep = ?
		  ORDER BY run`, sweep)
	if err != nil {
		return nil, fmt.Errorf("query sweep %s: %w", sweep, err)
	}
	defer rows.Close()

	var out []CatalogRow
	for rows.Next() {
		var (
			r       CatalogRow
			q       string
			stopped int
			created int64
		)
		if err := rows.Scan(&r.Sweep, &r.Run, &r.Label, &r.Dynamics, &r.RunID,
			&r.J, &r.K, &r.T, &r.P1, &r.P2, &r.P3,
			&r.Size, &r.Samples, &stopped, &q, &created); err != nil {
			return nil, fmt.Errorf("scan sweep run: %w", err)
		}
		if err := json.Unmarshal([]byte(q), &r.Quantities); err != nil {
			return nil, fmt.Errorf("decode quantities: %w", err)
		}
		r.Stopped = stopped != 0
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sweeps lists every sweep in the catalog, newest first.
func (c *Catalog) Sweeps(ctx context.Context) ([]SweepInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT sweep, MIN(dynamics), COUNT(*), MIN(created_at)
		   FROM sweep_runs
		  GROUP BY sweep
		  ORDER BY MIN(created_at) DESC, sweep`)
	if err != nil {
		return nil, fmt.Errorf("query sweeps: %w", err)
	}
	defer rows.Close()

	var out []SweepInfo
	for rows.Next() {
		var (
			s       SweepInfo
			started int64
		)
		if err := rows.Scan(&s.Sweep, &s.Dynamics, &s.Runs, &started); err != nil {
			return nil, fmt.Errorf("scan sweep: %w", err)
		}
		s.Started = time.UnixMilli(started).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes every row of a sweep.
func (c *Catalog) Delete(ctx context.Context, sweep string) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM sweep_runs WHERE sweep = ?`, sweep)
	if err != nil {
		return 0, fmt.Errorf("delete sweep %s: %w", sweep, err)
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
