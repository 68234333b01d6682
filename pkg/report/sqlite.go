package report

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/stats"
)

// row is a struct whose tagged fields map onto one table. Fields need a
// dbtype tag to be stored; column defaults to the lower-cased field name.
type row interface {
	tableName() string
}

type runRow struct {
	ID           int64  `column:"id" dbtype:"INTEGER" primary:"true"`
	Source       string `column:"source" dbtype:"TEXT NOT NULL"`
	Generated    string `column:"generated_at" dbtype:"TEXT NOT NULL"`
	TotalMatches int    `column:"total_matches" dbtype:"INTEGER NOT NULL"`
	Insight      string `column:"insight" dbtype:"TEXT"`
}

func (runRow) tableName() string { return "analysis_run" }

type strategyRow struct {
	RunID        int64   `column:"run_id" dbtype:"INTEGER NOT NULL" primary:"true" fk:"analysis_run.id"`
	Rank         int     `column:"rank" dbtype:"INTEGER NOT NULL" primary:"true"`
	Name         string  `column:"name" dbtype:"TEXT NOT NULL" index:"true"`
	Description  string  `column:"description" dbtype:"TEXT"`
	Occurrences  int     `column:"occurrences" dbtype:"INTEGER NOT NULL"`
	Successes    int     `column:"successes" dbtype:"INTEGER NOT NULL"`
	SuccessRate  float64 `column:"success_rate" dbtype:"REAL NOT NULL"`
	BreakEvenOdd any     `column:"break_even_odd" dbtype:"REAL"`
}

func (strategyRow) tableName() string { return "strategy_stats" }

type leagueRow struct {
	RunID        int64   `column:"run_id" dbtype:"INTEGER NOT NULL" primary:"true" fk:"analysis_run.id"`
	Strategy     string  `column:"strategy" dbtype:"TEXT NOT NULL" primary:"true"`
	League       string  `column:"league" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Occurrences  int     `column:"occurrences" dbtype:"INTEGER NOT NULL"`
	Successes    int     `column:"successes" dbtype:"INTEGER NOT NULL"`
	SuccessRate  float64 `column:"success_rate" dbtype:"REAL NOT NULL"`
	BreakEvenOdd any     `column:"break_even_odd" dbtype:"REAL"`
}

func (leagueRow) tableName() string { return "league_performance" }

// oddValue stores an infinite break-even odd as NULL, matching the JSON encoding
func oddValue(o stats.Odd) any {
	if o.IsInf() {
		return nil
	}
	return o.Float64()
}

// ExportSQLite appends a snapshot of a to the database at path, creating the
// tables on first use. It returns the id of the new analysis_run row.
func ExportSQLite(ctx context.Context, path string, a *Analysis) (int64, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, r := range []row{runRow{}, strategyRow{}, leagueRow{}} {
		if err := createTable(ctx, db, r); err != nil {
			return 0, err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := insert(ctx, tx, runRow{
		Source:       a.Source,
		Generated:    a.Generated.Format("2006-01-02T15:04:05Z07:00"),
		TotalMatches: a.Summary.TotalMatches,
		Insight:      a.Insight,
	})
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for i, s := range a.Results {
		if _, err := insert(ctx, tx, strategyRow{
			RunID:        runID,
			Rank:         i + 1,
			Name:         s.Name,
			Description:  s.Description,
			Occurrences:  s.Occurrences,
			Successes:    s.Successes,
			SuccessRate:  s.SuccessRate,
			BreakEvenOdd: oddValue(s.BreakEvenOdd),
		}); err != nil {
			return 0, err
		}
	}

	for _, d := range a.Details {
		for _, l := range d.Leagues {
			if _, err := insert(ctx, tx, leagueRow{
				RunID:        runID,
				Strategy:     d.Stats.Name,
				League:       l.League,
				Occurrences:  l.Occurrences,
				Successes:    l.Successes,
				SuccessRate:  l.SuccessRate,
				BreakEvenOdd: oddValue(l.BreakEvenOdd),
			}); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	logger.Info("Exported analysis snapshot", path, runID)
	return runID, nil
}

type column struct {
	name, dbtype string
	primary      bool
	index        bool
	fk           string
	value        any
}

// columns reads the tagged fields of r in declaration order
func columns(r row) []column {
	v := reflect.ValueOf(r)
	t := v.Type()

	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		dbtype := f.Tag.Get("dbtype")
		if !f.IsExported() || dbtype == "" {
			continue
		}
		name := f.Tag.Get("column")
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		cols = append(cols, column{
			name:    name,
			dbtype:  dbtype,
			primary: f.Tag.Get("primary") == "true",
			index:   f.Tag.Get("index") == "true",
			fk:      f.Tag.Get("fk"),
			value:   v.Field(i).Interface(),
		})
	}
	return cols
}

func createTableSQL(r row) (string, []string) {
	var defs, keys, fks, indexes []string
	table := r.tableName()

	for _, c := range columns(r) {
		defs = append(defs, c.name+" "+c.dbtype)
		if c.primary {
			keys = append(keys, c.name)
		}
		if ref := strings.SplitN(c.fk, ".", 2); len(ref) == 2 {
			fks = append(fks, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE CASCADE", c.name, ref[0], ref[1]))
		}
		if c.index {
			indexes = append(indexes, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", table, c.name, table, c.name))
		}
	}
	if len(keys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}
	defs = append(defs, fks...)

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", ")), indexes
}

func createTable(ctx context.Context, db *sql.DB, r row) error {
	create, indexes := createTableSQL(r)
	logger.Debug("Creating table with SQL", create)
	if _, err := db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.tableName(), err)
	}
	for _, q := range indexes {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", r.tableName(), err)
		}
	}
	return nil
}

func insert(ctx context.Context, tx *sql.Tx, r row) (sql.Result, error) {
	var names, marks []string
	var values []any
	for _, c := range columns(r) {
		// a lone INTEGER primary key is the rowid and is assigned by SQLite
		if c.primary && c.dbtype == "INTEGER" {
			continue
		}
		names = append(names, c.name)
		marks = append(marks, "?")
		values = append(values, c.value)
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.tableName(), strings.Join(names, ", "), strings.Join(marks, ", "))
	res, err := tx.ExecContext(ctx, q, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", r.tableName(), err)
	}
	return res, nil
}
