package match

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/richard-senior/htft/internal/logger"
)

var (
	ErrEmptyInput     = errors.New("the CSV file is empty")
	ErrTooFewLines    = errors.New("invalid CSV file: it must contain a header and at least one data row")
	ErrMissingColumns = errors.New("invalid CSV header")
	// ErrNoValidRows is returned by RequireRecords when every data row was skipped
	ErrNoValidRows = errors.New("no valid matches found in the file")
)

// Options tune row acceptance. The zero value reproduces the lenient behaviour
// where any row with four integer goal fields is kept.
type Options struct {
	// StrictGoals additionally skips rows with negative goals or with
	// full-time goals below the halftime goals
	StrictGoals bool
}

// Result is the outcome of ParseDetailed
type Result struct {
	Records []Record
	// Skipped lists the row ids that were dropped, in input order
	Skipped []int
	// Dialect is the name of the header layout that matched
	Dialect string
}

// RequireRecords fails with ErrNoValidRows when r holds no records
func (r *Result) RequireRecords() error {
	if r == nil || len(r.Records) == 0 {
		skipped := 0
		if r != nil {
			skipped = len(r.Skipped)
		}
		return fmt.Errorf("%w: %d rows skipped", ErrNoValidRows, skipped)
	}
	return nil
}

// Parse turns raw CSV text into match records using the default options
func Parse(raw string) ([]Record, error) {
	res, err := ParseDetailed(raw, Options{})
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ParseWithOptions is Parse with explicit options
func ParseWithOptions(raw string, opts Options) ([]Record, error) {
	res, err := ParseDetailed(raw, opts)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// ParseDetailed parses raw CSV text and reports which rows were skipped.
//
// Blank lines are discarded before numbering, so the header is row 0 and the
// first data row is row 1. Fields are split on commas with no quoting support.
// Rows that are too short or carry a non-integer goal field are skipped.
func ParseDetailed(raw string, opts Options) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	rows := splitRows(raw)
	if len(rows) < 2 {
		return nil, ErrTooFewLines
	}

	header := strings.Split(rows[0], ",")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	dialect, cols, err := chooseDialect(header)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using CSV dialect", dialect.Name)

	res := &Result{
		Records: make([]Record, 0, len(rows)-1),
		Dialect: dialect.Name,
	}

	for i := 1; i < len(rows); i++ {
		rec, ok := parseRow(i, strings.Split(rows[i], ","), cols)
		if ok && opts.StrictGoals && !rec.Consistent() {
			ok = false
		}
		if !ok {
			res.Skipped = append(res.Skipped, i)
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Skipped) > 0 {
		logger.Debug("Skipped malformed rows", len(res.Skipped))
	}
	return res, nil
}

// splitRows strips carriage returns and drops whitespace-only lines
func splitRows(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r", ""), "\n")
	rows := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

func chooseDialect(header []string) (Dialect, layout, error) {
	var primaryMissing []string
	for i, d := range Dialects {
		cols, missing := d.resolve(header)
		if len(missing) == 0 {
			return d, cols, nil
		}
		if i == 0 {
			primaryMissing = missing
		}
	}
	return Dialect{}, layout{}, fmt.Errorf("%w: missing columns: %s. The required columns are: %s",
		ErrMissingColumns,
		strings.Join(primaryMissing, ", "),
		strings.Join(Primary.Columns(), ", "))
}

func parseRow(id int, fields []string, cols layout) (Record, bool) {
	if len(fields) <= cols.max {
		return Record{}, false
	}

	var goals [4]int
	for n, idx := range []int{cols.htHome, cols.htAway, cols.ftHome, cols.ftAway} {
		v, err := strconv.Atoi(strings.TrimSpace(fields[idx]))
		if err != nil {
			return Record{}, false
		}
		goals[n] = v
	}

	league := strings.TrimSpace(fields[cols.league])
	if league == "" {
		league = UnknownLeague
	}

	return Record{
		ID:       id,
		League:   league,
		HomeTeam: strings.TrimSpace(fields[cols.home]),
		AwayTeam: strings.TrimSpace(fields[cols.away]),
		HTHome:   goals[0],
		HTAway:   goals[1],
		FTHome:   goals[2],
		FTAway:   goals[3],
	}, true
}

// Leagues returns the distinct league names in order of first appearance
func Leagues(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.League] {
			seen[r.League] = true
			out = append(out, r.League)
		}
	}
	return out
}
