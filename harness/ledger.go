package harness

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger records suite results in SQLite so regressions can be traced
// across runs.
type Ledger struct {
	db *sql.DB
}

// Entry is one recorded case.
type Entry struct {
	RunID      int64
	Suite      string
	Digest     string
	Func       string
	Want       int32
	Got        int32
	Passed     bool
	Error      string
	RecordedAt time.Time
}

// OpenLedger opens (creating if needed) the ledger at path. ":memory:" gives
// a throwaway ledger.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	// A single connection keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS results (
		run_id       INTEGER NOT NULL,
		suite        TEXT NOT NULL DEFAULT '',
		suite_digest TEXT NOT NULL,
		func         TEXT NOT NULL,
		want         INTEGER NOT NULL,
		got          INTEGER NOT NULL,
		passed       INTEGER NOT NULL,
		error        TEXT NOT NULL DEFAULT '',
		recorded_at  INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	if err := migrateSuiteColumn(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// migrateSuiteColumn adds the suite column to ledgers written before results
// were keyed by suite.
func migrateSuiteColumn(db *sql.DB) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('results') WHERE name = 'suite'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspecting table: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE results ADD COLUMN suite TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("adding suite column: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// Record stores every result of reports under one new run id and returns
// it. Each row is keyed by its report's suite, so one invocation testing
// several suites is a single run.
func (l *Ledger) Record(reports ...*Report) (int64, error) {
	tx, err := l.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(run_id), 0) + 1 FROM results").Scan(&runID); err != nil {
		return 0, fmt.Errorf("next run id: %w", err)
	}

	now := time.Now().UnixNano()
	n := 0
	for _, report := range reports {
		digest := hex.EncodeToString(report.Digest[:])
		for _, res := range report.Results {
			errText := ""
			if res.Err != nil {
				errText = res.Err.Error()
			}
			_, err := tx.Exec(
				`INSERT INTO results (run_id, suite, suite_digest, func, want, got, passed, error, recorded_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, report.Suite, digest, res.Func, res.Want, res.Got, res.Passed(), errText, now)
			if err != nil {
				return 0, fmt.Errorf("recording %s/%s: %w", report.Suite, res.Func, err)
			}
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Debugf("recorded run %d (%d suites, %d results)", runID, len(reports), n)
	return runID, nil
}

// History returns every recorded result for fn, oldest first.
func (l *Ledger) History(fn string) ([]Entry, error) {
	rows, err := l.db.Query(
		`SELECT run_id, suite, suite_digest, func, want, got, passed, error, recorded_at
		 FROM results WHERE func = ? ORDER BY run_id, suite`, fn)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.RunID, &e.Suite, &e.Digest, &e.Func, &e.Want, &e.Got, &e.Passed, &e.Error, &at); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.RecordedAt = time.Unix(0, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Regression is a case that passed in its suite's previous run and fails in
// the suite's latest one.
type Regression struct {
	Suite string
	Func  string
}

func (r Regression) String() string {
	return r.Suite + "/" + r.Func
}

// Regressions compares each suite's latest run with that suite's previous
// run and returns the cases that stopped passing.
func (l *Ledger) Regressions() ([]Regression, error) {
	rows, err := l.db.Query(`
		WITH latest AS (
			SELECT suite, MAX(run_id) AS run_id FROM results GROUP BY suite
		), previous AS (
			SELECT r.suite, MAX(r.run_id) AS run_id FROM results r
			JOIN latest ON latest.suite = r.suite AND r.run_id < latest.run_id
			GROUP BY r.suite
		)
		SELECT cur.suite, cur.func FROM results cur
		JOIN latest ON latest.suite = cur.suite AND latest.run_id = cur.run_id
		JOIN previous ON previous.suite = cur.suite
		JOIN results prev ON prev.suite = cur.suite
		  AND prev.run_id = previous.run_id
		  AND prev.func = cur.func
		WHERE prev.passed = 1 AND cur.passed = 0
		ORDER BY cur.suite, cur.func`)
	if err != nil {
		return nil, fmt.Errorf("querying regressions: %w", err)
	}
	defer rows.Close()

	var out []Regression
	for rows.Next() {
		var r Regression
		if err := rows.Scan(&r.Suite, &r.Func); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
