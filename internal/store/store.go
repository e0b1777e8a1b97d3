package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/logging"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

// ErrNotFound is returned when a report id is unknown.
var ErrNotFound = errors.New("report not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS fidelity_reports (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	report_id      TEXT NOT NULL UNIQUE,
	created_at     TEXT NOT NULL,
	operation_type TEXT NOT NULL,
	condition      TEXT NOT NULL,
	action         TEXT NOT NULL,
	score          REAL NOT NULL,
	trust          TEXT NOT NULL,
	report_json    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	report_id      TEXT NOT NULL,
	operation_type TEXT NOT NULL,
	condition      TEXT NOT NULL,
	action         TEXT NOT NULL,
	rule           TEXT,
	overrides      TEXT,
	trust          TEXT NOT NULL,
	score          REAL NOT NULL,
	inputs_json    TEXT,
	reason         TEXT,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (report_id) REFERENCES fidelity_reports(report_id)
);

CREATE INDEX IF NOT EXISTS idx_reports_trust ON fidelity_reports(trust);
`
// #endregion schema

// #region store-struct
// Store persists trust reports and their decision provenance in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region save
// SaveReport stores r and its decision provenance atomically. gateCfg is the
// gate configuration that produced r.Decision.
func (s *Store) SaveReport(r orchestrator.Report, gateCfg gate.Config) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	entry, err := logging.EntryFromReport(r, gateCfg)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO fidelity_reports (report_id, created_at, operation_type, condition, action, score, trust, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Timestamp.UTC().Format(time.RFC3339Nano), string(r.OperationType), string(r.Condition),
		string(r.Decision.Action), r.Score, string(r.Trust), string(raw),
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", r.ID, err)
	}

	if err := logging.LogDecision(tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
// #endregion save

// #region get-report
// GetReport retrieves a report by id.
func (s *Store) GetReport(id string) (orchestrator.Report, error) {
	var raw string
	err := s.db.QueryRow(`SELECT report_json FROM fidelity_reports WHERE report_id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return orchestrator.Report{}, fmt.Errorf("get report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return orchestrator.Report{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return decodeReport(raw)
}
// #endregion get-report

// #region list-reports
// ListReports returns the most recent limit reports, oldest first. A
// non-positive limit returns every stored report.
func (s *Store) ListReports(limit int) ([]orchestrator.Report, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT report_json FROM fidelity_reports ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []orchestrator.Report
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r, err := decodeReport(raw)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(reports)
	return reports, nil
}

// Count returns the number of stored reports.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM fidelity_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
// #endregion list-reports

// #region load-history
// LoadHistory seeds o with the most recent limit stored reports and returns
// how many were restored.
func (s *Store) LoadHistory(o *orchestrator.Orchestrator, limit int) (int, error) {
	reports, err := s.ListReports(limit)
	if err != nil {
		return 0, err
	}
	o.Restore(reports)
	return len(reports), nil
}
// #endregion load-history

// #region helpers
func decodeReport(raw string) (orchestrator.Report, error) {
	var r orchestrator.Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return orchestrator.Report{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return r, nil
}
// #endregion helpers
