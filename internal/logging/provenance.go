package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

// #region log-decision
// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// LogDecision writes a provenance entry to the decision_log table.
func LogDecision(db Execer, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO decision_log (report_id, operation_type, condition, action, rule, overrides, trust, score, inputs_json, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ReportID,
		entry.OperationType,
		entry.Condition,
		entry.Action,
		nullIfEmpty(entry.Rule),
		nullIfEmpty(entry.Overrides),
		entry.Trust,
		entry.Score,
		nullIfEmpty(entry.InputsJSON),
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}
// #endregion log-decision

// #region entry-from-report
// EntryFromReport builds the provenance row for a finished report. cfg is
// the gate configuration that produced the decision.
func EntryFromReport(r orchestrator.Report, cfg gate.Config) (ProvenanceEntry, error) {
	d := r.Decision
	record := DecisionRecord{
		ReportID: r.ID,
		Inputs: DecisionInputs{
			OperationType:  string(r.OperationType),
			FidelityIndex:  r.Fidelity.Index,
			UncertaintyPct: r.Uncertainty.OverallPct,
			HILStatus:      hilStatus(r),
			SystemStatus:   string(r.Condition),
		},
		RiskScore: d.Risk.Score,
		RiskLevel: string(d.Risk.Level),
		Thresholds: DecisionThresholds{
			AllowMinFidelity:      cfg.AllowMinFidelity,
			AllowMaxUncertainty:   cfg.AllowMaxUncertainty,
			DegradeMinFidelity:    cfg.DegradeMinFidelity,
			DegradeMaxUncertainty: cfg.DegradeMaxUncertainty,
			SafeModeMinFidelity:   cfg.SafeModeMinFidelity,
		},
		Action:     string(d.Action),
		Allowed:    d.OperationAllowed,
		Confidence: d.Confidence,
		Rule:       d.Rule,
		Overrides:  d.Overrides,
		Blocking:   d.BlockingReasons,
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return ProvenanceEntry{}, fmt.Errorf("marshal decision record: %w", err)
	}

	return ProvenanceEntry{
		ReportID:      r.ID,
		OperationType: string(r.OperationType),
		Condition:     string(r.Condition),
		Action:        string(d.Action),
		Rule:          d.Rule,
		Overrides:     strings.Join(d.Overrides, ","),
		Trust:         string(r.Trust),
		Score:         r.Score,
		InputsJSON:    string(raw),
		Reason:        d.Reasoning,
		CreatedAt:     r.Timestamp,
	}, nil
}

func hilStatus(r orchestrator.Report) string {
	if r.HIL == nil {
		return "not_validated"
	}
	return string(r.HIL.Status)
}
// #endregion entry-from-report

// #region list-decisions
// ListDecisions returns the most recent entries, newest first.
func ListDecisions(db *sql.DB, limit int) ([]ProvenanceEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT report_id, operation_type, condition, action, rule, overrides, trust, score, inputs_json, reason, created_at
		 FROM decision_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []ProvenanceEntry
	for rows.Next() {
		var e ProvenanceEntry
		var rule, overrides, inputs, reason sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ReportID, &e.OperationType, &e.Condition, &e.Action, &rule, &overrides,
			&e.Trust, &e.Score, &inputs, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.Rule = rule.String
		e.Overrides = overrides.String
		e.InputsJSON = inputs.String
		e.Reason = reason.String
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-decisions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
