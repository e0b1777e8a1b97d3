package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/hil"
	"github.com/maureliano/hvdc-simulator-sub000/internal/logging"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// evaluated produces n reports one second apart from a deterministic orchestrator.
func evaluated(t *testing.T, n int) []orchestrator.Report {
	t.Helper()
	seq := 0
	o := orchestrator.New(orchestrator.DefaultConfig(), orchestrator.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("r-%03d", seq)
	}))
	batch := []hil.Outcome{{TestName: "step", Passed: true, ErrorPct: 0.3, Confidence: 95, Timestamp: t0}}

	reports := make([]orchestrator.Report, n)
	for i := range reports {
		at := t0.Add(time.Duration(i) * time.Second)
		digital := measurement.Snapshot{Timestamp: at, Voltage: 500, Current: 2, Power: 1000, Frequency: 60}
		real := digital
		real.Voltage = 500 + float64(i)
		rep, err := o.Evaluate(digital, real, batch, gate.OpControl)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		reports[i] = rep
	}
	return reports
}

func TestSaveAndGetReport(t *testing.T) {
	s := tempDB(t)
	rep := evaluated(t, 1)[0]

	if err := s.SaveReport(rep, gate.DefaultGateConfig()); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	got, err := s.GetReport(rep.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if diff := cmp.Diff(rep, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestGetReportNotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.GetReport("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveReportWritesProvenance(t *testing.T) {
	s := tempDB(t)
	rep := evaluated(t, 1)[0]
	if err := s.SaveReport(rep, gate.DefaultGateConfig()); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	entries, err := logging.ListDecisions(s.DB(), 10)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 provenance row, got %d", len(entries))
	}
	if entries[0].ReportID != rep.ID || entries[0].Action != string(rep.Decision.Action) {
		t.Errorf("provenance does not match report: %+v", entries[0])
	}
}

func TestSaveReportDuplicateRollsBack(t *testing.T) {
	s := tempDB(t)
	rep := evaluated(t, 1)[0]
	if err := s.SaveReport(rep, gate.DefaultGateConfig()); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if err := s.SaveReport(rep, gate.DefaultGateConfig()); err == nil {
		t.Fatal("expected duplicate report id to fail")
	}

	entries, err := logging.ListDecisions(s.DB(), 10)
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected failed save to leave 1 provenance row, got %d", len(entries))
	}
}

func TestListReportsOldestFirst(t *testing.T) {
	s := tempDB(t)
	reports := evaluated(t, 5)
	for _, r := range reports {
		if err := s.SaveReport(r, gate.DefaultGateConfig()); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	got, err := s.ListReports(3)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(got))
	}
	for i, want := range []string{"r-003", "r-004", "r-005"} {
		if got[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}

	all, err := s.ListReports(0)
	if err != nil {
		t.Fatalf("ListReports(0): %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected all 5 reports, got %d", len(all))
	}

	n, err := s.Count()
	if err != nil || n != 5 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestLoadHistory(t *testing.T) {
	s := tempDB(t)
	for _, r := range evaluated(t, 4) {
		if err := s.SaveReport(r, gate.DefaultGateConfig()); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	o := orchestrator.New(orchestrator.DefaultConfig())
	n, err := s.LoadHistory(o, 0)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if n != 4 || o.Len() != 4 {
		t.Fatalf("expected 4 restored reports, got n=%d len=%d", n, o.Len())
	}
	h := o.History(0).Reports()
	if h[0].ID != "r-001" || h[3].ID != "r-004" {
		t.Errorf("unexpected restored order: %s..%s", h[0].ID, h[3].ID)
	}
}

func TestClosedStore(t *testing.T) {
	s := tempDB(t)
	s.Close()
	if _, err := s.ListReports(1); err == nil {
		t.Fatal("expected error on closed db")
	}
}
