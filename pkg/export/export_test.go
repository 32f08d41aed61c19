package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/planner"
)

func fixtureOutcome(t *testing.T) (*planner.Outcome, []model.Resource, time.Time, time.Time) {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	out := &planner.Outcome{
		RunID:      "run-1",
		StatusText: "optimal",
		Objective:  15,
		Schedule: model.Schedule{
			{RequestID: "a", ResourceID: "north", StartSlot: 0, EndSlot: 2,
				Start: start, End: start.Add(time.Hour), Priority: 10},
			{RequestID: "b", ResourceID: "north", StartSlot: 4, EndSlot: 6,
				Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Priority: 5},
		},
		Dispositions: []model.Disposition{
			{RequestID: "a", Reason: model.ReasonScheduled, Priority: 10},
			{RequestID: "b", Reason: model.ReasonScheduled, Priority: 5},
			{RequestID: "c", Reason: model.ReasonOutcompeted, Priority: 1},
		},
	}
	resources := []model.Resource{{ID: "north", Capacity: 1}}
	return out, resources, start, end
}

func TestWriteCSV(t *testing.T) {
	out, _, _, _ := fixtureOutcome(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, out.Schedule); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "a" || rows[1][1] != "north" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][4] != "5" {
		t.Fatalf("priority column: %v", rows[2])
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	out, _, _, _ := fixtureOutcome(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, out); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := buf.String()
	for _, want := range []string{`"run_id": "run-1"`, `"status": "optimal"`, `"request_id": "c"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("json missing %s:\n%s", want, s)
		}
	}
}

func TestWriteReport(t *testing.T) {
	out, resources, start, end := fixtureOutcome(t)
	var buf bytes.Buffer
	if err := WriteReport(&buf, out, resources, start, end); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := buf.String()
	for _, want := range []string{
		"run run-1: optimal",
		"north (2 observations):",
		"00:00 - 01:00  a",
		"idle  1h0m0s",
		"usage 50.0%",
		"unscheduled (1):",
		"c: outcompeted",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
}
