// Package export renders planning outcomes for operators: machine
// formats (JSON, CSV) and a human-readable per-telescope report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ogauthier/obsched/core/model"
	"github.com/ogauthier/obsched/core/planner"
)

// WriteJSON writes the full outcome to w in JSON format.
func WriteJSON(w io.Writer, out *planner.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes the schedule to w in CSV format, one row per placed
// observation.
func WriteCSV(w io.Writer, schedule model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"request_id", "resource_id", "start", "end", "priority"}); err != nil {
		return err
	}
	for _, e := range schedule {
		rec := []string{
			e.RequestID,
			e.ResourceID,
			e.Start.Format(time.RFC3339),
			e.End.Format(time.RFC3339),
			strconv.FormatFloat(e.Priority, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReport writes a per-resource text summary of the outcome: the
// placed observations in order, the idle gaps between them, the usage
// fraction of the horizon and the requests left unscheduled.
func WriteReport(w io.Writer, out *planner.Outcome, resources []model.Resource, horizonStart, horizonEnd time.Time) error {
	horizon := horizonEnd.Sub(horizonStart)
	fmt.Fprintf(w, "run %s: %s, objective %.3f", out.RunID, out.StatusText, out.Objective)
	if out.Gap > 0 {
		fmt.Fprintf(w, " (gap %.1f%%)", out.Gap*100)
	}
	fmt.Fprintln(w)

	byResource := make(map[string]model.Schedule)
	for _, e := range out.Schedule {
		byResource[e.ResourceID] = append(byResource[e.ResourceID], e)
	}

	for _, res := range resources {
		entries := byResource[res.ID]
		fmt.Fprintf(w, "\n%s (%d observation", res.ID, len(entries))
		if len(entries) != 1 {
			fmt.Fprint(w, "s")
		}
		fmt.Fprintln(w, "):")
		cursor := horizonStart
		var busy time.Duration
		for _, e := range entries {
			if gap := e.Start.Sub(cursor); gap > 0 {
				fmt.Fprintf(w, "  idle  %v\n", gap)
			}
			fmt.Fprintf(w, "  %s - %s  %s (priority %.1f)\n",
				e.Start.Format("15:04"), e.End.Format("15:04"), e.RequestID, e.Priority)
			busy += e.End.Sub(e.Start)
			if e.End.After(cursor) {
				cursor = e.End
			}
		}
		if gap := horizonEnd.Sub(cursor); gap > 0 {
			fmt.Fprintf(w, "  idle  %v\n", gap)
		}
		if horizon > 0 {
			fmt.Fprintf(w, "  usage %.1f%%\n", 100*busy.Seconds()/horizon.Seconds())
		}
	}

	var unscheduled []model.Disposition
	for _, d := range out.Dispositions {
		if d.Reason != model.ReasonScheduled {
			unscheduled = append(unscheduled, d)
		}
	}
	if len(unscheduled) > 0 {
		fmt.Fprintf(w, "\nunscheduled (%d):\n", len(unscheduled))
		for _, d := range unscheduled {
			fmt.Fprintf(w, "  %s: %s\n", d.RequestID, d.Reason)
		}
	}
	return nil
}
