// Package export writes optimization results as CSV reports, JSON and
// interactive HTML charts.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// WriteReportCSV writes the report of one chosen schedule: totals, the
// per-appliance table and the tariff used.
func WriteReportCSV(w io.Writer, ev *optimizer.Evaluator, ind *model.Individual, generatedAt time.Time) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Optimized smart home schedule"},
		{"Generated at", generatedAt.Format(time.RFC3339)},
		{"Total cost", formatFloat(ind.Cost)},
		{"Total discomfort (h)", formatFloat(ind.Discomfort)},
		{},
		{"APPLIANCES"},
		{"Appliance", "Duration (h)", "Power (kW)", "Preferred start", "Start", "Stop", "Cost"},
	}
	for _, b := range ev.Breakdown(ind.StartHours) {
		rows = append(rows, []string{
			b.Appliance.Name,
			strconv.Itoa(b.Appliance.DurationHours),
			formatFloat(b.Appliance.PowerKW),
			hourLabel(b.Appliance.PreferredStartHour),
			hourLabel(b.Start),
			hourLabel(b.Stop),
			strconv.FormatFloat(b.Cost, 'f', 2, 64),
		})
	}
	rows = append(rows, []string{}, []string{"HOURLY TARIFF"}, []string{"Hour", "Rate (per kWh)"})
	for h, r := range ev.Scenario().Tariff().Rates() {
		rows = append(rows, []string{hourLabel(h), formatFloat(r)})
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes a short plain-text description of a schedule.
func WriteSummary(w io.Writer, ev *optimizer.Evaluator, ind *model.Individual) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cost: %s\n", formatFloat(ind.Cost))
	fmt.Fprintf(&sb, "Discomfort: %s h\n", formatFloat(ind.Discomfort))
	sb.WriteString(strings.Repeat("-", 30))
	sb.WriteString("\n")
	for _, b := range ev.Breakdown(ind.StartHours) {
		fmt.Fprintf(&sb, "%-12s : Start %s -> %s\n", b.Appliance.Name, hourLabel(b.Start), hourLabel(b.Stop))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
