package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/homeopt/core/model"
)

// FrontRow is the exported form of one Pareto-optimal schedule.
type FrontRow struct {
	StartHours []int   `json:"start_hours"`
	Schedule   string  `json:"schedule"`
	Cost       float64 `json:"cost"`
	Discomfort float64 `json:"discomfort"`
}

// Rows converts individuals to rows ordered as given.
func Rows(front []*model.Individual) []FrontRow {
	rows := make([]FrontRow, len(front))
	for i, ind := range front {
		hours := make([]int, len(ind.StartHours))
		copy(hours, ind.StartHours)
		rows[i] = FrontRow{StartHours: hours, Schedule: ind.Schedule(), Cost: ind.Cost, Discomfort: ind.Discomfort}
	}
	return rows
}

// WriteFrontJSON writes the front as a JSON array.
func WriteFrontJSON(w io.Writer, front []*model.Individual) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Rows(front))
}

// WriteFrontCSV writes one line per schedule with one start column per
// appliance.
func WriteFrontCSV(w io.Writer, sc *model.Scenario, front []*model.Individual) error {
	cw := csv.NewWriter(w)
	header := []string{"cost", "discomfort"}
	for _, a := range sc.Appliances() {
		header = append(header, a.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, ind := range front {
		rec := []string{formatFloat(ind.Cost), formatFloat(ind.Discomfort)}
		for _, h := range ind.StartHours {
			rec = append(rec, strconv.Itoa(h))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
