package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/homeopt/core/model"
	"github.com/kilianp07/homeopt/core/optimizer"
	"github.com/kilianp07/homeopt/core/scenario"
)

func fixture(t *testing.T) (*optimizer.Evaluator, []*model.Individual) {
	t.Helper()
	ev := optimizer.NewEvaluator(scenario.Default(), optimizer.DefaultPenalties())
	front := []*model.Individual{
		{StartHours: []int{22, 1, 0, 2, 3}},
		{StartHours: []int{18, 20, 18, 20, 7}},
	}
	ev.EvaluateAll(front)
	return ev, front
}

func TestWriteReportCSV(t *testing.T) {
	ev, front := fixture(t)
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, ev, front[0], at))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	// csv.Reader skips the blank separator lines
	assert.Equal(t, []string{"Generated at", "2024-05-01T08:30:00Z"}, rows[1])
	assert.Equal(t, "Total cost", rows[2][0])
	assert.Equal(t, []string{"APPLIANCES"}, rows[4])
	assert.Equal(t, []string{"Appliance", "Duration (h)", "Power (kW)", "Preferred start", "Start", "Stop", "Cost"}, rows[5])
	assert.Equal(t, []string{"Washer", "2", "1.2", "18:00", "22:00", "00:00", "2.16"}, rows[6])
	assert.Equal(t, []string{"Dryer", "1", "1", "18:00", "01:00", "02:00", "0.30"}, rows[7])
	assert.Equal(t, []string{"EV Charger", "4", "7", "18:00", "00:00", "04:00", "8.40"}, rows[8])

	tariffStart := 6 + 5 + 2
	assert.Equal(t, []string{"Hour", "Rate (per kWh)"}, rows[tariffStart-1])
	assert.Equal(t, []string{"00:00", "0.3"}, rows[tariffStart])
	assert.Equal(t, []string{"06:00", "0.9"}, rows[tariffStart+6])
	assert.Len(t, rows, tariffStart+24)
}

func TestWriteSummary(t *testing.T) {
	ev, front := fixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, ev, front[0]))
	out := buf.String()
	assert.Contains(t, out, "Washer       : Start 22:00 -> 00:00")
	assert.Contains(t, out, "Boiler       : Start 03:00 -> 06:00")
	assert.True(t, strings.HasPrefix(out, "Cost: "))
}

func TestWriteFront(t *testing.T) {
	ev, front := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteFrontCSV(&buf, ev.Scenario(), front))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"cost", "discomfort", "Washer", "Dryer", "EV Charger", "Dishwasher", "Boiler"}, rows[0])
	assert.Equal(t, []string{"18", "20", "18", "20", "7"}, rows[2][2:])

	buf.Reset()
	require.NoError(t, WriteFrontJSON(&buf, front))
	var got []FrontRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, []int{22, 1, 0, 2, 3}, got[0].StartHours)
	assert.Equal(t, "22:00, 01:00, 00:00, 02:00, 03:00", got[0].Schedule)
	assert.Equal(t, front[1].Cost, got[1].Cost)
}

func TestRowsCopiesGenome(t *testing.T) {
	_, front := fixture(t)
	rows := Rows(front)
	rows[0].StartHours[0] = 5
	assert.Equal(t, 22, front[0].StartHours[0])
}

func TestRenderCharts(t *testing.T) {
	ev, front := fixture(t)
	var buf bytes.Buffer
	snap := optimizer.Snapshot{Generation: 7, Front: front, Population: front}
	require.NoError(t, RenderFrontHTML(&buf, snap))
	assert.Contains(t, buf.String(), "Pareto front")
	assert.Contains(t, buf.String(), "generation 7")

	buf.Reset()
	require.NoError(t, RenderTariffHTML(&buf, ev.Scenario().Tariff()))
	assert.Contains(t, buf.String(), "Hourly tariff")
	assert.Contains(t, buf.String(), "23:00")
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "balanced", c.Selection)
	assert.NoError(t, c.Validate())
	assert.False(t, c.Enabled())

	c.CSV = true
	assert.Error(t, c.Validate())
	c.Dir = t.TempDir()
	assert.NoError(t, c.Validate())

	c.Selection = "cheapest"
	assert.Error(t, c.Validate())
}

func TestWriteAll(t *testing.T) {
	ev, front := fixture(t)
	dir := filepath.Join(t.TempDir(), "out")
	cfg := Config{Dir: dir, CSV: true, JSON: true, HTML: true}
	cfg.SetDefaults()

	paths, err := WriteAll(cfg, "run1", ev, optimizer.Snapshot{Front: front, Population: front}, time.Now())
	require.NoError(t, err)
	require.Len(t, paths, 6)
	for _, name := range []string{"front.csv", "report.csv", "summary.txt", "front.json", "front.html", "tariff.html"} {
		info, err := os.Stat(filepath.Join(dir, "run1-"+name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestWriteAllDisabled(t *testing.T) {
	ev, front := fixture(t)
	paths, err := WriteAll(Config{}, "run1", ev, optimizer.Snapshot{Front: front}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, paths)
}
