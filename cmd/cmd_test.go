package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetpool/core/anomaly"
	"github.com/kilianp07/fleetpool/core/compliance"
	"github.com/kilianp07/fleetpool/core/prediction"
	"github.com/kilianp07/fleetpool/infra/archive"
	"github.com/kilianp07/fleetpool/infra/dataset"
)

const fleetCSV = `ship_id,ship_type,route_id,month,distance,fuel_type,fuel_consumption,weather_conditions,engine_efficiency,CO2_emissions
A,Ferry,R1,January,100,HFO,20,Calm,80,300
B,Ferry,R1,January,100,HFO,30,Stormy,75,500
C,Tanker,R2,February,200,Diesel,50,Calm,85,700
D,Tanker,R2,February,100,Diesel,25,Moderate,82,400
`

func resetFlags() {
	cfgPath = ""
	reportJSON, reportCSV, reportHTML = false, "", ""
	vesselsJSON = false
	poolJSON, poolMax, poolExclusive = false, 0, false
	predictJSON = false
	trainOut, trainRidge = "co2_model.json", prediction.DefaultRidge
	anomalyOpts, anomalyJSON = anomaly.DefaultOptions(), false
	importDB, importTable = "fleet.db", dataset.DefaultTable
	historyLimit, historyVessel, historySince, historyJSON = 20, "", 0, false
}

// setup writes the dataset and a config pointing at it, with extra YAML
// appended.
func setup(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "fleet.csv")
	require.NoError(t, os.WriteFile(data, []byte(fleetCSV), 0o644))
	cfg := filepath.Join(dir, "config.yaml")
	body := "logging:\n  level: error\ndataset:\n  path: " + data + "\n" + extra
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	return cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	cfg := setup(t, "")
	csvPath := filepath.Join(t.TempDir(), "details.csv")
	htmlPath := filepath.Join(t.TempDir(), "chart.html")

	out, err := execute(t, "-c", cfg, "report", "--csv", csvPath, "--html", htmlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Dataset: 4 journeys, 4 vessels")
	assert.Contains(t, out, "Surplus vessels:        2")
	assert.Contains(t, out, "Deficit vessels:        2")
	assert.Contains(t, out, "Fleet average:          3875.00 gCO2/nm")
	assert.Contains(t, out, "POOLING OPPORTUNITIES")

	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ship_id,ship_type")
	raw, err = os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "GHG intensity per vessel")
}

func TestReportCommand_JSON(t *testing.T) {
	out, err := execute(t, "-c", setup(t, ""), "report", "--json")
	require.NoError(t, err)
	var r compliance.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 4, r.TotalVessels)
	assert.InDelta(t, 3875*0.95, r.TargetIntensity, 1e-9)
}

func TestVesselsCommand(t *testing.T) {
	cfg := setup(t, "")
	out, err := execute(t, "-c", cfg, "vessels")
	require.NoError(t, err)
	for _, id := range []string{"A", "B", "C", "D"} {
		assert.Contains(t, out, id+" ")
	}

	out, err = execute(t, "-c", cfg, "vessels", "B")
	require.NoError(t, err)
	assert.Contains(t, out, "Deficit")
	assert.Contains(t, out, "January")

	_, err = execute(t, "-c", cfg, "vessels", "Z")
	assert.ErrorIs(t, err, compliance.ErrVesselNotFound)
}

func TestPoolCommands(t *testing.T) {
	cfg := setup(t, "")
	out, err := execute(t, "-c", cfg, "pool", "simulate", "A", "B")
	require.NoError(t, err)
	assert.Contains(t, out, "A (Surplus) + B (Deficit)")
	assert.Contains(t, out, "Financial impact:")

	_, err = execute(t, "-c", cfg, "pool", "best", "--max", "2", "--exclusive")
	require.NoError(t, err)

	_, err = execute(t, "-c", cfg, "pool", "simulate", "A")
	assert.Error(t, err)
}

func TestTrainThenPredict(t *testing.T) {
	_, err := execute(t, "-c", setup(t, ""), "predict")
	assert.ErrorIs(t, err, prediction.ErrUnavailable)

	model := filepath.Join(t.TempDir(), "model.json")
	out, err := execute(t, "-c", setup(t, ""), "train", "--out", model)
	require.NoError(t, err)
	assert.Contains(t, out, "Model trained on 4 journeys")

	cfg := setup(t, "prediction:\n  type: linear\n  conf:\n    path: "+model+"\n")
	out, err = execute(t, "-c", cfg, "predict")
	require.NoError(t, err)
	assert.Contains(t, out, "PREDICTED kg")
}

func TestAnomaliesCommand(t *testing.T) {
	out, err := execute(t, "-c", setup(t, ""), "anomalies", "--json")
	require.NoError(t, err)
	var res anomaly.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	_, err = execute(t, "-c", setup(t, ""), "anomalies", "--z=-1")
	assert.ErrorIs(t, err, anomaly.ErrInvalidOptions)
}

func TestDatasetImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fleet.csv")
	require.NoError(t, os.WriteFile(src, []byte(fleetCSV), 0o644))
	db := filepath.Join(dir, "fleet.db")

	out, err := execute(t, "dataset", "import", src, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 4 journeys")

	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("logging:\n  level: error\ndataset:\n  path: "+db+"\n"), 0o644))
	out, err = execute(t, "-c", cfg, "vessels")
	require.NoError(t, err)
	assert.Contains(t, out, "Tanker")
}

func TestNoDatasetConfigured(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("logging:\n  level: error\n"), 0o644))
	_, err := execute(t, "-c", cfg, "report")
	assert.Error(t, err)
}

func TestHistoryCommand(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "runs.jsonl")
	cfg := setup(t, "archive:\n  path: "+archivePath+"\n")

	for i := 0; i < 2; i++ {
		_, err := execute(t, "-c", cfg, "report", "--json")
		require.NoError(t, err)
	}
	out, err := execute(t, "-c", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "TIME")

	out, err = execute(t, "-c", cfg, "history", "--json", "--vessel", "D", "--limit", "1")
	require.NoError(t, err)
	var runs []archive.Record
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].TotalVessels)

	_, err = execute(t, "-c", setup(t, ""), "history")
	assert.Error(t, err)
}
