package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetpool/core/model"
)

const sampleCSV = `ship_id,ship_type,route_id,month,distance,fuel_type,fuel_consumption,weather_conditions,engine_efficiency,CO2_emissions
NG001,Oil Service Boat,Warri-Bonny,January,132.26,HFO,3779.77,Stormy,92.14,10625.76
NG001,Oil Service Boat,Port Harcourt-Lagos,February,128.52,HFO,4461.44,Moderate,92.98,12779.1
NG002,Fishing Trawler,Lagos-Apapa,January,0,Diesel,10.5,Calm,75.2,30
`

func sampleJourneys() []model.Journey {
	return []model.Journey{
		{VesselID: "NG001", VesselType: "Tanker", RouteID: "R1", Period: "January", DistanceNM: 100, FuelType: "HFO", FuelConsumption: 50, Weather: "Calm", EngineEfficiency: 80, CO2KG: 1000},
		{VesselID: "NG002", VesselType: "Ferry", RouteID: "R2", Period: "January", DistanceNM: 200, FuelType: "Diesel", FuelConsumption: 20, Weather: "Stormy", EngineEfficiency: 90, CO2KG: 600},
	}
}

func TestReadCSV(t *testing.T) {
	js, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, js, 3)
	assert.Equal(t, model.Journey{
		VesselID:         "NG001",
		VesselType:       "Oil Service Boat",
		RouteID:          "Warri-Bonny",
		Period:           "January",
		DistanceNM:       132.26,
		FuelType:         "HFO",
		FuelConsumption:  3779.77,
		Weather:          "Stormy",
		EngineEfficiency: 92.14,
		CO2KG:            10625.76,
	}, js[0])
	assert.Equal(t, 0.0, js[2].DistanceNM)
}

func TestReadCSV_ColumnOrderAndBOM(t *testing.T) {
	in := "\ufeffCO2_emissions,distance,ship_id,fuel_consumption,extra\n300,100,A,20,x\n"
	js, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, js, 1)
	assert.Equal(t, "A", js[0].VesselID)
	assert.Equal(t, 300.0, js[0].CO2KG)
	assert.Equal(t, 100.0, js[0].DistanceNM)
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("ship_id,distance,fuel_consumption\nA,1,2\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadCSV(strings.NewReader("ship_id,distance,fuel_consumption,CO2_emissions\nA,abc,2,3\n"))
	assert.ErrorIs(t, err, model.ErrInvalidJourney)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ReadCSV(strings.NewReader("ship_id,distance,fuel_consumption,CO2_emissions\nA,-1,2,3\n"))
	assert.ErrorIs(t, err, model.ErrInvalidJourney)

	_, err = ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrInvalidJourney)
}

func TestReadCSV_BlankRequiredCell(t *testing.T) {
	const header = "ship_id,ship_type,distance,fuel_consumption,engine_efficiency,CO2_emissions\n"
	for name, tc := range map[string]struct {
		row  string
		line string
		col  string
	}{
		"co2":      {row: "NG001,Tanker,120,3000,90,\n", line: "line 2", col: "CO2_emissions"},
		"distance": {row: "NG001,Tanker,120,3000,90,9000\nNG002,Tanker,,3000,90,9000\n", line: "line 3", col: "distance"},
		"fuel":     {row: "NG001,Tanker,120, ,90,9000\n", line: "line 2", col: "fuel_consumption"},
	} {
		t.Run(name, func(t *testing.T) {
			js, err := ReadCSV(strings.NewReader(header + tc.row))
			require.ErrorIs(t, err, model.ErrInvalidJourney)
			assert.Contains(t, err.Error(), tc.line)
			assert.Contains(t, err.Error(), tc.col)
			assert.Nil(t, js)
		})
	}

	js, err := ReadCSV(strings.NewReader(header + "NG001,,120,3000,,9000\n"))
	require.NoError(t, err)
	require.Len(t, js, 1)
	assert.Zero(t, js[0].EngineEfficiency)
	assert.Equal(t, 9000.0, js[0].CO2KG)
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleJourneys()))
	js, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleJourneys(), js)
}

func TestReadYAML(t *testing.T) {
	list := `
- ship_id: A
  ship_type: Tanker
  distance: 100
  fuel_consumption: 20
  CO2_emissions: 300
`
	js, err := ReadYAML(strings.NewReader(list))
	require.NoError(t, err)
	require.Len(t, js, 1)
	assert.Equal(t, "Tanker", js[0].VesselType)
	assert.Equal(t, 300.0, js[0].CO2KG)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleJourneys()))
	js, err = ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleJourneys(), js)

	_, err = ReadYAML(strings.NewReader("- ship_id: ''\n"))
	assert.ErrorIs(t, err, model.ErrInvalidJourney)
	_, err = ReadYAML(strings.NewReader("42\n"))
	assert.ErrorIs(t, err, model.ErrInvalidJourney)
}

func TestReadJSON(t *testing.T) {
	js, err := ReadJSON(strings.NewReader(`[{"ship_id":"A","distance":10,"CO2_emissions":5}]`))
	require.NoError(t, err)
	require.Len(t, js, 1)
	assert.Equal(t, 5.0, js[0].CO2KG)

	js, err = ReadJSON(strings.NewReader(`{"journeys":[{"ship_id":"B","distance":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, "B", js[0].VesselID)

	_, err = ReadJSON(strings.NewReader(`[{"ship_id":"A","distance":-1}]`))
	assert.ErrorIs(t, err, model.ErrInvalidJourney)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fleet.db")
	store, err := OpenSQLite(path, "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Save(ctx, sampleJourneys()))
	updated := sampleJourneys()[:1]
	updated[0].CO2KG = 1500
	require.NoError(t, store.Save(ctx, updated))

	js, err := store.Journeys(ctx)
	require.NoError(t, err)
	require.Len(t, js, 2)
	assert.Equal(t, "NG001", js[0].VesselID)
	assert.Equal(t, 1500.0, js[0].CO2KG)
	assert.Equal(t, sampleJourneys()[1], js[1])

	bad := []model.Journey{{VesselID: ""}}
	assert.ErrorIs(t, store.Save(ctx, bad), model.ErrInvalidJourney)

	_, err = OpenSQLite(path, "journeys; DROP TABLE x")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "fleet.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))
	js, err := Load(ctx, Config{Path: csvPath})
	require.NoError(t, err)
	assert.Len(t, js, 3)

	txtPath := filepath.Join(dir, "fleet.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(sampleCSV), 0o644))
	js, err = Load(ctx, Config{Path: txtPath, Format: "CSV"})
	require.NoError(t, err)
	assert.Len(t, js, 3)

	dbPath := filepath.Join(dir, "fleet.sqlite")
	store, err := OpenSQLite(dbPath, "trips")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sampleJourneys()))
	require.NoError(t, store.Close())
	js, err = Load(ctx, Config{Path: dbPath, Table: "trips"})
	require.NoError(t, err)
	assert.Equal(t, sampleJourneys(), js)

	_, err = Load(ctx, Config{Path: txtPath})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = Load(ctx, Config{})
	assert.Error(t, err)
	_, err = Load(ctx, Config{Path: filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
}
