package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energychart/internal/models"
	"energychart/internal/utils"
)

func record(values map[string]float64) models.HistoricRecord {
	r := models.HistoricRecord{Time: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	for addr, v := range values {
		thing, channel, _ := strings.Cut(addr, "/")
		r.Set(thing, channel, utils.Float(v))
	}
	return r
}

func TestSummarizeDefaultRoles(t *testing.T) {
	r := record(map[string]float64{
		"meter0/ActivePower": -500, // selling
		"meter1/ActivePower": 2000,
		"ess0/ActivePower":   -300, // charging
		"ess0/Soc":           64,
	})

	s := Summarize(r, models.DefaultEdgeConfig())

	require.NotNil(t, s.Grid.ActivePower)
	require.NotNil(t, s.Production.ActivePower)
	require.NotNil(t, s.Consumption.ActivePower)
	assert.Equal(t, -500.0, *s.Grid.ActivePower)
	assert.Equal(t, 2000.0, *s.Production.ActivePower)
	assert.Equal(t, 1200.0, *s.Consumption.ActivePower)
	assert.Equal(t, 64.0, *s.Storage.Soc)
	assert.Nil(t, s.Production.DCActualPower)
}

func TestSummarizeMultipleMetersAndChargers(t *testing.T) {
	cfg := &models.EdgeConfig{
		Storage:          []string{"ess0", "ess1"},
		GridMeters:       []string{"meter0"},
		ProductionMeters: []string{"meter1", "meter2"},
		AsymmetricMeters: []string{"meter2"},
		Chargers:         []string{"charger0"},
	}
	r := record(map[string]float64{
		"meter0/ActivePower":   100,
		"meter1/ActivePower":   1000,
		"meter2/ActivePowerL1": 100,
		"meter2/ActivePowerL2": 200,
		"meter2/ActivePowerL3": 300,
		"charger0/ActualPower": 400,
		"ess0/Soc":             40,
		"ess1/Soc":             60,
		"ess0/ActivePower":     50,
	})

	s := Summarize(r, cfg)

	assert.Equal(t, 1600.0, *s.Production.ACActivePower)
	assert.Equal(t, 400.0, *s.Production.DCActualPower)
	assert.Equal(t, 2000.0, *s.Production.ActivePower)
	assert.Equal(t, 50.0, *s.Storage.Soc)
	assert.Equal(t, 2150.0, *s.Consumption.ActivePower)
}

func TestSummarizeMissingChannels(t *testing.T) {
	s := Summarize(models.HistoricRecord{}, models.DefaultEdgeConfig())

	assert.Nil(t, s.Grid.ActivePower)
	assert.Nil(t, s.Production.ActivePower)
	assert.Nil(t, s.Storage.Soc)
	assert.Nil(t, s.Consumption.ActivePower)
}

func TestSummarizeConsumptionNeverNegative(t *testing.T) {
	r := record(map[string]float64{
		"meter0/ActivePower": -3000,
		"meter1/ActivePower": 1000,
	})

	s := Summarize(r, nil)

	require.NotNil(t, s.Consumption.ActivePower)
	assert.Equal(t, 0.0, *s.Consumption.ActivePower)
}
