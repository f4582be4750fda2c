package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energychart/internal/charts"
	"energychart/internal/i18n"
	"energychart/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderState(t *testing.T) {
	bundle, err := i18n.NewBundle("en")
	require.NoError(t, err)
	tr := bundle.Translator("")
	options := charts.NewEnergyChartOptions(tr)
	state := models.ViewState{Datasets: models.EmptyDataset()}

	var buf bytes.Buffer
	require.NoError(t, renderState(&buf, "png", state, options, tr))
	assert.True(t, strings.HasPrefix(buf.String(), "\x89PNG"))

	buf.Reset()
	require.NoError(t, renderState(&buf, "html", state, options, tr))
	assert.Contains(t, buf.String(), "<html")

	buf.Reset()
	require.NoError(t, renderState(&buf, "json", state, options, tr))
	var decoded models.ViewState
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, models.IsEmptyDataset(decoded.Datasets))

	assert.Error(t, renderState(&buf, "svg", state, options, tr))
}

func TestRenderCommand(t *testing.T) {
	t.Setenv("MOCKUP_MODE", "true")
	t.Setenv("MOCKS_DIR", t.TempDir())
	out := filepath.Join(t.TempDir(), "chart.json")

	_, err := execute(t, "render", "--from", "2024-06-21", "--format", "json", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var state models.ViewState
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Len(t, state.Datasets, 3)
	assert.NotEmpty(t, state.Labels)
	assert.False(t, state.Loading)
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"timestamps":["2024-05-01T09:00:00Z","2024-05-01T09:05:00Z"],
		"data":{"meter0/ActivePower":[-500,300]}}`), 0644))

	output, err := execute(t, "import", "--db", filepath.Join(dir, "history.db"), "--file", file)
	require.NoError(t, err)
	assert.Contains(t, output, "Imported 2 records")
}

func TestRecordRequiresDatabase(t *testing.T) {
	t.Setenv("HISTORY_DB", "")
	historyDB = ""
	_, err := execute(t, "record", "--db", "")
	assert.Error(t, err)
}
