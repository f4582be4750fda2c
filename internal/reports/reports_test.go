package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energychart/internal/fetchers"
	"energychart/internal/i18n"
	"energychart/internal/mocks"
	"energychart/internal/models"
	"energychart/internal/storage"
	"energychart/internal/utils"
)

var start = time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC)

func hourlyState(production, grid, consumption []*float64) models.ViewState {
	labels := make([]time.Time, len(production))
	for i := range labels {
		labels[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return models.ViewState{
		Labels: labels,
		Datasets: []models.Dataset{
			{Label: "Production", Data: production},
			{Label: "Grid", Data: grid},
			{Label: "Consumption", Data: consumption},
		},
		Range: models.TimeRange{From: labels[0], To: labels[len(labels)-1]},
	}
}

func f(v float64) *float64 { return utils.Float(v) }

func englishTranslator(t *testing.T) i18n.Translator {
	t.Helper()
	bundle, err := i18n.NewBundle("en")
	require.NoError(t, err)
	return bundle.Translator("en")
}

func TestIntegrate(t *testing.T) {
	state := hourlyState(
		[]*float64{f(2), f(4), f(4)},
		[]*float64{f(1), f(-3), nil},
		[]*float64{f(1), f(1), f(3)},
	)

	totals := Integrate(state)
	assert.Equal(t, 3, totals.Samples)
	assert.InDelta(t, 7.0, totals.Produced, 1e-9)
	assert.InDelta(t, 3.0, totals.Consumed, 1e-9)
	assert.InDelta(t, 1.0, totals.Bought, 1e-9)
	assert.InDelta(t, 0.0, totals.Sold, 1e-9)
}

func TestIntegrateEmpty(t *testing.T) {
	totals := Integrate(models.ViewState{Datasets: models.EmptyDataset()})
	assert.Equal(t, Totals{}, totals)

	misaligned := hourlyState([]*float64{f(1), f(1)}, []*float64{f(1)}, []*float64{f(1), f(1)})
	assert.Equal(t, Totals{Samples: 2}, Integrate(misaligned))
}

func TestSummaryMarkdown(t *testing.T) {
	tr := englishTranslator(t)
	state := hourlyState([]*float64{f(1)}, []*float64{f(1)}, []*float64{f(1)})

	md := SummaryMarkdown(Totals{Produced: 1234.5, Sold: 2, Samples: 1}, state, tr)
	assert.Contains(t, md, "## Energy report")
	assert.Contains(t, md, "| Produced | 1,234.50 |")
	assert.Contains(t, md, "Samples: 1")

	html, err := MarkdownToHTML(newMarkdown(), md)
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>Sold to grid</td>")
}

func TestGenerate(t *testing.T) {
	tr := englishTranslator(t)
	state := hourlyState(
		[]*float64{f(2), f(4)},
		[]*float64{f(1), f(-3)},
		[]*float64{f(1), f(1)},
	)
	ts := time.Date(2024, 6, 22, 8, 30, 0, 0, time.UTC)

	files, err := NewGenerator().Generate(context.Background(), state, tr, ts)
	require.NoError(t, err)
	assert.Equal(t, "2024/06/22/EnergyReport-2024-06-22-08-30-00", files.FolderPath)
	require.Len(t, files.Files, 3)

	page := string(files.Files[IndexFile])
	assert.Contains(t, page, `<section class="summary">`)
	assert.Contains(t, page, "Bought from grid")
	assert.True(t, strings.HasPrefix(string(files.Files[ChartFile]), "\x89PNG"))

	var data ReportData
	require.NoError(t, json.Unmarshal(files.Files[DataFile], &data))
	assert.Equal(t, "en", data.Language)
	assert.InDelta(t, 3.0, data.Totals.Produced, 1e-9)
	assert.Len(t, data.State.Labels, 2)
}

func TestReportService(t *testing.T) {
	client, err := storage.NewLocalStorageClient(t.TempDir())
	require.NoError(t, err)
	tr := englishTranslator(t)

	svc := NewReportService(mocks.NewMockService(t.TempDir()), models.DefaultEdgeConfig(), client)
	svc.now = func() time.Time { return time.Date(2024, 6, 22, 8, 30, 0, 0, time.UTC) }

	rng := models.TimeRange{From: start.Truncate(24 * time.Hour), To: start.Truncate(24 * time.Hour).Add(24*time.Hour - time.Second)}
	result, err := svc.Create(context.Background(), rng, nil, tr)
	require.NoError(t, err)
	assert.Equal(t, "2024/06/22/EnergyReport-2024-06-22-08-30-00/index.html", result.Path)
	assert.Greater(t, result.Totals.Produced, 0.0)

	reports, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{result.Path}, reports)

	data, err := svc.GetFile(context.Background(), strings.Replace(result.Path, IndexFile, DataFile, 1))
	require.NoError(t, err)
	assert.Contains(t, string(data), "produced_kwh")
}

func TestReportServiceFetchFailure(t *testing.T) {
	client, err := storage.NewLocalStorageClient(t.TempDir())
	require.NoError(t, err)

	failing := fetchers.FetcherFunc(func(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) (*models.HistoricData, error) {
		return nil, errors.New("edge offline")
	})
	svc := NewReportService(failing, models.DefaultEdgeConfig(), client)

	_, err = svc.Create(context.Background(), models.TimeRange{From: start, To: start.Add(time.Hour)}, nil, englishTranslator(t))
	require.Error(t, err)

	reports, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
