package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"energychart/internal/charts"
	"energychart/internal/i18n"
	"energychart/internal/logger"
	"energychart/internal/models"
	"energychart/internal/storage"
)

// Report file names
const (
	IndexFile = storage.ReportIndexFile
	ChartFile = "chart.png"
	DataFile  = "data.json"
)

// GeneratedFiles contains all files generated for a report
type GeneratedFiles struct {
	Timestamp  time.Time
	FolderPath string
	Totals     Totals
	Files      map[string][]byte
}

// ReportData is the content of data.json
type ReportData struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Language    string           `json:"language"`
	Totals      Totals           `json:"totals"`
	State       models.ViewState `json:"state"`
}

// Generator renders the files of an energy report
type Generator struct {
	markdown goldmark.Markdown
	log      *logger.Logger
}

// NewGenerator creates a report generator
func NewGenerator() *Generator {
	return &Generator{
		markdown: newMarkdown(),
		log:      logger.Component("reports"),
	}
}

// Generate renders the HTML page, the PNG chart and the JSON data of state
// concurrently
func (g *Generator) Generate(ctx context.Context, state models.ViewState, tr i18n.Translator, timestamp time.Time) (*GeneratedFiles, error) {
	options := charts.NewEnergyChartOptions(tr)
	totals := Integrate(state)
	files := &GeneratedFiles{
		Timestamp:  timestamp,
		FolderPath: storage.GenerateReportFolderPath(timestamp),
		Totals:     totals,
		Files:      make(map[string][]byte, 3),
	}

	var mu sync.Mutex
	put := func(name string, data []byte) {
		mu.Lock()
		defer mu.Unlock()
		files.Files[name] = data
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		page, err := g.buildHTML(state, options, totals, tr)
		if err != nil {
			return err
		}
		put(IndexFile, []byte(page))
		return ctx.Err()
	})
	group.Go(func() error {
		var buf bytes.Buffer
		err := charts.RenderPNG(state, charts.PNGOptions{
			Title:  tr.Instant(i18n.KeyChartTitle),
			YLabel: options.Scales.YAxis.ScaleLabel.LabelString,
		}, &buf)
		if err != nil {
			return fmt.Errorf("failed to render chart image: %w", err)
		}
		put(ChartFile, buf.Bytes())
		return ctx.Err()
	})
	group.Go(func() error {
		data, err := json.MarshalIndent(ReportData{
			GeneratedAt: timestamp,
			Language:    tr.Language().String(),
			Totals:      totals,
			State:       state,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report data: %w", err)
		}
		put(DataFile, data)
		return ctx.Err()
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	g.log.Info("Report generated", map[string]interface{}{
		"folder":   files.FolderPath,
		"samples":  totals.Samples,
		"produced": totals.Produced,
	})
	return files, nil
}

// buildHTML renders the chart page with the markdown summary below the chart
func (g *Generator) buildHTML(state models.ViewState, options charts.ChartOptions, totals Totals, tr i18n.Translator) (string, error) {
	page, err := charts.RenderLinePage(state, options, tr)
	if err != nil {
		return "", err
	}
	summary, err := MarkdownToHTML(g.markdown, SummaryMarkdown(totals, state, tr))
	if err != nil {
		return "", err
	}

	section := `<section class="summary">` + summary + `<img src="` + ChartFile + `" alt="` + tr.Instant(i18n.KeyChartTitle) + `"></section>`
	if idx := strings.LastIndex(page, "</body>"); idx >= 0 {
		return page[:idx] + section + page[idx:], nil
	}
	return page + section, nil
}
