package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"energychart/internal/charts"
	"energychart/internal/fetchers"
	"energychart/internal/i18n"
	"energychart/internal/models"
)

var (
	renderFrom     string
	renderTo       string
	renderFormat   string
	renderOut      string
	renderLang     string
	renderChannels string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the energy chart of a time range",
	Long: `Queries the configured data source and writes the energy chart as a PNG
image, a standalone HTML page or the JSON view state.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderFrom, "from", "", "start date (YYYY-MM-DD or RFC3339, default today)")
	renderCmd.Flags().StringVar(&renderTo, "to", "", "end date, inclusive (default end of the start day)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "png", "output format: png, html or json")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "-", "output file, - for stdout")
	renderCmd.Flags().StringVar(&renderLang, "lang", "", "language (default $DEFAULT_LANGUAGE)")
	renderCmd.Flags().StringVar(&renderChannels, "channels", "", "comma separated thing/Channel list")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	rng, err := models.ParseTimeRange(renderFrom, renderTo, loc, time.Now())
	if err != nil {
		return err
	}
	edgeCfg, err := cfg.LoadEdgeConfig()
	if err != nil {
		return err
	}
	channels, err := models.ParseChannelAddresses(renderChannels)
	if err != nil {
		return err
	}
	if channels.Len() == 0 {
		channels = edgeCfg.ImportantChannels()
	}

	bundle, err := i18n.NewBundle(cfg.DefaultLanguage)
	if err != nil {
		return err
	}
	tr := bundle.Translator(renderLang)

	source, err := fetchers.NewHistoricDataFetcher(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	chart := charts.NewEnergyChart(source.Fetcher, edgeCfg, tr, charts.WithQueryTimeout(cfg.EdgeTimeout))
	defer chart.Close()
	if err := chart.Update(ctx, rng, channels); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderState(&buf, renderFormat, chart.State(), chart.Options(), tr); err != nil {
		return err
	}
	return writeOutput(renderOut, buf.Bytes(), cmd.OutOrStdout())
}

// renderState encodes state in format
func renderState(w io.Writer, format string, state models.ViewState, options charts.ChartOptions, tr i18n.Translator) error {
	switch format {
	case "png":
		return charts.RenderPNG(state, charts.PNGOptions{
			Title:  tr.Instant(i18n.KeyChartTitle),
			YLabel: options.Scales.YAxis.ScaleLabel.LabelString,
		}, w)
	case "html":
		page, err := charts.RenderLinePage(state, options, tr)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	default:
		return fmt.Errorf("unsupported format %q: use png, html or json", format)
	}
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
