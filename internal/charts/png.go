package charts

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"energychart/internal/models"
)

var pngColors = []drawing.Color{
	{R: 45, G: 143, B: 171, A: 255},
	{R: 0, G: 0, B: 0, A: 255},
	{R: 221, G: 223, B: 1, A: 255},
}

// PNGOptions controls the static image rendering
type PNGOptions struct {
	Title  string
	YLabel string
	Width  int
	Height int
}

// RenderPNG draws state as a PNG time series chart. Missing values are
// skipped; a zero baseline spans the shown range so that an empty state
// still renders.
func RenderPNG(state models.ViewState, options PNGOptions, w io.Writer) error {
	if options.Width == 0 {
		options.Width = 900
	}
	if options.Height == 0 {
		options.Height = 400
	}
	if options.YLabel == "" {
		options.YLabel = PowerUnit
	}

	from, to := pngRange(state)
	minY, maxY := 0.0, 0.0

	series := []chart.Series{
		chart.TimeSeries{
			Name: "0 " + options.YLabel,
			Style: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1,
			},
			XValues: []time.Time{from, to},
			YValues: []float64{0, 0},
		},
	}

	for i, ds := range state.Datasets {
		var xs []time.Time
		var ys []float64
		for j, v := range ds.Data {
			if v == nil || j >= len(state.Labels) {
				continue
			}
			xs = append(xs, state.Labels[j])
			ys = append(ys, *v)
			minY = math.Min(minY, *v)
			maxY = math.Max(maxY, *v)
		}
		if len(xs) == 0 {
			continue
		}
		color := drawing.ColorBlack
		if i < len(pngColors) {
			color = pngColors[i]
		}
		series = append(series, chart.TimeSeries{
			Name: ds.Label,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				FillColor:   color.WithAlpha(50),
			},
			XValues: xs,
			YValues: ys,
		})
	}

	if minY == maxY {
		maxY = minY + 1
	}

	graph := chart.Chart{
		Title: options.Title,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  options.Width,
		Height: options.Height,
		XAxis: chart.XAxis{
			Style: chart.Style{
				FontSize: 9,
			},
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(time.Time); ok {
					return t.Format("01-02 15:04")
				}
				if f, ok := v.(float64); ok {
					return chart.TimeFromFloat64(f).Format("01-02 15:04")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name: options.YLabel,
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				FontSize: 10,
			},
			Range: &chart.ContinuousRange{
				Min: minY,
				Max: maxY,
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render energy chart image: %w", err)
	}
	return nil
}

// pngRange returns the x-axis bounds: the requested range, else the labels,
// else the last day
func pngRange(state models.ViewState) (time.Time, time.Time) {
	from, to := state.Range.From, state.Range.To
	if from.IsZero() || to.IsZero() {
		if len(state.Labels) > 0 {
			from, to = state.Labels[0], state.Labels[len(state.Labels)-1]
		} else {
			to = time.Now()
			from = to.Add(-24 * time.Hour)
		}
	}
	if !to.After(from) {
		to = from.Add(time.Hour)
	}
	return from, to
}
