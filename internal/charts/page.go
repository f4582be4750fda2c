package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"energychart/internal/i18n"
	"energychart/internal/models"
)

// axisLayout picks the x-axis label layout from the display formats by the
// length of the shown range
func axisLayout(options ChartOptions, labels []time.Time) string {
	formats := options.Scales.XAxis.Time.DisplayFormats
	if len(labels) < 2 {
		return formats.Minute
	}
	if labels[len(labels)-1].Sub(labels[0]) > 24*time.Hour {
		return formats.Day + "." + formats.Month + " " + formats.Minute
	}
	return formats.Minute
}

// RenderLinePage renders state as a standalone HTML page
func RenderLinePage(state models.ViewState, options ChartOptions, tr i18n.Translator) (string, error) {
	tooltip := NewTooltipFormatter(tr)
	title := tr.Instant(i18n.KeyChartTitle)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1000px",
			Height:    "450px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle(state.Range),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: tr.Instant(i18n.KeyTime),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: options.Scales.YAxis.ScaleLabel.LabelString,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: true,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      true,
			Trigger:   "axis",
			Formatter: opts.FuncOpts(pageTooltipScript(tooltip)),
		}),
	)

	layout := axisLayout(options, state.Labels)
	xAxis := make([]string, len(state.Labels))
	for i, t := range state.Labels {
		xAxis[i] = t.Format(layout)
	}
	line.SetXAxis(xAxis)

	for i, ds := range state.Datasets {
		data := make([]opts.LineData, len(ds.Data))
		for j, v := range ds.Data {
			if v == nil {
				// echarts treats "-" as an empty point
				data[j] = opts.LineData{Value: "-"}
				continue
			}
			data[j] = opts.LineData{Value: *v}
		}
		var seriesOpts []charts.SeriesOpts
		if !models.IsEmptyDataset(state.Datasets) && i < len(EnergyColors) {
			seriesOpts = append(seriesOpts,
				charts.WithLineStyleOpts(opts.LineStyle{Color: EnergyColors[i].Border}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: EnergyColors[i].Border}),
				charts.WithAreaStyleOpts(opts.AreaStyle{Color: EnergyColors[i].Background}),
			)
		}
		line.AddSeries(ds.Label, data, seriesOpts...)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: options.Elements.Line.Tension > 0}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render energy chart page: %w", err)
	}
	return buf.String(), nil
}

// pageTooltipScript is the category axis variant of the snippet formatter
func pageTooltipScript(f TooltipFormatter) string {
	return fmt.Sprintf(`function(params){if(!params||!params.length)return '';var out=[params[0].name];`+
		`params.forEach(function(p){var l=p.seriesName,v=p.value;if(v===null||v===undefined||v==='-')return;`+
		`if(l===%s){if(v<0){v*=-1;l=%s;}else{l=%s;}}`+
		`out.push(p.marker+l+': '+Number(v).toPrecision(2)+' '+%s);});return out.join('<br/>');}`,
		jsString(f.Grid), jsString(f.GridBuy), jsString(f.GridSell), jsString(PowerUnit))
}

func subtitle(rng models.TimeRange) string {
	if rng.From.IsZero() && rng.To.IsZero() {
		return ""
	}
	return rng.From.Format("2006-01-02 15:04") + " – " + rng.To.Format("2006-01-02 15:04")
}
