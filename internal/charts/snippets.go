package charts

import (
	"encoding/json"
	"fmt"
	"html"

	"energychart/internal/models"
)

// ChartSnippet represents an embeddable ECharts chart fragment.
// Div contains a single root <div id="..." style="..."></div>
// Script contains the <script>...</script> block that initializes the chart in that div.
// HTML contains the complete snippet with div + script combined for template substitution.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	HTML   string
}

// SeriesColor is the line and fill colour of one dataset
type SeriesColor struct {
	Background string
	Border     string
}

// EnergyColors are the colours of production, grid and consumption, in dataset order
var EnergyColors = []SeriesColor{
	{Background: "rgba(45,143,171,0.2)", Border: "rgba(45,143,171,1)"},
	{Background: "rgba(0,0,0,0.2)", Border: "rgba(0,0,0,1)"},
	{Background: "rgba(221,223,1,0.2)", Border: "rgba(221,223,1,1)"},
}

const echartsCDN = `<script src="https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"></script>`

// tooltipScript mirrors TooltipFormatter.Label for axis tooltips in the browser.
// Arguments: grid label, buy label, sell label, unit.
const tooltipScript = `function(params){if(!params||!params.length)return '';` +
	`var d=new Date(params[0].value[0]);var out=[d.toLocaleDateString()+' '+d.toLocaleTimeString()];` +
	`params.forEach(function(p){var l=p.seriesName,v=p.value[1];if(v===null||v===undefined)return;` +
	`if(l===%s){if(v<0){v*=-1;l=%s;}else{l=%s;}}` +
	`out.push(p.marker+l+': '+Number(v).toPrecision(2)+' '+%s);});return out.join('<br/>');}`

// GenerateEnergyChartSnippet builds an ECharts time line chart for state.
// Gaps in a series are kept as nulls so the line breaks there.
func GenerateEnergyChartSnippet(id, title string, state models.ViewState, options ChartOptions, tooltip TooltipFormatter) (ChartSnippet, error) {
	if id == "" {
		id = "chart-energy"
	}

	names := make([]string, 0, len(state.Datasets))
	series := make([]interface{}, 0, len(state.Datasets))
	for i, ds := range state.Datasets {
		points := make([][]interface{}, 0, len(ds.Data))
		for j, v := range ds.Data {
			if j >= len(state.Labels) {
				break
			}
			var value interface{}
			if v != nil {
				value = *v
			}
			points = append(points, []interface{}{state.Labels[j].UnixMilli(), value})
		}

		s := map[string]interface{}{
			"name":       ds.Label,
			"type":       "line",
			"data":       points,
			"showSymbol": options.Elements.Point.Radius > 0,
			"smooth":     options.Elements.Line.Tension,
			"lineStyle":  map[string]interface{}{"width": options.Elements.Line.BorderWidth},
		}
		if !models.IsEmptyDataset(state.Datasets) && i < len(EnergyColors) {
			s["itemStyle"] = map[string]interface{}{"color": EnergyColors[i].Border}
			s["lineStyle"] = map[string]interface{}{"width": options.Elements.Line.BorderWidth, "color": EnergyColors[i].Border}
			s["areaStyle"] = map[string]interface{}{"color": EnergyColors[i].Background}
		}
		names = append(names, ds.Label)
		series = append(series, s)
	}

	legend := map[string]interface{}{"data": names}
	if options.Legend.Position == "bottom" {
		legend["bottom"] = 0
	} else {
		legend["top"] = 0
	}

	option := map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "axis", "axisPointer": map[string]interface{}{"type": "line"}},
		"legend":  legend,
		"grid":    map[string]interface{}{"left": "6%", "right": "4%", "bottom": "12%", "containLabel": true},
		"xAxis":   map[string]interface{}{"type": "time"},
		"yAxis": map[string]interface{}{
			"type":  "value",
			"name":  options.Scales.YAxis.ScaleLabel.LabelString,
			"scale": !options.Scales.YAxis.Ticks.BeginAtZero,
		},
		"series": series,
	}

	optJSON, err := json.Marshal(option)
	if err != nil {
		return ChartSnippet{}, fmt.Errorf("failed to marshal energy chart options: %w", err)
	}

	formatter := fmt.Sprintf(tooltipScript, jsString(tooltip.Grid), jsString(tooltip.GridBuy), jsString(tooltip.GridSell), jsString(PowerUnit))

	div := fmt.Sprintf("<div id=\"%s\" style=\"width:100%%;height:400px;\"></div>", id)
	script := fmt.Sprintf(`<script>(function(){var el=document.getElementById('%s');if(!el)return;var c=echarts.init(el);var option=%s;option.tooltip.formatter=%s;c.setOption(option);window.addEventListener('resize',function(){c.resize();});})();</script>`, id, string(optJSON), formatter)

	completeHTML := fmt.Sprintf(`%s
<div class="chart-container">
	<h3>%s</h3>
	%s
</div>
%s`, echartsCDN, html.EscapeString(title), div, script)

	return ChartSnippet{ID: id, Title: title, Div: div, Script: script, HTML: completeHTML}, nil
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
