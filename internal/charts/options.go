package charts

import (
	"time"

	"energychart/internal/i18n"
	"energychart/internal/utils"
)

// PowerUnit is the y-axis unit of the energy chart
const PowerUnit = "kW"

// TooltipItem is the hovered data point handed to a tooltip label callback
type TooltipItem struct {
	DatasetIndex int
	Index        int
	XLabel       time.Time
	YLabel       float64
}

// ChartData is the data a tooltip callback may consult
type ChartData struct {
	Labels   []time.Time
	Datasets []ChartSeries
}

// ChartSeries is the minimal view of a dataset the tooltip needs
type ChartSeries struct {
	Label string
}

// TooltipLabelFunc renders the tooltip text of one data point
type TooltipLabelFunc func(item TooltipItem, data ChartData) string

// ScaleLabel is the caption of an axis
type ScaleLabel struct {
	Display     bool   `json:"display"`
	LabelString string `json:"labelString"`
}

// Ticks controls the value range of an axis
type Ticks struct {
	BeginAtZero bool `json:"beginAtZero"`
}

// YAxis is the value axis
type YAxis struct {
	ID         string     `json:"id"`
	Position   string     `json:"position"`
	ScaleLabel ScaleLabel `json:"scaleLabel"`
	Ticks      Ticks      `json:"ticks"`
}

// DisplayFormats are the tick label layouts (Go reference time) per unit
type DisplayFormats struct {
	Millisecond string `json:"millisecond"`
	Second      string `json:"second"`
	Minute      string `json:"minute"`
	Hour        string `json:"hour"`
	Day         string `json:"day"`
	Week        string `json:"week"`
	Month       string `json:"month"`
	Year        string `json:"year"`
}

// TimeScale configures the time axis
type TimeScale struct {
	MinUnit        string         `json:"minUnit"`
	DisplayFormats DisplayFormats `json:"displayFormats"`
}

// XAxis is the time axis
type XAxis struct {
	Type    string    `json:"type"`
	Stacked bool      `json:"stacked"`
	Time    TimeScale `json:"time"`
}

// Scales holds both axes
type Scales struct {
	YAxis YAxis `json:"yAxis"`
	XAxis XAxis `json:"xAxis"`
}

// PointOptions controls the data point markers
type PointOptions struct {
	Radius      int `json:"radius"`
	HitRadius   int `json:"hitRadius"`
	HoverRadius int `json:"hoverRadius"`
}

// LineOptions controls the series lines
type LineOptions struct {
	BorderWidth int     `json:"borderWidth"`
	Tension     float64 `json:"tension"`
}

// Elements groups point and line options
type Elements struct {
	Point PointOptions `json:"point"`
	Line  LineOptions  `json:"line"`
}

// Legend configures the series legend
type Legend struct {
	Position string `json:"position"`
}

// Tooltips configures hover tooltips. TitleFormat is a time layout for the
// hovered timestamp. Label is nil until a chart installs its own rule.
type Tooltips struct {
	Mode        string           `json:"mode"`
	Intersect   bool             `json:"intersect"`
	Axis        string           `json:"axis"`
	TitleFormat string           `json:"titleFormat"`
	Label       TooltipLabelFunc `json:"-"`
}

// ChartOptions is the display configuration of a time chart. It is a plain
// value: copying it never shares state, and the With* methods return
// modified copies.
type ChartOptions struct {
	MaintainAspectRatio bool     `json:"maintainAspectRatio"`
	Legend              Legend   `json:"legend"`
	Elements            Elements `json:"elements"`
	Scales              Scales   `json:"scales"`
	Tooltips            Tooltips `json:"tooltips"`
}

// DefaultTimeChartOptions returns the shared default template of all time charts
func DefaultTimeChartOptions() ChartOptions {
	return ChartOptions{
		MaintainAspectRatio: false,
		Legend:              Legend{Position: "bottom"},
		Elements: Elements{
			Point: PointOptions{Radius: 0, HitRadius: 10, HoverRadius: 10},
			Line:  LineOptions{BorderWidth: 2, Tension: 0.1},
		},
		Scales: Scales{
			YAxis: YAxis{
				ID:         "yAxis1",
				Position:   "left",
				ScaleLabel: ScaleLabel{Display: true, LabelString: ""},
				Ticks:      Ticks{BeginAtZero: true},
			},
			XAxis: XAxis{
				Type: "time",
				Time: TimeScale{
					MinUnit: "hour",
					DisplayFormats: DisplayFormats{
						Millisecond: ".000",
						Second:      "15:04:05",
						Minute:      "15:04",
						Hour:        "15:00",
						Day:         "02",
						Week:        "Jan 2, 2006",
						Month:       "01",
						Year:        "2006",
					},
				},
			},
		},
		Tooltips: Tooltips{
			Mode:        "index",
			Intersect:   false,
			Axis:        "x",
			TitleFormat: "2006-01-02 15:04:05",
		},
	}
}

// WithYAxisLabel returns a copy with the y-axis caption replaced
func (o ChartOptions) WithYAxisLabel(label string) ChartOptions {
	o.Scales.YAxis.ScaleLabel.LabelString = label
	return o
}

// WithTooltipLabel returns a copy with the tooltip label rule replaced
func (o ChartOptions) WithTooltipLabel(fn TooltipLabelFunc) ChartOptions {
	o.Tooltips.Label = fn
	return o
}

// TooltipTitle formats the hovered timestamp
func (o ChartOptions) TooltipTitle(t time.Time) string {
	return t.Format(o.Tooltips.TitleFormat)
}

// TooltipLabel renders a data point with the installed rule, or a plain
// "<label>: <value>" when none is installed
func (o ChartOptions) TooltipLabel(item TooltipItem, data ChartData) string {
	if o.Tooltips.Label != nil {
		return o.Tooltips.Label(item, data)
	}
	label := ""
	if item.DatasetIndex >= 0 && item.DatasetIndex < len(data.Datasets) {
		label = data.Datasets[item.DatasetIndex].Label
	}
	return label + ": " + utils.ToPrecision(item.YLabel, 2)
}

// TooltipFormatter renders energy chart tooltips. The grid series is split
// into buying (negative values) and selling.
type TooltipFormatter struct {
	Grid     string
	GridBuy  string
	GridSell string
}

// NewTooltipFormatter resolves the grid labels once
func NewTooltipFormatter(tr i18n.Translator) TooltipFormatter {
	return TooltipFormatter{
		Grid:     tr.Instant(i18n.KeyGrid),
		GridBuy:  tr.Instant(i18n.KeyGridBuy),
		GridSell: tr.Instant(i18n.KeyGridSell),
	}
}

// Label implements TooltipLabelFunc
func (f TooltipFormatter) Label(item TooltipItem, data ChartData) string {
	label := ""
	if item.DatasetIndex >= 0 && item.DatasetIndex < len(data.Datasets) {
		label = data.Datasets[item.DatasetIndex].Label
	}
	value := item.YLabel
	if label == f.Grid {
		if value < 0 {
			value *= -1
			label = f.GridBuy
		} else {
			label = f.GridSell
		}
	}
	return label + ": " + utils.ToPrecision(value, 2) + " " + PowerUnit
}

// NewEnergyChartOptions derives the energy chart options from the default template
func NewEnergyChartOptions(tr i18n.Translator) ChartOptions {
	return DefaultTimeChartOptions().
		WithYAxisLabel(PowerUnit).
		WithTooltipLabel(NewTooltipFormatter(tr).Label)
}
