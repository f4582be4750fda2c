package reports

import (
	"time"

	"energychart/internal/models"
)

// Series positions in an energy chart view state
const (
	productionSeries = iota
	gridSeries
	consumptionSeries
)

// Totals are energy amounts in kWh over the shown range
type Totals struct {
	Produced float64 `json:"produced_kwh"`
	Sold     float64 `json:"sold_kwh"`
	Bought   float64 `json:"bought_kwh"`
	Consumed float64 `json:"consumed_kwh"`
	Samples  int     `json:"samples"`
}

// Integrate sums the kW series of state over time with the trapezoidal
// rule. Intervals with a missing endpoint are skipped. Positive grid
// power counts as sold, negative as bought.
func Integrate(state models.ViewState) Totals {
	totals := Totals{Samples: len(state.Labels)}
	if models.IsEmptyDataset(state.Datasets) || !state.Consistent() {
		return totals
	}

	series := func(idx int) []*float64 {
		if idx < len(state.Datasets) {
			return state.Datasets[idx].Data
		}
		return nil
	}
	production, grid, consumption := series(productionSeries), series(gridSeries), series(consumptionSeries)

	for i := 1; i < len(state.Labels); i++ {
		hours := state.Labels[i].Sub(state.Labels[i-1]).Hours()
		if hours <= 0 {
			continue
		}
		if v, ok := average(production, i); ok {
			totals.Produced += v * hours
		}
		if v, ok := average(consumption, i); ok {
			totals.Consumed += v * hours
		}
		if v, ok := average(grid, i); ok {
			if v >= 0 {
				totals.Sold += v * hours
			} else {
				totals.Bought -= v * hours
			}
		}
	}
	return totals
}

func average(data []*float64, i int) (float64, bool) {
	if i >= len(data) || data[i-1] == nil || data[i] == nil {
		return 0, false
	}
	return (*data[i-1] + *data[i]) / 2, true
}

// span is the time covered by the labels, or by the requested range when
// there are none
func span(state models.ViewState) (time.Time, time.Time) {
	if len(state.Labels) > 0 {
		return state.Labels[0], state.Labels[len(state.Labels)-1]
	}
	return state.Range.From, state.Range.To
}
