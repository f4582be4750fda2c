package charts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"energychart/internal/fetchers"
	"energychart/internal/i18n"
	"energychart/internal/logger"
	"energychart/internal/models"
	"energychart/internal/summary"
	"energychart/internal/utils"
)

var (
	// ErrSuperseded is returned by Update when a newer update started before
	// this one finished. Its result is discarded.
	ErrSuperseded = errors.New("superseded by a newer update")

	// ErrFetchFailed wraps every failure of the historic data query
	ErrFetchFailed = errors.New("fetch failed")

	// ErrClosed is returned by Update after Close
	ErrClosed = errors.New("energy chart closed")
)

// Scale factors from watts to the chart unit. The grid is inverted so that
// selling to the grid shows as positive.
const (
	wattsPerKilowatt = 1000
	gridScale        = -1000
)

// Option configures an EnergyChart
type Option func(*EnergyChart)

// WithLogger replaces the component logger
func WithLogger(l *logger.Logger) Option {
	return func(c *EnergyChart) {
		c.log = l
	}
}

// WithQueryTimeout bounds every historic data query. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *EnergyChart) {
		c.timeout = d
	}
}

// EnergyChart turns historic records into the production, grid and
// consumption series of one viewer and publishes the resulting view state.
// Updates may overlap; only the most recent one publishes its result.
type EnergyChart struct {
	fetcher fetchers.HistoricDataFetcher
	cfg     *models.EdgeConfig
	tr      i18n.Translator
	options ChartOptions
	log     *logger.Logger
	timeout time.Duration

	mu         sync.Mutex
	state      models.ViewState
	generation uint64
	cancel     context.CancelFunc
	subs       map[uint64]chan models.ViewState
	nextSub    uint64
	closed     bool
}

// NewEnergyChart creates a chart in its initial loading state
func NewEnergyChart(fetcher fetchers.HistoricDataFetcher, cfg *models.EdgeConfig, tr i18n.Translator, opts ...Option) *EnergyChart {
	if cfg == nil {
		cfg = models.DefaultEdgeConfig()
	}
	c := &EnergyChart{
		fetcher: fetcher,
		cfg:     cfg,
		tr:      tr,
		options: NewEnergyChartOptions(tr),
		log:     logger.Component("energychart"),
		state: models.ViewState{
			Labels:   []time.Time{},
			Datasets: models.EmptyDataset(),
			Loading:  true,
		},
		subs: make(map[uint64]chan models.ViewState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Options returns the display options of the chart
func (c *EnergyChart) Options() ChartOptions {
	return c.options
}

// State returns a copy of the current view state
func (c *EnergyChart) State() models.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Update queries the records of rng and publishes the derived datasets.
// A failed query publishes the empty dataset and returns an error wrapping
// ErrFetchFailed. A query overtaken by a later Update is cancelled and
// returns ErrSuperseded without publishing, one overtaken by Close returns
// ErrClosed.
func (c *EnergyChart) Update(ctx context.Context, rng models.TimeRange, channels models.ChannelAddresses) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation

	var queryCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		queryCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		queryCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel

	c.state.Loading = true
	c.state.Range = rng
	c.state.Generation = gen
	c.publishLocked()
	c.mu.Unlock()
	defer cancel()

	start := time.Now()
	data, err := c.fetcher.QueryHistoricData(queryCtx, rng, channels)
	if err == nil && data == nil {
		err = fetchers.ErrNoData
	}

	var labels []time.Time
	var datasets []models.Dataset
	if err == nil {
		labels, datasets = BuildDatasets(data.Data, c.cfg, c.tr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if gen != c.generation {
		c.log.Debug("Discarding superseded energy chart update", map[string]interface{}{
			"generation": gen,
			"latest":     c.generation,
		})
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		c.state.Labels = []time.Time{}
		c.state.Datasets = models.EmptyDataset()
		c.state.Loading = false
		c.publishLocked()
		c.log.Warn("Historic data query failed, showing empty chart", map[string]interface{}{
			"from":       rng.From.Format(time.RFC3339),
			"to":         rng.To.Format(time.RFC3339),
			"channels":   channels.Len(),
			"generation": gen,
			"error":      err.Error(),
		})
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	c.state.Labels = labels
	c.state.Datasets = datasets
	c.state.Loading = false
	c.publishLocked()
	c.log.Debug("Energy chart updated", map[string]interface{}{
		"records":    len(labels),
		"generation": gen,
		"took":       time.Since(start).String(),
	})
	return nil
}

// Subscribe returns a channel that receives every published view state,
// starting with the current one. A slow subscriber only sees the latest
// state. The returned function unsubscribes and closes the channel.
func (c *EnergyChart) Subscribe() (<-chan models.ViewState, func()) {
	ch := make(chan models.ViewState, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state.Clone()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
}

// Close cancels the in-flight query and closes every subscription
func (c *EnergyChart) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// publishLocked hands the current state to every subscriber, replacing
// a state the subscriber has not read yet. Callers hold c.mu.
func (c *EnergyChart) publishLocked() {
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c.state.Clone():
		default:
		}
	}
}

// BuildDatasets derives the production, grid and consumption series in kW
// from records, keeping their order. Missing values stay nil.
func BuildDatasets(records []models.HistoricRecord, cfg *models.EdgeConfig, tr i18n.Translator) ([]time.Time, []models.Dataset) {
	labels := make([]time.Time, 0, len(records))
	production := make([]*float64, 0, len(records))
	grid := make([]*float64, 0, len(records))
	consumption := make([]*float64, 0, len(records))

	for _, record := range records {
		labels = append(labels, record.Time)
		s := summary.Summarize(record, cfg)
		production = append(production, utils.DivideSafely(s.Production.ActivePower, wattsPerKilowatt))
		grid = append(grid, utils.DivideSafely(s.Grid.ActivePower, gridScale))
		consumption = append(consumption, utils.DivideSafely(s.Consumption.ActivePower, wattsPerKilowatt))
	}

	return labels, []models.Dataset{
		{Label: tr.Instant(i18n.KeyProduction), Data: production},
		{Label: tr.Instant(i18n.KeyGrid), Data: grid},
		{Label: tr.Instant(i18n.KeyConsumption), Data: consumption},
	}
}

// TooltipData builds the tooltip callback data of a view state
func TooltipData(state models.ViewState) ChartData {
	data := ChartData{Labels: state.Labels}
	for _, ds := range state.Datasets {
		data.Datasets = append(data.Datasets, ChartSeries{Label: ds.Label})
	}
	return data
}

// Tooltip is the hover text of one label
type Tooltip struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// RenderTooltips renders the tooltip of every label of state with opts. Gaps
// get no line.
func RenderTooltips(state models.ViewState, opts ChartOptions) []Tooltip {
	if models.IsEmptyDataset(state.Datasets) {
		return nil
	}
	data := TooltipData(state)
	tips := make([]Tooltip, 0, len(state.Labels))
	for i, ts := range state.Labels {
		tip := Tooltip{Title: opts.TooltipTitle(ts), Lines: []string{}}
		for d, ds := range state.Datasets {
			if i >= len(ds.Data) || ds.Data[i] == nil {
				continue
			}
			item := TooltipItem{DatasetIndex: d, Index: i, XLabel: ts, YLabel: *ds.Data[i]}
			tip.Lines = append(tip.Lines, opts.TooltipLabel(item, data))
		}
		tips = append(tips, tip)
	}
	return tips
}
