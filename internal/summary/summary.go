// Package summary aggregates raw channel values of one record into energy
// categories (storage, grid, production, consumption). All powers are in watts.
package summary

import (
	"energychart/internal/models"
	"energychart/internal/utils"
)

// Storage is the aggregated state of all energy storage systems
type Storage struct {
	Soc         *float64 `json:"soc"`
	ActivePower *float64 `json:"active_power"` // positive = discharge
}

// Grid is the aggregated grid connection point
type Grid struct {
	ActivePower *float64 `json:"active_power"` // positive = buy from grid
}

// Production is the aggregated AC and DC production
type Production struct {
	ActivePower   *float64 `json:"active_power"`
	ACActivePower *float64 `json:"ac_active_power"`
	DCActualPower *float64 `json:"dc_actual_power"`
}

// Consumption is the derived local consumption
type Consumption struct {
	ActivePower *float64 `json:"active_power"`
}

// Summary is the per-category view of a record
type Summary struct {
	Storage     Storage     `json:"storage"`
	Grid        Grid        `json:"grid"`
	Production  Production  `json:"production"`
	Consumption Consumption `json:"consumption"`
}

// Summarize aggregates the channels of record according to the role mapping in cfg.
// Categories with no contributing channel stay nil.
func Summarize(record models.HistoricRecord, cfg *models.EdgeConfig) Summary {
	if cfg == nil {
		cfg = models.DefaultEdgeConfig()
	}
	var s Summary

	// Storage
	var socs []float64
	var essPowers []*float64
	for _, ess := range cfg.Storage {
		if soc := record.Value(ess, models.ChannelSoc); soc != nil {
			socs = append(socs, *soc)
		}
		essPowers = append(essPowers, record.Value(ess, models.ChannelActivePower))
	}
	if len(socs) > 0 {
		var total float64
		for _, soc := range socs {
			total += soc
		}
		s.Storage.Soc = utils.Float(total / float64(len(socs)))
	}
	s.Storage.ActivePower = utils.AddSafely(essPowers...)

	// Grid
	var gridPowers []*float64
	for _, meter := range cfg.GridMeters {
		gridPowers = append(gridPowers, record.Value(meter, models.ChannelActivePower))
	}
	s.Grid.ActivePower = utils.AddSafely(gridPowers...)

	// Production
	var acPowers []*float64
	for _, meter := range cfg.ProductionMeters {
		if cfg.IsAsymmetric(meter) {
			acPowers = append(acPowers,
				record.Value(meter, models.ChannelActivePowerL1),
				record.Value(meter, models.ChannelActivePowerL2),
				record.Value(meter, models.ChannelActivePowerL3))
			continue
		}
		acPowers = append(acPowers, record.Value(meter, models.ChannelActivePower))
	}
	var dcPowers []*float64
	for _, charger := range cfg.Chargers {
		dcPowers = append(dcPowers, record.Value(charger, models.ChannelActualPower))
	}
	s.Production.ACActivePower = utils.AddSafely(acPowers...)
	s.Production.DCActualPower = utils.AddSafely(dcPowers...)
	s.Production.ActivePower = utils.AddSafely(s.Production.ACActivePower, s.Production.DCActualPower)

	// Consumption = what came from the grid, the producers and the storage
	consumption := utils.AddSafely(s.Grid.ActivePower, s.Production.ActivePower, s.Storage.ActivePower)
	if consumption != nil && *consumption < 0 {
		consumption = utils.Float(0)
	}
	s.Consumption.ActivePower = consumption

	return s
}
