package models

// Channel ids read by the summary
const (
	ChannelActivePower   = "ActivePower"
	ChannelActivePowerL1 = "ActivePowerL1"
	ChannelActivePowerL2 = "ActivePowerL2"
	ChannelActivePowerL3 = "ActivePowerL3"
	ChannelActualPower   = "ActualPower"
	ChannelSoc           = "Soc"
)

// EdgeConfig describes which things of an edge play which energy role
type EdgeConfig struct {
	Storage          []string `yaml:"storage" json:"storage"`
	GridMeters       []string `yaml:"grid_meters" json:"grid_meters"`
	ProductionMeters []string `yaml:"production_meters" json:"production_meters"`
	Chargers         []string `yaml:"chargers" json:"chargers"`
	// AsymmetricMeters lists production meters that report per-phase power only
	AsymmetricMeters []string `yaml:"asymmetric_meters,omitempty" json:"asymmetric_meters,omitempty"`
}

// DefaultEdgeConfig is the role mapping of a single-inverter edge
func DefaultEdgeConfig() *EdgeConfig {
	return &EdgeConfig{
		Storage:          []string{"ess0"},
		GridMeters:       []string{"meter0"},
		ProductionMeters: []string{"meter1"},
	}
}

// IsAsymmetric reports whether thing reports per-phase active power
func (c *EdgeConfig) IsAsymmetric(thing string) bool {
	for _, t := range c.AsymmetricMeters {
		if t == thing {
			return true
		}
	}
	return false
}

// ImportantChannels returns the channel selection the energy summary needs
func (c *EdgeConfig) ImportantChannels() ChannelAddresses {
	channels := make(ChannelAddresses)
	for _, ess := range c.Storage {
		channels.Add(ess, ChannelSoc, ChannelActivePower)
	}
	for _, meter := range c.GridMeters {
		channels.Add(meter, ChannelActivePower)
	}
	for _, meter := range c.ProductionMeters {
		if c.IsAsymmetric(meter) {
			channels.Add(meter, ChannelActivePowerL1, ChannelActivePowerL2, ChannelActivePowerL3)
		} else {
			channels.Add(meter, ChannelActivePower)
		}
	}
	for _, charger := range c.Chargers {
		channels.Add(charger, ChannelActualPower)
	}
	return channels
}
