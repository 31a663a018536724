package scanconfig

// Config is the full configuration of one scan strategy: the sector
// universe, the lookback windows with their weights, and the tunable
// classification thresholds. Loaded once per process, never mutated.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Sectors   []Sector  `yaml:"sectors" json:"sectors"`
	Windows   []Window  `yaml:"windows" json:"windows"`
	Sentiment Sentiment `yaml:"sentiment" json:"sentiment"`
	Trend     Trend     `yaml:"trend" json:"trend"`
	Fetch     Fetch     `yaml:"fetch" json:"fetch"`
}

// Meta identifies the strategy revision
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// Sector is one ETF in the scan universe
type Sector struct {
	Ticker string `yaml:"ticker" json:"ticker"`
	Name   string `yaml:"name" json:"name"`
	Group  string `yaml:"group,omitempty" json:"group,omitempty"` // cyclical | defensive | empty
}

// Window is one lookback period: Length trading observations back
// from the latest point, weighted into the momentum score.
type Window struct {
	Name   string  `yaml:"name" json:"name"`
	Length int     `yaml:"length" json:"length"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Sentiment holds the risk-on/risk-off classification threshold.
// The cyclical-minus-defensive mean must exceed +Threshold for
// RISK_ON and fall below -Threshold for RISK_OFF.
type Sentiment struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
}

// Trend holds the per-sector trend label thresholds and the volume
// trend lookbacks (short mean vs long mean).
type Trend struct {
	StrongThreshold float64 `yaml:"strong_threshold" json:"strong_threshold"`
	WeakThreshold   float64 `yaml:"weak_threshold" json:"weak_threshold"`
	VolumeShort     int     `yaml:"volume_short" json:"volume_short"`
	VolumeLong      int     `yaml:"volume_long" json:"volume_long"`
}

// Fetch holds collection parameters
type Fetch struct {
	Workers int `yaml:"workers" json:"workers"`
}

// MaxWindowLength returns the longest configured lookback
func (c *Config) MaxWindowLength() int {
	max := 0
	for _, w := range c.Windows {
		if w.Length > max {
			max = w.Length
		}
	}
	return max
}

// MinPoints returns the series length required to compute every
// configured metric: longest window + 1 for returns, and the long
// volume lookback for the volume trend and SMA.
func (c *Config) MinPoints() int {
	min := c.MaxWindowLength() + 1
	if c.Trend.VolumeLong > min {
		min = c.Trend.VolumeLong
	}
	return min
}

// TotalWeight returns the sum of all window weights
func (c *Config) TotalWeight() float64 {
	var sum float64
	for _, w := range c.Windows {
		sum += w.Weight
	}
	return sum
}

// GroupTickers returns the tickers tagged with the given group
func (c *Config) GroupTickers(group string) []string {
	var tickers []string
	for _, s := range c.Sectors {
		if s.Group == group {
			tickers = append(tickers, s.Ticker)
		}
	}
	return tickers
}
