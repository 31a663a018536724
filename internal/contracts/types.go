package contracts

import (
	"time"
)

// Sector group tags used by the sentiment classifier
const (
	GroupCyclical  = "cyclical"
	GroupDefensive = "defensive"
)

// Sentiment is the market-wide risk classification of one scan
type Sentiment string

const (
	SentimentRiskOn      Sentiment = "RISK_ON"
	SentimentRiskOff     Sentiment = "RISK_OFF"
	SentimentNeutral     Sentiment = "NEUTRAL"
	SentimentUnavailable Sentiment = "UNAVAILABLE"
)

// TrendLabel is the per-sector trend classification
type TrendLabel string

const (
	TrendStrongBuy   TrendLabel = "STRONG_BUY"
	TrendBuying      TrendLabel = "BUYING"
	TrendNeutral     TrendLabel = "NEUTRAL"
	TrendSelling     TrendLabel = "SELLING"
	TrendStrongSell  TrendLabel = "STRONG_SELL"
	TrendUnavailable TrendLabel = "UNAVAILABLE"
)

// PricePoint is one daily observation for a ticker.
// Close is always positive; Volume may be zero for vendors that omit it.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is a time-ordered series of daily observations,
// ascending by date with no duplicate dates.
type PriceSeries []PricePoint

// Latest returns the most recent observation
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// SectorSnapshot is the scored state of one sector in one scan.
// Nil pointers mean the value could not be computed from the data on
// hand (missing series or too few observations), which is distinct
// from a legitimate zero.
type SectorSnapshot struct {
	Ticker      string              `json:"ticker"`
	Name        string              `json:"name"`
	Group       string              `json:"group,omitempty"`
	LastClose   *float64            `json:"last_close,omitempty"`
	Returns     map[string]*float64 `json:"returns"`
	Momentum    *float64            `json:"momentum_score,omitempty"`
	VolumeTrend *float64            `json:"volume_trend,omitempty"`
	RSvsSMA20   *float64            `json:"rs_vs_sma20,omitempty"`
	Trend       TrendLabel          `json:"trend"`
}

// Scored reports whether the sector received a momentum score
func (s *SectorSnapshot) Scored() bool {
	return s.Momentum != nil
}

// RankedSector is one entry of the momentum ranking
type RankedSector struct {
	Ticker string  `json:"ticker"`
	Score  float64 `json:"score"`
}

// ScanResult is the complete, immutable output of one scoring pass.
// Ranking, Strongest, Weakest and the group means are nil when fewer
// than two sectors could be scored.
type ScanResult struct {
	ScanTime     time.Time        `json:"scan_time"`
	ConfigHash   string           `json:"config_hash,omitempty"`
	Sectors      []SectorSnapshot `json:"sectors"`
	Ranking      []RankedSector   `json:"ranking,omitempty"`
	Strongest    *string          `json:"strongest,omitempty"`
	Weakest      *string          `json:"weakest,omitempty"`
	AvgMomentum  *float64         `json:"avg_momentum,omitempty"`
	CyclicalAvg  *float64         `json:"cyclical_avg,omitempty"`
	DefensiveAvg *float64         `json:"defensive_avg,omitempty"`
	Sentiment    Sentiment        `json:"sentiment"`
}

// RecordID is the durable identifier of a scan, derived from its
// timestamp so that re-emitting the same result deduplicates.
func (r *ScanResult) RecordID() string {
	return "sector_rotation_" + r.ScanTime.Format("20060102_150405")
}

// Snapshot returns the snapshot for a ticker, or nil if absent
func (r *ScanResult) Snapshot(ticker string) *SectorSnapshot {
	for i := range r.Sectors {
		if r.Sectors[i].Ticker == ticker {
			return &r.Sectors[i]
		}
	}
	return nil
}
