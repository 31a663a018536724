package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/scanconfig"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// Scorer turns raw per-sector price history into momentum scores, a
// ranking and a market sentiment classification. It performs no I/O:
// Score is a pure function over already-fetched data, so it can be
// exercised without network or filesystem fixtures.
type Scorer struct {
	cfg    *scanconfig.Config
	hash   string
	logger *logger.Logger
}

// New creates a Scorer. The config is validated here, before any data
// is fetched; an invalid config is the only fatal condition.
func New(cfg *scanconfig.Config, log *logger.Logger) (*Scorer, error) {
	if err := scanconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("scan config invalid: %w", err)
	}

	hash, err := scanconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash scan config: %w", err)
	}

	return &Scorer{
		cfg:    cfg,
		hash:   hash,
		logger: log.WithField("module", "scoring"),
	}, nil
}

// Score produces the ScanResult for one run. Missing or short series
// degrade to unavailable fields; Score never fails on sparse data.
func (s *Scorer) Score(scanTime time.Time, series map[string]contracts.PriceSeries) *contracts.ScanResult {
	result := &contracts.ScanResult{
		ScanTime:   scanTime,
		ConfigHash: s.hash,
		Sectors:    make([]contracts.SectorSnapshot, 0, len(s.cfg.Sectors)),
		Sentiment:  contracts.SentimentUnavailable,
	}

	for _, sec := range s.cfg.Sectors {
		snap := s.scoreSector(sec, series[sec.Ticker])
		result.Sectors = append(result.Sectors, snap)
	}

	s.rank(result)
	s.classify(result)

	scored := 0
	for i := range result.Sectors {
		if result.Sectors[i].Scored() {
			scored++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"scan_time": scanTime,
		"sectors":   len(result.Sectors),
		"scored":    scored,
		"sentiment": result.Sentiment,
	}).Info("Scan scored")

	return result
}

// scoreSector computes every per-sector metric from one price series
func (s *Scorer) scoreSector(sec scanconfig.Sector, series contracts.PriceSeries) contracts.SectorSnapshot {
	snap := contracts.SectorSnapshot{
		Ticker:  sec.Ticker,
		Name:    sec.Name,
		Group:   sec.Group,
		Returns: make(map[string]*float64, len(s.cfg.Windows)),
		Trend:   contracts.TrendUnavailable,
	}

	// Every window appears in the output, available or not
	for _, w := range s.cfg.Windows {
		snap.Returns[w.Name] = nil
	}

	latest, ok := series.Latest()
	if !ok {
		return snap
	}
	snap.LastClose = f64(latest.Close)

	// Per-window returns, then the momentum score as the weighted mean
	// over the windows actually available. Weights renormalize over the
	// available subset so a missing window never contributes a phantom
	// zero return.
	var weightedSum, weightTotal float64
	for _, w := range s.cfg.Windows {
		ret, ok := windowReturn(series, w.Length)
		if !ok {
			continue
		}
		snap.Returns[w.Name] = f64(ret)
		weightedSum += ret * w.Weight
		weightTotal += w.Weight
	}

	if weightTotal > 0 {
		snap.Momentum = f64(weightedSum / weightTotal)
	}

	snap.VolumeTrend = volumeTrend(series, s.cfg.Trend.VolumeShort, s.cfg.Trend.VolumeLong)
	snap.RSvsSMA20 = relativeStrength(series, s.cfg.Trend.VolumeLong)
	snap.Trend = s.trendLabel(snap.Momentum, snap.VolumeTrend)

	s.logger.WithFields(map[string]interface{}{
		"ticker":   sec.Ticker,
		"points":   len(series),
		"momentum": snap.Momentum,
		"trend":    snap.Trend,
	}).Debug("Scored sector")

	return snap
}

// rank orders scored sectors by momentum descending, ties broken by
// ticker ascending. Fewer than two scored sectors yields no ranking.
func (s *Scorer) rank(result *contracts.ScanResult) {
	var scored []contracts.RankedSector
	var sum float64
	for i := range result.Sectors {
		snap := &result.Sectors[i]
		if !snap.Scored() {
			continue
		}
		scored = append(scored, contracts.RankedSector{Ticker: snap.Ticker, Score: *snap.Momentum})
		sum += *snap.Momentum
	}

	if len(scored) > 0 {
		result.AvgMomentum = f64(sum / float64(len(scored)))
	}

	if len(scored) < 2 {
		return
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Ticker < scored[j].Ticker
	})

	result.Ranking = scored
	result.Strongest = strPtr(scored[0].Ticker)
	result.Weakest = strPtr(scored[len(scored)-1].Ticker)
}

// classify compares the mean momentum of the cyclical group against
// the defensive group. Either group without a scored sector leaves the
// sentiment unavailable.
func (s *Scorer) classify(result *contracts.ScanResult) {
	cyclical := groupMean(result, contracts.GroupCyclical)
	defensive := groupMean(result, contracts.GroupDefensive)

	result.CyclicalAvg = cyclical
	result.DefensiveAvg = defensive

	if cyclical == nil || defensive == nil {
		result.Sentiment = contracts.SentimentUnavailable
		return
	}

	diff := *cyclical - *defensive
	threshold := s.cfg.Sentiment.Threshold

	switch {
	case diff > threshold:
		result.Sentiment = contracts.SentimentRiskOn
	case diff < -threshold:
		result.Sentiment = contracts.SentimentRiskOff
	default:
		result.Sentiment = contracts.SentimentNeutral
	}
}

// trendLabel maps a momentum score to the sector trend classification.
// Strong labels require a rising volume trend for confirmation.
func (s *Scorer) trendLabel(momentum, volumeTrend *float64) contracts.TrendLabel {
	if momentum == nil {
		return contracts.TrendUnavailable
	}

	m := *momentum
	volumeRising := volumeTrend != nil && *volumeTrend > 0
	strong := s.cfg.Trend.StrongThreshold
	weak := s.cfg.Trend.WeakThreshold

	switch {
	case m > strong && volumeRising:
		return contracts.TrendStrongBuy
	case m > weak:
		return contracts.TrendBuying
	case m < -strong && volumeRising:
		return contracts.TrendStrongSell
	case m < -weak:
		return contracts.TrendSelling
	default:
		return contracts.TrendNeutral
	}
}

// windowReturn computes the simple percentage return over a lookback
// of `length` observations. Needs length+1 points.
func windowReturn(series contracts.PriceSeries, length int) (float64, bool) {
	if len(series) < length+1 {
		return 0, false
	}

	last := series[len(series)-1].Close
	past := series[len(series)-1-length].Close
	if past == 0 {
		return 0, false
	}

	return (last - past) / past * 100, true
}

// volumeTrend compares the mean volume of the last `short` observations
// against the last `long` observations, as a percentage of the latter.
func volumeTrend(series contracts.PriceSeries, short, long int) *float64 {
	if len(series) < long || short < 1 || long <= short {
		return nil
	}

	shortMean := meanVolume(series[len(series)-short:])
	longMean := meanVolume(series[len(series)-long:])
	if longMean == 0 {
		return nil
	}

	return f64((shortMean - longMean) / longMean * 100)
}

// relativeStrength compares the latest close against the simple moving
// average of the last `window` closes, as a percentage.
func relativeStrength(series contracts.PriceSeries, window int) *float64 {
	if len(series) < window || window < 1 {
		return nil
	}

	var sum float64
	for _, p := range series[len(series)-window:] {
		sum += p.Close
	}
	sma := sum / float64(window)
	if sma == 0 {
		return nil
	}

	last := series[len(series)-1].Close
	return f64((last - sma) / sma * 100)
}

// groupMean averages the momentum of scored sectors in a group
func groupMean(result *contracts.ScanResult, group string) *float64 {
	var sum float64
	count := 0
	for i := range result.Sectors {
		snap := &result.Sectors[i]
		if snap.Group != group || !snap.Scored() {
			continue
		}
		sum += *snap.Momentum
		count++
	}

	if count == 0 {
		return nil
	}
	return f64(sum / float64(count))
}

func meanVolume(points []contracts.PricePoint) float64 {
	if len(points) == 0 {
		return 0
	}

	var sum int64
	for _, p := range points {
		sum += p.Volume
	}
	return float64(sum) / float64(len(points))
}

func f64(v float64) *float64 {
	return &v
}

func strPtr(s string) *string {
	return &s
}
