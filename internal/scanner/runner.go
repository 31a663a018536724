package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/collector"
	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/markethours"
	"github.com/GeorgeHategan/sector-rotation/internal/scoring"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// ErrMarketClosed is returned by RunScan when the session gate blocks
// the run. Callers treat this as a skip, not a failure.
var ErrMarketClosed = errors.New("market is closed")

// Runner drives one full scan: fetch all configured series, score
// them, emit the artifact record, persist history, and fan the result
// out to listeners.
type Runner struct {
	collector *collector.Collector
	scorer    *scoring.Scorer
	gate      *markethours.Gate
	emitter   contracts.ScanEmitter
	store     contracts.ScanStore    // nil when history storage is disabled
	notifier  contracts.ScanNotifier // nil when nothing listens
	log       *logger.Logger
}

// NewRunner wires the scan pipeline. store and notifier may be nil.
func NewRunner(
	col *collector.Collector,
	scorer *scoring.Scorer,
	gate *markethours.Gate,
	emitter contracts.ScanEmitter,
	store contracts.ScanStore,
	notifier contracts.ScanNotifier,
	log *logger.Logger,
) *Runner {
	return &Runner{
		collector: col,
		scorer:    scorer,
		gate:      gate,
		emitter:   emitter,
		store:     store,
		notifier:  notifier,
		log:       log.WithField("component", "scanner"),
	}
}

// RunScan executes one scan and returns its result. With force unset
// the run is skipped outside regular trading hours and ErrMarketClosed
// is returned.
func (r *Runner) RunScan(ctx context.Context, force bool) (*contracts.ScanResult, error) {
	scanTime := time.Now().UTC()

	if !force {
		if open, reason := r.gate.IsOpen(scanTime); !open {
			r.log.WithField("reason", reason).Info("Skipping scan outside trading hours")
			return nil, fmt.Errorf("%w: %s", ErrMarketClosed, reason)
		}
	}

	series, fetches := r.collector.FetchAll(ctx)
	for _, f := range fetches {
		if f.Error != nil {
			r.log.WithError(f.Error).WithField("ticker", f.Ticker).Warn("Sector series unavailable")
		}
	}

	result := r.scorer.Score(scanTime, series)

	recordID, err := r.emitter.Emit(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("emit scan record: %w", err)
	}

	// History storage is best effort: the artifact record already
	// exists on disk, so a database outage must not fail the scan.
	if r.store != nil {
		if err := r.store.Save(ctx, result); err != nil {
			r.log.WithError(err).Error("Failed to store scan history")
		}
	}

	if r.notifier != nil {
		r.notifier.NotifyScan(result)
	}

	r.log.WithFields(map[string]interface{}{
		"record_id": recordID,
		"sectors":   len(result.Sectors),
		"sentiment": string(result.Sentiment),
	}).Info("Scan completed")

	return result, nil
}
