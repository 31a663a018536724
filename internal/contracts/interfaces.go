package contracts

import (
	"context"
	"time"
)

// PriceProvider supplies a daily closing-price series for a ticker.
// minPoints is the smallest series length the caller can use; a
// provider may return more. Implementations must return points in
// ascending date order.
type PriceProvider interface {
	Name() string
	FetchDailySeries(ctx context.Context, ticker string, minPoints int) (PriceSeries, error)
}

// ScanStore persists the historical series of scan results.
// Save must be idempotent per scan timestamp.
type ScanStore interface {
	Save(ctx context.Context, result *ScanResult) error
	Latest(ctx context.Context) (*ScanResult, error)
	Range(ctx context.Context, from, to time.Time) ([]*ScanResult, error)
}

// ScanEmitter writes one scan result to a durable record and returns
// its record id. Re-emitting the same result must not duplicate it.
type ScanEmitter interface {
	Emit(ctx context.Context, result *ScanResult) (string, error)
}

// ScanNotifier receives each freshly produced scan result, e.g. for
// pushing it to connected dashboards.
type ScanNotifier interface {
	NotifyScan(result *ScanResult)
}
