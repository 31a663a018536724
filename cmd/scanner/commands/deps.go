package commands

import (
	"fmt"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/analysis"
	"github.com/GeorgeHategan/sector-rotation/internal/collector"
	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/external/alphavantage"
	"github.com/GeorgeHategan/sector-rotation/internal/external/stooq"
	"github.com/GeorgeHategan/sector-rotation/internal/markethours"
	"github.com/GeorgeHategan/sector-rotation/internal/report"
	"github.com/GeorgeHategan/sector-rotation/internal/scanconfig"
	"github.com/GeorgeHategan/sector-rotation/internal/scanner"
	"github.com/GeorgeHategan/sector-rotation/internal/scheduler"
	"github.com/GeorgeHategan/sector-rotation/internal/scheduler/jobs"
	"github.com/GeorgeHategan/sector-rotation/internal/scoring"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/database"
	"github.com/GeorgeHategan/sector-rotation/pkg/httputil"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
	"github.com/GeorgeHategan/sector-rotation/pkg/redis"
)

// deps holds the shared wiring every command builds on. Optional
// backends (Postgres, Redis) stay nil when not configured and the
// pipeline degrades to file artifacts only.
type deps struct {
	cfg     *config.Config
	log     *logger.Logger
	scanCfg *scanconfig.Config

	db    *database.DB
	redis *redis.Client
	store *report.Repository

	emitter   *report.Emitter
	publisher *report.Publisher
	cleaner   *report.Cleaner
}

// initDeps loads configuration and connects optional backends
func initDeps() (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load and validate the scan universe
	scanCfg, _, err := scanconfig.Load(cfg.ScanConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load scan config %s: %w", cfg.ScanConfigPath, err)
	}

	d := &deps{
		cfg:       cfg,
		log:       log,
		scanCfg:   scanCfg,
		emitter:   report.NewEmitter(cfg, log),
		publisher: report.NewPublisher(cfg, log),
		cleaner:   report.NewCleaner(cfg, log),
	}

	// 4. Connect to database (optional, for scan history)
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.store = report.NewRepository(db, log)
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, scan history storage disabled")
	}

	// 5. Connect to Redis (optional, for the series cache)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	d.redis = redisClient

	return d, nil
}

// Close releases backend connections
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
}

// scanStore returns the history store, or nil when storage is disabled
func (d *deps) scanStore() contracts.ScanStore {
	if d.store == nil {
		return nil
	}
	return d.store
}

// newRunner wires the full scan pipeline. notifier may be nil.
func (d *deps) newRunner(notifier contracts.ScanNotifier) (*scanner.Runner, error) {
	scorer, err := scoring.New(d.scanCfg, d.log)
	if err != nil {
		return nil, fmt.Errorf("init scorer: %w", err)
	}

	gate, err := markethours.NewGate()
	if err != nil {
		return nil, fmt.Errorf("init market gate: %w", err)
	}

	// Alpha Vantage first; the client applies the vendor rate limit
	avHTTP := httputil.NewWithTimeout(d.cfg, d.log, d.cfg.AlphaVantage.RequestTimeout)
	providers := []contracts.PriceProvider{
		alphavantage.NewClient(d.cfg, avHTTP, d.log),
	}

	// Stooq as scrape fallback
	if d.cfg.Stooq.Enabled {
		stooqHTTP := httputil.NewWithTimeout(d.cfg, d.log, 20*time.Second)
		providers = append(providers, stooq.NewClient(d.cfg, stooqHTTP, d.log))
	}

	cache := redis.NewCache(d.redis, "scanner")
	col := collector.NewCollector(d.scanCfg, cache, d.log, providers...)

	return scanner.NewRunner(col, scorer, gate, d.emitter, d.scanStore(), notifier, d.log), nil
}

// newScheduler builds the scheduler with all jobs registered.
// The commentary job needs both the history store and an OpenAI key;
// without them it is simply not scheduled.
func (d *deps) newScheduler(runner *scanner.Runner) (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)

	if err := sched.AddJob(jobs.NewSectorScanJob(runner, d.publisher, d.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewArtifactCleanupJob(d.cleaner, d.log)); err != nil {
		return nil, err
	}

	if d.store != nil {
		if err := sched.AddJob(jobs.NewPagesPublishJob(d.store, d.publisher, d.log)); err != nil {
			return nil, err
		}
	}

	if d.store != nil && d.cfg.OpenAI.APIKey != "" {
		client, err := analysis.NewClient(d.cfg, d.log)
		if err != nil {
			return nil, fmt.Errorf("init analysis client: %w", err)
		}
		writer := analysis.NewWriter(d.cfg, d.log)
		if err := sched.AddJob(jobs.NewAIAnalysisJob(d.store, client, writer, d.publisher, d.log)); err != nil {
			return nil, err
		}
	} else {
		d.log.Warn("AI commentary job disabled (needs DATABASE_URL and OPENAI_API_KEY)")
	}

	return sched, nil
}
