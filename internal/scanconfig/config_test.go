package scanconfig

import (
	"errors"
	"os"
	"testing"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
)

func validConfig() *Config {
	return &Config{
		Meta: Meta{ConfigID: "test", Version: "1.0", Timezone: "America/New_York"},
		Sectors: []Sector{
			{Ticker: "XLK", Name: "Technology", Group: contracts.GroupCyclical},
			{Ticker: "XLU", Name: "Utilities", Group: contracts.GroupDefensive},
		},
		Windows: []Window{
			{Name: "1d", Length: 1, Weight: 0.5},
			{Name: "5d", Length: 5, Weight: 0.3},
			{Name: "20d", Length: 20, Weight: 0.2},
		},
		Sentiment: Sentiment{Threshold: 0.5},
		Trend:     Trend{StrongThreshold: 1.5, WeakThreshold: 0.5, VolumeShort: 5, VolumeLong: 20},
		Fetch:     Fetch{Workers: 4},
	}
}

func TestLoad(t *testing.T) {
	path := "../../config/scanner.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.ConfigID != "us_sector_rotation" {
		t.Errorf("expected config_id=us_sector_rotation, got %s", cfg.Meta.ConfigID)
	}

	if len(cfg.Sectors) != 13 {
		t.Errorf("expected 13 sectors, got %d", len(cfg.Sectors))
	}

	if cfg.Sentiment.Threshold != 0.5 {
		t.Errorf("expected sentiment threshold 0.5, got %v", cfg.Sentiment.Threshold)
	}

	// 20-day window plus one observation, and 20 observations for the
	// volume trend, so 21 total.
	if cfg.MinPoints() != 21 {
		t.Errorf("expected MinPoints=21, got %d", cfg.MinPoints())
	}

	// Hash is deterministic
	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	t.Logf("config hash: %s", hash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestValidateOK(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Validate failed on valid config: %v", err)
	}
}

func TestValidateEmptySectors(t *testing.T) {
	cfg := validConfig()
	cfg.Sectors = nil

	if err := Validate(cfg); err == nil {
		t.Error("expected error for empty sector set")
	}
}

func TestValidateZeroWeights(t *testing.T) {
	cfg := validConfig()
	cfg.Windows = []Window{
		{Name: "1d", Length: 1, Weight: 0},
		{Name: "5d", Length: 5, Weight: 0},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for zero total weight")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestValidateNegativeWeight(t *testing.T) {
	cfg := validConfig()
	cfg.Windows[0].Weight = -0.5

	if err := Validate(cfg); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestValidateDuplicateTicker(t *testing.T) {
	cfg := validConfig()
	cfg.Sectors = append(cfg.Sectors, Sector{Ticker: "XLK", Name: "Tech again"})

	if err := Validate(cfg); err == nil {
		t.Error("expected error for duplicate ticker")
	}
}

func TestValidateBadGroup(t *testing.T) {
	cfg := validConfig()
	cfg.Sectors[0].Group = "speculative"

	if err := Validate(cfg); err == nil {
		t.Error("expected error for unknown group")
	}
}

func TestValidateNonPositiveThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.Sentiment.Threshold = 0

	if err := Validate(cfg); err == nil {
		t.Error("expected error for zero sentiment threshold")
	}
}

func TestGroupTickers(t *testing.T) {
	cfg := validConfig()

	cyclical := cfg.GroupTickers(contracts.GroupCyclical)
	if len(cyclical) != 1 || cyclical[0] != "XLK" {
		t.Errorf("unexpected cyclical tickers: %v", cyclical)
	}

	defensive := cfg.GroupTickers(contracts.GroupDefensive)
	if len(defensive) != 1 || defensive[0] != "XLU" {
		t.Errorf("unexpected defensive tickers: %v", defensive)
	}
}
