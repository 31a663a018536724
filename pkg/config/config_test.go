package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8091" {
		t.Errorf("Expected Port to be 8091, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.AlphaVantage.BaseURL != "https://www.alphavantage.co/query" {
		t.Errorf("Unexpected Alpha Vantage base URL: %s", cfg.AlphaVantage.BaseURL)
	}

	if cfg.AlphaVantage.RequestsPerMin != 75 {
		t.Errorf("Expected RequestsPerMin to be 75, got %d", cfg.AlphaVantage.RequestsPerMin)
	}

	if cfg.Output.RetentionDays != 7 {
		t.Errorf("Expected RetentionDays to be 7, got %d", cfg.Output.RetentionDays)
	}

	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("Expected OpenAI model gpt-4o, got %s", cfg.OpenAI.Model)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	// Set custom environment variables
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("ALPHAVANTAGE_REQUESTS_PER_MIN", "5")
	os.Setenv("ALPHAVANTAGE_OUTPUT_SIZE", "full")
	os.Setenv("LOG_LEVEL", "info")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("ALPHAVANTAGE_REQUESTS_PER_MIN")
		os.Unsetenv("ALPHAVANTAGE_OUTPUT_SIZE")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.AlphaVantage.RequestsPerMin != 5 {
		t.Errorf("Expected RequestsPerMin to be 5, got %d", cfg.AlphaVantage.RequestsPerMin)
	}

	if cfg.AlphaVantage.OutputSize != "full" {
		t.Errorf("Expected OutputSize to be full, got %s", cfg.AlphaVantage.OutputSize)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	os.Setenv("ENV", "sandbox")
	defer os.Unsetenv("ENV")

	if _, err := Load(); err == nil {
		t.Error("Expected validation error for unknown ENV")
	}
}

func TestLoadRejectsBadOutputSize(t *testing.T) {
	os.Setenv("ALPHAVANTAGE_OUTPUT_SIZE", "huge")
	defer os.Unsetenv("ALPHAVANTAGE_OUTPUT_SIZE")

	if _, err := Load(); err == nil {
		t.Error("Expected validation error for unknown output size")
	}
}
