package alphavantage

import (
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/httputil"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// Client calls the Alpha Vantage REST API.
// All Alpha Vantage requests go through this client, which carries the
// vendor rate limit on its HTTP client.
type Client struct {
	httpClient *httputil.Client
	cfg        config.AlphaVantageConfig
	logger     *logger.Logger
}

// NewClient creates a new Alpha Vantage client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.WithRateLimit(cfg.AlphaVantage.RequestsPerMin),
		cfg:        cfg.AlphaVantage,
		logger:     log.WithField("module", "alphavantage"),
	}
}

// Name identifies the provider in logs and fetch results
func (c *Client) Name() string {
	return "alphavantage"
}
