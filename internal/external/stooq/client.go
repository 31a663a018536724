package stooq

import (
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/httputil"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// Client scrapes daily history from the stooq.com quote pages. It is
// the fallback provider when the primary vendor fails for a ticker.
type Client struct {
	httpClient *httputil.Client
	cfg        config.StooqConfig
	logger     *logger.Logger
}

// NewClient creates a new stooq client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cfg:        cfg.Stooq,
		logger:     log.WithField("module", "stooq"),
	}
}

// Name identifies the provider in logs and fetch results
func (c *Client) Name() string {
	return "stooq"
}
