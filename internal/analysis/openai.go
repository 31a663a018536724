package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/pkg/config"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

const systemPrompt = "You are an expert market analyst specializing in sector rotation analysis, " +
	"technical analysis, and market cycle identification. You provide clear, actionable insights based on data."

// Client generates market commentary for a scan result via the OpenAI
// chat completions API.
type Client struct {
	http        *resty.Client
	model       string
	maxTokens   int
	temperature float64
	log         *logger.Logger
}

// NewClient creates a commentary client. It fails when no API key is
// configured so the scheduler can surface the misconfiguration before
// the first run.
func NewClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for market commentary")
	}

	http := resty.New().
		SetBaseURL(cfg.OpenAI.BaseURL).
		SetTimeout(90 * time.Second).
		SetAuthToken(cfg.OpenAI.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:        http,
		model:       cfg.OpenAI.Model,
		maxTokens:   cfg.OpenAI.MaxTokens,
		temperature: cfg.OpenAI.Temperature,
		log:         log.WithField("component", "analysis"),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Analyze sends the scan result to the model and returns its
// commentary text
func (c *Client) Analyze(ctx context.Context, result *contracts.ScanResult) (string, error) {
	prompt, err := BuildPrompt(result)
	if err != nil {
		return "", err
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to call chat completions: %w", err)
	}

	if resp.IsError() {
		if out.Error != nil {
			return "", fmt.Errorf("chat completions returned %d: %s", resp.StatusCode(), out.Error.Message)
		}
		return "", fmt.Errorf("chat completions returned %d", resp.StatusCode())
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completions returned no choices")
	}

	c.log.WithFields(map[string]interface{}{
		"model":     c.model,
		"record_id": result.RecordID(),
	}).Info("Market commentary generated")

	return out.Choices[0].Message.Content, nil
}
