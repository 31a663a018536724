package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression
	// Examples: "0 0 16 * * *" (every day at 4 PM)
	//           "@daily", "@hourly"
	Schedule() string
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory stores job execution history
type JobHistory struct {
	Results []JobResult
}

// AddResult adds a job result to history
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	// Keep only last 100 results
	if len(h.Results) > 100 {
		h.Results = h.Results[len(h.Results)-100:]
	}
}

// GetLatestResults returns the latest N results
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}

	if n == 0 {
		return []JobResult{}
	}

	return h.Results[len(h.Results)-n:]
}

// GetFailedResults returns all failed results
func (h *JobHistory) GetFailedResults() []JobResult {
	failed := make([]JobResult, 0)
	for _, result := range h.Results {
		if !result.Success && !result.Skipped {
			failed = append(failed, result)
		}
	}
	return failed
}

// GetSkippedResults returns all skipped results
func (h *JobHistory) GetSkippedResults() []JobResult {
	skipped := make([]JobResult, 0)
	for _, result := range h.Results {
		if result.Skipped {
			skipped = append(skipped, result)
		}
	}
	return skipped
}

// GetSuccessRate returns the success rate (0.0 - 1.0), counting
// skipped runs as neither success nor failure
func (h *JobHistory) GetSuccessRate() float64 {
	counted := 0
	successCount := 0
	for _, result := range h.Results {
		if result.Skipped {
			continue
		}
		counted++
		if result.Success {
			successCount++
		}
	}

	if counted == 0 {
		return 0.0
	}
	return float64(successCount) / float64(counted)
}
