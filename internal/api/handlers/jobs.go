package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/GeorgeHategan/sector-rotation/internal/scheduler"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// JobHandler exposes scheduler state
type JobHandler struct {
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(sched *scheduler.Scheduler, log *logger.Logger) *JobHandler {
	return &JobHandler{
		scheduler: sched,
		logger:    log,
	}
}

// GetStats returns statistics for all registered jobs
// GET /api/jobs
func (h *JobHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}

// GetHistory returns recent results for one job
// GET /api/jobs/{name}/history
func (h *JobHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.scheduler.GetJobHistory(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job":     name,
		"results": history.GetLatestResults(20),
	})
}

// RunNow triggers one job immediately
// POST /api/jobs/{name}/run
func (h *JobHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.scheduler.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}
