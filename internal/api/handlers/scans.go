package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/GeorgeHategan/sector-rotation/internal/contracts"
	"github.com/GeorgeHategan/sector-rotation/internal/report"
	"github.com/GeorgeHategan/sector-rotation/internal/scanconfig"
	"github.com/GeorgeHategan/sector-rotation/internal/scanner"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// defaultRangeDays bounds an open-ended history query
const defaultRangeDays = 30

// ScanHandler handles scan-related API endpoints
type ScanHandler struct {
	store   contracts.ScanStore
	runner  *scanner.Runner
	scanCfg *scanconfig.Config
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(store contracts.ScanStore, runner *scanner.Runner, scanCfg *scanconfig.Config, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		store:   store,
		runner:  runner,
		scanCfg: scanCfg,
		logger:  log,
	}
}

// GetLatest returns the most recent scan
// GET /api/scans/latest
func (h *ScanHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.Latest(r.Context())
	if errors.Is(err, report.ErrNoScans) {
		respondError(w, http.StatusNotFound, "No scans recorded yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest scan")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest scan")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetRange returns scans in a date range
// GET /api/scans?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ScanHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -defaultRangeDays)

	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
			return
		}
		// include the whole end day
		to = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
			return
		}
		from = parsed
	}
	if from.After(to) {
		respondError(w, http.StatusBadRequest, "'from' must not be after 'to'")
		return
	}

	results, err := h.store.Range(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query scan range")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve scans")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":  from,
		"to":    to,
		"count": len(results),
		"scans": results,
	})
}

// SectorInfo describes one configured sector
type SectorInfo struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Group  string `json:"group,omitempty"`
}

// GetSectors returns the configured sector universe
// GET /api/sectors
func (h *ScanHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	sectors := make([]SectorInfo, 0, len(h.scanCfg.Sectors))
	for _, s := range h.scanCfg.Sectors {
		sectors = append(sectors, SectorInfo{Ticker: s.Ticker, Name: s.Name, Group: s.Group})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(sectors),
		"sectors": sectors,
	})
}

// TriggerRequest represents a manual scan request
type TriggerRequest struct {
	Force bool `json:"force"` // run even when the market is closed
}

// Trigger runs a scan immediately
// POST /api/scans
func (h *ScanHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := h.runner.RunScan(r.Context(), req.Force)
	if errors.Is(err, scanner.ErrMarketClosed) {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Manual scan failed")
		respondError(w, http.StatusInternalServerError, "Scan failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
