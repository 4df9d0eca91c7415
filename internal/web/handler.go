package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/actionsum/workwatch/internal/config"
	"github.com/actionsum/workwatch/internal/models"
	"github.com/actionsum/workwatch/internal/reporter"
	"github.com/actionsum/workwatch/internal/tracker"
	"github.com/actionsum/workwatch/pkg/utils"
)

const defaultSessionLimit = 100

// Store is the read side of database.Repository.
type Store interface {
	reporter.SummaryStore
	GetSessionsSince(since time.Time) ([]models.Session, error)
	GetLatestSessions(limit int) ([]models.Session, error)
	GetLatest() (*models.Session, error)
}

// Engine exposes the live tracker state; tracker.Engine satisfies it.
type Engine interface {
	Current() *tracker.ActiveSession
	Running() bool
	Pending() int
	Written() int64
}

type Handler struct {
	config   *config.Config
	store    Store
	engine   Engine
	reporter *reporter.Reporter
	now      func() time.Time
}

// NewHandler creates the API handler. engine may be nil when serving
// stored data only.
func NewHandler(cfg *config.Config, store Store, engine Engine) *Handler {
	return &Handler{
		config:   cfg,
		store:    store,
		engine:   engine,
		reporter: reporter.New(store),
		now:      time.Now,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", h.handleSessions)
	mux.HandleFunc("/api/current", h.handleCurrent)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/status", h.handleStatus)

	mux.HandleFunc("/health", h.handleHealth)
}

func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit := defaultSessionLimit
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		limit = l
	}

	var sessions []models.Session
	var err error

	if periodType := query.Get("period"); periodType != "" {
		period, perr := reporter.GetPeriod(periodType, h.now())
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		sessions, err = h.store.GetSessionsSince(period.Start)
		if len(sessions) > limit {
			sessions = sessions[len(sessions)-limit:]
		}
	} else {
		sessions, err = h.store.GetLatestSessions(limit)
	}

	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch sessions: %v", err), http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	respondJSON(w, sessions)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.engine == nil {
		http.Error(w, "Tracker is not running", http.StatusServiceUnavailable)
		return
	}

	cur := h.engine.Current()
	if cur == nil {
		http.Error(w, "No window in focus", http.StatusNotFound)
		return
	}

	elapsed := h.now().Sub(cur.StartedAt)
	respondJSON(w, map[string]interface{}{
		"process_name": cur.ProcessName,
		"window_title": cur.WindowTitle,
		"started_at":   cur.StartedAt,
		"elapsed":      utils.FormatClock(elapsed),
		"qualifies":    elapsed >= h.config.Tracker.MinDuration,
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}
	if _, err := reporter.GetPeriod(periodType, h.now()); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, report)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"running":       h.engine != nil && h.engine.Running(),
		"poll_interval": h.config.Tracker.PollInterval.String(),
		"min_duration":  h.config.Tracker.MinDuration.String(),
		"activity_file": h.config.Log.ActivityFile,
		"database_path": h.config.Database.Path,
	}

	if h.engine != nil {
		status["pending"] = h.engine.Pending()
		status["written"] = h.engine.Written()
	}

	if latest, _ := h.store.GetLatest(); latest != nil {
		status["latest_session"] = map[string]interface{}{
			"process_name": latest.ProcessName,
			"window_title": latest.WindowTitle,
			"ended_at":     latest.EndedAt,
			"duration":     utils.FormatClock(latest.Duration),
		}
	}

	respondJSON(w, status)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
