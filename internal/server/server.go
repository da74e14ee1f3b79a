// Package server exposes the engine over HTTP: the glance summary, the
// completion flow, and usage stats. Handlers stay thin — they translate
// requests into explicit engine inputs (snapshot, now, day, policy) and
// engine outputs into JSON.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"taskglance/internal/clock"
	"taskglance/internal/completion"
	"taskglance/internal/config"
	"taskglance/internal/datekey"
	"taskglance/internal/httpmw"
	"taskglance/internal/model"
	"taskglance/internal/outstanding"
	"taskglance/internal/store"
	"taskglance/internal/telemetry"
)

type Options struct {
	Config config.Config
	Repo   store.Repo
	Events telemetry.Repository
	Clock  clock.Clock
	Logger *log.Logger
}

type Handler struct {
	cfg    config.Config
	repo   store.Repo
	uc     *completion.UseCase
	events telemetry.Repository
	clk    clock.Clock
	zone   *time.Location
}

// New builds the API handler behind the middleware chain.
func New(opts Options) http.Handler {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Events == nil {
		opts.Events = telemetry.NewMemoryRepository()
	}
	zone := opts.Config.Location()

	h := &Handler{
		cfg:    opts.Config,
		repo:   opts.Repo,
		uc:     completion.New(opts.Repo, opts.Repo, opts.Clock, zone),
		events: opts.Events,
		clk:    opts.Clock,
		zone:   zone,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/glance", h.handleGlance)
	mux.HandleFunc("POST /api/tasks/{id}/complete", h.handleComplete)
	mux.HandleFunc("GET /api/stats", h.handleStats)

	return httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithAccessLog(opts.Logger),
	)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func (h *Handler) handleGlance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	topN := h.cfg.Glance.TopN
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErr(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		topN = n
	}

	privacy := outstanding.PrivacyMode(h.cfg.Glance.Privacy)
	if raw := q.Get("privacy"); raw != "" {
		switch outstanding.PrivacyMode(raw) {
		case outstanding.PrivacyVisible, outstanding.PrivacyMasked, outstanding.PrivacyHidden:
			privacy = outstanding.PrivacyMode(raw)
		default:
			writeErr(w, http.StatusBadRequest, "unknown privacy mode")
			return
		}
	}

	policy := outstanding.TodayOverview()
	if q.Has("project") {
		policy = outstanding.PinnedFirst(model.ProjectID(q.Get("project")))
	} else if h.cfg.Glance.PinnedProject != "" {
		policy = outstanding.PinnedFirst(model.ProjectID(h.cfg.Glance.PinnedProject))
	}

	snap, err := h.repo.Snapshot()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "snapshot failed")
		return
	}

	now := h.clk.Now()
	summary := outstanding.Compute(outstanding.Input{
		Now:      now,
		Day:      datekey.From(now, h.zone),
		Zone:     h.zone,
		Policy:   policy,
		Privacy:  privacy,
		TopN:     topN,
		Projects: snap.Projects,
		Tasks:    snap.Tasks,
		Logs:     snap.Logs,
	})

	_ = h.events.RecordEvent(telemetry.EventGlanceComputed, telemetry.EventMetadata{
		"fallback_reason": string(summary.FallbackReason),
		"outstanding":     summary.Counters.OutstandingTotal,
		"shown":           len(summary.Display),
	})

	writeJSON(w, http.StatusOK, summary)
}

type completeRequest struct {
	Day string `json:"day,omitempty"`
	At  string `json:"at,omitempty"`
}

type completeResponse struct {
	completion.Result
	Message string `json:"message,omitempty"`
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	taskID := model.TaskID(r.PathValue("id"))

	// An empty body means "defaults"; anything else malformed is a 400.
	var body completeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := completion.Request{TaskID: taskID}
	if body.Day != "" {
		day, err := datekey.Parse(body.Day)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		req.Day = day
	}
	if body.At != "" {
		at, err := time.Parse(time.RFC3339, body.At)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "at must be RFC 3339")
			return
		}
		req.At = at
	}

	res, err := h.uc.Complete(req)
	if err != nil {
		_ = h.events.RecordEvent(telemetry.EventCompletionRejected, telemetry.EventMetadata{
			"task_id": string(taskID),
			"error":   err.Error(),
		})
		switch {
		case errors.Is(err, completion.ErrTaskNotFound):
			writeErr(w, http.StatusNotFound, "task not found")
		case errors.Is(err, completion.ErrRolloverMissingRule),
			errors.Is(err, completion.ErrRolloverMissingNext):
			writeErr(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, "completion failed")
		}
		return
	}

	task, ok, _ := h.repo.GetTask(taskID)
	title := ""
	projectID := ""
	if ok {
		title = task.Title
		projectID = string(task.ProjectID)
	}

	if res.WasAlreadyCompleted {
		_ = h.events.RecordEvent(telemetry.EventCompletionDuplicate, telemetry.EventMetadata{
			"task_id": string(taskID),
		})
	} else {
		_ = h.events.RecordEvent(telemetry.EventTaskCompleted, telemetry.EventMetadata{
			"task_id":        string(taskID),
			"project_id":     projectID,
			"occurrence_key": res.Log.OccurrenceKey,
		})
	}

	writeJSON(w, http.StatusOK, completeResponse{
		Result: res,
		Message: outstanding.CompletionMessage(title, res.WasAlreadyCompleted,
			outstanding.PrivacyMode(h.cfg.Glance.Privacy)),
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	since := h.clk.Now().AddDate(0, 0, -7)
	if raw := r.URL.Query().Get("since"); raw != "" {
		day, err := datekey.Parse(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
		parsed, _ := time.ParseInLocation("2006-01-02", day.String(), h.zone)
		since = parsed
	}

	events, err := h.events.GetEvents(since, nil)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "load events failed")
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "calculate stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
