package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/crucial707/automation-schedules/internal/metrics"
	"github.com/crucial707/automation-schedules/internal/middleware"
	"github.com/crucial707/automation-schedules/internal/models"
	"github.com/crucial707/automation-schedules/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// ScheduleHandler serves an automation account's schedules.
type ScheduleHandler struct {
	Repo *repo.ScheduleRepo
	Log  logrus.FieldLogger
}

// authorized reports whether the caller's token grants access to account.
func authorized(r *http.Request, account string) bool {
	scope, _ := r.Context().Value(middleware.AccountKey).(string)
	return scope == "*" || scope == account
}

// ListSchedules returns the account's schedules (query: hour_interval).
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if !authorized(r, account) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	interval := 0
	if v := r.URL.Query().Get("hour_interval"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			JSONError(w, "invalid hour_interval", http.StatusBadRequest)
			return
		}
		interval = n
	}

	list, err := h.Repo.ListByAccount(r.Context(), account, interval)
	if err != nil {
		h.Log.WithError(err).WithField("account", account).Error("list schedules failed")
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GetSchedule returns one schedule by id.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if !authorized(r, account) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid schedule id", http.StatusBadRequest)
		return
	}

	s, err := h.Repo.GetByID(r.Context(), account, id)
	if err != nil {
		h.Log.WithError(err).WithField("account", account).Error("get schedule failed")
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if s == nil {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// CreateSchedule creates a schedule.
// Body: {"name": "...", "description": "...", "hour_interval": 1, "start_time": "RFC3339", "frequency": "Hour"}.
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if !authorized(r, account) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var input models.NewSchedule
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	input.Account = account
	if input.Frequency == "" {
		input.Frequency = models.FrequencyHour
	}

	fields := make(map[string]string)
	if input.Name == "" {
		fields["name"] = "required"
	}
	if input.HourInterval < 1 {
		fields["hour_interval"] = "must be at least 1"
	}
	if input.StartTime.IsZero() {
		fields["start_time"] = "required"
	}
	if input.Frequency != models.FrequencyHour {
		fields["frequency"] = "must be " + models.FrequencyHour
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	s, err := h.Repo.Create(r.Context(), input)
	if errors.Is(err, repo.ErrDuplicateName) {
		metrics.IncSchedulesCreated("conflict")
		JSONError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		metrics.IncSchedulesCreated("error")
		h.Log.WithError(err).WithField("account", account).Error("create schedule failed")
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	metrics.IncSchedulesCreated("created")
	h.Log.WithFields(logrus.Fields{
		"account":       account,
		"name":          s.Name,
		"hour_interval": s.HourInterval,
		"start_time":    s.StartTime.Format(time.RFC3339),
	}).Info("schedule created")

	writeJSON(w, http.StatusCreated, s)
}
