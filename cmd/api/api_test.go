package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/automation-schedules/internal/automation"
	"github.com/crucial707/automation-schedules/internal/config"
	"github.com/crucial707/automation-schedules/internal/gapfill"
	"github.com/crucial707/automation-schedules/internal/middleware"
	"github.com/sirupsen/logrus"
)

var scheduleCols = []string{"id", "account", "name", "description", "hour_interval", "start_time", "frequency", "created_at"}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// TestAPI_FillGapsEndToEnd drives the gap filler through the HTTP client against the
// full router backed by sqlmock.
func TestAPI_FillGapsEndToEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "test-secret-for-integration"}
	srv := httptest.NewServer(newRouter(db, cfg, quietLogger()))
	defer srv.Close()

	token, err := middleware.NewToken([]byte(cfg.JWTSecret), "ops", time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	base := gapfill.NextMidnight(now)

	// minute 0 already exists
	mock.ExpectQuery(`FROM automation_schedules WHERE account = \$1 AND hour_interval = \$2`).
		WithArgs("ops", 1).
		WillReturnRows(sqlmock.NewRows(scheduleCols).
			AddRow(1, "ops", gapfill.ScheduleName(1, 0), "2min,5min,10min,15min,30min", 1, base, "Hour", now))

	segs := gapfill.DefaultSegments()
	expected := 0
	for m := 1; m < gapfill.MinutesPerHour; m++ {
		labels := segs.Match(m)
		if len(labels) == 0 {
			continue
		}
		req := gapfill.NewScheduleRequest("ops", 1, m, base, labels)
		mock.ExpectQuery(`INSERT INTO automation_schedules`).
			WithArgs("ops", req.Name, req.Description, 1, sqlmock.AnyArg(), "Hour").
			WillReturnRows(sqlmock.NewRows(scheduleCols).
				AddRow(m+1, "ops", req.Name, req.Description, 1, req.StartTime, "Hour", now))
		expected++
	}

	client := automation.NewClient(srv.URL, token)
	if err := gapfill.Check(context.Background(), gapfill.HostEnvironment{API: client}); err != nil {
		t.Fatalf("Check: %v", err)
	}

	filler := gapfill.NewFiller(client, quietLogger())
	filler.Now = func() time.Time { return now }

	report, err := filler.FillGaps(context.Background(), "ops", 1, segs)
	if err != nil {
		t.Fatalf("FillGaps: %v", err)
	}
	if got := report.Count(gapfill.ActionCreated); got != expected {
		t.Errorf("created: got %d, want %d", got, expected)
	}
	if got := report.Count(gapfill.ActionExists); got != 1 {
		t.Errorf("exists: got %d, want 1", got)
	}
	if err := report.Err(); err != nil {
		t.Errorf("unexpected failures: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAPI_SchedulesRequireToken(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, config.Config{JWTSecret: "x"}, quietLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/accounts/ops/schedules")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
}

func TestAPI_TokenScopedToAccount(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x"}
	srv := httptest.NewServer(newRouter(db, cfg, quietLogger()))
	defer srv.Close()

	token, _ := middleware.NewToken([]byte(cfg.JWTSecret), "ops", time.Hour)
	_, err = automation.NewClient(srv.URL, token).ListSchedules(context.Background(), "finance", 1)
	apiErr, ok := err.(*automation.APIError)
	if !ok || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 APIError, got %v", err)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, config.Config{JWTSecret: "x"}, quietLogger()))
	defer srv.Close()

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("%s request: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status: got %d, want 200", path, resp.StatusCode)
		}
	}
}
