package schedules

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crucial707/automation-schedules/cmd/cli/root"
	"github.com/crucial707/automation-schedules/internal/gapfill"
	"github.com/crucial707/automation-schedules/internal/models"
)

// fakeAutomationAPI serves the health, list and create endpoints in memory.
type fakeAutomationAPI struct {
	mu        sync.Mutex
	existing  []models.Schedule
	created   []models.NewSchedule
	failName  string
	authedAll bool
}

func (f *fakeAutomationAPI) handler(t *testing.T) http.Handler {
	f.authedAll = true
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte("ok"))
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			f.authedAll = false
		}
		if r.URL.Path != "/accounts/ops/schedules" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(f.existing)
		case http.MethodPost:
			var in models.NewSchedule
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Errorf("decode create body: %v", err)
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.created = append(f.created, in)
			if in.Name == f.failName {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.Schedule{ID: len(f.created), Name: in.Name})
		}
	})
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cli := root.New()
	InitSchedules(cli)

	var out, errOut bytes.Buffer
	cli.Cmd.SetOut(&out)
	cli.Cmd.SetErr(&errOut)
	cli.Cmd.SetArgs(args)

	err := cli.Cmd.Execute()
	return out.String(), err
}

func TestFill_CreatesMissingMinutes(t *testing.T) {
	api := &fakeAutomationAPI{existing: []models.Schedule{
		{ID: 1, HourInterval: 1, StartTime: time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)},
	}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	out, err := runCLI(t, "schedules", "fill", "--api-url", srv.URL, "--token", "test-token",
		"--account", "ops", "--create-rate", "0")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	if len(api.created) != 35 {
		t.Fatalf("expected 35 creates, got %d", len(api.created))
	}
	for _, c := range api.created {
		if c.StartTime.Minute() == 30 {
			t.Errorf("minute 30 already exists but was created: %+v", c)
		}
	}
	if !api.authedAll {
		t.Error("expected bearer token on every API call")
	}
	if !strings.Contains(out, "Every 1 Hour(s) at minute 12") || !strings.Contains(out, "created 35") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestFill_CustomSegments(t *testing.T) {
	api := &fakeAutomationAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	_, err := runCLI(t, "schedules", "fill", "--api-url", srv.URL, "--token", "test-token",
		"--account", "ops", "--interval", "2", "--segment", "20=20min", "--segment", "40=40min", "--create-rate", "0")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	if len(api.created) != 3 {
		t.Fatalf("expected 3 creates, got %d", len(api.created))
	}
	if api.created[0].Name != "Every 2 Hour(s) at minute 0" || api.created[0].Description != "20min,40min" {
		t.Errorf("unexpected minute 0 request: %+v", api.created[0])
	}
	if api.created[2].Description != "20min,40min" || api.created[1].Description != "20min" {
		t.Errorf("unexpected descriptions: %+v", api.created)
	}
	for _, c := range api.created {
		if c.HourInterval != 2 {
			t.Errorf("hour interval: got %d, want 2", c.HourInterval)
		}
	}
}

func TestFill_ReportsCreateFailures(t *testing.T) {
	api := &fakeAutomationAPI{failName: "Every 1 Hour(s) at minute 10"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	_, err := runCLI(t, "schedules", "fill", "--api-url", srv.URL, "--token", "test-token",
		"--account", "ops", "--create-rate", "0", "--json")
	if err == nil || !strings.Contains(err.Error(), "1 of 36") {
		t.Fatalf("expected failure summary, got %v", err)
	}
	var createErr *gapfill.CreateError
	if !errors.As(err, &createErr) || createErr.Minute != 10 {
		t.Errorf("expected wrapped create error for minute 10, got %v", err)
	}
	if len(api.created) != 36 {
		t.Errorf("expected every matching minute to be attempted, got %d", len(api.created))
	}
}

func TestPlan_DoesNotCreate(t *testing.T) {
	api := &fakeAutomationAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	out, err := runCLI(t, "schedules", "plan", "--api-url", srv.URL, "--token", "test-token", "--account", "ops")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(api.created) != 0 {
		t.Errorf("plan must not create, got %d", len(api.created))
	}
	if !strings.Contains(out, "planned 36") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestFill_RequiresAccount(t *testing.T) {
	_, err := runCLI(t, "schedules", "fill", "--api-url", "http://127.0.0.1:1")
	if err == nil || !strings.Contains(err.Error(), "account is required") {
		t.Fatalf("expected account error, got %v", err)
	}
}

func TestFill_MissingDependency(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := runCLI(t, "schedules", "fill", "--api-url", srv.URL, "--account", "ops")
	if err == nil || !strings.Contains(err.Error(), "missing dependency") {
		t.Fatalf("expected missing dependency error, got %v", err)
	}
}

func TestList_TableOutput(t *testing.T) {
	api := &fakeAutomationAPI{existing: []models.Schedule{
		{ID: 4, Name: "Every 1 Hour(s) at minute 15", HourInterval: 1, Description: "5min,15min",
			StartTime: time.Date(2025, 1, 1, 0, 15, 0, 0, time.UTC)},
	}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	out, err := runCLI(t, "schedules", "list", "--api-url", srv.URL, "--token", "test-token", "--account", "ops")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Every 1 Hour(s) at minute 15") || !strings.Contains(out, "15 0/1 * * *") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestCronExpr(t *testing.T) {
	start := time.Date(2026, 10, 15, 5, 45, 0, 0, time.UTC)
	testCases := []struct {
		interval int
		want     string
	}{
		{interval: 1, want: "45 0/1 * * *"},
		{interval: 4, want: "45 1/4 * * *"},
		{interval: 24, want: "45 5/24 * * *"},
		{interval: 5, want: ""},
		{interval: 48, want: ""},
	}
	for _, tc := range testCases {
		got := CronExpr(models.Schedule{HourInterval: tc.interval, StartTime: start})
		if got != tc.want {
			t.Errorf("interval %d: got %q, want %q", tc.interval, got, tc.want)
		}
	}
}

func TestNextRun(t *testing.T) {
	start := time.Date(2026, 10, 15, 0, 10, 0, 0, time.UTC)

	before := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	if got := NextRun(models.Schedule{HourInterval: 1, StartTime: start}, before); !got.Equal(start) {
		t.Errorf("before start: got %v, want %v", got, start)
	}

	now := time.Date(2026, 10, 15, 7, 30, 0, 0, time.UTC)
	want := time.Date(2026, 10, 15, 8, 10, 0, 0, time.UTC)
	if got := NextRun(models.Schedule{HourInterval: 2, StartTime: start}, now); !got.Equal(want) {
		t.Errorf("cron path: got %v, want %v", got, want)
	}

	want = time.Date(2026, 10, 15, 10, 10, 0, 0, time.UTC)
	if got := NextRun(models.Schedule{HourInterval: 5, StartTime: start}, now); !got.Equal(want) {
		t.Errorf("arithmetic path: got %v, want %v", got, want)
	}
}
