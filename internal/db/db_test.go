package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/automation-schedules/internal/config"
)

func TestReady_SizesPoolAndPings(t *testing.T) {
	pool, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer pool.Close()

	mock.ExpectPing()
	cfg := config.Config{DBMaxOpenConns: 4, DBMaxIdleConns: 1}
	if err := ready(context.Background(), pool, cfg); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if got := pool.Stats().MaxOpenConnections; got != 4 {
		t.Errorf("max open: got %d, want 4", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestReady_PingFailure(t *testing.T) {
	pool, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer pool.Close()

	down := errors.New("connection refused")
	mock.ExpectPing().WillReturnError(down)
	cfg := config.Config{DBHost: "db", DBPort: "5432", DBName: "automation"}
	err = ready(context.Background(), pool, cfg)
	if !errors.Is(err, down) {
		t.Fatalf("expected wrapped ping error, got %v", err)
	}
	if !strings.Contains(err.Error(), "db:5432/automation") {
		t.Errorf("error should name the database: %v", err)
	}
}
