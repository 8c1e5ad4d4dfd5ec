package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/automation-schedules/internal/config"
	"github.com/crucial707/automation-schedules/internal/db"
	"github.com/crucial707/automation-schedules/internal/handlers"
	"github.com/crucial707/automation-schedules/internal/middleware"
	"github.com/crucial707/automation-schedules/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const devTokenTTL = 24 * time.Hour

func main() {

	// Load configuration
	cfg := config.Load()
	log := newLogger(cfg)

	version, err := db.Run(cfg.DatabaseURL())
	if err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}
	log.WithField("version", version).Info("schema up to date")

	database, err := db.Open(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()

	log.Info("successfully connected to the database")

	if cfg.Env == "dev" {
		token, err := middleware.NewToken([]byte(cfg.JWTSecret), "*", devTokenTTL)
		if err != nil {
			log.WithError(err).Fatal("failed to sign development token")
		}
		log.WithField("token", token).Info("development token for all accounts")
	}

	// Start server LAST
	log.Info("starting server on :" + cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server stopped")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// newRouter wires the development automation API.
func newRouter(database *sql.DB, cfg config.Config, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Prometheus)
	r.Use(middleware.APIHeaders)

	limit := cfg.RateLimitPerMinute
	if limit <= 0 {
		limit = 600
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", promhttp.Handler())

	schedules := &handlers.ScheduleHandler{Repo: repo.NewScheduleRepo(database), Log: log}

	r.Route("/accounts/{account}/schedules", func(r chi.Router) {
		r.Use(middleware.PerMinute(limit).Middleware)
		r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))
		r.Get("/", schedules.ListSchedules)
		r.With(middleware.LimitBody(middleware.MaxScheduleBodyBytes)).Post("/", schedules.CreateSchedule)
		r.Get("/{id}", schedules.GetSchedule)
	})

	return r
}
