// Package app wires configuration, the database pool, repositories, services,
// and the HTTP server into a running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/harwell-homes/schedcast-backend/internal/adapter/postgres"
	activityrepo "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres/activity"
	calendarrepo "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres/calendarday"
	dependencyrepo "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres/dependency"
	historyrepo "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres/history"
	stagingrepo "github.com/harwell-homes/schedcast-backend/internal/adapter/postgres/staging"
	"github.com/harwell-homes/schedcast-backend/internal/config"
	historysvc "github.com/harwell-homes/schedcast-backend/internal/service/history"
	schedulesvc "github.com/harwell-homes/schedcast-backend/internal/service/schedule"
	"github.com/harwell-homes/schedcast-backend/internal/transport/middleware"
	"github.com/harwell-homes/schedcast-backend/internal/transport/rest"
)

// Run is the application entry point. It blocks until ctx is cancelled, then
// shuts the HTTP server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	activities := activityrepo.New(pool)
	dependencies := dependencyrepo.New(pool)
	calendars := calendarrepo.New(pool)
	staging := stagingrepo.New(pool)
	history := historyrepo.New(pool)
	tx := postgres.NewTxManager(pool)

	scheduleService := schedulesvc.NewService(
		logger, activities, dependencies, calendars, staging, history, tx,
		schedulesvc.Config{HorizonMarginDays: cfg.Schedule.HorizonMarginDays},
	)
	historyService := historysvc.NewService(logger, history, activities)

	mux := rest.NewRouter(
		rest.NewStagingHandler(scheduleService),
		rest.NewStatusHandler(scheduleService),
		rest.NewHistoryHandler(historyService),
		rest.NewHealthHandler(pool, BuildVersion()),
	)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Identity,
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
