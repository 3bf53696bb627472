package main

import (
	"context"
	"database/sql"
	"delivery-fleet-sim/internal/adapters/journal"
	"delivery-fleet-sim/internal/adapters/repositories"
	"delivery-fleet-sim/internal/api"
	"delivery-fleet-sim/internal/config"
	"delivery-fleet-sim/internal/platform/db"
	"delivery-fleet-sim/internal/platform/obs"
	"delivery-fleet-sim/internal/ports"
	"delivery-fleet-sim/internal/scenario"
	"delivery-fleet-sim/internal/simulation"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// main is the application composition root.
// It loads the input tables from SQL, builds one simulation day and either
// serves it over HTTP or runs it to completion.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := obs.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("fleet simulation failed")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, dialect, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, store, dialect, cfg.SeedPath); err != nil {
		return err
	}

	world, err := loadWorld(ctx, repositories.NewSQLPackageRepository(store, dialect), cfg.ScenarioPath)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	opts := simulation.Options{TickSeconds: cfg.TickSeconds, RunID: runID}
	if cfg.JournalDir != "" {
		j, err := journal.Open(cfg.JournalDir, runID)
		if err != nil {
			return err
		}
		defer func() {
			if err := j.Close(); err != nil {
				log.Error().Err(err).Str("path", j.Path()).Msg("close journal")
			}
		}()
		opts.Sink = j
		log.Info().Str("path", j.Path()).Msg("journaling events")
	}

	sim, err := simulation.New(world, opts)
	if err != nil {
		return err
	}
	log.Info().Str("run_id", runID).Int("packages", len(world.Packages)).
		Int("trucks", world.FleetSize).Msg("simulation ready")

	if cfg.Mode == config.ModeBatch {
		return runBatch(ctx, sim, repositories.NewSQLDeliveryLog(store, dialect))
	}
	return serve(ctx, sim, cfg.Port)
}

func openStore(cfg config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.UsePostgres() {
		store, err := db.Open(cfg.DatabaseURL)
		return store, repositories.Postgres, err
	}
	store, err := db.OpenSQLite(cfg.SQLitePath)
	return store, repositories.SQLite, err
}

func initAndSeed(ctx context.Context, store *sql.DB, d repositories.Dialect, seedPath string) error {
	if err := repositories.InitSchema(ctx, store); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if err := repositories.SeedFromJSON(ctx, store, d, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	return nil
}

func loadWorld(ctx context.Context, repo ports.PackageRepository, scenarioPath string) (*scenario.World, error) {
	pkgs, err := repo.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	locs, err := repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	dists, err := repo.ListDistances(ctx)
	if err != nil {
		return nil, err
	}

	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return nil, err
	}
	return scenario.Build(sc, pkgs, locs, dists)
}

// A failed day is still saved so the report shows what got delivered.
func runBatch(ctx context.Context, sim *simulation.Simulation, deliveries ports.DeliveryLog) error {
	runErr := sim.RunToCompletion(ctx)
	if errors.Is(runErr, context.Canceled) {
		return runErr
	}

	summary := sim.Summary()
	if err := deliveries.SaveRun(ctx, summary, sim.Deliveries()); err != nil {
		return err
	}

	log.Info().
		Str("run_id", summary.RunID).
		Str("finished_at", sim.Now().String()).
		Int("delivered", summary.Delivered).
		Float64("total_miles", summary.TotalMiles).
		Int("extra_routes", summary.ExtraRoutes).
		Msg("run complete")
	for truckID, miles := range sim.Miles() {
		log.Info().Int("truck", truckID).Float64("miles", miles).Msg("truck mileage")
	}
	return runErr
}

func serve(ctx context.Context, sim *simulation.Simulation, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(sim),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
