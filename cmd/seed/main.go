// Package main is the seeding CLI: it fills a postgres or sqlite database with
// generated catalog data according to a population plan.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fakeseed/internal/config"
	"fakeseed/internal/fake"
	"fakeseed/internal/infrastructure/metrics"
	"fakeseed/internal/infrastructure/storage/postgres"
	"fakeseed/internal/infrastructure/storage/sqlite"
	"fakeseed/internal/seeder"
	"fakeseed/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	planPath := flag.String("plan", "", "path to a YAML population plan (overrides SEED_PLAN)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "\n"+config.Usage())
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *planPath != "" {
		cfg.PlanPath = *planPath
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("seeding failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	plan := config.DefaultPlan()
	if cfg.PlanPath != "" {
		loaded, err := config.LoadPlan(cfg.PlanPath)
		if err != nil {
			return err
		}
		plan = loaded
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.Infow("starting seed run",
		"driver", cfg.Driver,
		"seed", seed,
		"entities", len(plan.Entities),
	)

	collector := metrics.NewCollector()
	s := seeder.New(fake.New(seed),
		seeder.WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		seeder.WithObserver(collector),
	)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	started := time.Now()
	ic, err := s.Run(ctx, store, plan, cfg.CreateTables)
	if err != nil {
		return err
	}

	for _, name := range ic.Entities() {
		log.Infow("entity seeded", "entity", name, "count", ic.Len(name))
	}
	log.Infow("seeding completed successfully",
		"instances", ic.Total(),
		"elapsed", time.Since(started),
	)

	if cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		log.Infow("metrics written", "path", cfg.MetricsFile)
	}
	return nil
}

// openStore connects the store selected by cfg.Driver.
func openStore(ctx context.Context, cfg *config.Config) (seeder.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info(ctx, "connected to database")
		return postgres.NewStore(pool), func() {
			pool.LogStats(ctx)
			pool.Close()
		}, nil

	default:
		db, err := sqlite.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "opened sqlite database", "path", cfg.DatabaseURL)
		return sqlite.NewStore(db), func() { _ = db.Close() }, nil
	}
}
