package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/dogloot/server/internal/config"
	"github.com/dogloot/server/internal/data"
	"github.com/dogloot/server/internal/game"
	"github.com/dogloot/server/internal/persist"
	"github.com/dogloot/server/internal/scripting"
	"github.com/dogloot/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	records := flag.Int("records", -1, "print the top N retired players and exit (0 = maximum page)")
	flag.Parse()

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	// 1. Config and logger
	cfgPath := "config/server.toml"
	if p := os.Getenv("DOGLOOT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 2. Leaderboard store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeStore()

	if *records >= 0 {
		return printRecords(ctx, store, *records)
	}

	var retirer world.Retirer
	if store != nil {
		w := persist.NewRetiredWriter(store, cfg.Database.QueueSize, log)
		defer w.Close()
		retirer = w
	}

	// 3. Game data and loot formula
	gameData, err := data.LoadGame(cfg.Server.DataFile)
	if err != nil {
		return fmt.Errorf("load game data: %w", err)
	}
	engine, err := scripting.NewEngine(cfg.Server.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer engine.Close()

	g, err := game.New(game.Config{
		RandomizeSpawn:  cfg.Server.RandomizeSpawnPoints,
		LootPeriod:      gameData.LootPeriod,
		LootProbability: gameData.LootProbability,
		SnapshotPath:    cfg.Snapshot.Path,
		AutosavePeriod:  cfg.Snapshot.AutosavePeriod.Duration,
	}, gameData.Maps, engine, retirer, log)
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	log.Info("game data loaded",
		zap.Int("maps", len(gameData.Maps)),
		zap.Duration("loot_period", gameData.LootPeriod),
	)

	// 4. Restore the previous run
	if cfg.Snapshot.Path != "" {
		switch err := g.Load(cfg.Snapshot.Path); {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			log.Info("no snapshot, starting fresh", zap.String("path", cfg.Snapshot.Path))
		default:
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}

	// 5. Run until a signal arrives
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := game.NewLoop(g, cfg.Server.TickPeriod.Duration, log)
	eg, egCtx := errgroup.WithContext(sigCtx)
	eg.Go(func() error {
		err := loop.Run(egCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	log.Info("server running",
		zap.String("name", cfg.Server.Name),
		zap.Duration("tick", cfg.Server.TickPeriod.Duration),
	)
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("game loop: %w", err)
	}

	// The loop has returned, so the game is ours again.
	if err := g.Save(); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	log.Info("server stopped",
		zap.Int("players", g.State().Players.Len()),
		zap.Duration("uptime", time.Since(time.Unix(cfg.Server.StartTime, 0)).Round(time.Second)),
	)
	return nil
}

// openStore connects the configured leaderboard backend and runs its
// migrations. A nil store means the leaderboard is disabled.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (persist.RetiredStore, func(), error) {
	switch cfg.Driver {
	case "postgres":
		db, err := persist.NewDB(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return persist.NewRetiredRepo(db), db.Close, nil
	case "sqlite":
		db, err := persist.OpenSQLite(ctx, cfg.DSN, log)
		if err != nil {
			return nil, nil, err
		}
		if err := persist.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
		return persist.NewSQLiteRetiredRepo(db), func() { db.Close() }, nil
	}
	log.Warn("no database configured, retired players are not recorded")
	return nil, func() {}, nil
}

func printRecords(ctx context.Context, store persist.RetiredStore, n int) error {
	if store == nil {
		return fmt.Errorf("records: no database configured")
	}
	rows, err := store.Top(ctx, 0, n)
	if err != nil {
		return fmt.Errorf("records: %w", err)
	}
	for i, r := range rows {
		fmt.Printf("%3d  %-20s %8d  %s\n", i+1, r.Name, r.Score, r.PlayTime.Round(time.Millisecond))
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
