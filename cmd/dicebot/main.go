// Package main runs the dice bot: the telnet chat front end, the game
// tables, the optional results archive and the status endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/DmitriyMamontov/all-dice-bot/internal/config"
	"github.com/DmitriyMamontov/all-dice-bot/internal/frontend/handlers"
	"github.com/DmitriyMamontov/all-dice-bot/internal/frontend/status"
	"github.com/DmitriyMamontov/all-dice-bot/internal/frontend/telnet"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/blackwhite"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/dice"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/doublepig"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/ruleset"
	"github.com/DmitriyMamontov/all-dice-bot/internal/game/session"
	"github.com/DmitriyMamontov/all-dice-bot/internal/gameserver"
	"github.com/DmitriyMamontov/all-dice-bot/internal/observability"
	"github.com/DmitriyMamontov/all-dice-bot/internal/server"
	"github.com/DmitriyMamontov/all-dice-bot/internal/storage/postgres"
)

const healthInterval = 30 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Server.Name)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting dice bot",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("archive", cfg.Database.Enabled),
		zap.Bool("http", cfg.HTTP.Enabled),
	)

	ctx := context.Background()
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
	store := session.NewStore(logger)

	catalog, err := ruleset.LoadCatalog(cfg.Games.ContentDir)
	if err != nil {
		logger.Fatal("loading game presets", zap.Error(err))
	}
	logger.Info("game presets loaded",
		zap.String("dir", cfg.Games.ContentDir),
		zap.Int("games", len(catalog.All())),
	)
	bwPreset, ok := catalog.Get(string(session.KindBlackWhite))
	if !ok {
		logger.Fatal("missing game preset", zap.String("game", string(session.KindBlackWhite)))
	}
	pigPreset, ok := catalog.Get(string(session.KindDoublePig))
	if !ok {
		logger.Fatal("missing game preset", zap.String("game", string(session.KindDoublePig)))
	}

	lifecycle := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)

	var opts []gameserver.Option
	checks := map[string]status.HealthFunc{}
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts = append(opts, gameserver.WithArchive(postgres.NewResultRepository(pool.DB()), cfg.Games.ArchiveListLimit))
		checks["archive"] = func(ctx context.Context) error {
			return pool.Health(ctx, 2*time.Second)
		}

		done := make(chan struct{})
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(healthInterval)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func() {
				close(done)
				pool.Close()
			},
		})
	}

	hub := handlers.NewHub(catalog, cfg.Games.HistoryWindow, cfg.Telnet.OutboxSize, logger)
	dispatcher := gameserver.NewDispatcher(store, catalog,
		blackwhite.New(store, bwPreset, roller, logger),
		doublepig.New(store, pigPreset, roller, logger),
		hub, logger, opts...)
	acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewTableHandler(hub, dispatcher, logger), logger)

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	if cfg.HTTP.Enabled {
		statusSrv := status.NewServer(cfg.HTTP, status.NewRouter(dispatcher, checks, logger), logger)
		lifecycle.Add("http", statusSrv)
	}

	logger.Info("dice bot initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Strings("services", lifecycle.Names()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
