package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"VibeWake/cache"
	"VibeWake/config"
	"VibeWake/core/alarm"
	"VibeWake/core/clock"
	"VibeWake/core/greeting"
	"VibeWake/core/library"
	"VibeWake/core/media"
	"VibeWake/core/session"
	"VibeWake/db"
	"VibeWake/logger"
	"VibeWake/model"
	"VibeWake/repository"
	"VibeWake/server"
	"VibeWake/storage"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the VibeWake server",
	Long:  `Start the alarm engine, the REST API and the websocket hub.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(parent context.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.NewReal(cfg.Location)

	repo, closeRepo, err := openAlarmRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	blobs, uploadDir, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	lib := library.New(blobs, clk)

	store := alarm.NewStore(clk, repo)
	if err := store.Load(ctx); err != nil {
		return err
	}
	if seeded, err := store.SeedIfEmpty(ctx, alarm.DefaultAlarm(lib.Default())); err != nil {
		return fmt.Errorf("seed default alarm: %w", err)
	} else if seeded {
		logger.Info("Seeded default alarm")
	}

	hub := media.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	player, closePlayer, err := openPlayer(cfg, hub)
	if err != nil {
		return err
	}
	defer closePlayer()

	greeter, err := greeting.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("greeting provider: %w", err)
	}
	texts := greeter.Texts()
	logger.Info("Greeting provider ready", logger.String("provider", greeter.ProviderName()), logger.String("locale", texts.Locale))

	source := clock.NewSource(clk, cfg.TickInterval)
	opts := session.Options{
		Clock:       clk,
		Player:      player,
		Greeter:     greeter,
		Texts:       texts,
		SnoozeDelay: cfg.SnoozeDelay,
	}

	var wg sync.WaitGroup
	var sessionCache *cache.SessionCache
	if cfg.RedisEnabled() {
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Ledger = cache.NewFireLedger(client)
		sessionCache = cache.NewSessionCache(client)
	}

	engine := session.NewEngine(store, source.Ticks(), opts)
	engine.Observe(server.NewHubEvents(hub, texts))
	if sessionCache != nil {
		engine.Observe(sessionCache)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sessionCache.Run(ctx)
		}()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := source.Run(ctx); err != nil {
			logger.Error("Clock source stopped", logger.ErrorField(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := engine.Run(ctx); err != nil {
			logger.Error("Session engine stopped", logger.ErrorField(err))
		}
	}()

	if cfg.ImportWatchDir != "" {
		w, err := library.NewWatcher(cfg.ImportWatchDir, lib, func(t model.Track) {
			if err := hub.Publish(media.MsgTypeLibrary, lib.List()); err != nil {
				logger.Warn("Failed to publish library", logger.ErrorField(err))
			}
		})
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				logger.Error("Import watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	srv := server.New(server.Deps{
		Clock:     clk,
		Engine:    engine,
		Alarms:    store,
		Library:   lib,
		Hub:       hub,
		Texts:     texts,
		JWTSecret: cfg.JWTSecret,
		UploadDir: uploadDir,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, API is open")
	}
	serveErr := srv.ListenAndServe(ctx, cfg.ServerAddr)

	stop()
	wg.Wait()

	purgeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := lib.Purge(purgeCtx); err != nil {
		logger.Warn("Failed to purge imported tracks", logger.ErrorField(err))
	}
	return serveErr
}

func openAlarmRepository(ctx context.Context, cfg *config.Config) (repository.AlarmRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageMySQL:
		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewGormAlarmRepository(gdb), func() {
			if err := db.CloseGormDB(gdb); err != nil {
				logger.Warn("Failed to close MySQL", logger.ErrorField(err))
			}
		}, nil
	case config.StoragePostgres:
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresAlarmRepository(pg), func() {
			if err := pg.Close(); err != nil {
				logger.Warn("Failed to close Postgres", logger.ErrorField(err))
			}
		}, nil
	default:
		logger.Info("Alarms are kept in memory only")
		return nil, func() {}, nil
	}
}

// openBlobStore returns the store for imports and, for the local store, the
// directory the server must expose.
func openBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, string, error) {
	if cfg.MinioEnabled() {
		s, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	}
	s, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}

func openPlayer(cfg *config.Config, hub *media.Hub) (media.Player, func(), error) {
	switch cfg.PlayerBackend {
	case config.PlayerMQTT:
		p, err := media.NewMQTTPlayer(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.PlayerLog:
		return media.NewLogPlayer(), func() {}, nil
	default:
		return hub, func() {}, nil
	}
}
