package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adisetya/sheethub/internal/auth"
	"github.com/adisetya/sheethub/internal/config"
	"github.com/adisetya/sheethub/internal/drive"
	"github.com/adisetya/sheethub/internal/httpserver"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
	"github.com/adisetya/sheethub/internal/notes"
	"github.com/adisetya/sheethub/internal/redis"
	"github.com/adisetya/sheethub/internal/scheduler"
	"github.com/adisetya/sheethub/internal/sources/catalog"
	redisstore "github.com/adisetya/sheethub/internal/store/redis"
	"github.com/adisetya/sheethub/internal/version"
	"github.com/adisetya/sheethub/internal/view"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.CatalogReloader
}

func New() *App {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis with retry logic
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Error("redis is required, exiting", logger.Error(err))
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Initialize Redis store and the view engine on top of it
	store := redisstore.NewStore(redisClient)
	engine := view.NewEngine(store)

	// Restore local rows and saved views from Redis
	if err := engine.Restore(context.Background()); err != nil {
		loggerClient.Warn("failed to restore persisted state, starting empty",
			logger.Error(err))
	}

	// Token lifecycle: cookie jar + redis copy, both written on every change
	jar := auth.NewCookieJar(cfg.SecureCookies)
	manager := auth.NewManager(auth.Options{
		Config:        auth.GoogleConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL),
		Sinks:         []auth.TokenSink{jar, redisstore.NewTokenSink(store)},
		Launcher:      auth.ExternalLauncher{},
		DisconnectURL: cfg.SessionClearURL,
		PollInterval:  cfg.StatusPollInterval,
		Logger:        loggerClient,
	})
	manager.SetStatus(auth.GoogleStatusChecker(manager, ""))
	manager.Restore(context.Background())

	// Catalog loader and reload trigger
	loader := catalog.NewLoader(cfg.CatalogURL, cfg.CatalogFile, cfg.RemoteTimeout)
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCatalogReloader(
		loader,
		engine,
		store,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	notesClient := notes.NewClient(cfg.NotesEndpoint, cfg.RemoteTimeout, loggerClient)
	uploader := drive.NewUploader("", "", cfg.RemoteTimeout, loggerClient)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RedisClient:    redisClient,
		Store:          store,
		Prefs:          store,
		Engine:         engine,
		Auth:           manager,
		Jar:            jar,
		Notes:          notesClient,
		Uploader:       uploader,
		AppURL:         cfg.AppURL,
		ReloadTrigger:  reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Sheethub v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Sheethub %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start catalog reloader (loads rows and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop reloader
	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Sheethub stopped cleanly")
	return nil
}
