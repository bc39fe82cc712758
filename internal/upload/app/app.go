package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	httpHandler "github.com/anthanhphan/go-staged-file-store/internal/upload/adapter/inbound/http"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/adapter/outbound/redisrepo"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/config"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/service"
	"github.com/anthanhphan/go-staged-file-store/pkg/idgen"
)

type App struct {
	cfg    *config.Config
	server *httpHandler.Server
	reaper *service.TempReaper
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Initialize Redis and Snowflake IDGen
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	redisClock := idgen.NewRedisClock(redisClient)
	idGen, err := idgen.New(cfg.Upload.NodeID, redisClock)
	if err != nil {
		return nil, fmt.Errorf("failed to init snowflake: %w", err)
	}

	// 4. Blob store (staging area + permanent store)
	blob, err := diskstore.NewDiskStore(afero.NewOsFs(), cfg.Upload.TmpDir, cfg.Upload.DstDir, idGen)
	if err != nil {
		return nil, fmt.Errorf("failed to init blob store: %w", err)
	}

	// 5. Repositories & Services
	fileRepo := redisrepo.NewFileRepo(redisClient)
	postRepo := redisrepo.NewPostRepo(redisClient)
	svc := service.NewUploadService(cfg, blob, fileRepo, postRepo, idGen)

	// 6. Temp Reaper
	reaper := service.NewTempReaper(blob, cfg.Upload.ClearTmpTime(), cfg.Upload.ClearTmpInterval(), cfg.Upload.PurgeWorkers)

	// 7. HTTP Server
	httpServer := httpHandler.NewServer(cfg, svc)

	return &App{
		cfg:    cfg,
		server: httpServer,
		reaper: reaper,
	}, nil
}

func (a *App) Run() error {
	// Start the reaper before accepting traffic: its startup sweep is
	// forced and must not race in-flight uploads.
	reaperCtx, cancelReaper := context.WithCancel(context.Background())
	defer cancelReaper()
	a.reaper.Start(reaperCtx)

	// Start HTTP
	logger.Infow("Upload server starting", "addr", a.cfg.Server.Addr, "tmp_dir", a.cfg.Upload.TmpDir, "dst_dir", a.cfg.Upload.DstDir)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("Upload server exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down upload services")
	// Drain traffic first, then run the reaper's final forced sweep.
	if err := a.server.Stop(context.Background()); err != nil {
		logger.Errorw("Server shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	a.reaper.Stop()

	return runErr
}
