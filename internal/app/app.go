package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/reeltube/server/internal/controller"
	"github.com/reeltube/server/internal/repository/media/cloudinary"
	reelRedis "github.com/reeltube/server/internal/repository/reel/redis"
	"github.com/reeltube/server/internal/service/feed"
	"github.com/reeltube/server/pkg/ctxlogger"
	"github.com/reeltube/server/pkg/redisclient"
)

type AppConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	LogLevel      string `json:"log_level"`
	ReelsLimit    int    `json:"reels_limit"`
	RedisHost     string `json:"redis_host"`
	RedisPort     int    `json:"redis_port"`
	RedisPassword string `json:"-"`
	CloudName     string `json:"cloud_name"`
	UploadPreset  string `json:"upload_preset"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.ReelsLimit < 1 {
		return fmt.Errorf("reels limit must be greater than 0")
	}
	if cfg.CloudName == "" {
		return fmt.Errorf("cloud name is required")
	}
	if cfg.UploadPreset == "" {
		return fmt.Errorf("upload preset is required")
	}

	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	reelRepo := reelRedis.NewRepo(rc)
	uploader := cloudinary.NewUploader(&cloudinary.Config{
		CloudName:    cfg.CloudName,
		UploadPreset: cfg.UploadPreset,
	})
	feedService := feed.NewService(reelRepo, uploader, cfg.ReelsLimit, logger)
	controller := controller.NewController(feedService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
