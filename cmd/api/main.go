package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/clipnest/media-service/internal/api/handler"
	"github.com/clipnest/media-service/internal/api/middleware"
	"github.com/clipnest/media-service/internal/config"
	"github.com/clipnest/media-service/internal/domain/repository"
	"github.com/clipnest/media-service/internal/infrastructure/storage"
	"github.com/clipnest/media-service/internal/tempfile"
	"github.com/clipnest/media-service/internal/transcoder"
	"github.com/clipnest/media-service/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	arena, err := tempfile.NewArena(cfg.Media.TempDir)
	if err != nil {
		return fmt.Errorf("failed to create temp arena: %w", err)
	}

	// A deployment without a bucket runs with no storage gateway; the
	// service reports NotConfigured for every operation.
	var objectStorage repository.ObjectStorage
	if cfg.Storage.Bucket != "" {
		client, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:       cfg.Storage.Endpoint,
			PublicEndpoint: cfg.Storage.PublicEndpoint,
			AccessKey:      cfg.Storage.AccessKey,
			SecretKey:      cfg.Storage.SecretKey,
			Bucket:         cfg.Storage.Bucket,
			UseSSL:         cfg.Storage.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		objectStorage = client
		logger.Info("connected to MinIO", slog.String("bucket", cfg.Storage.Bucket))
	} else {
		logger.Warn("no storage bucket configured, media operations disabled")
	}

	tc := transcoder.NewFFmpegTranscoder(transcoder.FFmpegConfig{
		FFmpegPath:     cfg.Transcoder.FFmpegPath,
		RunTimeout:     cfg.Transcoder.RunTimeout,
		MaxOutputBytes: cfg.Transcoder.MaxOutputBytes,
	})

	mediaSvc := usecase.NewMediaService(objectStorage, tc, arena, logger, usecase.MediaServiceConfig{
		UploadURLExpiry: cfg.Media.UploadURLExpiry,
	})

	r := setupRouter(logger, mediaSvc, []byte(cfg.Auth.JWTSecret))

	apiSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("starting metrics server", slog.Int("port", cfg.Server.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(logger *slog.Logger, mediaSvc usecase.MediaService, jwtSecret []byte) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)

	mediaHandler := handler.NewMediaHandler(mediaSvc)

	r.Route("/v1/media", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret))
		r.Post("/upload-url", mediaHandler.IssueUploadURL)
		r.Post("/avatar-url", mediaHandler.IssueAvatarURL)
		r.Post("/process", mediaHandler.ProcessSegment)
		r.Delete("/", mediaHandler.Delete)
	})

	return r
}
