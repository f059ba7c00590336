package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/clipnest/media-service/internal/domain/model"
	"github.com/clipnest/media-service/internal/domain/repository"
	"github.com/clipnest/media-service/internal/infrastructure/metrics"
	"github.com/clipnest/media-service/internal/tempfile"
	"github.com/clipnest/media-service/internal/transcoder"
)

// UploadTicket is a presigned upload grant. The key is returned so the
// client can reference the object before its own upload confirms.
type UploadTicket struct {
	URL string
	Key string
}

// ProcessSegmentInput contains the parameters for one segment processing call.
type ProcessSegmentInput struct {
	CallerID     string
	Key          string
	StartSeconds float64
	EndSeconds   float64
}

// ProcessSegmentOutput is the result of a processing call. Processed is
// true only when Key differs from the requested key.
type ProcessSegmentOutput struct {
	Key       string
	Processed bool
}

// MediaService defines the media transformation operations.
type MediaService interface {
	// IssueUploadURL returns a time-boxed write-only URL and the key it
	// grants, under the uploads namespace of the caller.
	IssueUploadURL(ctx context.Context, callerID, contentType string) (*UploadTicket, error)

	// IssueAvatarUploadURL is IssueUploadURL for the avatars namespace.
	// Avatars are always stored with an image extension.
	IssueAvatarUploadURL(ctx context.Context, callerID, contentType string) (*UploadTicket, error)

	// ProcessSegment trims (and possibly re-encodes) the requested
	// segment of an uploaded video. Transcoder failures degrade to
	// returning the original key rather than an error: the caller
	// always receives a usable asset.
	ProcessSegment(ctx context.Context, in ProcessSegmentInput) (*ProcessSegmentOutput, error)

	// DeleteMedia removes a stored object after an ownership check.
	DeleteMedia(ctx context.Context, callerID, key string) error
}

// MediaServiceConfig holds configuration for MediaService.
type MediaServiceConfig struct {
	// UploadURLExpiry bounds the validity of issued presigned URLs.
	UploadURLExpiry time.Duration
}

// DefaultMediaServiceConfig returns the default configuration.
func DefaultMediaServiceConfig() MediaServiceConfig {
	return MediaServiceConfig{
		UploadURLExpiry: 300 * time.Second,
	}
}

type mediaService struct {
	storage    repository.ObjectStorage // nil when the deployment has no bucket
	transcoder transcoder.SegmentTranscoder
	arena      *tempfile.Arena
	logger     *slog.Logger

	uploadURLExpiry time.Duration
}

// NewMediaService creates a new MediaService instance. storage may be
// nil for deployments without backing storage; every operation then
// reports model.ErrNotConfigured.
func NewMediaService(
	storage repository.ObjectStorage,
	tc transcoder.SegmentTranscoder,
	arena *tempfile.Arena,
	logger *slog.Logger,
	cfg MediaServiceConfig,
) MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaService{
		storage:         storage,
		transcoder:      tc,
		arena:           arena,
		logger:          logger,
		uploadURLExpiry: cfg.UploadURLExpiry,
	}
}

// IssueUploadURL issues a presigned upload URL under uploads/{callerID}/.
func (s *mediaService) IssueUploadURL(ctx context.Context, callerID, contentType string) (*UploadTicket, error) {
	if s.storage == nil {
		return nil, model.ErrNotConfigured
	}
	if callerID == "" {
		return nil, fmt.Errorf("%w: caller id", model.ErrMissingField)
	}

	key := model.NewUploadKey(callerID, contentType)
	url, err := s.storage.GeneratePresignedUploadURL(ctx, key, s.uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate presigned upload URL: %w", err)
	}

	metrics.UploadURLsIssuedTotal.WithLabelValues(metrics.KindUpload).Inc()
	return &UploadTicket{URL: url, Key: key}, nil
}

// IssueAvatarUploadURL issues a presigned upload URL under avatars/{callerID}/.
func (s *mediaService) IssueAvatarUploadURL(ctx context.Context, callerID, contentType string) (*UploadTicket, error) {
	if s.storage == nil {
		return nil, model.ErrNotConfigured
	}
	if callerID == "" {
		return nil, fmt.Errorf("%w: caller id", model.ErrMissingField)
	}

	key := model.NewAvatarKey(callerID, contentType)
	url, err := s.storage.GeneratePresignedUploadURL(ctx, key, s.uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate presigned upload URL: %w", err)
	}

	metrics.UploadURLsIssuedTotal.WithLabelValues(metrics.KindAvatar).Inc()
	return &UploadTicket{URL: url, Key: key}, nil
}

// ProcessSegment runs the full pipeline:
// ownership guard -> download -> policy decision -> trim -> upload.
// Any failure after the guard degrades to returning the original key.
func (s *mediaService) ProcessSegment(ctx context.Context, in ProcessSegmentInput) (*ProcessSegmentOutput, error) {
	if s.storage == nil {
		return nil, model.ErrNotConfigured
	}
	if in.Key == "" {
		return nil, fmt.Errorf("%w: key", model.ErrMissingField)
	}
	if in.StartSeconds < 0 || in.EndSeconds <= in.StartSeconds {
		return nil, fmt.Errorf("%w: start=%v end=%v", model.ErrInvalidTimeRange, in.StartSeconds, in.EndSeconds)
	}
	if !model.Owns(in.CallerID, in.Key) {
		return nil, model.ErrForbidden
	}

	start := time.Now()
	defer func() {
		metrics.SegmentProcessDuration.Observe(time.Since(start).Seconds())
	}()

	if !s.transcoder.Available(ctx) {
		s.logger.Warn("transcoder unavailable, returning original asset",
			slog.String("key", in.Key),
		)
		return s.fallback(in.Key, "none"), nil
	}

	// Scope close runs on every exit path, so no scratch file survives
	// a failure anywhere in the pipeline.
	scope := s.arena.NewScope()
	defer scope.Close()

	inputPath := scope.Path("input", "mp4")
	size, err := s.downloadSource(ctx, in.Key, inputPath)
	if err != nil {
		s.logFailure(in.Key, "download", err)
		return s.fallback(in.Key, "none"), nil
	}

	decision := transcoder.Decide(size, in.EndSeconds-in.StartSeconds)

	outputPath := scope.Path("output", "mp4")
	err = s.transcoder.TrimSegment(ctx, inputPath, outputPath, transcoder.TrimRequest{
		StartSeconds: in.StartSeconds,
		EndSeconds:   in.EndSeconds,
		Decision:     decision,
	})
	if err != nil {
		s.logFailure(in.Key, "trim", err)
		return s.fallback(in.Key, decision.Strategy.String()), nil
	}

	processedKey := model.DeriveProcessedKey(in.Key)
	if err := s.uploadFile(ctx, outputPath, processedKey, "video/mp4"); err != nil {
		s.logFailure(in.Key, "upload", err)
		return s.fallback(in.Key, decision.Strategy.String()), nil
	}

	s.logger.Info("segment processed",
		slog.String("key", in.Key),
		slog.String("processed_key", processedKey),
		slog.String("strategy", decision.Strategy.String()),
		slog.Int64("source_bytes", size),
	)
	metrics.SegmentProcessTotal.WithLabelValues(decision.Strategy.String(), metrics.OutcomeProcessed).Inc()

	return &ProcessSegmentOutput{Key: processedKey, Processed: true}, nil
}

// DeleteMedia removes a stored object. Unlike processing there is no
// safe fallback for an explicit delete, so storage errors surface.
func (s *mediaService) DeleteMedia(ctx context.Context, callerID, key string) error {
	if s.storage == nil {
		return model.ErrNotConfigured
	}
	if key == "" {
		return fmt.Errorf("%w: key", model.ErrMissingField)
	}
	if !model.Owns(callerID, key) {
		metrics.MediaDeletesTotal.WithLabelValues(metrics.DeleteForbidden).Inc()
		return model.ErrForbidden
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		metrics.MediaDeletesTotal.WithLabelValues(metrics.DeleteError).Inc()
		return fmt.Errorf("delete object: %w", err)
	}

	metrics.MediaDeletesTotal.WithLabelValues(metrics.DeleteSuccess).Inc()
	return nil
}

// fallback produces the degraded-but-valid result: the original,
// unprocessed key.
func (s *mediaService) fallback(key, strategy string) *ProcessSegmentOutput {
	metrics.SegmentProcessTotal.WithLabelValues(strategy, metrics.OutcomeFallback).Inc()
	return &ProcessSegmentOutput{Key: key, Processed: false}
}

func (s *mediaService) logFailure(key, step string, err error) {
	s.logger.Error("segment processing failed, returning original asset",
		slog.String("key", key),
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
}

// downloadSource streams the source object into localPath and returns
// its size in bytes.
func (s *mediaService) downloadSource(ctx context.Context, key, localPath string) (int64, error) {
	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("storage download: %w", err)
	}
	defer func() { _ = reader.Close() }()

	file, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("create local file: %w", err)
	}

	size, err := io.Copy(file, reader)
	if err != nil {
		_ = file.Close()
		return 0, fmt.Errorf("copy to local file: %w", err)
	}

	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("close local file: %w", err)
	}

	return size, nil
}

// uploadFile uploads a single local file to object storage.
func (s *mediaService) uploadFile(ctx context.Context, localPath, key, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := s.storage.Upload(ctx, key, file, contentType); err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}

	return nil
}
