package usecase

import (
	"context"
	"io"
	"time"

	"github.com/clipnest/media-service/internal/transcoder"
)

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	generatePresignedUploadURLFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
	uploadFn                     func(ctx context.Context, key string, reader io.Reader, contentType string) error
	downloadFn                   func(ctx context.Context, key string) (io.ReadCloser, error)
	deleteFn                     func(ctx context.Context, key string) error
	existsFn                     func(ctx context.Context, key string) (bool, error)
}

func (m *mockObjectStorage) GeneratePresignedUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.generatePresignedUploadURLFn != nil {
		return m.generatePresignedUploadURLFn(ctx, key, expiry)
	}
	return "http://example.com/upload", nil
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, key)
	}
	return io.NopCloser(io.LimitReader(zeroReader{}, 1024)), nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

// mockTranscoder provides a configurable mock for SegmentTranscoder.
type mockTranscoder struct {
	availableFn   func(ctx context.Context) bool
	trimSegmentFn func(ctx context.Context, inputPath, outputPath string, req transcoder.TrimRequest) error
}

func (m *mockTranscoder) Available(ctx context.Context) bool {
	if m.availableFn != nil {
		return m.availableFn(ctx)
	}
	return true
}

func (m *mockTranscoder) TrimSegment(ctx context.Context, inputPath, outputPath string, req transcoder.TrimRequest) error {
	if m.trimSegmentFn != nil {
		return m.trimSegmentFn(ctx, inputPath, outputPath, req)
	}
	return nil
}

// zeroReader yields an endless stream of zero bytes; wrap in
// io.LimitReader to simulate a source object of a given size.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
