package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// FFmpegConfig holds configuration for the FFmpeg transcoder.
type FFmpegConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" will be used (assumes it's in PATH).
	FFmpegPath string

	// RunTimeout bounds the wall-clock duration of one invocation.
	// Default: 60s, sized for slow video processing within the
	// platform's request budget.
	RunTimeout time.Duration

	// MaxOutputBytes caps how much of the subprocess's stderr is
	// retained for diagnostics. Output past the cap is discarded so a
	// misbehaving subprocess cannot grow memory without bound.
	// Default: 64 KiB.
	MaxOutputBytes int
}

// DefaultFFmpegConfig returns an FFmpegConfig with production-ready defaults.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath:     "ffmpeg",
		RunTimeout:     60 * time.Second,
		MaxOutputBytes: 64 * 1024,
	}
}

// FFmpegTranscoder implements SegmentTranscoder using the FFmpeg CLI.
type FFmpegTranscoder struct {
	config FFmpegConfig
}

// Compile-time verification that FFmpegTranscoder implements SegmentTranscoder.
var _ SegmentTranscoder = (*FFmpegTranscoder)(nil)

// NewFFmpegTranscoder creates a new FFmpeg-based transcoder.
func NewFFmpegTranscoder(cfg FFmpegConfig) *FFmpegTranscoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 60 * time.Second
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = 64 * 1024
	}
	return &FFmpegTranscoder{config: cfg}
}

// Available reports whether the ffmpeg binary can be invoked.
func (t *FFmpegTranscoder) Available(ctx context.Context) bool {
	if _, err := exec.LookPath(t.config.FFmpegPath); err != nil {
		return false
	}
	cmd := exec.CommandContext(ctx, t.config.FFmpegPath, "-version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// TrimSegment executes FFmpeg synchronously to cut the requested
// segment, bounded by the configured run timeout.
func (t *FFmpegTranscoder) TrimSegment(ctx context.Context, inputPath, outputPath string, req TrimRequest) error {
	if err := t.validateInput(inputPath); err != nil {
		return err
	}
	if req.StartSeconds < 0 || req.EndSeconds <= req.StartSeconds {
		return fmt.Errorf("invalid trim range: start=%v end=%v", req.StartSeconds, req.EndSeconds)
	}

	runCtx, cancel := context.WithTimeout(ctx, t.config.RunTimeout)
	defer cancel()

	args := t.buildTrimArgs(inputPath, outputPath, req)

	stderr := &boundedBuffer{max: t.config.MaxOutputBytes}
	cmd := exec.CommandContext(runCtx, t.config.FFmpegPath, args...)
	cmd.Stdout = nil // Discard stdout (FFmpeg writes progress to stderr)
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil {
			return fmt.Errorf("transcoding timed out or cancelled: %w", runCtx.Err())
		}
		return fmt.Errorf("ffmpeg execution failed: %w: %s", err, stderr.Tail(512))
	}

	return nil
}

// validateInput checks if the input file exists and is readable.
func (t *FFmpegTranscoder) validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}

	return nil
}

// buildTrimArgs constructs the FFmpeg command arguments for one trim.
func (t *FFmpegTranscoder) buildTrimArgs(inputPath, outputPath string, req TrimRequest) []string {
	args := []string{
		"-ss", formatSeconds(req.StartSeconds),
		"-to", formatSeconds(req.EndSeconds),
		"-i", inputPath,
	}

	switch req.Decision.Strategy {
	case StrategyReencode:
		d := req.Decision
		args = append(args,
			"-c:v", d.VideoCodec,
			"-crf", strconv.Itoa(d.CRF),
			"-preset", d.Preset,
			"-c:a", d.AudioCodec,
			"-b:a", fmt.Sprintf("%dk", d.AudioBitrateKbps),
			"-vf", d.ScaleFilter,
			"-movflags", "+faststart", // progressive-download-friendly layout
		)
	default:
		// Copy both streams; normalize timestamp discontinuities at the
		// cut point so players do not stall on arbitrary start offsets.
		args = append(args,
			"-c", "copy",
			"-avoid_negative_ts", "make_zero",
		)
	}

	return append(args,
		"-y", // Overwrite output files without asking
		outputPath,
	)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// boundedBuffer retains at most max bytes of written data and silently
// discards the rest. Write never fails so the subprocess is not
// interrupted by diagnostics capture.
type boundedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if remain := b.max - b.buf.Len(); remain > 0 {
		if len(p) > remain {
			p = p[:remain]
		}
		b.buf.Write(p)
	}
	return n, nil
}

func (b *boundedBuffer) String() string {
	return b.buf.String()
}

// Tail returns the last n bytes of the captured output.
func (b *boundedBuffer) Tail(n int) string {
	s := b.buf.String()
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
