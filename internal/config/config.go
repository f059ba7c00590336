package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Media      MediaConfig
	Transcoder TranscoderConfig
	Auth       AuthConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	MetricsPort     int           `envconfig:"METRICS_PORT" default:"9090"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"90s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type StorageConfig struct {
	Endpoint string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	// PublicEndpoint, when set, is used for presigned URLs handed to
	// clients outside the cluster network.
	PublicEndpoint string `envconfig:"MINIO_PUBLIC_ENDPOINT"`
	AccessKey      string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey      string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	// Bucket left empty means the deployment has no backing storage;
	// the service reports NotConfigured for every operation.
	Bucket string `envconfig:"MINIO_BUCKET"`
	UseSSL bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type MediaConfig struct {
	UploadURLExpiry time.Duration `envconfig:"MEDIA_UPLOAD_URL_EXPIRY" default:"300s"`
	TempDir         string        `envconfig:"MEDIA_TEMP_DIR" default:"/tmp/media-service"`
}

type TranscoderConfig struct {
	FFmpegPath string        `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	RunTimeout time.Duration `envconfig:"FFMPEG_RUN_TIMEOUT" default:"60s"`
	// MaxOutputBytes caps how much ffmpeg stderr is retained for
	// diagnostics; output past the cap is discarded.
	MaxOutputBytes int `envconfig:"FFMPEG_MAX_OUTPUT_BYTES" default:"65536"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" default:"dev-secret"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
