package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentshield/contentshield/pkg/contentshield"
	memoryrepo "github.com/contentshield/contentshield/pkg/contentshield/repo/memory"
	postgresrepo "github.com/contentshield/contentshield/pkg/contentshield/repo/postgres"
	fsstorage "github.com/contentshield/contentshield/pkg/contentshield/storage/fs"
	memorystorage "github.com/contentshield/contentshield/pkg/contentshield/storage/memory"
	s3storage "github.com/contentshield/contentshield/pkg/contentshield/storage/s3"
)

// ServerConfig represents server configuration for the contentshield service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Identity provider
	JWTSecret string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`

	// Database configuration
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres"
	DatabaseURL  string `env:"DATABASE_URL" env-default:""`

	// Storage configuration
	StorageType string `env:"STORAGE_TYPE" env-default:"memory"` // "memory", "fs", "s3"
	FS          FSConfig
	S3          S3Config
}

// FSConfig configures the filesystem storage backend
type FSConfig struct {
	BaseDir   string `env:"STORAGE_FS_DIR" env-default:"./data/blobs"`
	URLPrefix string `env:"STORAGE_FS_URL_PREFIX" env-default:""`
}

// S3Config configures the S3 storage backend
type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Bucket          string `env:"AWS_S3_BUCKET" env-default:"contentshield"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"true"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
	PresignDuration int    `env:"AWS_S3_PRESIGN_DURATION" env-default:"3600"`
}

// Load reads configuration from the environment and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	switch c.StorageType {
	case "memory", "fs", "s3":
	default:
		return errors.New("storage_type must be 'memory', 'fs' or 's3'")
	}

	return nil
}

// BuildService creates a fully wired Service instance from the configuration.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (contentshield.Service, error) {
	repo, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.BuildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	return contentshield.New(
		contentshield.WithRepository(repo),
		contentshield.WithBlobStore(store),
		contentshield.WithLogger(logger),
	)
}

// BuildRepository creates the configured Repository.
func (c *ServerConfig) BuildRepository(ctx context.Context) (contentshield.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memoryrepo.New(), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return postgresrepo.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// BuildBlobStore creates the configured BlobStore.
func (c *ServerConfig) BuildBlobStore() (contentshield.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FS.BaseDir,
			URLPrefix: c.FS.URLPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PresignDuration:        c.S3.PresignDuration,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}
