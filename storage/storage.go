package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Store reads curated reference data (corpus text files, the citation
// registry JSON) from a snapshot location. Ingestion is read-only here;
// writing snapshots is a curation concern outside this backend.
type Store interface {
	// Get opens the object at the given key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns the keys under the given prefix
	List(ctx context.Context, prefix string) ([]string, error)
}

// StoreType represents the snapshot backend type
type StoreType string

const (
	StoreTypeLocal StoreType = "local"
	StoreTypeS3    StoreType = "s3"
)

// StoreConfig holds configuration for the snapshot store
type StoreConfig struct {
	Type         StoreType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStore creates a snapshot store based on configuration
func NewStore(cfg StoreConfig) (Store, error) {
	switch cfg.Type {
	case StoreTypeLocal:
		return NewLocalStore(cfg.LocalPath)
	case StoreTypeS3:
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

// NewStoreFromEnv creates a snapshot store from environment variables
func NewStoreFromEnv() (Store, error) {
	storeType := os.Getenv("SNAPSHOT_STORE")
	if storeType == "" {
		storeType = "local" // Default to local for development
	}

	switch StoreType(storeType) {
	case StoreTypeLocal:
		localPath := os.Getenv("SNAPSHOT_LOCAL_PATH")
		if localPath == "" {
			localPath = "./corpus"
		}
		return NewLocalStore(localPath)

	case StoreTypeS3:
		cfg := StoreConfig{
			Type:         StoreTypeS3,
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     os.Getenv("AWS_REGION"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "af-south-1"
		}
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 snapshots")
		}
		return NewS3Store(cfg)

	default:
		return nil, fmt.Errorf("unknown store type: %s", storeType)
	}
}
