package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/achronos0/diffmap/internal/runnable"
	"github.com/achronos0/diffmap/internal/storage"
	"github.com/joho/godotenv"
)

func envOrDefaultValue[T any](key string, defaultValue T) T {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	switch any(defaultValue).(type) {
	case string:
		return any(value).(T)
	case int:
		if intValue, err := strconv.Atoi(value); err == nil {
			return any(intValue).(T)
		}
	case bool:
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return any(boolValue).(T)
		}
	case time.Duration:
		if durationValue, err := time.ParseDuration(value); err == nil {
			return any(durationValue).(T)
		}
	}

	return defaultValue
}

func main() {
	_ = godotenv.Load()

	var storageBackend string
	var directory string
	var bucket string
	var debug bool
	flag.StringVar(&storageBackend, "storage-backend", envOrDefaultValue("STORAGE_BACKEND", ""), "Storage backend for stored outputs (file, s3 or empty to disable)")
	flag.StringVar(&directory, "directory", envOrDefaultValue("DIRECTORY", "/tmp"), "Output directory for the file backend")
	flag.StringVar(&bucket, "s3-bucket", envOrDefaultValue("S3_BUCKET", ""), "S3 bucket for the s3 backend")
	flag.BoolVar(&debug, "debug", envOrDefaultValue("DEBUG", false), "Enable debug logging and pprof routes")

	flag.Parse()

	ctx := context.Background()

	var s storage.Storage
	var err error
	switch storageBackend {
	case "":
	case "file":
		s, err = storage.NewFileStorage(ctx, storage.FileConfig{
			Directory: directory,
		})
		if err != nil {
			log.Fatalf("failed to create file storage backend: %v", err)
		}
	case "s3":
		s, err = storage.NewS3Storage(ctx, storage.S3Config{
			Bucket: bucket,
		})
		if err != nil {
			log.Fatalf("failed to create S3 storage backend: %v", err)
		}
	default:
		log.Fatalf("unknown storage backend: %s", storageBackend)
	}

	runnable.Debug = debug

	if err := runnable.NewServer(s).Start(ctx); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
