package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/achronos0/diffmap/internal/diff"
	"github.com/achronos0/diffmap/internal/raster"
	"github.com/achronos0/diffmap/internal/retry"
	"github.com/achronos0/diffmap/internal/storage"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

type DiffOutput struct {
	Status      string                `json:"status"`
	Counts      diff.PixelCounts      `json:"pixelCounts"`
	Percentages diff.PixelPercentages `json:"pixelPercentages"`
	Regions     []raster.Box          `json:"regions"`
	Outputs     map[string]string     `json:"outputs"`
	Timings     diff.Timings          `json:"timings"`
}

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
	case float64:
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return any(floatValue).(T)
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

	var directory string
	var storageBackend string
	var bucket string
	var outputs string
	var mismatchMinPercent float64
	flag.StringVar(&directory, "directory", envOrDefaultValue("DIRECTORY", "/tmp"), "Output directory for the file backend")
	flag.StringVar(&storageBackend, "storage-backend", envOrDefaultValue("STORAGE_BACKEND", "file"), "Storage backend (file or s3)")
	flag.StringVar(&bucket, "s3-bucket", envOrDefaultValue("S3_BUCKET", ""), "S3 bucket for the s3 backend")
	flag.StringVar(&outputs, "outputs", envOrDefaultValue("OUTPUTS", "composite"), "Comma-separated render output names")
	flag.Float64Var(&mismatchMinPercent, "mismatch-min-percent", envOrDefaultValue("MISMATCH_MIN_PERCENT", 1.0), "Diff percentage at which the status becomes mismatch")

	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("baseline, target not specified")
	}

	ctx := context.Background()

	s, err := newStorage(ctx, storageBackend, directory, bucket)
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	images := make([]*raster.Raster, len(args))
	{
		eg, ctx := errgroup.WithContext(ctx)
		for i, source := range args {
			eg.Go(func() error {
				img, err := loadRaster(ctx, source)
				if err != nil {
					return xerrors.Errorf("failed to load %s: %w", source, err)
				}
				images[i] = img
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			log.Fatalf("Failed to load images: %v", err)
		}
	}

	opts := diff.DefaultOptions()
	opts.MismatchMinPercent = mismatchMinPercent
	opts.Outputs = strings.Split(outputs, ",")

	result, err := diff.Diff(images, opts)
	if err != nil {
		log.Fatalf("Failed to diff images: %v", err)
	}

	outputURLs := make(map[string]string, len(result.Outputs))
	for name, r := range result.Outputs {
		var buffer bytes.Buffer
		if err := png.Encode(&buffer, r.ToImage()); err != nil {
			log.Fatalf("Failed to encode output %s: %v", name, err)
		}

		key := storage.OutputKey(args[0], args[1], name, "png")
		url, err := s.Put(ctx, key, buffer.Bytes())
		if err != nil {
			log.Fatalf("Failed to save output %s: %v", name, err)
		}
		outputURLs[name] = url
	}

	if err := json.NewEncoder(os.Stdout).Encode(DiffOutput{
		Status:      result.Status.String(),
		Counts:      result.Counts,
		Percentages: result.Percentages,
		Regions:     result.Regions,
		Outputs:     outputURLs,
		Timings:     result.Timings,
	}); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

func newStorage(ctx context.Context, backend string, directory string, bucket string) (storage.Storage, error) {
	switch backend {
	case "file":
		return storage.NewFileStorage(ctx, storage.FileConfig{
			Directory: directory,
		})
	case "s3":
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket: bucket,
		})
	default:
		return nil, xerrors.Errorf("unknown storage backend: %s", backend)
	}
}

// loadRaster reads one comparison input from a local path or an http(s)
// URL. Remote fetches ride the retrying transport.
func loadRaster(ctx context.Context, source string) (*raster.Raster, error) {
	var data []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		request, err := http.NewRequestWithContext(ctx, "GET", source, nil)
		if err != nil {
			return nil, xerrors.Errorf("failed to create request: %w", err)
		}

		client := &http.Client{
			Timeout: 30 * time.Second,
			Transport: &retry.Transport{
				Base:          http.DefaultTransport,
				RetryStrategy: retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, nil),
				RetryOn:       retry.NewDefaultRetryOn(),
			},
		}

		response, err := client.Do(request)
		if err != nil {
			return nil, xerrors.Errorf("failed to fetch: %w", err)
		}
		defer response.Body.Close()

		if response.StatusCode != http.StatusOK {
			return nil, xerrors.Errorf("unexpected status fetching %s: %s", source, response.Status)
		}

		data, err = io.ReadAll(response.Body)
		if err != nil {
			return nil, xerrors.Errorf("failed to read body: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, xerrors.Errorf("failed to read file: %w", err)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, xerrors.Errorf("failed to decode image: %w", err)
	}

	return raster.FromImage(img), nil
}
