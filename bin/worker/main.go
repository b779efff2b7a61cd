package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/achronos0/diffmap/internal/diff"
	"github.com/achronos0/diffmap/internal/raster"
	"github.com/achronos0/diffmap/internal/retry"
	"github.com/achronos0/diffmap/internal/storage"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

type WorkerOutput struct {
	BaselineURL string                `json:"baselineURL"`
	TargetURL   string                `json:"targetURL"`
	Status      string                `json:"status"`
	Counts      diff.PixelCounts      `json:"pixelCounts"`
	Percentages diff.PixelPercentages `json:"pixelPercentages"`
	Regions     []raster.Box          `json:"regions"`
	Outputs     map[string]string     `json:"outputs"`
	Timings     diff.Timings          `json:"timings"`
}

type Worker struct {
	Storage storage.Storage
	Client  *http.Client
	Options diff.Options
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
	var callbackURL string
	var schedule string
	flag.StringVar(&directory, "directory", envOrDefaultValue("DIRECTORY", "/tmp"), "Output directory for the file backend")
	flag.StringVar(&storageBackend, "storage-backend", envOrDefaultValue("STORAGE_BACKEND", "file"), "Storage backend (file or s3)")
	flag.StringVar(&bucket, "s3-bucket", envOrDefaultValue("S3_BUCKET", ""), "S3 bucket for the s3 backend")
	flag.StringVar(&outputs, "outputs", envOrDefaultValue("OUTPUTS", "composite"), "Comma-separated render output names")
	flag.Float64Var(&mismatchMinPercent, "mismatch-min-percent", envOrDefaultValue("MISMATCH_MIN_PERCENT", 1.0), "Diff percentage at which the status becomes mismatch")
	flag.StringVar(&callbackURL, "callback-url", envOrDefaultValue("CALLBACK_URL", ""), "Callback URL to send results to")
	flag.StringVar(&schedule, "schedule", envOrDefaultValue("SCHEDULE", ""), "Cron schedule for repeated comparisons (empty runs once)")

	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		log.Fatalf("baseline, target not specified")
	}

	baseline := args[0]
	target := args[1]

	ctx := context.Background()

	var s storage.Storage
	var err error
	switch storageBackend {
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

	opts := diff.DefaultOptions()
	opts.MismatchMinPercent = mismatchMinPercent
	opts.Outputs = strings.Split(outputs, ",")

	worker := &Worker{
		Storage: s,
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &retry.Transport{
				Base:          http.DefaultTransport,
				RetryStrategy: retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, nil),
				RetryOn:       retry.NewDefaultRetryOn(),
			},
		},
		Options: opts,
	}

	run := func() {
		result, err := worker.processComparison(ctx, baseline, target)
		if err != nil {
			log.Fatalf("failed to process comparison: %v", err)
		}

		j, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("failed to marshal result: %v", err)
		}

		if callbackURL == "" {
			fmt.Println(string(j))
		} else {
			if err := callback(ctx, callbackURL, j); err != nil {
				log.Fatalf("failed to send callback: %v", err)
			}
		}
	}

	if schedule == "" {
		run()
		return
	}

	parsed, err := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(schedule)
	if err != nil {
		log.Fatalf("failed to parse schedule: %v", err)
	}

	c := cron.New()
	c.Schedule(parsed, cron.FuncJob(run))
	c.Run()
}

func (w *Worker) processComparison(ctx context.Context, baseline string, target string) (*WorkerOutput, error) {
	var baselineImage *raster.Raster
	var targetImage *raster.Raster

	// Step 1: Fetch both inputs in parallel
	{
		eg, ctx := errgroup.WithContext(ctx)

		eg.Go(func() error {
			img, err := w.fetch(ctx, baseline)
			if err != nil {
				return xerrors.Errorf("failed to fetch baseline image: %w", err)
			}
			baselineImage = img
			return nil
		})

		eg.Go(func() error {
			img, err := w.fetch(ctx, target)
			if err != nil {
				return xerrors.Errorf("failed to fetch target image: %w", err)
			}
			targetImage = img
			return nil
		})

		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	// Step 2: Compare
	result, err := diff.Diff([]*raster.Raster{baselineImage, targetImage}, w.Options)
	if err != nil {
		return nil, xerrors.Errorf("failed to diff images: %w", err)
	}

	// Step 3: Upload rendered outputs in parallel
	output := &WorkerOutput{
		BaselineURL: baseline,
		TargetURL:   target,
		Status:      result.Status.String(),
		Counts:      result.Counts,
		Percentages: result.Percentages,
		Regions:     result.Regions,
		Outputs:     map[string]string{},
		Timings:     result.Timings,
	}
	{
		eg, ctx := errgroup.WithContext(ctx)

		var mu sync.Mutex
		urls := make(map[string]string, len(result.Outputs))
		for name, r := range result.Outputs {
			eg.Go(func() error {
				var buffer bytes.Buffer
				if err := png.Encode(&buffer, r.ToImage()); err != nil {
					return xerrors.Errorf("failed to encode output %s: %w", name, err)
				}

				key := storage.OutputKey(baseline, target, name, "png")
				url, err := w.Storage.Put(ctx, key, buffer.Bytes())
				if err != nil {
					return xerrors.Errorf("failed to upload output %s: %w", name, err)
				}

				mu.Lock()
				urls[name] = url
				mu.Unlock()
				return nil
			})
		}

		if err := eg.Wait(); err != nil {
			return nil, err
		}
		output.Outputs = urls
	}

	return output, nil
}

func (w *Worker) fetch(ctx context.Context, url string) (*raster.Raster, error) {
	request, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to create request: %w", err)
	}

	response, err := w.Client.Do(request)
	if err != nil {
		return nil, xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("unexpected status fetching %s: %s", url, response.Status)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, xerrors.Errorf("failed to read body: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, xerrors.Errorf("failed to decode image: %w", err)
	}

	return raster.FromImage(img), nil
}

func callback(ctx context.Context, callbackURL string, data []byte) error {
	request, err := http.NewRequestWithContext(ctx, "PATCH", callbackURL, bytes.NewReader(data))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 1 * time.Second, // retry.Transport does not have perTryTimeout
		Transport: &retry.Transport{
			Base:          http.DefaultTransport,
			RetryStrategy: retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, nil),
			RetryOn:       retry.NewDefaultRetryOn(),
		},
	}

	response, err := client.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	return nil
}
