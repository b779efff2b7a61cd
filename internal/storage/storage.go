package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

type Storage interface {
	// Put stores data under the given key and returns the storage URL
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves data from the given storage URL
	Get(ctx context.Context, url string) ([]byte, error)
}

// OutputKey builds the storage key for one rendered output of a comparison
// run. Runs are bucketed by a hash of the input names so repeated
// comparisons of the same pair land next to each other in the backend.
func OutputKey(baseline string, target string, output string, ext string) string {
	h := sha256.New()
	h.Write([]byte(baseline + target))
	hash := fmt.Sprintf("%x", h.Sum(nil))[:16]
	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("Diffmap/%s/%s/%s.%s", hash, timestamp, output, ext)
}
