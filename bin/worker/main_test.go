package main

import (
	"bytes"
	"context"
	"image/png"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/achronos0/diffmap/internal/diff"
	"github.com/achronos0/diffmap/internal/diff/render"
	"github.com/achronos0/diffmap/internal/raster"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryStorage) Put(ctx context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return key, nil
}

func (m *memoryStorage) Get(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[url]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func createUniformRaster(width, height int, v uint8) *raster.Raster {
	r := raster.New(width, height, 4)
	r.IterateAll(func(x int, y int) bool {
		r.SetRGBA(x, y, v, v, v, 255)
		return true
	})
	return r
}

func encodePNG(t *testing.T, r *raster.Raster) []byte {
	t.Helper()
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, r.ToImage()); err != nil {
		t.Fatal(err)
	}
	return buffer.Bytes()
}

func TestProcessComparison_UploadsAllOutputs(t *testing.T) {
	baseline := createUniformRaster(10, 10, 0)
	target := createUniformRaster(10, 10, 0)
	for y := 0; y < 5; y++ {
		for x := 0; x < 10; x++ {
			target.SetRGBA(x, y, 255, 255, 255, 255)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/baseline.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(encodePNG(t, baseline))
	})
	mux.HandleFunc("/target.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(encodePNG(t, target))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := &memoryStorage{objects: map[string][]byte{}}

	opts := diff.DefaultOptions()
	opts.Outputs = []string{
		render.OutFlatOriginal,
		render.OutFlatChanged,
		render.OutBackground,
		render.OutDiffPixels,
		render.OutGroupOverlay,
		render.OutComposite,
	}

	worker := &Worker{
		Storage: s,
		Client:  server.Client(),
		Options: opts,
	}

	ctx := context.Background()
	result, err := worker.processComparison(ctx, server.URL+"/baseline.png", server.URL+"/target.png")
	if err != nil {
		t.Fatal(err)
	}

	if result.Status != diff.StatusMismatch.String() {
		t.Errorf("Expected mismatch status, got %s", result.Status)
	}
	if len(result.Outputs) != len(opts.Outputs) {
		t.Fatalf("Expected %d uploaded outputs, got %v", len(opts.Outputs), result.Outputs)
	}
	for name, url := range result.Outputs {
		if url == "" {
			t.Errorf("Expected a storage URL for output %s", name)
			continue
		}
		if _, err := s.Get(ctx, url); err != nil {
			t.Errorf("Expected output %s stored at %s, got %v", name, url, err)
		}
	}
}
