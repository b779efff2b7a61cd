package routes_test

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/achronos0/diffmap/internal/raster"
	"github.com/achronos0/diffmap/internal/routes"
)

func encodePNG(w io.Writer, r *raster.Raster) error {
	return png.Encode(w, r.ToImage())
}

type recordingStorage struct {
	mu   sync.Mutex
	keys []string
}

func (s *recordingStorage) Put(ctx context.Context, key string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return key, nil
}

func (s *recordingStorage) Get(ctx context.Context, url string) ([]byte, error) {
	return nil, fs.ErrNotExist
}

func createUniformRaster(width, height int, v uint8) *raster.Raster {
	r := raster.New(width, height, 4)
	r.IterateAll(func(x int, y int) bool {
		r.SetRGBA(x, y, v, v, v, 255)
		return true
	})
	return r
}

func multipartRequest(t *testing.T, baseline *raster.Raster, target *raster.Raster) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, r := range map[string]*raster.Raster{"baseline": baseline, "target": target} {
		part, err := writer.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatal(err)
		}
		if err := encodePNG(part, r); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.WriteField("store", "true"); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	request := httptest.NewRequest("POST", "/diff", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestDiff_StoreKeysFollowUploadedContent(t *testing.T) {
	// Two runs in the same second with different uploads must not share
	// storage keys, or the second silently overwrites the first.
	baseline := createUniformRaster(8, 8, 0)
	first := createUniformRaster(8, 8, 255)
	second := createUniformRaster(8, 8, 200)

	s := &recordingStorage{}
	handler := routes.Diff(s)

	run := func(target *raster.Raster) []string {
		before := len(s.keys)
		recorder := httptest.NewRecorder()
		handler(recorder, multipartRequest(t, baseline, target))
		if recorder.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
		}
		return append([]string(nil), s.keys[before:]...)
	}

	firstKeys := run(first)
	secondKeys := run(second)

	if len(firstKeys) == 0 || len(secondKeys) == 0 {
		t.Fatal("Expected stored outputs for both requests")
	}

	seen := map[string]bool{}
	for _, key := range firstKeys {
		seen[key] = true
	}
	for _, key := range secondKeys {
		if seen[key] {
			t.Errorf("Expected content-derived keys, got %s from both requests", key)
		}
	}
}
