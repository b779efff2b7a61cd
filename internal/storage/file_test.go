package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/achronos0/diffmap/internal/storage"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewFileStorage(ctx, storage.FileConfig{
		Directory: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	url, err := s.Put(ctx, "Diffmap/abc/20260831000000/composite.png", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := s.Get(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("payload")) {
		t.Errorf("Expected the stored payload back, got %q", data)
	}
}

func TestFileStorage_RejectsPathsOutsideDirectory(t *testing.T) {
	ctx := context.Background()
	directory := t.TempDir()

	// A real file one level above the storage directory must stay unreadable.
	outside := filepath.Join(directory, "..", "escape.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := storage.NewFileStorage(ctx, storage.FileConfig{
		Directory: directory,
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, url := range []string{
		"/etc/passwd",
		outside,
		directory + "/../escape.txt",
	} {
		if _, err := s.Get(ctx, url); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Expected fs.ErrNotExist for %s, got %v", url, err)
		}
	}
}
