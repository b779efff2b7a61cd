package routes

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/achronos0/diffmap/internal/storage"
)

// GetOutput serves a previously stored rendered output back to the caller.
// The wildcard path segment is the storage URL the diff endpoint returned.
func GetOutput(storageClient storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.PathValue("url")
		if url == "" {
			http.NotFound(w, r)
			return
		}

		data, err := storageClient.Get(r.Context(), url)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				http.NotFound(w, r)
				return
			}
			slog.Error(fmt.Sprintf("failed to get output: %s", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		contentType := "application/octet-stream"
		if strings.HasSuffix(url, ".png") {
			contentType = "image/png"
		}

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
