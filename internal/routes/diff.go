package routes

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/achronos0/diffmap/internal/diff"
	"github.com/achronos0/diffmap/internal/raster"
	"github.com/achronos0/diffmap/internal/storage"
	"golang.org/x/xerrors"
)

const maxUploadBytes = 32 << 20

type DiffResponse struct {
	Status      string                `json:"status"`
	Counts      diff.PixelCounts      `json:"pixelCounts"`
	Percentages diff.PixelPercentages `json:"pixelPercentages"`
	Regions     []raster.Box          `json:"regions"`
	Outputs     map[string]string     `json:"outputs"`
	Timings     diff.Timings          `json:"timings"`
}

// Diff compares the uploaded baseline and target images. Rendered outputs
// come back base64-encoded in the response, or as storage URLs when the
// request sets store=true and a storage backend is configured.
func Diff(storageClient storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		opts := diff.DefaultOptions()
		if v := r.FormValue("outputs"); v != "" {
			opts.Outputs = strings.Split(v, ",")
		}
		if v := r.FormValue("mismatchMinPercent"); v != "" {
			percent, err := strconv.ParseFloat(v, 64)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			opts.MismatchMinPercent = percent
		}
		store := false
		if v := r.FormValue("store"); v != "" {
			store, _ = strconv.ParseBool(v)
		}
		if store && storageClient == nil {
			http.Error(w, "no storage backend configured", http.StatusBadRequest)
			return
		}

		baseline, baselineData, err := formRaster(r, "baseline")
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		target, targetData, err := formRaster(r, "target")
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		result, err := diff.Diff([]*raster.Raster{baseline, target}, opts)
		if err != nil {
			if errors.Is(err, diff.InvalidInputError) {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			slog.Error(fmt.Sprintf("failed to diff images: %s", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		outputs := make(map[string]string, len(result.Outputs))
		for name, out := range result.Outputs {
			var buffer bytes.Buffer
			if err := png.Encode(&buffer, out.ToImage()); err != nil {
				slog.Error(fmt.Sprintf("failed to encode output %s: %s", name, err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if store {
				// Uploads carry no stable names, so the key is derived from
				// the uploaded bytes to keep concurrent runs apart.
				key := storage.OutputKey(contentDigest(baselineData), contentDigest(targetData), name, "png")
				url, err := storageClient.Put(r.Context(), key, buffer.Bytes())
				if err != nil {
					slog.Error(fmt.Sprintf("failed to store output %s: %s", name, err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				outputs[name] = url
			} else {
				outputs[name] = base64.StdEncoding.EncodeToString(buffer.Bytes())
			}
		}

		b, err := json.Marshal(DiffResponse{
			Status:      result.Status.String(),
			Counts:      result.Counts,
			Percentages: result.Percentages,
			Regions:     result.Regions,
			Outputs:     outputs,
			Timings:     result.Timings,
		})
		if err != nil {
			slog.Error(fmt.Sprintf("failed to marshal json: %s", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	}
}

func formRaster(r *http.Request, field string) (*raster.Raster, []byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to read form file %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to read %s: %w", field, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to decode %s: %w", field, err)
	}

	return raster.FromImage(img), data, nil
}

func contentDigest(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
