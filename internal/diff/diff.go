// Package diff orchestrates a full perceptual comparison: input validation,
// YIQ conversion, per-pixel classification, region grouping, statistics and
// the optional render pass. One invocation owns its flag map and region
// list for its whole duration; nothing is shared or mutated afterwards.
package diff

import (
	"time"

	"github.com/achronos0/diffmap/internal/diff/classify"
	"github.com/achronos0/diffmap/internal/diff/flags"
	"github.com/achronos0/diffmap/internal/diff/group"
	"github.com/achronos0/diffmap/internal/diff/render"
	"github.com/achronos0/diffmap/internal/diff/yiq"
	"github.com/achronos0/diffmap/internal/raster"
	"golang.org/x/xerrors"
)

var InvalidInputError = classify.InvalidInputError

// Status classifies the outcome of one comparison.
type Status int

const (
	StatusIdentical Status = iota
	StatusSimilar
	StatusDifferent
	StatusMismatch
)

func (s Status) String() string {
	switch s {
	case StatusIdentical:
		return "identical"
	case StatusSimilar:
		return "similar"
	case StatusDifferent:
		return "different"
	default:
		return "mismatch"
	}
}

type PixelCounts struct {
	Total    int `json:"total"`
	Compared int `json:"compared"`
	Diff     int `json:"diff"`
	Group    int `json:"group"`

	Identical int `json:"identical"`
	Similar   int `json:"similar"`
	Changed   int `json:"changed"`

	Foreground int `json:"foreground"`
	Background int `json:"background"`
	Antialias  int `json:"antialias"`
}

type PixelPercentages struct {
	Diff         float64 `json:"diff"`
	Group        float64 `json:"group"`
	DiffCompared float64 `json:"diffCompared"`
}

type Timings struct {
	Convert  time.Duration `json:"convert"`
	Classify time.Duration `json:"classify"`
	Group    time.Duration `json:"group"`
	Render   time.Duration `json:"render"`
	Total    time.Duration `json:"total"`
}

type Result struct {
	Status      Status
	Counts      PixelCounts
	Percentages PixelPercentages

	// Breakdown counts pixels per similarity×significance pair.
	Breakdown [3][3]int

	// Regions are the final diff groups in discovery/merge order.
	Regions []raster.Box

	// Outputs holds the rendered rasters, nil when rendering was skipped.
	Outputs map[string]*raster.Raster

	// Flags is this invocation's flag map, frozen on return.
	Flags *flags.Map

	Timings Timings
}

// Diff compares two or more same-dimension images. Input rasters are
// read-only; everything returned is freshly allocated for this call.
func Diff(images []*raster.Raster, opts Options) (*Result, error) {
	start := time.Now()

	if len(images) < 2 {
		return nil, xerrors.Errorf("diff wants at least 2 images, got %d: %w", len(images), InvalidInputError)
	}
	width := images[0].Width
	height := images[0].Height
	for i, img := range images[1:] {
		if img.Width != width || img.Height != height {
			return nil, xerrors.Errorf("image %d is %dx%d, want %dx%d: %w",
				i+1, img.Width, img.Height, width, height, InvalidInputError)
		}
	}

	var timings Timings

	phase := time.Now()
	yiqImages := make([]*yiq.Image, len(images))
	for i, img := range images {
		yiqImages[i] = yiq.Convert(img)
	}
	timings.Convert = time.Since(phase)

	m := flags.NewMap(width, height)

	phase = time.Now()
	stats, err := classify.Run(yiqImages, m, opts.Classify)
	if err != nil {
		return nil, xerrors.Errorf("failed to classify pixels: %w", err)
	}
	timings.Classify = time.Since(phase)

	phase = time.Now()
	groups, err := group.Run(m, opts.Group)
	if err != nil {
		return nil, xerrors.Errorf("failed to group regions: %w", err)
	}
	timings.Group = time.Since(phase)

	result := &Result{
		Counts: PixelCounts{
			Total:      stats.Total,
			Compared:   stats.Compared,
			Diff:       stats.Diff,
			Group:      groups.GroupPixelCount,
			Identical:  stats.SimilarityCounts[flags.SimilarityIdentical],
			Similar:    stats.SimilarityCounts[flags.SimilaritySimilar],
			Changed:    stats.SimilarityCounts[flags.SimilarityChanged],
			Foreground: stats.SignificanceCounts[flags.SignificanceForeground],
			Background: stats.SignificanceCounts[flags.SignificanceBackground],
			Antialias:  stats.SignificanceCounts[flags.SignificanceAntialias],
		},
		Breakdown: stats.Breakdown,
		Regions:   groups.Regions,
		Flags:     m,
	}

	result.Percentages = percentages(result.Counts)
	result.Status = status(result.Counts, result.Percentages, opts.MismatchMinPercent)

	if len(opts.Outputs) > 0 && opts.renderAllowed(result.Status) {
		catalog := opts.Catalog
		if catalog == nil {
			catalog = render.DefaultCatalog()
		}
		seed := map[string]*raster.Raster{
			render.SeedFlags:    m.Encode(),
			render.SeedOriginal: images[0],
			render.SeedChanged:  images[1],
		}

		phase = time.Now()
		outputs, err := render.Outputs(opts.Outputs, seed, catalog, opts.RenderOptions)
		if err != nil {
			return nil, xerrors.Errorf("failed to render outputs: %w", err)
		}
		timings.Render = time.Since(phase)
		result.Outputs = outputs
	}

	timings.Total = time.Since(start)
	result.Timings = timings
	return result, nil
}

func percentages(c PixelCounts) PixelPercentages {
	p := PixelPercentages{}
	if c.Total > 0 {
		p.Diff = float64(c.Diff) / float64(c.Total) * 100
		p.Group = float64(c.Group) / float64(c.Total) * 100
	}
	// compared == 0 means diffCompared is 0 as well, never NaN.
	if c.Compared > 0 {
		p.DiffCompared = float64(c.Diff) / float64(c.Compared) * 100
	}
	return p
}

func status(c PixelCounts, p PixelPercentages, mismatchMinPercent float64) Status {
	switch {
	case c.Diff > 0 && p.Diff >= mismatchMinPercent:
		return StatusMismatch
	case c.Diff > 0:
		return StatusDifferent
	case c.Similar > 0:
		return StatusSimilar
	default:
		return StatusIdentical
	}
}
