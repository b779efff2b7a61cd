// Package classify categorizes every pixel across a set of same-size
// images: how much the images disagree there (similarity) and how visually
// important the pixel is (significance). Pixels that are both important and
// changed get the "different" flag the region grouper clusters on.
package classify

import (
	"errors"
	"math"

	"github.com/achronos0/diffmap/internal/diff/flags"
	"github.com/achronos0/diffmap/internal/diff/yiq"
	"golang.org/x/xerrors"
)

var InvalidInputError = errors.New("invalid input")

type Options struct {
	// ChangedMinDistance is the perceptual distance below which a non-equal
	// pixel pair still counts as similar. Distances are on the 0..255 scale
	// produced by yiq.Distance.
	ChangedMinDistance float64

	// AntialiasMinDistance and AntialiasMaxDistance bound the neighbor
	// distance/contrast band treated as anti-aliasing.
	AntialiasMinDistance float64
	AntialiasMaxDistance float64

	// BackgroundMaxContrast is the largest neighbor luma delta a pixel can
	// have and still count as flat background.
	BackgroundMaxContrast float64

	// DiffInclude* gate which significance categories take part in the diff
	// count.
	DiffIncludeForeground bool
	DiffIncludeBackground bool
	DiffIncludeAntialias  bool
}

func DefaultOptions() Options {
	return Options{
		ChangedMinDistance:    2.55,
		AntialiasMinDistance:  0.25,
		AntialiasMaxDistance:  12.75,
		BackgroundMaxContrast: 5.1,
		DiffIncludeForeground: true,
		DiffIncludeBackground: true,
		DiffIncludeAntialias:  false,
	}
}

// Stats aggregates the per-pixel classification of one run.
type Stats struct {
	Total    int
	Compared int
	Diff     int

	SimilarityCounts   [3]int
	SignificanceCounts [3]int

	// Breakdown counts pixels per similarity×significance pair, indexed
	// [flags.Similarity][flags.Significance].
	Breakdown [3][3]int
}

// Run classifies every pixel of the input images into m. All images must
// match the flag map's dimensions; this is verified before any pixel work.
func Run(images []*yiq.Image, m *flags.Map, opts Options) (*Stats, error) {
	if len(images) < 2 {
		return nil, xerrors.Errorf("classification wants at least 2 images, got %d: %w", len(images), InvalidInputError)
	}
	for i, img := range images {
		if img.Width != m.Width || img.Height != m.Height {
			return nil, xerrors.Errorf("image %d is %dx%d, want %dx%d: %w",
				i, img.Width, img.Height, m.Width, m.Height, InvalidInputError)
		}
	}

	stats := &Stats{Total: m.Width * m.Height}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			similarity := similarityAt(images, x, y, opts)
			significance := significanceAt(images, x, y, opts)

			p := m.At(x, y)
			p.Similarity = similarity
			p.Significance = significance

			stats.SimilarityCounts[similarity]++
			stats.SignificanceCounts[significance]++
			stats.Breakdown[similarity][significance]++

			if opts.includes(significance) {
				stats.Compared++
				if similarity == flags.SimilarityChanged {
					p.Different = true
					stats.Diff++
				}
			}
		}
	}

	return stats, nil
}

func (o Options) includes(s flags.Significance) bool {
	switch s {
	case flags.SignificanceForeground:
		return o.DiffIncludeForeground
	case flags.SignificanceAntialias:
		return o.DiffIncludeAntialias
	default:
		return o.DiffIncludeBackground
	}
}

// similarityAt takes the maximum pairwise perceptual distance across all
// images at (x, y). The maximum is order-independent, so similarity does not
// depend on input ordering.
func similarityAt(images []*yiq.Image, x int, y int, opts Options) flags.Similarity {
	var maxDistance float64
	for i := 0; i < len(images); i++ {
		for j := i + 1; j < len(images); j++ {
			d := math.Abs(yiq.Distance(images[i].At(x, y), images[j].At(x, y)))
			if d > maxDistance {
				maxDistance = d
			}
		}
	}

	switch {
	case maxDistance == 0:
		return flags.SimilarityIdentical
	case maxDistance < opts.ChangedMinDistance:
		return flags.SimilaritySimilar
	default:
		return flags.SimilarityChanged
	}
}

// significanceAt reconciles the per-image significance of (x, y). Any
// disagreement between images, or any foreground verdict, forces foreground
// and skips the remaining images. The short-circuit skips work, never
// verdicts: under disagreement the answer is foreground from either
// direction, so the bias is always toward "important".
func significanceAt(images []*yiq.Image, x int, y int, opts Options) flags.Significance {
	overall := imageSignificance(images[0], x, y, opts)
	if overall == flags.SignificanceForeground {
		return flags.SignificanceForeground
	}

	for _, img := range images[1:] {
		s := imageSignificance(img, x, y, opts)
		if s == flags.SignificanceForeground || s != overall {
			return flags.SignificanceForeground
		}
	}
	return overall
}

// imageSignificance inspects the diagonal neighbors of (x, y) within one
// image and classifies the pixel from the local distance/contrast texture.
func imageSignificance(img *yiq.Image, x int, y int, opts Options) flags.Significance {
	center := img.At(x, y)

	var maxDistance float64
	var maxContrast float64
	identical := 0

	for _, dy := range [2]int{-1, 1} {
		ny := y + dy
		if ny < 0 || ny >= img.Height {
			continue
		}
		for _, dx := range [2]int{-1, 1} {
			nx := x + dx
			if nx < 0 || nx >= img.Width {
				continue
			}

			neighbor := img.At(nx, ny)
			d := math.Abs(yiq.Distance(center, neighbor))
			if d == 0 {
				identical++
			}
			if d > maxDistance {
				maxDistance = d
			}
			c := math.Abs(yiq.Contrast(center, neighbor))
			if c > maxContrast {
				maxContrast = c
			}
		}
	}

	if identical < 3 &&
		maxDistance >= opts.AntialiasMinDistance && maxDistance <= opts.AntialiasMaxDistance &&
		maxContrast >= opts.AntialiasMinDistance && maxContrast <= opts.AntialiasMaxDistance {
		return flags.SignificanceAntialias
	}
	if maxContrast <= opts.BackgroundMaxContrast {
		return flags.SignificanceBackground
	}
	return flags.SignificanceForeground
}
