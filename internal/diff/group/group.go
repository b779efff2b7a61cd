// Package group clusters flagged pixels into padded bounding-box regions
// and paints their fill and border back into the flag map.
//
// The scan is deterministic row-major and the merge is first-match-wins, so
// output region boundaries depend on pixel order. That is part of the
// contract: parallelizing the scan would silently change results.
package group

import (
	"github.com/achronos0/diffmap/internal/diff/flags"
	"github.com/achronos0/diffmap/internal/raster"
)

type Options struct {
	// MergeMaxGapSize is how far apart two changed pixels can be and still
	// fall into the same region during the scan.
	MergeMaxGapSize int
	// PaddingSize grows every finalized region, clamped to image bounds.
	PaddingSize int
	// BorderSize is the painted border thickness inside each region.
	BorderSize int
}

func DefaultOptions() Options {
	return Options{
		MergeMaxGapSize: 5,
		PaddingSize:     2,
		BorderSize:      1,
	}
}

type Result struct {
	// Regions come back in discovery/merge order, unsorted.
	Regions []raster.Box
	// GroupPixelCount is the number of pixels painted as fill or border.
	GroupPixelCount int
}

// Run clusters every "different" pixel in m into regions, pads and merges
// them, and paints the final regions into m's group bits.
func Run(m *flags.Map, opts Options) (*Result, error) {
	regions := scan(m, opts.MergeMaxGapSize)

	for i := range regions {
		regions[i] = regions[i].Fit(opts.PaddingSize, m.Width, m.Height)
	}

	regions = mergeOverlapping(regions)

	painted := paint(m, regions, opts.BorderSize)

	return &Result{
		Regions:         regions,
		GroupPixelCount: painted,
	}, nil
}

// scan walks the map row-major and grows open regions. Each flagged pixel
// joins the first region whose bounds, expanded by the merge gap, contain
// it; ties go to scan order, not best fit.
func scan(m *flags.Map, mergeMaxGapSize int) []raster.Box {
	var regions []raster.Box

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.At(x, y).Different {
				continue
			}

			merged := false
			for i := range regions {
				if regions[i].Expand(mergeMaxGapSize).Contains(x, y) {
					regions[i] = raster.Union(regions[i], raster.AbsBox(x, y, x, y))
					merged = true
					break
				}
			}
			if !merged {
				regions = append(regions, raster.AbsBox(x, y, x, y))
			}
		}
	}

	return regions
}

// mergeOverlapping unions geometrically overlapping regions in a single
// left-to-right pass. The pass is not iterated to a fixed point, so regions
// that only start overlapping through a late union can survive unmerged.
func mergeOverlapping(regions []raster.Box) []raster.Box {
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); {
			if raster.Intersect(regions[i], regions[j]) {
				regions[i] = raster.Union(regions[i], regions[j])
				regions = append(regions[:j], regions[j+1:]...)
			} else {
				j++
			}
		}
	}
	return regions
}

func paint(m *flags.Map, regions []raster.Box, borderSize int) int {
	painted := 0
	for _, region := range regions {
		for y := region.Top; y <= region.Bottom; y++ {
			for x := region.Left; x <= region.Right; x++ {
				p := m.At(x, y)
				if x-region.Left < borderSize || region.Right-x < borderSize ||
					y-region.Top < borderSize || region.Bottom-y < borderSize {
					p.GroupBorder = true
				} else {
					p.GroupFill = true
				}
				painted++
			}
		}
	}
	return painted
}
