// Package flags holds the per-pixel classification state shared by the
// classifier and the region grouper. Each pixel is kept unpacked as three
// explicit fields; the bit-packed form exists only at the encoding boundary
// where the map becomes the "flags" raster for rendering.
package flags

import "github.com/achronos0/diffmap/internal/raster"

// Similarity is the cross-image agreement category for one pixel.
type Similarity uint8

const (
	SimilarityIdentical Similarity = iota
	SimilaritySimilar
	SimilarityChanged
)

// Significance is the estimated visual importance of one pixel.
type Significance uint8

const (
	SignificanceBackground Significance = iota
	SignificanceAntialias
	SignificanceForeground
)

// Pixel is the classification state of one pixel. The classifier fills
// Similarity, Significance and Different; the grouper ORs in the group
// fields afterwards and never touches the earlier ones.
type Pixel struct {
	Similarity   Similarity
	Significance Significance
	Different    bool
	GroupFill    bool
	GroupBorder  bool
}

// Packed layout: similarity, significance and diff/group state occupy
// disjoint bit fields so later phases only add bits. Decoding masks before
// comparing.
const (
	similarityShift = 0
	similarityMask  = 0b00000011

	significanceShift = 2
	significanceMask  = 0b00001100

	BitDifferent   = 1 << 4
	BitGroupFill   = 1 << 5
	BitGroupBorder = 1 << 6
)

func (p Pixel) Encode() uint8 {
	v := uint8(p.Similarity)<<similarityShift | uint8(p.Significance)<<significanceShift
	if p.Different {
		v |= BitDifferent
	}
	if p.GroupFill {
		v |= BitGroupFill
	}
	if p.GroupBorder {
		v |= BitGroupBorder
	}
	return v
}

func Decode(v uint8) Pixel {
	return Pixel{
		Similarity:   Similarity((v & similarityMask) >> similarityShift),
		Significance: Significance((v & significanceMask) >> significanceShift),
		Different:    v&BitDifferent != 0,
		GroupFill:    v&BitGroupFill != 0,
		GroupBorder:  v&BitGroupBorder != 0,
	}
}

// Map is the flag raster for one diff invocation. It is created zeroed,
// owned exclusively by that invocation, and returned frozen with the result.
type Map struct {
	Width  int
	Height int
	Pix    []Pixel
}

func NewMap(width int, height int) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Pix:    make([]Pixel, width*height),
	}
}

func (m *Map) At(x int, y int) *Pixel {
	return &m.Pix[y*m.Width+x]
}

// Encode packs the map into a single-channel raster, one byte per pixel.
func (m *Map) Encode() *raster.Raster {
	r := raster.New(m.Width, m.Height, 1)
	for i, p := range m.Pix {
		r.Pix[i] = p.Encode()
	}
	return r
}
