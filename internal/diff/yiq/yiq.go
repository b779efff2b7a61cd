// Package yiq converts RGB pixels into the YIQ luma/chroma space and scores
// perceptual differences there. YIQ distance tracks visible change much more
// closely than raw RGB distance, which is what makes the thresholds in the
// classifier meaningful.
package yiq

import "github.com/achronos0/diffmap/internal/raster"

// YIQ is one pixel in luma/chroma form.
type YIQ struct {
	Y float64
	I float64
	Q float64
}

// FromRGB converts one pixel. Alpha is ignored; callers flatten first if
// translucency matters.
func FromRGB(r uint8, g uint8, b uint8) YIQ {
	rf := float64(r)
	gf := float64(g)
	bf := float64(b)
	return YIQ{
		Y: 0.29889531*rf + 0.58662247*gf + 0.11448223*bf,
		I: 0.59597799*rf - 0.27417610*gf - 0.32180189*bf,
		Q: 0.21147017*rf - 0.52261711*gf + 0.31114694*bf,
	}
}

// Distance scores the perceptual difference between two pixels. The result
// is 0 only for component-wise equal pixels; otherwise its magnitude is the
// weighted squared delta and its sign is negative when from is brighter than
// to. The coefficients and the 138.098… normalizer are load-bearing: the
// classifier thresholds are calibrated against them.
func Distance(from YIQ, to YIQ) float64 {
	if from == to {
		return 0
	}

	dy := from.Y - to.Y
	di := from.I - to.I
	dq := from.Q - to.Q

	magnitude := (0.5053*dy*dy + 0.299*di*di + 0.1957*dq*dq) / 138.09803921568627
	if from.Y > to.Y {
		return -magnitude
	}
	return magnitude
}

// Contrast is the luminance-only delta. It separates anti-aliasing blur,
// which shifts luma, from flat background noise, which barely does.
func Contrast(from YIQ, to YIQ) float64 {
	return from.Y - to.Y
}

// Image is a converted raster: one YIQ triple per pixel, row-major.
type Image struct {
	Width  int
	Height int
	Pix    []YIQ
}

func (m *Image) At(x int, y int) YIQ {
	return m.Pix[y*m.Width+x]
}

// Convert derives the ephemeral YIQ plane for one comparison input.
func Convert(r *raster.Raster) *Image {
	m := &Image{
		Width:  r.Width,
		Height: r.Height,
		Pix:    make([]YIQ, r.Width*r.Height),
	}
	r.IterateAll(func(x int, y int) bool {
		red, green, blue, _ := r.RGBA(x, y)
		m.Pix[y*m.Width+x] = FromRGB(red, green, blue)
		return true
	})
	return m
}
