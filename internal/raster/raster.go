package raster

import (
	"image"
	"image/color"
)

// Raster is a caller-owned pixel buffer. Pixels are stored row-major,
// Channels bytes per pixel, with no padding between rows.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

func New(width int, height int, channels int) *Raster {
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

func (r *Raster) PixOffset(x int, y int) int {
	return (y*r.Width + x) * r.Channels
}

func (r *Raster) Get(offset int) uint8 {
	return r.Pix[offset]
}

func (r *Raster) Set(offset int, v uint8) {
	r.Pix[offset] = v
}

// RGBA reads the pixel at (x, y). Single-channel rasters replicate the
// value across R, G and B with opaque alpha.
func (r *Raster) RGBA(x int, y int) (uint8, uint8, uint8, uint8) {
	offset := r.PixOffset(x, y)
	if r.Channels == 1 {
		v := r.Pix[offset]
		return v, v, v, 255
	}
	return r.Pix[offset], r.Pix[offset+1], r.Pix[offset+2], r.Pix[offset+3]
}

func (r *Raster) SetRGBA(x int, y int, red uint8, green uint8, blue uint8, alpha uint8) {
	offset := r.PixOffset(x, y)
	if r.Channels == 1 {
		r.Pix[offset] = red
		return
	}
	r.Pix[offset] = red
	r.Pix[offset+1] = green
	r.Pix[offset+2] = blue
	r.Pix[offset+3] = alpha
}

func (r *Raster) Clone() *Raster {
	clone := New(r.Width, r.Height, r.Channels)
	copy(clone.Pix, r.Pix)
	return clone
}

// IterateAll visits every pixel in deterministic row-major order. The
// callback returns false to stop early.
func (r *Raster) IterateAll(fn func(x int, y int) bool) {
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if !fn(x, y) {
				return
			}
		}
	}
}

// IterateAdjacent visits the up-to-4 diagonal neighbors of (x, y) that lie
// inside the raster, in top-left, top-right, bottom-left, bottom-right order.
func (r *Raster) IterateAdjacent(x int, y int, fn func(x int, y int)) {
	for _, dy := range [2]int{-1, 1} {
		ny := y + dy
		if ny < 0 || ny >= r.Height {
			continue
		}
		for _, dx := range [2]int{-1, 1} {
			nx := x + dx
			if nx < 0 || nx >= r.Width {
				continue
			}
			fn(nx, ny)
		}
	}
}

// FromImage copies a decoded image into a 4-channel straight-alpha raster.
// NRGBA buffers are copied per row; RGBA is un-premultiplied; everything
// else goes through the color model.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	r := New(bounds.Dx(), bounds.Dy(), 4)

	switch source := img.(type) {
	case *image.NRGBA:
		for y := 0; y < r.Height; y++ {
			rowStart := source.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(r.Pix[y*r.Width*4:(y+1)*r.Width*4], source.Pix[rowStart:rowStart+r.Width*4])
		}
	default:
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
				r.SetRGBA(x, y, c.R, c.G, c.B, c.A)
			}
		}
	}

	return r
}

// ToImage copies the raster into a std image for encoding. Four-channel
// rasters become NRGBA to keep their straight alpha; single-channel rasters
// become grayscale.
func (r *Raster) ToImage() image.Image {
	if r.Channels == 1 {
		img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
		copy(img.Pix, r.Pix)
		return img
	}

	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}
