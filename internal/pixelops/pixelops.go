// Package pixelops provides the per-pixel raster transforms the render
// graph composes its outputs from. Every operation returns a fresh raster
// and leaves its operands untouched.
package pixelops

import (
	"errors"

	"github.com/achronos0/diffmap/internal/raster"
	"golang.org/x/xerrors"
)

var UnsupportedOperandError = errors.New("unsupported operand")

// Flatten alpha-composites a 4-channel raster onto a white background,
// producing a fully opaque raster.
func Flatten(r *raster.Raster) (*raster.Raster, error) {
	if r.Channels != 4 {
		return nil, xerrors.Errorf("flatten wants a 4-channel raster, got %d channels: %w", r.Channels, UnsupportedOperandError)
	}

	out := raster.New(r.Width, r.Height, 4)
	r.IterateAll(func(x int, y int) bool {
		red, green, blue, alpha := r.RGBA(x, y)
		out.SetRGBA(x, y, compositeOnWhite(red, alpha), compositeOnWhite(green, alpha), compositeOnWhite(blue, alpha), 255)
		return true
	})
	return out, nil
}

func compositeOnWhite(v uint8, alpha uint8) uint8 {
	a := int(alpha)
	return uint8((int(v)*a + 255*(255-a)) / 255)
}

// Greyscale replaces each pixel's color with its luminance, keeping alpha.
func Greyscale(r *raster.Raster) (*raster.Raster, error) {
	if r.Channels != 4 {
		return nil, xerrors.Errorf("greyscale wants a 4-channel raster, got %d channels: %w", r.Channels, UnsupportedOperandError)
	}

	out := raster.New(r.Width, r.Height, 4)
	r.IterateAll(func(x int, y int) bool {
		red, green, blue, alpha := r.RGBA(x, y)
		luma := uint8(0.299*float64(red) + 0.587*float64(green) + 0.114*float64(blue))
		out.SetRGBA(x, y, luma, luma, luma, alpha)
		return true
	})
	return out, nil
}

// Brightness fades the raster by scaling its alpha channel. A fade of 1
// is a copy; 0 is fully transparent.
func Brightness(r *raster.Raster, fade float64) (*raster.Raster, error) {
	if r.Channels != 4 {
		return nil, xerrors.Errorf("brightness wants a 4-channel raster, got %d channels: %w", r.Channels, UnsupportedOperandError)
	}
	if fade < 0 {
		fade = 0
	}
	if fade > 1 {
		fade = 1
	}

	out := r.Clone()
	out.IterateAll(func(x int, y int) bool {
		offset := out.PixOffset(x, y)
		out.Pix[offset+3] = uint8(float64(out.Pix[offset+3]) * fade)
		return true
	})
	return out, nil
}

type BlendMode int

const (
	BlendAdd BlendMode = iota
	BlendAverage
	BlendMax
)

// Blend combines overlay onto base per channel. Overlay pixels with alpha 0
// leave the base pixel untouched and pixels with alpha 255 take the mode
// result directly; anything in between is alpha-weighted.
func Blend(base *raster.Raster, overlay *raster.Raster, mode BlendMode) (*raster.Raster, error) {
	if base.Channels != 4 || overlay.Channels != 4 {
		return nil, xerrors.Errorf("blend wants 4-channel rasters: %w", UnsupportedOperandError)
	}
	if base.Width != overlay.Width || base.Height != overlay.Height {
		return nil, xerrors.Errorf("blend wants same-size rasters, got %dx%d and %dx%d: %w",
			base.Width, base.Height, overlay.Width, overlay.Height, UnsupportedOperandError)
	}

	out := base.Clone()
	out.IterateAll(func(x int, y int) bool {
		or, og, ob, oa := overlay.RGBA(x, y)
		if oa == 0 {
			return true
		}

		br, bg, bb, ba := out.RGBA(x, y)
		mr := blendChannel(br, or, mode)
		mg := blendChannel(bg, og, mode)
		mb := blendChannel(bb, ob, mode)

		if oa == 255 {
			out.SetRGBA(x, y, mr, mg, mb, 255)
			return true
		}

		a := int(oa)
		out.SetRGBA(x, y,
			uint8((int(mr)*a+int(br)*(255-a))/255),
			uint8((int(mg)*a+int(bg)*(255-a))/255),
			uint8((int(mb)*a+int(bb)*(255-a))/255),
			maxU8(ba, oa),
		)
		return true
	})
	return out, nil
}

func blendChannel(base uint8, overlay uint8, mode BlendMode) uint8 {
	switch mode {
	case BlendAdd:
		sum := int(base) + int(overlay)
		if sum > 255 {
			sum = 255
		}
		return uint8(sum)
	case BlendAverage:
		return uint8((int(base) + int(overlay)) / 2)
	default:
		return maxU8(base, overlay)
	}
}

func maxU8(l uint8, r uint8) uint8 {
	if l > r {
		return l
	}
	return r
}
