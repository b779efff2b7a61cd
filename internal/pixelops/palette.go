package pixelops

import (
	"github.com/achronos0/diffmap/internal/raster"
	"golang.org/x/xerrors"
)

type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// Rule maps single-channel pixel values to a color. Exactly one matcher is
// consulted, in this order: an exact-match value list, a bitmask equality
// test, an inclusive numeric range, or fallback.
type Rule struct {
	// Values matches when the pixel equals any listed value.
	Values []uint8
	// Mask, when non-zero, matches pixels where value&Mask == Bits.
	Mask uint8
	Bits uint8
	// Lo/Hi match values inside the inclusive range; active when Hi >= Lo
	// and either is non-zero.
	Lo int
	Hi int
	// Fallback matches any value.
	Fallback bool

	Color Color
	// Gradient scales the rule color linearly by value/255.
	Gradient bool
}

func (rule Rule) matches(v uint8) bool {
	if len(rule.Values) > 0 {
		for _, candidate := range rule.Values {
			if v == candidate {
				return true
			}
		}
		return false
	}
	if rule.Mask != 0 {
		return v&rule.Mask == rule.Bits
	}
	if rule.Hi >= rule.Lo && (rule.Lo != 0 || rule.Hi != 0) {
		return int(v) >= rule.Lo && int(v) <= rule.Hi
	}
	return rule.Fallback
}

func (rule Rule) colorFor(v uint8) Color {
	if !rule.Gradient {
		return rule.Color
	}
	scale := float64(v) / 255
	return Color{
		R: uint8(float64(rule.Color.R) * scale),
		G: uint8(float64(rule.Color.G) * scale),
		B: uint8(float64(rule.Color.B) * scale),
		A: rule.Color.A,
	}
}

// Render paints a single-channel raster into a 4-channel raster using the
// first matching rule per pixel. Pixels no rule matches come out fully
// transparent.
func Render(r *raster.Raster, rules []Rule) (*raster.Raster, error) {
	if r.Channels != 1 {
		return nil, xerrors.Errorf("palette render wants a single-channel raster, got %d channels: %w", r.Channels, UnsupportedOperandError)
	}

	out := raster.New(r.Width, r.Height, 4)
	r.IterateAll(func(x int, y int) bool {
		v := r.Get(r.PixOffset(x, y))
		for _, rule := range rules {
			if rule.matches(v) {
				c := rule.colorFor(v)
				out.SetRGBA(x, y, c.R, c.G, c.B, c.A)
				break
			}
		}
		return true
	})
	return out, nil
}
