package render

import (
	"github.com/achronos0/diffmap/internal/diff/flags"
	"github.com/achronos0/diffmap/internal/pixelops"
	"github.com/achronos0/diffmap/internal/raster"
)

// Seed raster and program names of the default catalog.
const (
	SeedFlags    = "flags"
	SeedOriginal = "original"
	SeedChanged  = "changed"

	OutFlatOriginal = "flat-original"
	OutFlatChanged  = "flat-changed"
	OutBackground   = "background"
	OutDiffPixels   = "diff-pixels"
	OutGroupOverlay = "group-overlay"
	OutComposite    = "composite"
)

// DefaultCatalog builds the standard visualization graph: flattened inputs,
// a faded greyscale background, palette renders of the diff and group flags,
// and a composite that stacks them.
func DefaultCatalog() Catalog {
	return Catalog{
		OutFlatOriginal: {
			Deps: []string{SeedOriginal},
			Generate: func(resolved map[string]*raster.Raster, opts Options) (*raster.Raster, error) {
				return pixelops.Flatten(resolved[SeedOriginal])
			},
		},
		OutFlatChanged: {
			Deps: []string{SeedChanged},
			Generate: func(resolved map[string]*raster.Raster, opts Options) (*raster.Raster, error) {
				return pixelops.Flatten(resolved[SeedChanged])
			},
		},
		OutBackground: {
			Deps:     []string{OutFlatOriginal},
			Defaults: Options{"fade": 0.4},
			Generate: func(resolved map[string]*raster.Raster, opts Options) (*raster.Raster, error) {
				grey, err := pixelops.Greyscale(resolved[OutFlatOriginal])
				if err != nil {
					return nil, err
				}
				return pixelops.Brightness(grey, Float(opts, "fade", 0.4))
			},
		},
		OutDiffPixels: {
			Deps: []string{SeedFlags},
			Generate: func(resolved map[string]*raster.Raster, opts Options) (*raster.Raster, error) {
				return pixelops.Render(resolved[SeedFlags], []pixelops.Rule{
					{Mask: flags.BitDifferent, Bits: flags.BitDifferent, Color: pixelops.Color{R: 255, A: 255}},
				})
			},
		},
		OutGroupOverlay: {
			Deps: []string{SeedFlags},
			Generate: func(resolved map[string]*raster.Raster, opts Options) (*raster.Raster, error) {
				return pixelops.Render(resolved[SeedFlags], []pixelops.Rule{
					{Mask: flags.BitGroupBorder, Bits: flags.BitGroupBorder, Color: pixelops.Color{R: 255, B: 255, A: 255}},
					{Mask: flags.BitGroupFill, Bits: flags.BitGroupFill, Color: pixelops.Color{R: 255, B: 255, A: 48}},
				})
			},
		},
		OutComposite: {
			Deps: []string{OutBackground, OutDiffPixels, OutGroupOverlay},
			Generate: func(resolved map[string]*raster.Raster, opts Options) (*raster.Raster, error) {
				base, err := pixelops.Flatten(resolved[OutBackground])
				if err != nil {
					return nil, err
				}
				withGroups, err := pixelops.Blend(base, resolved[OutGroupOverlay], pixelops.BlendMax)
				if err != nil {
					return nil, err
				}
				return pixelops.Blend(withGroups, resolved[OutDiffPixels], pixelops.BlendMax)
			},
		},
	}
}
