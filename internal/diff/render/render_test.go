package render_test

import (
	"errors"
	"testing"

	"github.com/achronos0/diffmap/internal/diff/render"
	"github.com/achronos0/diffmap/internal/raster"
)

func constant(counter *int) func(map[string]*raster.Raster, render.Options) (*raster.Raster, error) {
	return func(resolved map[string]*raster.Raster, opts render.Options) (*raster.Raster, error) {
		if counter != nil {
			*counter++
		}
		return raster.New(1, 1, 4), nil
	}
}

func TestOutputs_Seed(t *testing.T) {
	seeded := raster.New(2, 2, 1)
	seed := map[string]*raster.Raster{"flags": seeded}

	outputs, err := render.Outputs([]string{"flags"}, seed, render.Catalog{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if outputs["flags"] != seeded {
		t.Error("Expected the seeded raster returned as-is")
	}
}

func TestOutputs_UnknownProgram(t *testing.T) {
	_, err := render.Outputs([]string{"nonexistent"}, nil, render.Catalog{}, nil)
	if !errors.Is(err, render.UnknownProgramError) {
		t.Errorf("Expected UnknownProgramError, got %v", err)
	}
}

func TestOutputs_UnknownDependency(t *testing.T) {
	catalog := render.Catalog{
		"top": {
			Deps:     []string{"nonexistent"},
			Generate: constant(nil),
		},
	}

	_, err := render.Outputs([]string{"top"}, nil, catalog, nil)
	if !errors.Is(err, render.UnknownProgramError) {
		t.Errorf("Expected UnknownProgramError, got %v", err)
	}
}

func TestOutputs_GeneratesAtMostOnce(t *testing.T) {
	// Diamond: both intermediates depend on base, and the top output plus a
	// second requested name pull in the whole graph. Requesting left twice
	// hits the memo on the repeat.
	baseCount := 0
	leftCount := 0

	catalog := render.Catalog{
		"base": {
			Generate: constant(&baseCount),
		},
		"left": {
			Deps:     []string{"base"},
			Generate: constant(&leftCount),
		},
		"right": {
			Deps:     []string{"base"},
			Generate: constant(nil),
		},
		"top": {
			Deps:     []string{"left", "right"},
			Generate: constant(nil),
		},
	}

	outputs, err := render.Outputs([]string{"top", "left", "left"}, nil, catalog, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(outputs) != 2 {
		t.Fatalf("Expected 2 outputs, got %d", len(outputs))
	}
	if baseCount != 1 {
		t.Errorf("Expected base generated once, got %d", baseCount)
	}
	if leftCount != 1 {
		t.Errorf("Expected left generated once, got %d", leftCount)
	}
}

func TestOutputs_OptionMerging(t *testing.T) {
	t.Run("OuterOverridesDefault", func(t *testing.T) {
		var seen float64
		catalog := render.Catalog{
			"out": {
				Defaults: render.Options{"fade": 0.4},
				Generate: func(resolved map[string]*raster.Raster, opts render.Options) (*raster.Raster, error) {
					seen = render.Float(opts, "fade", -1)
					return raster.New(1, 1, 4), nil
				},
			},
		}

		if _, err := render.Outputs([]string{"out"}, nil, catalog, render.Options{"fade": 0.9}); err != nil {
			t.Fatal(err)
		}
		if seen != 0.9 {
			t.Errorf("Expected the outer option to win, got %f", seen)
		}
	})

	t.Run("RefSubstitution", func(t *testing.T) {
		var seen int
		catalog := render.Catalog{
			"out": {
				Defaults: render.Options{"width": render.Ref("borderWidth")},
				Generate: func(resolved map[string]*raster.Raster, opts render.Options) (*raster.Raster, error) {
					seen = render.Int(opts, "width", -1)
					return raster.New(1, 1, 4), nil
				},
			},
		}

		if _, err := render.Outputs([]string{"out"}, nil, catalog, render.Options{"borderWidth": 3}); err != nil {
			t.Fatal(err)
		}
		if seen != 3 {
			t.Errorf("Expected the reference resolved from the outer options, got %d", seen)
		}
	})

	t.Run("MissingRef", func(t *testing.T) {
		catalog := render.Catalog{
			"out": {
				Defaults: render.Options{"width": render.Ref("borderWidth")},
				Generate: constant(nil),
			},
		}

		_, err := render.Outputs([]string{"out"}, nil, catalog, nil)
		if !errors.Is(err, render.MissingOptionError) {
			t.Errorf("Expected MissingOptionError, got %v", err)
		}
	})
}

func TestDefaultCatalog(t *testing.T) {
	flagsRaster := raster.New(4, 4, 1)
	original := raster.New(4, 4, 4)
	changed := raster.New(4, 4, 4)

	seed := map[string]*raster.Raster{
		render.SeedFlags:    flagsRaster,
		render.SeedOriginal: original,
		render.SeedChanged:  changed,
	}

	outputs, err := render.Outputs([]string{render.OutComposite}, seed, render.DefaultCatalog(), nil)
	if err != nil {
		t.Fatal(err)
	}

	composite := outputs[render.OutComposite]
	if composite == nil {
		t.Fatal("Expected a composite raster")
	}
	if composite.Width != 4 || composite.Height != 4 || composite.Channels != 4 {
		t.Errorf("Expected a 4x4 RGBA composite, got %dx%dx%d", composite.Width, composite.Height, composite.Channels)
	}
}
