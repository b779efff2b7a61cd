// Package render produces the named visualization rasters of a diff run.
// Outputs are declared as programs in a catalog: each one names its
// dependencies and builds its raster from the already-resolved map, so a
// request pulls in exactly the chain it needs and every program runs at
// most once per invocation.
package render

import (
	"errors"

	"github.com/achronos0/diffmap/internal/raster"
	"golang.org/x/xerrors"
)

var (
	UnknownProgramError = errors.New("unknown program")
	MissingOptionError  = errors.New("missing option")
)

// Options are the settings one program generation runs with.
type Options map[string]any

// Ref marks an option value to be looked up in the caller's outer options
// at invocation time instead of being used literally.
type Ref string

// Program is one named output recipe. Deps may name other programs or
// seeded rasters. Generate receives every raster resolved so far plus its
// merged options, and must not mutate its inputs.
type Program struct {
	Deps     []string
	Defaults Options
	Generate func(resolved map[string]*raster.Raster, opts Options) (*raster.Raster, error)
}

// Catalog is the closed registry of programs available to one invocation.
// Programs form a dependency DAG; a cycle is a caller error and is not
// detected.
type Catalog map[string]Program

// Outputs resolves the requested names depth-first against the catalog.
// The seed map pre-resolves the rasters the orchestrator supplies (at least
// "flags", "original" and "changed"); everything else must have a program.
func Outputs(names []string, seed map[string]*raster.Raster, catalog Catalog, outer Options) (map[string]*raster.Raster, error) {
	resolved := make(map[string]*raster.Raster, len(seed)+len(names))
	for name, r := range seed {
		resolved[name] = r
	}

	outputs := make(map[string]*raster.Raster, len(names))
	for _, name := range names {
		r, err := resolve(name, resolved, catalog, outer)
		if err != nil {
			return nil, err
		}
		outputs[name] = r
	}
	return outputs, nil
}

func resolve(name string, resolved map[string]*raster.Raster, catalog Catalog, outer Options) (*raster.Raster, error) {
	if r, ok := resolved[name]; ok {
		return r, nil
	}

	program, ok := catalog[name]
	if !ok {
		return nil, xerrors.Errorf("nothing generates %q: %w", name, UnknownProgramError)
	}

	for _, dep := range program.Deps {
		if _, err := resolve(dep, resolved, catalog, outer); err != nil {
			return nil, xerrors.Errorf("failed to resolve dependency %q of %q: %w", dep, name, err)
		}
	}

	opts, err := mergeOptions(program.Defaults, outer)
	if err != nil {
		return nil, xerrors.Errorf("failed to merge options for %q: %w", name, err)
	}

	r, err := program.Generate(resolved, opts)
	if err != nil {
		return nil, xerrors.Errorf("failed to generate %q: %w", name, err)
	}
	resolved[name] = r
	return r, nil
}

// mergeOptions lays the outer options over the program defaults, then
// substitutes any Ref values from the outer options.
func mergeOptions(defaults Options, outer Options) (Options, error) {
	merged := make(Options, len(defaults)+len(outer))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range outer {
		merged[key] = value
	}

	for key, value := range merged {
		ref, ok := value.(Ref)
		if !ok {
			continue
		}
		substituted, ok := outer[string(ref)]
		if !ok {
			return nil, xerrors.Errorf("option %q references absent outer option %q: %w", key, string(ref), MissingOptionError)
		}
		merged[key] = substituted
	}
	return merged, nil
}

// Float reads a float64 option, falling back when absent or mistyped.
func Float(opts Options, key string, fallback float64) float64 {
	if v, ok := opts[key].(float64); ok {
		return v
	}
	return fallback
}

// Int reads an int option, falling back when absent or mistyped.
func Int(opts Options, key string, fallback int) int {
	if v, ok := opts[key].(int); ok {
		return v
	}
	return fallback
}
