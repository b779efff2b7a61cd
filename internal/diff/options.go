package diff

import (
	"github.com/achronos0/diffmap/internal/diff/classify"
	"github.com/achronos0/diffmap/internal/diff/group"
	"github.com/achronos0/diffmap/internal/diff/render"
)

// Options is the one configuration struct for a diff invocation. Defaults
// are applied at this single construction boundary; the phases receive
// their sections verbatim.
type Options struct {
	Classify classify.Options
	Group    group.Options

	// MismatchMinPercent is the diff/all percentage at which a run stops
	// being "different" and becomes a "mismatch".
	MismatchMinPercent float64

	// Outputs are the render program names to produce. RenderOn is the
	// status allow-list that enables rendering at all; identical and
	// similar runs skip the render cost by default.
	Outputs  []string
	RenderOn []Status

	// Catalog and RenderOptions feed the render graph. A nil catalog uses
	// render.DefaultCatalog.
	Catalog       render.Catalog
	RenderOptions render.Options
}

func DefaultOptions() Options {
	return Options{
		Classify:           classify.DefaultOptions(),
		Group:              group.DefaultOptions(),
		MismatchMinPercent: 1.0,
		Outputs:            []string{render.OutComposite},
		RenderOn:           []Status{StatusDifferent, StatusMismatch},
	}
}

func (o Options) renderAllowed(s Status) bool {
	for _, allowed := range o.RenderOn {
		if s == allowed {
			return true
		}
	}
	return false
}
