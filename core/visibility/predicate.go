package visibility

import (
	"time"

	"github.com/ogauthier/obsched/core/model"
)

// Predicate decides whether a request is physically observable on a
// resource at a given instant. Implementations must be safe for
// concurrent use; the evaluator calls them from multiple workers.
type Predicate interface {
	Visible(req model.Request, res model.Resource, t time.Time) bool
}

// PredicateFunc adapts a function to the Predicate interface.
type PredicateFunc func(req model.Request, res model.Resource, t time.Time) bool

// Visible calls f.
func (f PredicateFunc) Visible(req model.Request, res model.Resource, t time.Time) bool {
	return f(req, res, t)
}

// AltitudePredicate accepts a placement when the target sits above the
// site's elevation limit and, if the request sets one, under its airmass
// cap. Requests without a target and resources without a site always pass:
// they carry no geometry to check.
type AltitudePredicate struct{}

// Visible implements Predicate.
func (AltitudePredicate) Visible(req model.Request, res model.Resource, t time.Time) bool {
	if req.Target == nil || res.Site == nil {
		return true
	}
	alt := AltitudeDeg(*req.Target, *res.Site, t)
	if alt < res.Site.MinElevationDeg {
		return false
	}
	if req.MaxAirmass > 0 && Airmass(alt) > req.MaxAirmass {
		return false
	}
	return true
}

// Always accepts every placement. Useful for tests and for networks where
// visibility is encoded entirely in availability masks and windows.
type Always struct{}

// Visible implements Predicate.
func (Always) Visible(model.Request, model.Resource, time.Time) bool { return true }
