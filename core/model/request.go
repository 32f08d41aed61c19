package model

import "time"

// Target is an equatorial coordinate pair for the object to observe.
// Right ascension is in hours, declination in degrees (J2000).
type Target struct {
	RAHours float64 `json:"ra_hours" yaml:"ra_hours"`
	DecDeg  float64 `json:"dec_deg" yaml:"dec_deg"`
}

// Request describes one observation to place on the network. It is
// immutable once handed to the planner.
type Request struct {
	ID       string        `json:"id" yaml:"id"`
	Target   *Target       `json:"target,omitempty" yaml:"target,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	// Priority is the weight contributed to the objective when the
	// request is scheduled. Must be positive when set; when zero the
	// band/completion metric is used instead.
	Priority float64 `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Band and Completion feed the piecewise priority metric used when
	// no explicit Priority is supplied. Band is "1".."4".
	Band       string  `json:"band,omitempty" yaml:"band,omitempty"`
	Completion float64 `json:"completion,omitempty" yaml:"completion,omitempty"`

	// Earliest and Latest bound the occupied span when non-zero.
	Earliest time.Time `json:"earliest,omitempty" yaml:"earliest,omitempty"`
	Latest   time.Time `json:"latest,omitempty" yaml:"latest,omitempty"`

	// Requests sharing a non-empty ExclusionGroup may never overlap in
	// time, even across resources (e.g. the same physical target).
	ExclusionGroup string `json:"exclusion_group,omitempty" yaml:"exclusion_group,omitempty"`

	// MaxAirmass rejects placements where the target airmass exceeds the
	// limit at any covered slot. Zero disables the check.
	MaxAirmass float64 `json:"max_airmass,omitempty" yaml:"max_airmass,omitempty"`
}

// bandParams holds the piecewise metric coefficients per band, spread so
// that band ranges do not overlap.
type bandParams struct {
	m1, b1, m2, b2, xb float64
}

var bandMetric = buildBandMetric()

func buildBandMetric() map[string]bandParams {
	m2 := map[string]float64{"3": 1.0, "2": 6.0, "1": 20.0}
	const xb = 0.8
	params := map[string]bandParams{
		"4": {xb: xb},
	}
	b1 := 0.2
	for _, band := range []string{"3", "2", "1"} {
		b2 := b1 + 5.0 - m2[band]
		m1 := (m2[band]*xb + b2) / (xb * xb)
		params[band] = bandParams{m1: m1, b1: b1, m2: m2[band], b2: b2, xb: xb}
		b1 += m2[band]*1.0 + b2
	}
	return params
}

// EffectivePriority returns the objective weight for the request. An
// explicit Priority wins; otherwise the weight is derived from the band
// and completion fraction through the piecewise completion metric.
func (r Request) EffectivePriority() float64 {
	if r.Priority > 0 {
		return r.Priority
	}
	p, ok := bandMetric[r.Band]
	if !ok {
		return 0
	}
	c := r.Completion
	switch {
	case c <= 0:
		return 0
	case c < p.xb:
		return p.m1*c*c + p.b1
	case c < 1:
		return p.m2*c + p.b2 + p.b1
	default:
		return p.m2 + p.b2 + p.b1
	}
}

// HasWindow reports whether explicit earliest/latest bounds were supplied.
func (r Request) HasWindow() bool {
	return !r.Earliest.IsZero() || !r.Latest.IsZero()
}
