package model

// Site locates a telescope on the ground and carries its pointing limits.
type Site struct {
	LatitudeDeg  float64 `json:"latitude_deg" yaml:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg" yaml:"longitude_deg"`
	// MinElevationDeg is the hard horizon limit. Targets below it are
	// never observable from this site.
	MinElevationDeg float64 `json:"min_elevation_deg" yaml:"min_elevation_deg"`
}

// Resource is a schedulable telescope. Capacity is the number of requests
// it can serve concurrently, normally 1.
type Resource struct {
	ID       string `json:"id" yaml:"id"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Site     *Site  `json:"site,omitempty" yaml:"site,omitempty"`

	// Availability masks out slots where the resource cannot observe
	// (dome closed, maintenance). A nil mask means available everywhere;
	// otherwise it must cover the whole slot grid.
	Availability []bool `json:"availability,omitempty" yaml:"availability,omitempty"`
}

// AvailableAt reports whether the resource can observe during slot s.
func (r Resource) AvailableAt(s int) bool {
	if r.Availability == nil {
		return true
	}
	if s < 0 || s >= len(r.Availability) {
		return false
	}
	return r.Availability[s]
}
