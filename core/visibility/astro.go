package visibility

import (
	"math"
	"time"

	"github.com/ogauthier/obsched/core/model"
)

const degToRad = math.Pi / 180.0

// j2000 is the standard epoch used for sidereal time.
var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// localSiderealHours returns the local apparent sidereal time at the given
// longitude, in hours [0, 24). The GMST polynomial is truncated to the
// linear term, accurate to well under a slot width for scheduling purposes.
func localSiderealHours(t time.Time, longitudeDeg float64) float64 {
	days := t.Sub(j2000).Hours() / 24.0
	gmst := 18.697374558 + 24.06570982441908*days
	lst := gmst + longitudeDeg/15.0
	lst = math.Mod(lst, 24.0)
	if lst < 0 {
		lst += 24.0
	}
	return lst
}

// AltitudeDeg returns the elevation of the target above the horizon as
// seen from the site at time t, in degrees.
func AltitudeDeg(target model.Target, site model.Site, t time.Time) float64 {
	lst := localSiderealHours(t, site.LongitudeDeg)
	haDeg := (lst - target.RAHours) * 15.0
	ha := haDeg * degToRad
	lat := site.LatitudeDeg * degToRad
	dec := target.DecDeg * degToRad

	sinAlt := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(ha)
	if sinAlt > 1 {
		sinAlt = 1
	} else if sinAlt < -1 {
		sinAlt = -1
	}
	return math.Asin(sinAlt) / degToRad
}

// Airmass returns the plane-parallel airmass sec(z) for the given
// altitude. Altitudes at or below the horizon map to +Inf.
func Airmass(altitudeDeg float64) float64 {
	if altitudeDeg <= 0 {
		return math.Inf(1)
	}
	return 1.0 / math.Sin(altitudeDeg*degToRad)
}
