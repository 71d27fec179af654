package geo

import "math"

// Lambert-93 (RGF93 / EPSG:2154) is the official French planar grid: a
// Lambert conformal conic projection with two standard parallels on the
// GRS80 ellipsoid. Over a single city the scale distortion is negligible,
// so projected distances can be read directly as meters.
const (
	grs80A  = 6378137.0         // semi-major axis
	grs80F  = 1 / 298.257222101 // flattening
	l93Lat1 = 44.0 * math.Pi / 180
	l93Lat2 = 49.0 * math.Pi / 180
	l93Lat0 = 46.5 * math.Pi / 180
	l93Lon0 = 3.0 * math.Pi / 180
	l93FE   = 700000.0  // false easting
	l93FN   = 6600000.0 // false northing
)

var (
	grs80E2 = 2*grs80F - grs80F*grs80F
	grs80E  = math.Sqrt(grs80E2)

	// Derived projection constants (EPSG 9802, two standard parallels).
	l93N    = (math.Log(lccM(l93Lat1)) - math.Log(lccM(l93Lat2))) / (math.Log(lccT(l93Lat1)) - math.Log(lccT(l93Lat2)))
	l93FF   = lccM(l93Lat1) / (l93N * math.Pow(lccT(l93Lat1), l93N))
	l93Rho0 = grs80A * l93FF * math.Pow(lccT(l93Lat0), l93N)
)

func lccM(phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-grs80E2*s*s)
}

func lccT(phi float64) float64 {
	s := math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-grs80E*s)/(1+grs80E*s), grs80E/2)
}

// Lambert93 projects a WGS-84 longitude/latitude (degrees) into Lambert-93
// east/north meters.
func Lambert93(lon, lat float64) Point {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180

	rho := grs80A * l93FF * math.Pow(lccT(phi), l93N)
	theta := l93N * (lam - l93Lon0)

	return Point{
		X: l93FE + rho*math.Sin(theta),
		Y: l93FN + l93Rho0 - rho*math.Cos(theta),
	}
}
