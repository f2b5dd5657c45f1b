package geo

import (
	"math"

	"github.com/shopspring/decimal"
)

// EarthRadiusMeters is the mean radius used by the haversine formula.
const EarthRadiusMeters = 6371000

// Distances above this many meters are displayed in kilometers.
const kilometerThreshold = 1000

type Unit string

const (
	UnitMeters     Unit = "m"
	UnitKilometers Unit = "km"
)

// Distance is a great-circle distance. It always holds meters; unit switching
// only happens in Reading.
type Distance struct {
	meters float64
}

// FromMeters wraps a raw meter value.
func FromMeters(m float64) Distance {
	return Distance{meters: m}
}

// Between returns the haversine distance between two coordinates given in
// decimal degrees.
func Between(lat1, lon1, lat2, lon2 float64) Distance {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return Distance{meters: EarthRadiusMeters * c}
}

// Raw returns the unrounded distance in meters.
func (d Distance) Raw() float64 {
	return d.meters
}

// Meters returns the distance in meters rounded to 2 decimals.
func (d Distance) Meters() decimal.Decimal {
	return decimal.NewFromFloat(d.meters).Round(2)
}

// Exceeds reports whether the distance, in meters, is strictly greater than
// the tolerance.
func (d Distance) Exceeds(toleranceMeters float64) bool {
	return d.Meters().GreaterThan(decimal.NewFromFloat(toleranceMeters))
}

// Reading is the display form of a Distance.
type Reading struct {
	Value decimal.Decimal
	Unit  Unit
}

// Reading switches to kilometers once the distance is above 1000 m. Both
// branches round to 2 decimals.
func (d Distance) Reading() Reading {
	if d.meters > kilometerThreshold {
		return Reading{
			Value: decimal.NewFromFloat(d.meters).Div(decimal.NewFromInt(1000)).Round(2),
			Unit:  UnitKilometers,
		}
	}
	return Reading{
		Value: d.Meters(),
		Unit:  UnitMeters,
	}
}

func (r Reading) String() string {
	return r.Value.StringFixed(2) + " " + string(r.Unit)
}

// ValidLatitude reports whether lat is within -90..90.
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is within -180..180.
func ValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}
