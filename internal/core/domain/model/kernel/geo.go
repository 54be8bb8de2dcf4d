package kernel

import (
	"errors"
	"fmt"
	"math"

	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/guard"
)

const (
	// MinLatitude and MaxLatitude bound valid latitudes in degrees.
	MinLatitude = -90.0
	// MaxLatitude is the northern latitude bound in degrees.
	MaxLatitude = 90.0
	// MinLongitude is the western longitude bound in degrees.
	MinLongitude = -180.0
	// MaxLongitude is the eastern longitude bound in degrees.
	MaxLongitude = 180.0

	// EarthRadiusKm is the sphere radius used by the haversine distance.
	EarthRadiusKm = 6371.0
)

// ErrGeoPointIsNotConstructed is returned when a zero-valued GeoPoint is used.
var ErrGeoPointIsNotConstructed = errs.NewInvalidInputError(
	"geo point must be created via NewGeoPoint")

// GeoPoint is an immutable geographic coordinate pair in decimal degrees.
// The zero value is invalid and fails Validate - use NewGeoPoint.
//
// Example:
//
//	pickup, err := kernel.NewGeoPoint(47.3769, 8.5417)
//	if err != nil {
//	    // Handle out-of-range coordinates
//	}
type GeoPoint struct {
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint after validating that lat is within
// [-90, 90] and lng within [-180, 180].
func NewGeoPoint(lat float64, lng float64) (GeoPoint, error) {
	if lat < MinLatitude || lat > MaxLatitude {
		return GeoPoint{}, errs.NewInvalidInputError(
			fmt.Sprintf("latitude %v is outside [%v, %v]", lat, MinLatitude, MaxLatitude))
	}
	if lng < MinLongitude || lng > MaxLongitude {
		return GeoPoint{}, errs.NewInvalidInputError(
			fmt.Sprintf("longitude %v is outside [%v, %v]", lng, MinLongitude, MaxLongitude))
	}

	return GeoPoint{
		lat:   lat,
		lng:   lng,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the GeoPoint was created through NewGeoPoint.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in decimal degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String implements fmt.Stringer.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%v,%v)", p.lat, p.lng)
}

// DistanceKm returns the great-circle distance to other in kilometers using
// the haversine formula on a sphere of EarthRadiusKm.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	const degToRad = math.Pi / 180
	lat1 := p.lat * degToRad
	lat2 := other.lat * degToRad
	dLat := (other.lat - p.lat) * degToRad
	dLng := (other.lng - p.lng) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c, nil
}

// BoundingBox is a latitude/longitude rectangle describing a drone's service
// area. A nil *BoundingBox on telemetry means "no restriction".
type BoundingBox struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// Contains reports whether the point lies inside the box, borders included.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return b.MinLat <= p.Lat() && p.Lat() <= b.MaxLat &&
		b.MinLng <= p.Lng() && p.Lng() <= b.MaxLng
}
