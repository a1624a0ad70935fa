package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedCoordinate is returned when a coordinate string cannot be
// parsed into a latitude/longitude pair.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

const earthRadiusMeters = 6371000

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// ParsePoint parses a "lat,lon" string into a Point.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q", ErrMalformedCoordinate, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q", ErrMalformedCoordinate, parts[1])
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// Distance computes the great-circle distance in meters between two
// "lat,lon" coordinate strings, rounded to two decimal places.
func Distance(a, b string) (float64, error) {
	pa, err := ParsePoint(a)
	if err != nil {
		return 0, err
	}
	pb, err := ParsePoint(b)
	if err != nil {
		return 0, err
	}
	return round2(haversine(pa, pb)), nil
}

// haversine returns the great-circle distance between two points in meters.
func haversine(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
