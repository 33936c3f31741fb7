// Package facility finds nearby hospitals, pharmacies and clinics from
// OpenStreetMap data, and resolves place names to coordinates.
package facility

import (
	"fmt"
	"math"
	"strings"
)

// Category groups OSM amenity types.
type Category string

const (
	CategoryHospital Category = "hospital"
	CategoryPharmacy Category = "pharmacy"
	CategoryClinic   Category = "clinic"
)

// Search radius bounds in metres.
const (
	DefaultRadius = 5000
	MinRadius     = 100
	MaxRadius     = 50000
)

// AddressNotAvailable is shown when a place has no address tags.
const AddressNotAvailable = "Address not available"

// Place is one healthcare facility.
type Place struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Category     Category `json:"category"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Phone        string   `json:"phone"`
	Website      string   `json:"website"`
	OpeningHours string   `json:"opening_hours"`
}

// Location is a geocoding match.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// InputError reports a request rejected before any upstream call.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// UpstreamError reports a failed call to a map data service.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Service, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ValidateNearby checks coordinates and radius. Callers apply DefaultRadius
// when no radius was given; an explicit zero is out of range.
func ValidateNearby(lat, lon float64, radius int) (int, error) {
	// NaN compares false against both bounds
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, &InputError{Message: "Invalid coordinates"}
	}
	if radius < MinRadius || radius > MaxRadius {
		return 0, &InputError{Message: fmt.Sprintf("Radius must be between %d and %d meters", MinRadius, MaxRadius)}
	}
	return radius, nil
}

func categoryOf(amenity string) Category {
	switch amenity {
	case "hospital":
		return CategoryHospital
	case "pharmacy":
		return CategoryPharmacy
	default:
		return CategoryClinic
	}
}

// formatAddress joins the structured addr:* tags, falling back to addr:full.
func formatAddress(tags map[string]string) string {
	var parts []string
	for _, k := range []string{"addr:housenumber", "addr:street", "addr:city", "addr:postcode"} {
		if v := tags[k]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if full := tags["addr:full"]; full != "" {
		return full
	}
	return AddressNotAvailable
}

func placeName(tags map[string]string, c Category) string {
	if n := tags["name"]; n != "" {
		return n
	}
	s := string(c)
	return "Unnamed " + strings.ToUpper(s[:1]) + s[1:]
}
