package model

import "errors"

var ErrBadCoordinates = errors.New("latitude and longitude must both be set and in range")

// Location holds the address fields of a case or sighting. Coordinates are
// optional; nil means the record has not been geocoded yet.
type Location struct {
	Address    string   `json:"address"`
	City       string   `json:"city"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postal_code"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether the location has been geocoded.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Validate enforces the both-or-neither coordinate invariant and the valid
// lat/lon ranges.
func (l Location) Validate() error {
	if l.Latitude == nil && l.Longitude == nil {
		return nil
	}
	if l.Latitude == nil || l.Longitude == nil {
		return ErrBadCoordinates
	}
	if *l.Latitude < -90 || *l.Latitude > 90 {
		return ErrBadCoordinates
	}
	if *l.Longitude < -180 || *l.Longitude > 180 {
		return ErrBadCoordinates
	}
	return nil
}

// SetCoordinates sets both coordinates at once.
func (l *Location) SetCoordinates(lat, lon float64) {
	l.Latitude = &lat
	l.Longitude = &lon
}
