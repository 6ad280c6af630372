package util

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/twpayne/go-polyline"
)

var (
	rgxFeetInches = regexp.MustCompile(`^(\d+)'\s*(\d+)"?$`)
	rgxMeasure    = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-zA-Z"']*)$`)
)

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// DecodeRoute decodes an encoded polyline into a slice of [lat, lon] pairs.
func DecodeRoute(shape string) ([][]float64, error) {
	decoded, _, err := polyline.DecodeCoords([]byte(shape))
	if err != nil {
		log.Println("error decoding route polyline: ", err)
		return nil, fmt.Errorf("failed to decode polyline %w", err)
	}
	return decoded, nil
}

// ParseHeightCM normalizes a free-text height descriptor to centimeters.
//
// Unit suffixes (cm, m, ft, in, 5'8" notation) always win. Bare numbers fall
// back to range detection: values up to 10 are read as feet, values up to 100
// as inches, anything larger as centimeters. The ranges are heuristic and
// occasionally ambiguous on purpose; they match how historical records were
// interpreted and must not be tightened without product sign-off.
func ParseHeightCM(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return 0, false
	}

	if m := rgxFeetInches.FindStringSubmatch(s); m != nil {
		feet, _ := strconv.ParseFloat(m[1], 64)
		inches, _ := strconv.ParseFloat(m[2], 64)
		return feet*30.48 + inches*2.54, true
	}

	m := rgxMeasure.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}

	switch unit := strings.Trim(m[2], `."`); unit {
	case "cm", "centimeter", "centimeters":
		return value, true
	case "m", "meter", "meters":
		return value * 100, true
	case "ft", "feet", "foot", "'":
		return value * 30.48, true
	case "in", "inch", "inches":
		return value * 2.54, true
	case "":
		// Range heuristic for bare numbers.
		switch {
		case value <= 10:
			return value * 30.48, true
		case value <= 100:
			return value * 2.54, true
		default:
			return value, true
		}
	default:
		return 0, false
	}
}

// ParseWeightKG normalizes a free-text weight descriptor to kilograms.
// Suffixes win; bare numbers above 130 are read as pounds, the rest as
// kilograms. Same caveat as ParseHeightCM: heuristic by design of record.
func ParseWeightKG(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return 0, false
	}

	m := rgxMeasure.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}

	switch m[2] {
	case "kg", "kgs", "kilogram", "kilograms":
		return value, true
	case "lb", "lbs", "pound", "pounds":
		return value * 0.45359237, true
	case "":
		if value > 130 {
			return value * 0.45359237, true
		}
		return value, true
	default:
		return 0, false
	}
}

// AgeBucket maps an apparent age to the coarse display bucket used on
// sighting records.
func AgeBucket(age int) string {
	switch {
	case age < 0:
		return "unknown"
	case age <= 12:
		return "0-12"
	case age <= 17:
		return "13-17"
	case age <= 25:
		return "18-25"
	case age <= 40:
		return "26-40"
	case age <= 60:
		return "41-60"
	default:
		return "60+"
	}
}
