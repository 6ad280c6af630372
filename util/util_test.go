package util

import (
	"testing"
)

func TestParseHeightCM(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"Explicit cm", "178cm", 178, true},
		{"Explicit cm spaced", "178 cm", 178, true},
		{"Explicit meters", "1.8m", 180, true},
		{"Explicit feet", "6ft", 182.88, true},
		{"Feet and inches", `5'8"`, 172.72, true},
		{"Explicit inches", "70in", 177.8, true},
		{"Bare small number reads as feet", "5", 152.4, true},
		{"Bare mid number reads as inches", "70", 177.8, true},
		{"Bare large number reads as cm", "178", 178, true},
		{"Garbage", "tall-ish", 0, false},
		{"Empty", "", 0, false},
		{"Zero", "0", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := ParseHeightCM(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseHeightCM(%q) ok = %v; want %v", tc.input, ok, tc.ok)
			}
			if ok && (result < tc.expected-0.01 || result > tc.expected+0.01) {
				t.Errorf("ParseHeightCM(%q) = %v; want %v", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseWeightKG(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"Explicit kg", "82kg", 82, true},
		{"Explicit pounds", "180lbs", 81.646, true},
		{"Bare number reads as kg", "82", 82, true},
		{"Bare large number reads as lb", "180", 81.646, true},
		{"Garbage", "heavy", 0, false},
		{"Unknown unit", "12 stone", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, ok := ParseWeightKG(tc.input)
			if ok != tc.ok {
				t.Fatalf("ParseWeightKG(%q) ok = %v; want %v", tc.input, ok, tc.ok)
			}
			if ok && (result < tc.expected-0.01 || result > tc.expected+0.01) {
				t.Errorf("ParseWeightKG(%q) = %v; want %v", tc.input, result, tc.expected)
			}
		})
	}
}

func TestAgeBucket(t *testing.T) {
	testCases := []struct {
		age      int
		expected string
	}{
		{-1, "unknown"},
		{4, "0-12"},
		{13, "13-17"},
		{21, "18-25"},
		{33, "26-40"},
		{55, "41-60"},
		{72, "60+"},
	}

	for _, tc := range testCases {
		if got := AgeBucket(tc.age); got != tc.expected {
			t.Errorf("AgeBucket(%d) = %q; want %q", tc.age, got, tc.expected)
		}
	}
}

func TestDecodeRoute(t *testing.T) {
	encoded := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	coords, err := DecodeRoute(encoded)
	if err != nil {
		t.Fatalf("Decoding returned error %v", err)
	}
	if len(coords) != 3 {
		t.Fatalf("expected 3 coordinates, got %d", len(coords))
	}
	if coords[0][0] != 38.5 || coords[0][1] != -120.2 {
		t.Errorf("unexpected first coordinate %v", coords[0])
	}
}

func TestDecodeRouteInvalid(t *testing.T) {
	if _, err := DecodeRoute("not a polyline \x01"); err == nil {
		t.Error("expected error for invalid polyline")
	}
}
