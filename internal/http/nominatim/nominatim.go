package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var ErrNoResult = errors.New("no geocoding result for address")

// Coordinates is a geocoded point.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// NominatimClient handles communication with the Nominatim geocoding API.
// Results are cached in-process; the same address text geocodes often when
// sightings cluster around a location.
type NominatimClient struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	cache     *gocache.Cache
}

// NewNominatimClient creates a new geocoding client instance
func NewNominatimClient(baseURL, userAgent string) *NominatimClient {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimClient{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 10 * time.Second},
		cache:     gocache.New(24*time.Hour, time.Hour),
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves an address to coordinates. Failures here never block a
// save upstream; callers store the record without coordinates instead.
func (nc *NominatimClient) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResult
	}

	if cached, found := nc.cache.Get(strings.ToLower(address)); found {
		coords := cached.(Coordinates)
		return &coords, nil
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	fullURL := fmt.Sprintf("%s/search?%s", nc.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", nc.UserAgent)

	resp, err := nc.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("geocoding error: status %d for %q", resp.StatusCode, address)
		return nil, fmt.Errorf("geocoding API error: status %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var results []searchResult
	if err := json.Unmarshal(bodyBytes, &results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in response: %w", err)
	}

	coords := Coordinates{Latitude: lat, Longitude: lon}
	nc.cache.Set(strings.ToLower(address), coords, gocache.DefaultExpiration)
	return &coords, nil
}
