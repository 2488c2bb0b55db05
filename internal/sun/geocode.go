package sun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Location is a named point on earth.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// Resolver turns a city name into coordinates. A pre-configured location
// short-circuits everything; otherwise the persistent geocache is
// consulted before falling back to Nominatim.
type Resolver struct {
	preset     *Location
	cache      *Geocache
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewResolver creates a resolver that geocodes through Nominatim.
// cache may be nil.
func NewResolver(timeout time.Duration, cache *Geocache, logger zerolog.Logger) *Resolver {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		cache:      cache,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// NewFixedResolver creates a resolver pinned to known coordinates,
// avoiding external geocoding calls entirely.
func NewFixedResolver(name string, lat, lon float64, logger zerolog.Logger) *Resolver {
	return &Resolver{
		preset: &Location{Name: name, Latitude: lat, Longitude: lon},
		logger: logger,
	}
}

// Resolve returns coordinates for a location name.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Location, error) {
	if r.preset != nil {
		return r.preset, nil
	}

	if r.cache != nil {
		if loc, ok := r.cache.Get(name); ok {
			return loc, nil
		}
	}

	loc, err := r.geocode(ctx, name)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Put(name, loc)
	}

	return loc, nil
}

func (r *Resolver) geocode(ctx context.Context, name string) (*Location, error) {
	apiURL := fmt.Sprintf("https://nominatim.openstreetmap.org/search?q=%s&format=json&limit=1",
		url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "sundial/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("location not found: %s", name)
	}

	var lat, lon float64
	fmt.Sscanf(results[0].Lat, "%f", &lat)
	fmt.Sscanf(results[0].Lon, "%f", &lon)

	loc := &Location{
		Name:      results[0].DisplayName,
		Latitude:  lat,
		Longitude: lon,
	}

	r.logger.Info().
		Str("query", name).
		Str("resolved", loc.Name).
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("Location geocoded via Nominatim")

	return loc, nil
}
