// Package geo resolves device coordinates to a delivery address using
// a Nominatim-compatible reverse geocoder, and caches the result per
// customer with the address fields encrypted at rest.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	maxAttempts    = 3
	defaultBackoff = 500 * time.Millisecond
)

var ErrUnresolvable = errors.New("coordinates could not be resolved to an address")

// Address is the resolved delivery address shown on the order screen.
type Address struct {
	DisplayName string  `json:"display_name"`
	Road        string  `json:"road,omitempty"`
	Suburb      string  `json:"suburb,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Postcode    string  `json:"postcode,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type Resolver struct {
	baseURL string
	client  *http.Client
	backoff time.Duration
}

func NewResolver(baseURL string) (*Resolver, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid geocoder base url: %q", baseURL)
	}
	return &Resolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		backoff: defaultBackoff,
	}, nil
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		Road     string `json:"road"`
		Suburb   string `json:"suburb"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// Resolve reverse-geocodes the coordinates. Transient failures are
// retried with exponential backoff before giving up.
func (r *Resolver) Resolve(ctx context.Context, latitude, longitude float64) (*Address, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("coordinates out of range: %v, %v", latitude, longitude)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff << (attempt - 1)):
			}
		}

		address, retryable, err := r.lookup(ctx, latitude, longitude)
		if err == nil {
			return address, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("reverse geocoding failed after %d attempts: %w", maxAttempts, lastErr)
}

func (r *Resolver) lookup(ctx context.Context, latitude, longitude float64) (*Address, bool, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(latitude, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(longitude, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "farmgate/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if payload.Error != "" || payload.DisplayName == "" {
		return nil, false, ErrUnresolvable
	}

	city := payload.Address.City
	if city == "" {
		city = payload.Address.Town
	}
	if city == "" {
		city = payload.Address.Village
	}

	return &Address{
		DisplayName: payload.DisplayName,
		Road:        payload.Address.Road,
		Suburb:      payload.Address.Suburb,
		City:        city,
		State:       payload.Address.State,
		Postcode:    payload.Address.Postcode,
		Latitude:    latitude,
		Longitude:   longitude,
	}, false, nil
}
