// Package geocode resolves street addresses to coordinates.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Geocoder looks up coordinates. Failures yield nil coordinates, never an error.
type Geocoder interface {
	Lookup(ctx context.Context, city, street, number string) (lat, lon *float64)
}

// Noop is used when no geocoding token is configured
type Noop struct{}

func (Noop) Lookup(context.Context, string, string, string) (*float64, *float64) { return nil, nil }

// Mapbox queries the Mapbox places API
type Mapbox struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewMapbox(baseURL, token string, timeout time.Duration) *Mapbox {
	return &Mapbox{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// New returns a Mapbox geocoder, or Noop when token is empty
func New(baseURL, token string, timeout time.Duration) Geocoder {
	if token == "" {
		return Noop{}
	}
	return NewMapbox(baseURL, token, timeout)
}

func (m *Mapbox) Lookup(ctx context.Context, city, street, number string) (*float64, *float64) {
	lat, lon, err := m.lookup(ctx, fmt.Sprintf("%s %s, %s", street, number, city))
	if err != nil {
		logrus.WithError(err).WithField("city", city).Warn("geocoding failed")
		return nil, nil
	}
	return lat, lon
}

func (m *Mapbox) lookup(ctx context.Context, address string) (*float64, *float64, error) {
	u := fmt.Sprintf("%s/%s.json?access_token=%s&limit=1",
		m.baseURL, url.PathEscape(address), url.QueryEscape(m.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("mapbox status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, err
	}

	// center is [lon, lat]
	center := gjson.GetBytes(body, "features.0.center")
	if !center.IsArray() || len(center.Array()) < 2 {
		return nil, nil, fmt.Errorf("no features for %q", address)
	}
	lon := center.Array()[0].Float()
	lat := center.Array()[1].Float()
	return &lat, &lon, nil
}
