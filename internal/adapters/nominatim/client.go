package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/pkg/metrics"
)

// Config configures a Client.
type Config struct {
	BaseURL          string
	UserAgent        string
	AcceptLanguage   string
	ResultsLimit     int
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client talks to a Nominatim /search endpoint. It implements both
// ports.Geocoder and ports.BoundaryProvider.
type Client struct {
	cfg  Config
	http *http.Client
	cb   *gobreaker.CircuitBreaker[[]byte]
}

// place is one entry of a Nominatim JSON response.
type place struct {
	PlaceID     int64           `json:"place_id"`
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	Class       string          `json:"class"`
	Type        string          `json:"type"`
	Importance  float64         `json:"importance"`
	BoundingBox []string        `json:"boundingbox"`
	GeoJSON     json.RawMessage `json:"geojson"`
}

// New creates a client with its own circuit breaker.
func New(cfg Config) *Client {
	if cfg.ResultsLimit <= 0 {
		cfg.ResultsLimit = 5
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A lookup abandoned by its caller says nothing about Nominatim.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				metrics.GeocoderBreakerOpen.Set(1)
			} else {
				metrics.GeocoderBreakerOpen.Set(0)
			}
		},
	})
	return c
}

// Geocode returns up to ResultsLimit candidate places for query.
func (c *Client) Geocode(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(c.cfg.ResultsLimit))

	places, err := c.search(ctx, "geocode", q)
	if err != nil {
		return nil, err
	}

	results := make([]domain.GeocodeResult, 0, len(places))
	for _, p := range places {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		results = append(results, domain.GeocodeResult{
			DisplayName: p.DisplayName,
			Lat:         lat,
			Lon:         lon,
			Type:        p.Type,
			Class:       p.Class,
			Importance:  p.Importance,
		})
	}
	return results, nil
}

// FetchBoundary returns the first result for place that carries a polygon
// outline. Results that resolve to a point or line are skipped; if none is
// left the lookup fails with domain.ErrBoundaryNotFound.
func (c *Client) FetchBoundary(ctx context.Context, placeName string) (*domain.Boundary, error) {
	q := url.Values{}
	q.Set("q", placeName)
	q.Set("format", "json")
	q.Set("polygon_geojson", "1")
	q.Set("limit", strconv.Itoa(c.cfg.ResultsLimit))

	places, err := c.search(ctx, "boundary", q)
	if err != nil {
		return nil, err
	}

	for _, p := range places {
		if len(p.GeoJSON) == 0 {
			continue
		}
		g, err := geojson.UnmarshalGeometry(p.GeoJSON)
		if err != nil {
			continue
		}
		geom := g.Geometry()
		switch geom.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}

		b := &domain.Boundary{DisplayName: p.DisplayName, Geometry: geom}
		if bb, ok := parseBoundingBox(p.BoundingBox); ok {
			b.BoundingBox = &bb
		} else {
			bb := domain.BoundsFromOrb(geom.Bound())
			b.BoundingBox = &bb
		}
		return b, nil
	}
	return nil, domain.ErrBoundaryNotFound
}

func (c *Client) search(ctx context.Context, operation string, q url.Values) ([]place, error) {
	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.get(ctx, "/search", q)
	})
	metrics.GeocoderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			metrics.GeocoderRequests.WithLabelValues(operation, "cancelled").Inc()
			return nil, fmt.Errorf("%s: %w", operation, ctx.Err())
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.GeocoderRequests.WithLabelValues(operation, "rejected").Inc()
			return nil, fmt.Errorf("%s: %w", operation, domain.ErrUpstreamUnavailable)
		}
		metrics.GeocoderRequests.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("%s: %w: %v", operation, domain.ErrUpstream, err)
	}
	metrics.GeocoderRequests.WithLabelValues(operation, "ok").Inc()

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w: %v", operation, domain.ErrUpstream, err)
	}
	return places, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("nominatim responded with %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}

// parseBoundingBox reads Nominatim's [minLat, maxLat, minLon, maxLon] strings.
func parseBoundingBox(bb []string) (domain.Bounds, bool) {
	if len(bb) != 4 {
		return domain.Bounds{}, false
	}
	var v [4]float64
	for i, s := range bb {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Bounds{}, false
		}
		v[i] = f
	}
	return domain.Bounds{MinLat: v[0], MaxLat: v[1], MinLon: v[2], MaxLon: v[3]}, true
}
