package facility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("github.com/linnemanlabs/carepath/internal/facility")

// Public endpoints used when Config leaves them empty.
const (
	DefaultOverpassURL  = "https://overpass-api.de/api/interpreter"
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent    = "carepath/1.0"
)

const (
	searchLimit      = 5
	maxResponseBytes = 8 << 20
)

// Config configures the upstream services and client-side limits.
type Config struct {
	OverpassURL       string
	NominatimURL      string
	UserAgent         string
	RequestsPerSecond float64
	CacheTTL          time.Duration
	Timeout           time.Duration
}

// Hooks are optional callbacks used for metrics.
type Hooks struct {
	OnUpstream func(service string, duration float64, err error)
	OnCache    func(hit bool)
}

// Client queries Overpass and Nominatim. Both services share one token
// bucket, and answers are cached by normalised request.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	hooks      Hooks
}

// New creates a client. Zero Config fields take the package defaults.
func New(cfg Config, hooks Hooks) *Client {
	if cfg.OverpassURL == "" {
		cfg.OverpassURL = DefaultOverpassURL
	}
	if cfg.NominatimURL == "" {
		cfg.NominatimURL = DefaultNominatimURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:   gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		hooks:   hooks,
	}
}

type overpassResponse struct {
	Elements []struct {
		ID     int64    `json:"id"`
		Lat    *float64 `json:"lat"`
		Lon    *float64 `json:"lon"`
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// Nearby returns healthcare facilities within radius metres of (lat, lon).
func (c *Client) Nearby(ctx context.Context, lat, lon float64, radius int) ([]Place, error) {
	radius, err := ValidateNearby(lat, lon, radius)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("nearby:%.5f:%.5f:%d", lat, lon, radius)
	if places, ok := c.cached(key); ok {
		return places.([]Place), nil
	}

	ctx, span := tracer.Start(ctx, "facility.Nearby")
	defer span.End()
	span.SetAttributes(attribute.Int("carepath.facility.radius", radius))

	form := url.Values{"data": {overpassQuery(lat, lon, radius)}}
	body, err := c.do(ctx, "overpass", http.MethodPost, c.cfg.OverpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "overpass failed")
		return nil, err
	}

	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		err = &UpstreamError{Service: "overpass", Err: fmt.Errorf("unmarshal response: %w", err)}
		span.RecordError(err)
		span.SetStatus(codes.Error, "overpass decode failed")
		return nil, err
	}

	places := make([]Place, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		var pLat, pLon float64
		switch {
		case el.Lat != nil && el.Lon != nil:
			pLat, pLon = *el.Lat, *el.Lon
		case el.Center != nil:
			pLat, pLon = el.Center.Lat, el.Center.Lon
		default:
			continue
		}
		cat := categoryOf(el.Tags["amenity"])
		places = append(places, Place{
			ID:           el.ID,
			Name:         placeName(el.Tags, cat),
			Address:      formatAddress(el.Tags),
			Category:     cat,
			Lat:          pLat,
			Lon:          pLon,
			Phone:        el.Tags["phone"],
			Website:      el.Tags["website"],
			OpeningHours: el.Tags["opening_hours"],
		})
	}

	span.SetAttributes(attribute.Int("carepath.facility.places", len(places)))
	c.cache.SetDefault(key, places)
	return clonePlaces(places), nil
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search geocodes a free-text place name to at most five locations.
func (c *Client) Search(ctx context.Context, query string) ([]Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &InputError{Message: "Missing query parameter"}
	}

	key := "search:" + strings.ToLower(query)
	if locs, ok := c.cached(key); ok {
		return locs.([]Location), nil
	}

	ctx, span := tracer.Start(ctx, "facility.Search")
	defer span.End()

	u, err := url.Parse(c.cfg.NominatimURL)
	if err != nil {
		return nil, &UpstreamError{Service: "nominatim", Err: fmt.Errorf("invalid endpoint: %w", err)}
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(searchLimit))
	u.RawQuery = q.Encode()

	body, err := c.do(ctx, "nominatim", http.MethodGet, u.String(), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "nominatim failed")
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		err = &UpstreamError{Service: "nominatim", Err: fmt.Errorf("unmarshal response: %w", err)}
		span.RecordError(err)
		span.SetStatus(codes.Error, "nominatim decode failed")
		return nil, err
	}

	locs := make([]Location, 0, len(results))
	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		locs = append(locs, Location{Name: r.DisplayName, Lat: lat, Lon: lon})
	}

	c.cache.SetDefault(key, locs)
	return cloneLocations(locs), nil
}

// cached returns a copy of a cached answer.
func (c *Client) cached(key string) (any, bool) {
	v, ok := c.cache.Get(key)
	if c.hooks.OnCache != nil {
		c.hooks.OnCache(ok)
	}
	if !ok {
		return nil, false
	}
	switch v := v.(type) {
	case []Place:
		return clonePlaces(v), true
	case []Location:
		return cloneLocations(v), true
	}
	return nil, false
}

func clonePlaces(p []Place) []Place {
	out := make([]Place, len(p))
	copy(out, p)
	return out
}

func cloneLocations(l []Location) []Location {
	out := make([]Location, len(l))
	copy(out, l)
	return out
}

// do performs one rate-limited upstream call and returns the body of a 200.
func (c *Client) do(ctx context.Context, service, method, target string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Service: service, Err: fmt.Errorf("rate limit: %w", err)}
	}

	start := time.Now()
	out, err := c.roundTrip(ctx, method, target, body)
	if c.hooks.OnUpstream != nil {
		c.hooks.OnUpstream(service, time.Since(start).Seconds(), err)
	}
	if err != nil {
		return nil, &UpstreamError{Service: service, Err: err}
	}
	return out, nil
}

func (c *Client) roundTrip(ctx context.Context, method, target string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return respBody, nil
}

func overpassQuery(lat, lon float64, radius int) string {
	around := fmt.Sprintf("(around:%d,%s,%s)", radius,
		strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64))

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, amenity := range []string{"hospital", "pharmacy", "clinic", "doctors"} {
		for _, kind := range []string{"node", "way"} {
			fmt.Fprintf(&b, "  %s[\"amenity\"=%q]%s;\n", kind, amenity, around)
		}
	}
	b.WriteString(");\nout center;\n")
	return b.String()
}
