package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"socialhub/internal/config"
)

// Location is the best-effort result of an IP lookup. Absence of data and
// lookup failure look identical to callers: (Location{}, false).
type Location struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
}

type Resolver interface {
	Resolve(ctx context.Context, ip string) (Location, bool)
}

type NoopResolver struct{}

func (NoopResolver) Resolve(ctx context.Context, ip string) (Location, bool) {
	return Location{}, false
}

// HTTPResolver queries an ip-api style JSON endpoint with a hard timeout.
// It must never slow down or fail the authentication flow that triggered
// it.
type HTTPResolver struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

func NewResolver(cfg config.Config) Resolver {
	if !cfg.GeoIPEnabled {
		return NoopResolver{}
	}
	return &HTTPResolver{
		endpoint: strings.TrimRight(strings.TrimSpace(cfg.GeoIPEndpoint), "/"),
		timeout:  cfg.GeoIPTimeout(),
		client:   &http.Client{Timeout: cfg.GeoIPTimeout()},
	}
}

type lookupResponse struct {
	Status     string `json:"status"`
	City       string `json:"city"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
}

func (r *HTTPResolver) Resolve(ctx context.Context, ip string) (Location, bool) {
	ip = strings.TrimSpace(ip)
	if ip == "" || net.ParseIP(ip) == nil {
		return Location{}, false
	}
	if parsed := net.ParseIP(ip); parsed.IsLoopback() || parsed.IsPrivate() {
		return Location{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.endpoint, ip), nil)
	if err != nil {
		return Location{}, false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Location{}, false
	}
	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Location{}, false
	}
	if out.Status != "" && !strings.EqualFold(out.Status, "success") {
		return Location{}, false
	}
	loc := Location{City: out.City, Country: out.Country, Region: out.RegionName}
	if loc == (Location{}) {
		return Location{}, false
	}
	return loc, true
}
