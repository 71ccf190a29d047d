package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"community-platform-backend/internal/logger"
)

// NominatimClient queries a Nominatim compatible search API
type NominatimClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *NominatimClient) Geocode(ctx context.Context, addr Address) (*Coordinates, error) {
	if addr.Empty() {
		return nil, nil
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("country", "Germany")
	if street := strings.TrimSpace(addr.Street + " " + addr.StreetNumber); street != "" {
		q.Set("street", street)
	}
	if addr.ZipCode != "" {
		q.Set("postalcode", addr.ZipCode)
	}
	if addr.City != "" {
		q.Set("city", addr.City)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	logger.ExternalServiceCall("Nominatim", "search", "address", addr.Key())
	resp, err := c.http.Do(req)
	if err != nil {
		logger.ExternalServiceResult("Nominatim", "search", err)
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("geocode request failed: status %d", resp.StatusCode)
		logger.ExternalServiceResult("Nominatim", "search", err)
		return nil, err
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		logger.ExternalServiceResult("Nominatim", "search", err)
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	logger.ExternalServiceResult("Nominatim", "search", nil, "results", len(results))
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}
	return &Coordinates{Latitude: lat, Longitude: lng}, nil
}
