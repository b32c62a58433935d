// Package upstream calls the third-party APIs behind the /request routes:
// quotes, weather, city lookup and the picture of the day.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/deppfellow/go-productivity/internal/model/proxy"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// ErrUpstream marks any failure talking to a provider.
var ErrUpstream = errors.New("upstream unavailable")

// maxBodySize caps provider responses.
const maxBodySize = 1 << 20

type Client struct {
	http *http.Client
	cfg  config.IntegrationConfig
}

// NewClient builds a client whose requests show up as New Relic external
// segments when the context carries a transaction.
func NewClient(cfg config.IntegrationConfig) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   time.Duration(cfg.ProxyTimeout) * time.Second,
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		},
		cfg: cfg,
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return fmt.Errorf("%w: %s returned %d", ErrUpstream, req.URL.Host, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrUpstream, req.URL.Host, err)
	}
	return nil
}

func (c *Client) RandomQuote(ctx context.Context) (*proxy.Quote, error) {
	var body struct {
		Hitokoto string `json:"hitokoto"`
		From     string `json:"from"`
		FromWho  string `json:"from_who"`
	}
	if err := c.getJSON(ctx, c.cfg.QuoteURL, &body); err != nil {
		return nil, err
	}
	if body.Hitokoto == "" {
		return nil, fmt.Errorf("%w: empty quote", ErrUpstream)
	}

	return &proxy.Quote{Content: body.Hitokoto, From: body.From, Author: body.FromWho}, nil
}

// qweatherURL builds a provider URL carrying the location and the API key.
func (c *Client) qweatherURL(base, path, location string) string {
	q := url.Values{}
	q.Set("location", location)
	q.Set("key", c.cfg.WeatherAPIKey)
	return strings.TrimRight(base, "/") + path + "?" + q.Encode()
}

// The weather provider reports failures in a "code" field with HTTP 200.
const qweatherOK = "200"

func (c *Client) Weather(ctx context.Context, location string) (*proxy.Weather, error) {
	var body struct {
		Code string          `json:"code"`
		Now  json.RawMessage `json:"now"`
	}
	if err := c.getJSON(ctx, c.qweatherURL(c.cfg.WeatherBaseURL, "/v7/weather/now", location), &body); err != nil {
		return nil, err
	}
	if body.Code != qweatherOK {
		return nil, fmt.Errorf("%w: weather provider code %s", ErrUpstream, body.Code)
	}

	return &proxy.Weather{Location: location, Now: body.Now}, nil
}

func (c *Client) CityInfo(ctx context.Context, location string) (*proxy.CityInfo, error) {
	var body struct {
		Code     string          `json:"code"`
		Location json.RawMessage `json:"location"`
	}
	if err := c.getJSON(ctx, c.qweatherURL(c.cfg.GeoBaseURL, "/v2/city/lookup", location), &body); err != nil {
		return nil, err
	}
	if body.Code != qweatherOK {
		return nil, fmt.Errorf("%w: geo provider code %s", ErrUpstream, body.Code)
	}

	return &proxy.CityInfo{Location: location, Cities: body.Location}, nil
}

// Picture returns today's image. Relative image URLs are resolved against
// the configured endpoint.
func (c *Client) Picture(ctx context.Context) (*proxy.Picture, error) {
	var body struct {
		Images []struct {
			URL       string `json:"url"`
			Title     string `json:"title"`
			Copyright string `json:"copyright"`
		} `json:"images"`
	}
	if err := c.getJSON(ctx, c.cfg.PictureURL, &body); err != nil {
		return nil, err
	}
	if len(body.Images) == 0 {
		return nil, fmt.Errorf("%w: no picture returned", ErrUpstream)
	}

	img := body.Images[0]
	base, err := url.Parse(c.cfg.PictureURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	ref, err := url.Parse(img.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad image url: %v", ErrUpstream, err)
	}

	return &proxy.Picture{
		URL:       base.ResolveReference(ref).String(),
		Title:     img.Title,
		Copyright: img.Copyright,
	}, nil
}
