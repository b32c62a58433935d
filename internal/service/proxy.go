package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/deppfellow/go-productivity/internal/lib/upstream"
	"github.com/deppfellow/go-productivity/internal/model/proxy"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache lifetimes of the proxied responses. Quotes are never cached.
const (
	WeatherCacheTTL  = 10 * time.Minute
	CityInfoCacheTTL = 24 * time.Hour
	PictureCacheTTL  = time.Hour
)

const cachePrefix = "proxy:"

type upstreamClient interface {
	RandomQuote(ctx context.Context) (*proxy.Quote, error)
	Weather(ctx context.Context, location string) (*proxy.Weather, error)
	CityInfo(ctx context.Context, location string) (*proxy.CityInfo, error)
	Picture(ctx context.Context) (*proxy.Picture, error)
}

type ProxyService struct {
	client upstreamClient
	cache  *redis.Client
	logger *zerolog.Logger
}

// NewProxyService caches responses in cache; a nil cache disables caching.
func NewProxyService(client upstreamClient, cache *redis.Client, logger *zerolog.Logger) *ProxyService {
	return &ProxyService{client: client, cache: cache, logger: logger}
}

func (s *ProxyService) RandomQuote(ctx context.Context) (*proxy.Quote, error) {
	q, err := s.client.RandomQuote(ctx)
	return q, upstreamError(err)
}

func (s *ProxyService) Weather(ctx context.Context, location string) (*proxy.Weather, error) {
	return cached(ctx, s, "weather:"+cacheKey(location), WeatherCacheTTL, func() (*proxy.Weather, error) {
		return s.client.Weather(ctx, location)
	})
}

func (s *ProxyService) CityInfo(ctx context.Context, location string) (*proxy.CityInfo, error) {
	return cached(ctx, s, "city:"+cacheKey(location), CityInfoCacheTTL, func() (*proxy.CityInfo, error) {
		return s.client.CityInfo(ctx, location)
	})
}

func (s *ProxyService) Picture(ctx context.Context) (*proxy.Picture, error) {
	return cached(ctx, s, "picture", PictureCacheTTL, func() (*proxy.Picture, error) {
		return s.client.Picture(ctx)
	})
}

// cached serves key from Redis or fills it with fetch. Cache failures are
// logged and fall through to the provider.
func cached[T any](ctx context.Context, s *ProxyService, key string, ttl time.Duration, fetch func() (*T, error)) (*T, error) {
	log := logFrom(ctx, s.logger)
	key = cachePrefix + key

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return &v, nil
			}
			log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		case !errors.Is(err, redis.Nil):
			log.Warn().Err(err).Str("key", key).Msg("proxy cache read failed")
		}
	}

	v, err := fetch()
	if err != nil {
		return nil, upstreamError(err)
	}

	if s.cache != nil {
		data, err := json.Marshal(v)
		if err == nil {
			err = s.cache.Set(ctx, key, data, ttl).Err()
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("proxy cache write failed")
		}
	}

	return v, nil
}

func cacheKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

func upstreamError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, upstream.ErrUpstream) {
		return errs.NewBadGatewayError("Upstream service is unavailable", errs.Code("UPSTREAM_UNAVAILABLE"))
	}
	return err
}
