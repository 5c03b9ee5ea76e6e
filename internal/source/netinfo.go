// Package source holds one adapter per upstream shape. Each adapter fetches
// a provider-specific payload (optionally through the response cache) and
// normalizes it into the uniform point model.
package source

import (
	"context"
	"fmt"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	"ChainPulse/internal/service/cache"
	xhttp "ChainPulse/pkg/http"
	xlogger "ChainPulse/pkg/logger"
)

// NetworkInfoSource polls the gateway network-info endpoint and emits the
// current block height as a single observation.
type NetworkInfoSource struct {
	key     string
	url     string
	client  *xhttp.Client
	cache   *cache.TTLCache
	ttl     time.Duration
	metrics drepo.Metrics
	logger  *xlogger.Logger
	now     func() time.Time
}

func NewNetworkInfoSource(key, url string, client *xhttp.Client, c *cache.TTLCache, ttl time.Duration, m drepo.Metrics, l *xlogger.Logger) *NetworkInfoSource {
	return &NetworkInfoSource{
		key:     key,
		url:     url,
		client:  client,
		cache:   c,
		ttl:     ttl,
		metrics: m,
		logger:  l,
		now:     time.Now,
	}
}

func (s *NetworkInfoSource) Series() string { return s.key }

// Fetch returns one point carrying the current block height. The raw info
// response is cached under this series' TTL class.
func (s *NetworkInfoSource) Fetch(ctx context.Context) ([]models.DataPoint, error) {
	cacheKey := "netinfo:" + s.key

	info, ok := cache.GetTyped[models.NetworkInfo](s.cache, cacheKey)
	if !ok {
		if err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    s.url,
		}, &info); err != nil {
			s.metrics.RecordError("netinfo")
			return nil, fmt.Errorf("network info %s: %w", s.key, err)
		}
		s.cache.Set(cacheKey, info, s.ttl)
		s.metrics.RecordFetch("netinfo", s.key)
	}

	s.metrics.RecordBlockHeight(info.Height)
	return []models.DataPoint{{Timestamp: s.now().UTC(), Count: info.Height}}, nil
}
