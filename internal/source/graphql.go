package source

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	"ChainPulse/internal/service/cache"
	xhttp "ChainPulse/pkg/http"
	xlogger "ChainPulse/pkg/logger"
	"ChainPulse/pkg/util"
)

// Chunked batch policy for the transaction index: periods are submitted in
// fixed-size groups with a fixed pause between groups. This is deliberate
// backpressure against the upstream rate limit, not a tuning knob.
const (
	batchChunkSize  = 5
	batchChunkDelay = 100 * time.Millisecond
)

type graphqlRequest struct {
	Query string `json:"query"`
}

// The data object is keyed by the queried entity name, so it decodes as a map.
type graphqlResponse struct {
	Data map[string]struct {
		Count int64 `json:"count"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GraphQLCountSource polls a transaction index for per-period counts.
type GraphQLCountSource struct {
	key          string
	url          string
	entity       string
	lookbackDays int
	client       *xhttp.Client
	cache        *cache.TTLCache
	ttl          time.Duration
	metrics      drepo.Metrics
	logger       *xlogger.Logger
	now          func() time.Time
	sleep        func(time.Duration)
}

func NewGraphQLCountSource(key, url, entity string, lookbackDays int, client *xhttp.Client, c *cache.TTLCache, ttl time.Duration, m drepo.Metrics, l *xlogger.Logger) *GraphQLCountSource {
	return &GraphQLCountSource{
		key:          key,
		url:          url,
		entity:       entity,
		lookbackDays: lookbackDays,
		client:       client,
		cache:        c,
		ttl:          ttl,
		metrics:      m,
		logger:       l,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

func (s *GraphQLCountSource) Series() string { return s.key }

// Fetch counts transactions for each trailing UTC day up to now.
func (s *GraphQLCountSource) Fetch(ctx context.Context) ([]models.DataPoint, error) {
	periods := DayPeriods(s.now(), s.lookbackDays)
	return s.FetchPeriods(ctx, periods), nil
}

// FetchPeriods resolves every period to a point. Periods inside one chunk run
// concurrently; chunks are submitted strictly sequentially with the mandated
// delay, and no delay follows the final chunk. A failed period becomes a
// zero-count point and is logged, never aborting the batch.
func (s *GraphQLCountSource) FetchPeriods(ctx context.Context, periods []models.Period) []models.DataPoint {
	out := make([]models.DataPoint, len(periods))

	for start := 0; start < len(periods); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(periods) {
			end = len(periods)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p := periods[i]
				count, err := s.countInPeriod(ctx, p)
				if err != nil {
					s.metrics.RecordError("graphql_period")
					s.logger.Warn("period fetch failed, recording zero",
						xlogger.String("series", s.key),
						xlogger.String("from", p.From.UTC().Format(time.RFC3339)),
						xlogger.Error(err))
					count = 0
				}
				out[i] = models.DataPoint{Timestamp: p.From, Count: count}
			}(i)
		}
		wg.Wait()

		if end < len(periods) {
			s.sleep(batchChunkDelay)
		}
	}

	return out
}

func (s *GraphQLCountSource) countInPeriod(ctx context.Context, p models.Period) (int64, error) {
	cacheKey := "graphql:" + s.key + ":" + strconv.FormatInt(p.From.Unix(), 10)
	if v, ok := cache.GetTyped[int64](s.cache, cacheKey); ok {
		return v, nil
	}

	query := fmt.Sprintf(
		`query { %s(ingested_at: {min: %d, max: %d}) { count } }`,
		s.entity, p.From.Unix(), p.To.Unix(),
	)

	var resp graphqlResponse
	if err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.url,
		Body:   graphqlRequest{Query: query},
	}, &resp); err != nil {
		return 0, fmt.Errorf("graphql %s: %w", s.key, err)
	}
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("graphql %s: %s", s.key, resp.Errors[0].Message)
	}
	entry, ok := resp.Data[s.entity]
	if !ok {
		return 0, fmt.Errorf("graphql %s: %w", s.key, ErrEmptyResult)
	}

	count := entry.Count
	s.cache.Set(cacheKey, count, s.periodTTL(p))
	s.metrics.RecordFetch("graphql", s.key)
	return count, nil
}

// periodTTL picks the TTL class: closed historical days are stable, the
// still-open current day expires on the series' own class.
func (s *GraphQLCountSource) periodTTL(p models.Period) time.Duration {
	if util.SameUTCDay(p.From, s.now()) {
		return s.ttl
	}
	return cache.TTLStable
}

// DayPeriods returns the trailing whole UTC days ending at now's day, oldest
// first. The current day's period is clipped at now.
func DayPeriods(now time.Time, days int) []models.Period {
	today := util.MidnightUTC(now)
	out := make([]models.Period, 0, days)
	for i := days - 1; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		to := from.AddDate(0, 0, 1)
		if to.After(now) {
			to = now.UTC()
		}
		out = append(out, models.Period{From: from, To: to})
	}
	return out
}
