package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"ChainPulse/internal/domain/models"
	drepo "ChainPulse/internal/domain/repository"
	"ChainPulse/internal/service/cache"
	xhttp "ChainPulse/pkg/http"
	xlogger "ChainPulse/pkg/logger"
	"ChainPulse/pkg/util"
)

// tagMessageRequest is the read-only evaluation request sent to a process on
// the compute endpoint.
type tagMessageRequest struct {
	Target string         `json:"Target"`
	Tags   []tagNameValue `json:"Tags"`
}

type tagNameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type tagMessage struct {
	Tags []tagNameValue `json:"Tags"`
	Data string         `json:"Data"`
}

type tagMessageResponse struct {
	Messages []tagMessage `json:"Messages"`
}

// tagClient posts a tag-encoded evaluation request and extracts the value of
// the expected data tag from the first message. It is shared by the count and
// category adapters.
type tagClient struct {
	url     string
	process string
	action  string
	dataTag string
	client  *xhttp.Client
	cache   *cache.TTLCache
	ttl     time.Duration
	metrics drepo.Metrics
}

func (t *tagClient) payload(ctx context.Context, series string) (string, error) {
	cacheKey := "tagmsg:" + series

	if raw, ok := cache.GetTyped[string](t.cache, cacheKey); ok {
		return raw, nil
	}

	req := tagMessageRequest{
		Target: t.process,
		Tags:   []tagNameValue{{Name: "Action", Value: t.action}},
	}
	var resp tagMessageResponse
	if err := t.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    t.url,
		Body:   req,
	}, &resp); err != nil {
		t.metrics.RecordError("tagmsg")
		return "", fmt.Errorf("tag message %s: %w", series, err)
	}
	if len(resp.Messages) == 0 {
		t.metrics.RecordError("tagmsg_empty")
		return "", fmt.Errorf("tag message %s: %w", series, ErrEmptyResult)
	}

	raw, ok := findTag(resp.Messages[0], t.dataTag)
	if !ok {
		t.metrics.RecordError("tagmsg_parse")
		return "", fmt.Errorf("tag message %s: tag %q: %w", series, t.dataTag, ErrMissingTag)
	}

	t.cache.Set(cacheKey, raw, t.ttl)
	t.metrics.RecordFetch("tagmsg", series)
	return raw, nil
}

// findTag looks the data tag up on the first message only; later messages
// are relay metadata.
func findTag(m tagMessage, name string) (string, bool) {
	for _, tag := range m.Tags {
		if tag.Name == name {
			return tag.Value, true
		}
	}
	return "", false
}

// TagCountSource reads a day-indexed count mapping from a process.
type TagCountSource struct {
	key    string
	tc     tagClient
	logger *xlogger.Logger
}

func NewTagCountSource(key, url, process, action, dataTag string, client *xhttp.Client, c *cache.TTLCache, ttl time.Duration, m drepo.Metrics, l *xlogger.Logger) *TagCountSource {
	return &TagCountSource{
		key: key,
		tc: tagClient{
			url: url, process: process, action: action, dataTag: dataTag,
			client: client, cache: c, ttl: ttl, metrics: m,
		},
		logger: l,
	}
}

func (s *TagCountSource) Series() string { return s.key }

func (s *TagCountSource) Fetch(ctx context.Context) ([]models.DataPoint, error) {
	raw, err := s.tc.payload(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return parseDayCounts(raw)
}

// TagCategorySource reads a day-indexed category breakdown from a process.
type TagCategorySource struct {
	key    string
	tc     tagClient
	logger *xlogger.Logger
}

func NewTagCategorySource(key, url, process, action, dataTag string, client *xhttp.Client, c *cache.TTLCache, ttl time.Duration, m drepo.Metrics, l *xlogger.Logger) *TagCategorySource {
	return &TagCategorySource{
		key: key,
		tc: tagClient{
			url: url, process: process, action: action, dataTag: dataTag,
			client: client, cache: c, ttl: ttl, metrics: m,
		},
		logger: l,
	}
}

func (s *TagCategorySource) Series() string { return s.key }

func (s *TagCategorySource) Fetch(ctx context.Context) ([]models.CategoryPoint, error) {
	raw, err := s.tc.payload(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return parseDayCategories(raw)
}

// parseDayCounts decodes {"<dayNumber>": <count>, ...} into points at the
// UTC midnight of each day.
func parseDayCounts(raw string) ([]models.DataPoint, error) {
	var m map[string]int64
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("day counts: %w", err)
	}

	out := make([]models.DataPoint, 0, len(m))
	for k, v := range m {
		day, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("day counts: key %q: %w", k, err)
		}
		out = append(out, models.DataPoint{Timestamp: util.DayNumberTime(day), Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// parseDayCategories decodes {"<dayNumber>": {"low":..,"medium":..}, ...}.
// Categories a day omits decode as zero; that defaulting belongs here, not
// in the renderer.
func parseDayCategories(raw string) ([]models.CategoryPoint, error) {
	var m map[string]struct {
		Low    int64 `json:"low"`
		Medium int64 `json:"medium"`
		High   int64 `json:"high"`
		Total  int64 `json:"total"`
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("day categories: %w", err)
	}

	out := make([]models.CategoryPoint, 0, len(m))
	for k, v := range m {
		day, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("day categories: key %q: %w", k, err)
		}
		out = append(out, models.CategoryPoint{
			Timestamp: util.DayNumberTime(day),
			Low:       v.Low,
			Medium:    v.Medium,
			High:      v.High,
			Total:     v.Total,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
