package options

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/metrics"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/validation"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultCacheSize = 128
	defaultIDField   = "id"
	defaultValueKey  = "value"
)

// resultKeys are tried, in order, when the payload is an object and no
// results path is configured.
var resultKeys = []string{"data", "results", "items", "options"}

// HTTPFetcher loads option lists from JSON endpoints. Identical concurrent
// requests share one round trip and successful lists are kept in an LRU.
type HTTPFetcher struct {
	client      *http.Client
	resultsPath string
	idField     string
	valueField  string
	cacheSize   int
	cache       *lru.Cache[string, []model.Option]
	group       singleflight.Group
	logger      *zap.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client, which has a 10s timeout.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithResultsPath selects the list inside an object payload using a dotted
// path such as "data.items".
func WithResultsPath(path string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.resultsPath = path
	}
}

// WithFields names the keys holding the option id and display value.
func WithFields(idField, valueField string) HTTPOption {
	return func(f *HTTPFetcher) {
		if idField != "" {
			f.idField = idField
		}
		if valueField != "" {
			f.valueField = valueField
		}
	}
}

// WithCacheSize bounds the number of cached lists. Zero disables caching.
func WithCacheSize(size int) HTTPOption {
	return func(f *HTTPFetcher) {
		f.cacheSize = size
	}
}

// WithLogger reports fetch failures.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewHTTPFetcher returns a fetcher with the given options applied.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:     &http.Client{Timeout: defaultTimeout},
		idField:    defaultIDField,
		valueField: defaultValueKey,
		cacheSize:  defaultCacheSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.cacheSize > 0 {
		f.cache, _ = lru.New[string, []model.Option](f.cacheSize)
	}
	return f
}

// Fetch returns the options published at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]model.Option, error) {
	if f.cache != nil {
		if opts, ok := f.cache.Get(url); ok {
			metrics.OptionFetchTotal.WithLabelValues(metrics.OutcomeCached).Inc()
			return append([]model.Option(nil), opts...), nil
		}
	}

	v, err, _ := f.group.Do(url, func() (any, error) {
		return f.fetch(ctx, url)
	})
	if err != nil {
		metrics.OptionFetchTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		f.logger.Warn("option fetch failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	opts := v.([]model.Option)
	if f.cache != nil {
		f.cache.Add(url, opts)
	}
	metrics.OptionFetchTotal.WithLabelValues(metrics.OutcomeFetched).Inc()
	return append([]model.Option(nil), opts...), nil
}

// Purge drops every cached list.
func (f *HTTPFetcher) Purge() {
	if f.cache != nil {
		f.cache.Purge()
	}
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) ([]model.Option, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("options: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("options: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("options: unexpected status %d from %s", resp.StatusCode, url)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("options: decode: %w", err)
	}

	items, err := f.extractResults(payload)
	if err != nil {
		return nil, err
	}
	return f.toOptions(items), nil
}

func (f *HTTPFetcher) extractResults(payload any) ([]any, error) {
	cur := payload
	if f.resultsPath != "" {
		for _, segment := range strings.Split(f.resultsPath, ".") {
			node, ok := cur.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("options: results path %q not found", f.resultsPath)
			}
			cur = node[segment]
		}
	} else if obj, ok := cur.(map[string]any); ok {
		for _, key := range resultKeys {
			if list, ok := obj[key].([]any); ok {
				cur = list
				break
			}
		}
	}
	list, ok := cur.([]any)
	if !ok {
		return nil, fmt.Errorf("options: payload is not a list")
	}
	return list, nil
}

// toOptions maps payload items to options. Objects use the configured id and
// value keys; bare strings and objects without a usable id are numbered by
// position starting at 1.
func (f *HTTPFetcher) toOptions(items []any) []model.Option {
	opts := make([]model.Option, 0, len(items))
	used := make(map[int]struct{}, len(items))
	for i, item := range items {
		opt := model.Option{ID: i + 1}
		switch v := item.(type) {
		case map[string]any:
			if id, ok := validation.OptionID(pick(v, f.idField)); ok {
				opt.ID = id
			}
			opt.Value = stringValue(pick(v, f.valueField))
			if opt.Value == "" {
				opt.Value = stringValue(pick(v, f.idField))
			}
		case string:
			opt.Value = v
		default:
			if id, ok := validation.OptionID(v); ok {
				opt.ID = id
			}
			opt.Value = stringValue(v)
		}
		if opt.Value == "" {
			continue
		}
		if _, dup := used[opt.ID]; dup {
			continue
		}
		used[opt.ID] = struct{}{}
		opts = append(opts, opt)
	}
	return opts
}

func pick(m map[string]any, path string) any {
	var cur any = m
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[segment]
	}
	return cur
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
