package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/t0bias84/hagelskott/apiclient"
	"github.com/t0bias84/hagelskott/cache"
	"github.com/t0bias84/hagelskott/observe"
)

// API paths.
const (
	CategoriesPath           = "/api/forum/categories"
	CategoriesWithCountsPath = "/api/forum/categories-with-counts"
	HotThreadsPath           = "/api/forum/hot"
)

// Defaults for listing parameters.
const (
	DefaultLanguage = "sv"
	DefaultHotLimit = 10
)

// Requester performs API calls. *apiclient.Client implements it.
type Requester interface {
	Do(ctx context.Context, method, path string, body any, opts ...apiclient.RequestOption) (json.RawMessage, error)
}

var _ Requester = (*apiclient.Client)(nil)

// Listing is a list served by the cache layer.
type Listing[T any] struct {
	Items []T `json:"items" yaml:"items"`

	// FetchedAt is when the items were fetched from the API.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`

	// Stale is true when the refresh failed and Items is an earlier snapshot.
	Stale bool `json:"stale" yaml:"stale"`

	// Variant is the request variant the items were fetched for, such as
	// "language=sv". A stale listing may belong to another variant.
	Variant string `json:"variant,omitempty" yaml:"variant,omitempty"`
}

// Config configures a Service.
type Config struct {
	// Client performs the requests. Required.
	Client Requester

	// Loader caches listings. Default: a loader over a new MemoryStore.
	Loader *cache.Loader

	// Language is used when GetCategories is called with "". Default: "sv".
	Language string

	// HotLimit is used when GetHotThreads is called with limit <= 0. Default: 10.
	HotLimit int

	Logger  observe.Logger
	Metrics observe.CacheMetrics
}

// Service is the cache-aware forum API.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Ownership: each Service owns its cache; two services never share
//     entries unless they are given the same Loader or Redis store.
type Service struct {
	client   Requester
	loader   *cache.Loader
	language string
	hotLimit int
	logger   observe.Logger
}

// NewService creates a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	logger := observe.OrNop(cfg.Logger).With(observe.F("component", "forum"))
	if cfg.Loader == nil {
		loader, err := cache.NewLoader(cache.LoaderConfig{
			Store:   cache.NewMemoryStore(),
			Logger:  cfg.Logger,
			Metrics: cfg.Metrics,
		})
		if err != nil {
			return nil, err
		}
		cfg.Loader = loader
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.HotLimit <= 0 {
		cfg.HotLimit = DefaultHotLimit
	}
	return &Service{
		client:   cfg.Client,
		loader:   cfg.Loader,
		language: cfg.Language,
		hotLimit: cfg.HotLimit,
		logger:   logger,
	}, nil
}

// Loader returns the service's cache loader.
func (s *Service) Loader() *cache.Loader { return s.loader }

// GetCategories returns the categories with thread and post counts for
// language. A malformed payload yields an empty listing rather than an error.
func (s *Service) GetCategories(ctx context.Context, language string, forceRefresh bool) (Listing[Category], error) {
	if language == "" {
		language = s.language
	}
	req := cache.Request{Key: cache.KeyCategories, Variant: "language=" + language, Force: forceRefresh}

	res, err := s.loader.Load(ctx, req, func(ctx context.Context) (json.RawMessage, error) {
		opts := []apiclient.RequestOption{apiclient.WithQuery("language", language)}
		if forceRefresh {
			opts = append(opts, apiclient.WithQuery("refresh_cache", "true"))
		}
		return s.client.Do(ctx, http.MethodGet, CategoriesWithCountsPath, nil, opts...)
	})
	if err != nil {
		return Listing[Category]{}, err
	}

	items, err := DecodeCategories(res.Data)
	if err != nil {
		s.logger.Error(ctx, "malformed category list, showing none", observe.Err(err))
		items = []Category{}
	}
	return Listing[Category]{Items: items, FetchedAt: res.FetchedAt, Stale: res.Stale, Variant: res.Variant}, nil
}

// GetCategoryTree returns GetCategories linked into a hierarchy.
func (s *Service) GetCategoryTree(ctx context.Context, language string, forceRefresh bool) (Listing[*Category], error) {
	flat, err := s.GetCategories(ctx, language, forceRefresh)
	if err != nil {
		return Listing[*Category]{}, err
	}
	return Listing[*Category]{
		Items:     BuildTree(flat.Items, nil),
		FetchedAt: flat.FetchedAt,
		Stale:     flat.Stale,
		Variant:   flat.Variant,
	}, nil
}

// GetHotThreads returns up to limit trending threads.
func (s *Service) GetHotThreads(ctx context.Context, limit int, forceRefresh bool) (Listing[Thread], error) {
	if limit <= 0 {
		limit = s.hotLimit
	}
	lim := strconv.Itoa(limit)
	req := cache.Request{Key: cache.KeyHotThreads, Variant: "limit=" + lim, Force: forceRefresh}

	res, err := s.loader.Load(ctx, req, func(ctx context.Context) (json.RawMessage, error) {
		opts := []apiclient.RequestOption{apiclient.WithQuery("limit", lim)}
		if forceRefresh {
			opts = append(opts, apiclient.WithQuery("refresh_cache", "true"))
		}
		return s.client.Do(ctx, http.MethodGet, HotThreadsPath, nil, opts...)
	})
	if err != nil {
		return Listing[Thread]{}, err
	}

	items, err := DecodeThreads(res.Data)
	if err != nil {
		s.logger.Error(ctx, "malformed hot thread list, showing none", observe.Err(err))
		items = []Thread{}
	}
	return Listing[Thread]{Items: items, FetchedAt: res.FetchedAt, Stale: res.Stale, Variant: res.Variant}, nil
}

// InvalidateCache empties the entry for key. Idempotent.
func (s *Service) InvalidateCache(ctx context.Context, key cache.Key) error {
	return s.loader.Invalidate(ctx, key)
}

// Request performs any API call. A successful POST, PUT, PATCH or DELETE
// whose path contains CategoriesPath invalidates the categories entry.
func (s *Service) Request(ctx context.Context, method, path string, body any, opts ...apiclient.RequestOption) (json.RawMessage, error) {
	method = strings.ToUpper(method)
	data, err := s.client.Do(ctx, method, path, body, opts...)
	if err != nil {
		return nil, err
	}
	if invalidates(method, path) {
		if err := s.loader.Invalidate(ctx, cache.KeyCategories); err != nil {
			s.logger.Warn(ctx, "category cache invalidation failed", observe.Err(err))
		}
	}
	return data, nil
}

// GetCategory fetches one category. It is never cached.
func (s *Service) GetCategory(ctx context.Context, id ID) (*Category, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	data, err := s.Request(ctx, http.MethodGet, categoryPath(id), nil)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrEmptyResult
	}
	return decodeCategory(data)
}

// CreateCategory creates a category. The result is nil when the server
// answers without a body.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrEmptyName
	}
	data, err := s.Request(ctx, http.MethodPost, CategoriesPath, in)
	if err != nil {
		return nil, err
	}
	return decodeCategory(data)
}

// UpdateCategory replaces a category's fields.
func (s *Service) UpdateCategory(ctx context.Context, id ID, in CategoryInput) (*Category, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrEmptyName
	}
	data, err := s.Request(ctx, http.MethodPut, categoryPath(id), in)
	if err != nil {
		return nil, err
	}
	return decodeCategory(data)
}

// DeleteCategory deletes a category.
func (s *Service) DeleteCategory(ctx context.Context, id ID) error {
	if id == "" {
		return ErrEmptyID
	}
	_, err := s.Request(ctx, http.MethodDelete, categoryPath(id), nil)
	return err
}

func categoryPath(id ID) string {
	return CategoriesPath + "/" + url.PathEscape(string(id))
}

func invalidates(method, path string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return strings.Contains(path, CategoriesPath)
	default:
		return false
	}
}

func decodeCategory(data json.RawMessage) (*Category, error) {
	if data == nil {
		return nil, nil
	}
	var c Category
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("forum: decode category: %w", err)
	}
	return &c, nil
}
