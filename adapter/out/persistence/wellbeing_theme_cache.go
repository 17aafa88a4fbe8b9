package persistence

import (
	"context"
	"time"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"
	"wellbeing_server/pkg/cache"
)

const themeRegistryKey = "themes:registry"

// CachedThemeAdapter wraps a ThemeRepository with a Redis read-through cache
// for the full registry.
type CachedThemeAdapter struct {
	delegate out.ThemeRepository
	cache    *cache.RedisCache
	ttl      time.Duration
}

// NewCachedThemeAdapter creates a new cached theme adapter.
func NewCachedThemeAdapter(delegate out.ThemeRepository, redisCache *cache.RedisCache, ttl time.Duration) *CachedThemeAdapter {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedThemeAdapter{
		delegate: delegate,
		cache:    redisCache,
		ttl:      ttl,
	}
}

// List serves the registry from cache, falling back to the database.
// Cache errors are ignored.
func (a *CachedThemeAdapter) List(ctx context.Context) ([]*domain.PsychologicalTheme, error) {
	var themes []*domain.PsychologicalTheme
	found, err := a.cache.GetJSON(ctx, themeRegistryKey, &themes)
	if err == nil && found {
		return themes, nil
	}

	themes, err = a.delegate.List(ctx)
	if err != nil {
		return nil, err
	}

	_ = a.cache.SetJSON(ctx, themeRegistryKey, themes, a.ttl)
	return themes, nil
}

// GetOrCreate delegates and invalidates the cached registry when a theme was added.
func (a *CachedThemeAdapter) GetOrCreate(ctx context.Context, name, description string) (*domain.PsychologicalTheme, bool, error) {
	theme, created, err := a.delegate.GetOrCreate(ctx, name, description)
	if err != nil {
		return nil, false, err
	}
	if created {
		_ = a.cache.Delete(ctx, themeRegistryKey)
	}
	return theme, created, nil
}

// Count delegates to the underlying adapter.
func (a *CachedThemeAdapter) Count(ctx context.Context) (int, error) {
	return a.delegate.Count(ctx)
}

var _ out.ThemeRepository = (*CachedThemeAdapter)(nil)
