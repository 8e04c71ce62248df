package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	sets   int
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.sets++
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()

	var flag bool
	hit, err := svc.Get(ctx, adminFlagKeyPrefix+"u1", &flag)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, adminFlagKeyPrefix+"u1", true, 0))
	hit, err = svc.Get(ctx, adminFlagKeyPrefix+"u1", &flag)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, flag)

	require.NoError(t, svc.Set(ctx, publicListingsKey, []string{"a"}, 0))
	require.NoError(t, svc.Invalidate(ctx, listingCachePattern))
	assert.False(t, repo.has(publicListingsKey))
	assert.True(t, repo.has(adminFlagKeyPrefix+"u1"))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Equal(t, 0, repo.sets)

	var v int
	hit, err := svc.Get(context.Background(), "k", &v)
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var v int
	hit, err := svc.Get(context.Background(), "k", &v)
	assert.Error(t, err)
	assert.False(t, hit)
}
