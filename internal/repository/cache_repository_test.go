package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "listings:public", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "listings:public", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "listings:public"))
	require.NoError(t, repo.DeleteByPattern(ctx, "listings:*"))
	require.NoError(t, repo.Close())
}
