package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayonscript/stayonscript/internal/access"
)

func TestGrantLifecycle(t *testing.T) {
	grants := access.NewGrantStore(newRedisClient(t), time.Minute, nil)
	ctx := context.Background()

	grant, err := grants.Start(ctx, "root", access.TierCompanyAdmin, "acme-co")
	require.NoError(t, err)
	assert.NotEmpty(t, grant.ID)
	assert.Equal(t, access.TierCompanyAdmin, grant.Tier)

	active, ok := grants.Active(ctx, "root")
	require.True(t, ok)
	assert.Equal(t, grant.ID, active.ID)

	require.NoError(t, grants.Stop(ctx, "root"))
	_, ok = grants.Active(ctx, "root")
	assert.False(t, ok)

	// Stop is idempotent.
	require.NoError(t, grants.Stop(ctx, "root"))
}

func TestGrantCannotTargetArbitraryTiers(t *testing.T) {
	grants := access.NewGrantStore(newRedisClient(t), time.Minute, nil)

	_, err := grants.Start(context.Background(), "root", access.TierSuperAdmin, "")
	assert.Error(t, err)
	_, err = grants.Start(context.Background(), "root", access.TierUser, "acme-co")
	assert.Error(t, err)
}

func TestGrantExpiryFailsClosed(t *testing.T) {
	grants := access.NewGrantStore(newRedisClient(t), 5*time.Millisecond, nil)
	ctx := context.Background()

	_, err := grants.Start(ctx, "root", access.TierAdmin, "acme-co")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, ok := grants.Active(ctx, "root")
	assert.False(t, ok)
}

func TestGrantMalformedDataFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	grants := access.NewGrantStore(client, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "impersonation:root", "garbage", 0).Err())
	_, ok := grants.Active(ctx, "root")
	assert.False(t, ok)
}

func TestStopWithoutBackingStore(t *testing.T) {
	var grants *access.GrantStore
	assert.NoError(t, grants.Stop(context.Background(), "root"))

	grants = access.NewGrantStore(nil, time.Minute, nil)
	assert.NoError(t, grants.Stop(context.Background(), "root"))
	assert.NoError(t, access.NewGrantStore(newRedisClient(t), time.Minute, nil).Stop(context.Background(), ""))
}
