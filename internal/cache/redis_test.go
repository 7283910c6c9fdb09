package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/gym-billing/internal/model"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedisCache_SetAndGetPlan(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	plan := model.MembershipPlan{ID: 4, Name: "Trimestral", Price: decimal.RequireFromString("210000.50"), PeriodDays: 90}
	require.NoError(t, c.Set(ctx, "plan:4", plan, time.Minute))

	var got model.MembershipPlan
	found, err := c.Get(ctx, "plan:4", &got)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, plan.Name, got.Name)
	assert.Equal(t, plan.PeriodDays, got.PeriodDays)
	assert.True(t, plan.Price.Equal(got.Price))
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupTestCache(t)

	var got model.MembershipPlan
	found, err := c.Get(context.Background(), "plan:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "plan:1", model.MembershipPlan{ID: 1}, time.Minute))
	require.NoError(t, c.Invalidate(ctx, "plan:1"))

	var got model.MembershipPlan
	found, err := c.Get(ctx, "plan:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Expiration(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "plan:2", model.MembershipPlan{ID: 2}, time.Second))
	mr.FastForward(2 * time.Second)

	var got model.MembershipPlan
	found, err := c.Get(ctx, "plan:2", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
