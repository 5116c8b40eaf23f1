package localcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_AddContains(t *testing.T) {
	bl, err := NewBlacklist(1000)
	require.NoError(t, err)
	defer bl.Close()
	ctx := context.Background()

	ok, err := bl.Contains(ctx, "tok-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bl.Add(ctx, "tok-a", time.Minute))

	ok, _ = bl.Contains(ctx, "tok-a")
	assert.True(t, ok)
	ok, _ = bl.Contains(ctx, "tok-b")
	assert.False(t, ok)
}

func TestBlacklist_Expires(t *testing.T) {
	bl, err := NewBlacklist(1000)
	require.NoError(t, err)
	defer bl.Close()
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "short", 50*time.Millisecond))
	time.Sleep(120 * time.Millisecond)

	ok, _ := bl.Contains(ctx, "short")
	assert.False(t, ok)
}

func TestBlacklist_NonPositiveTTLIgnored(t *testing.T) {
	bl, err := NewBlacklist(0)
	require.NoError(t, err)
	defer bl.Close()

	require.NoError(t, bl.Add(context.Background(), "gone", 0))
	ok, _ := bl.Contains(context.Background(), "gone")
	assert.False(t, ok)
}
