package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/cache"
	"github.com/tokowa/commerce-agent/internal/dedup"
)

func newTestCache(t *testing.T) *cache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.New("redis://" + mr.Addr())
	require.NoError(t, err)
	return c
}

func TestCheckAndMarkFirstSeenIsNotADuplicate(t *testing.T) {
	d := dedup.New(newTestCache(t), time.Minute, false, zap.NewNop())

	isDup := d.CheckAndMark(context.Background(), "tenant-1", "chat-1", "msg-1")

	require.False(t, isDup)
}

func TestCheckAndMarkSecondSeenIsADuplicate(t *testing.T) {
	d := dedup.New(newTestCache(t), time.Minute, false, zap.NewNop())

	require.False(t, d.CheckAndMark(context.Background(), "tenant-1", "chat-1", "msg-1"))
	require.True(t, d.CheckAndMark(context.Background(), "tenant-1", "chat-1", "msg-1"))
}

func TestCheckAndMarkDistinguishesTenantAndChat(t *testing.T) {
	d := dedup.New(newTestCache(t), time.Minute, false, zap.NewNop())

	require.False(t, d.CheckAndMark(context.Background(), "tenant-1", "chat-1", "msg-1"))
	require.False(t, d.CheckAndMark(context.Background(), "tenant-2", "chat-1", "msg-1"))
	require.False(t, d.CheckAndMark(context.Background(), "tenant-1", "chat-2", "msg-1"))
}

func TestCheckAndMarkDisabledAlwaysReportsNotDuplicate(t *testing.T) {
	d := dedup.New(newTestCache(t), time.Minute, true, zap.NewNop())

	require.False(t, d.CheckAndMark(context.Background(), "tenant-1", "chat-1", "msg-1"))
	require.False(t, d.CheckAndMark(context.Background(), "tenant-1", "chat-1", "msg-1"))
}

func TestIsDuplicateReflectsCheckAndMarkState(t *testing.T) {
	d := dedup.New(newTestCache(t), time.Minute, false, zap.NewNop())

	require.False(t, d.IsDuplicate(context.Background(), "tenant-1", "chat-1", "msg-1"))
	d.CheckAndMark(context.Background(), "tenant-1", "chat-1", "msg-1")
	require.True(t, d.IsDuplicate(context.Background(), "tenant-1", "chat-1", "msg-1"))
}
