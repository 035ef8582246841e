// Package dedup guards against re-processing the same inbound WhatsApp
// message twice, using an atomic set-if-absent cache entry as the race-free
// gate between concurrent Agent Worker replicas.
package dedup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tokowa/commerce-agent/internal/cache"
)

// DefaultTTL is how long a dedup key is retained before it expires.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "dedup"

// Deduplicator guards against duplicate processing of an inbound message.
type Deduplicator struct {
	cache    *cache.Client
	ttl      time.Duration
	disabled bool
	logger   *zap.Logger
}

// New builds a Deduplicator. Passing disabled=true yields a Deduplicator
// whose CheckAndMark always reports not-a-duplicate and performs no I/O.
func New(c *cache.Client, ttl time.Duration, disabled bool, logger *zap.Logger) *Deduplicator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Deduplicator{cache: c, ttl: ttl, disabled: disabled, logger: logger}
}

// sanitize replaces whitespace and ':' with safe tokens so a component can
// never smuggle a key-separator or span multiple lines into the cache key.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.Join(strings.Fields(s), "_")
	return s
}

func key(tenantID, chatID, messageID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, sanitize(tenantID), sanitize(chatID), sanitize(messageID))
}

// CheckAndMark atomically marks (tenantID, chatID, messageID) as seen and
// reports whether it was already present. On a cache error it logs and
// returns false (not-a-duplicate), erring toward a possible duplicate reply
// over silently dropping a customer message.
func (d *Deduplicator) CheckAndMark(ctx context.Context, tenantID, chatID, messageID string) bool {
	if d.disabled {
		return false
	}

	k := key(tenantID, chatID, messageID)
	won, err := d.cache.SetNX(ctx, k, "1", d.ttl)
	if err != nil {
		d.logger.Warn("dedup cache error, treating message as not-a-duplicate",
			zap.String("key", k), zap.Error(err))
		return false
	}
	return !won
}

// IsDuplicate reports whether (tenantID, chatID, messageID) has already been
// observed, without mutating any state.
func (d *Deduplicator) IsDuplicate(ctx context.Context, tenantID, chatID, messageID string) bool {
	if d.disabled {
		return false
	}

	k := key(tenantID, chatID, messageID)
	exists, err := d.cache.Raw().Exists(ctx, k).Result()
	if err != nil {
		d.logger.Warn("dedup existence check error, treating message as not-a-duplicate",
			zap.String("key", k), zap.Error(err))
		return false
	}
	return exists > 0
}
