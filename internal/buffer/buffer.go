// Package buffer coalesces rapid-fire WhatsApp message bubbles into a single
// combined prompt before handing them to the agent graph.
package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/tokowa/commerce-agent/internal/cache"
)

const (
	keyPrefix      = "crm:msg_buffer:"
	appendLeaseTTL = 2 * time.Second
	leasePollDelay = 15 * time.Millisecond
)

// Entry is one message appended to a chat's pending buffer.
type Entry struct {
	Content    string                 `json:"content"`
	ReceivedAt time.Time              `json:"received_at"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// bufferEntry is the cache-persisted record for one chat's pending buffer.
type bufferEntry struct {
	Entries       []Entry   `json:"entries"`
	FirstArrival  time.Time `json:"first_arrival"`
	FlushDeadline time.Time `json:"flush_deadline"`
}

// Action reports what AddMessage's caller should do with the result.
type Action string

const (
	// ActionBuffering means the message was absorbed and nothing should be
	// sent downstream yet.
	ActionBuffering Action = "BUFFERING"
)

// Result is returned by AddMessage.
type Result struct {
	Action            Action
	MessageCount      int
	SecondsUntilFlush float64
}

// Config tunes the coalescing window.
type Config struct {
	InitialDelay time.Duration
	ExtendDelay  time.Duration
	MaxDelay     time.Duration
	Grace        time.Duration
}

// DefaultConfig matches the documented defaults.
func DefaultConfig() Config {
	return Config{
		InitialDelay: 2 * time.Second,
		ExtendDelay:  2 * time.Second,
		MaxDelay:     10 * time.Second,
		Grace:        5 * time.Second,
	}
}

// Buffer coalesces per-chat message bubbles in the shared cache.
type Buffer struct {
	cache *cache.Client
	cfg   Config
}

// New builds a Buffer over c using cfg.
func New(c *cache.Client, cfg Config) *Buffer {
	return &Buffer{cache: c, cfg: cfg}
}

func chatKey(chatID string) string {
	return keyPrefix + chatID
}

func appendLeaseKey(chatID string) string {
	return "crm:msg_buffer_lease:" + chatID
}

// acquireAppendLease blocks until it wins the exclusive per-chat append
// lease or ctx is done, so two concurrent AddMessage calls for the same
// chat never interleave their read-modify-write of the buffer entry.
func (b *Buffer) acquireAppendLease(ctx context.Context, chatID string) (string, error) {
	token := uuid.NewString()
	key := appendLeaseKey(chatID)
	for {
		ok, err := b.cache.Lease(ctx, key, token, appendLeaseTTL)
		if err != nil {
			return "", fmt.Errorf("acquire append lease for %s: %w", chatID, err)
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(leasePollDelay):
		}
	}
}

// AddMessage appends text to chatID's buffer, creating it if absent, and
// extends flush_deadline up to the max_delay cap. The read-modify-write
// against the cache is serialized per chat_id behind an append lease so
// concurrent bus-consumer goroutines handling the same chat can't clobber
// each other's append.
func (b *Buffer) AddMessage(ctx context.Context, chatID, text string, ts time.Time, metadata map[string]interface{}) (Result, error) {
	key := chatKey(chatID)

	token, err := b.acquireAppendLease(ctx, chatID)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = b.cache.ReleaseLease(context.Background(), appendLeaseKey(chatID), token)
	}()

	raw, err := b.cache.Raw().Get(ctx, key).Result()
	var entry bufferEntry
	if err == redis.Nil {
		entry = bufferEntry{FirstArrival: ts, FlushDeadline: ts.Add(b.cfg.InitialDelay)}
	} else if err != nil {
		return Result{}, fmt.Errorf("read buffer for %s: %w", chatID, err)
	} else if unmarshalErr := json.Unmarshal([]byte(raw), &entry); unmarshalErr != nil {
		return Result{}, fmt.Errorf("decode buffer for %s: %w", chatID, unmarshalErr)
	}

	entry.Entries = append(entry.Entries, Entry{Content: text, ReceivedAt: ts, Metadata: metadata})

	candidateDeadline := ts.Add(b.cfg.ExtendDelay)
	cap := entry.FirstArrival.Add(b.cfg.MaxDelay)
	if candidateDeadline.Before(cap) {
		entry.FlushDeadline = candidateDeadline
	} else {
		entry.FlushDeadline = cap
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return Result{}, fmt.Errorf("encode buffer for %s: %w", chatID, err)
	}

	ttl := time.Until(entry.FlushDeadline) + b.cfg.Grace
	if ttl < b.cfg.Grace {
		ttl = b.cfg.Grace
	}
	if err := b.cache.Raw().Set(ctx, key, encoded, ttl).Err(); err != nil {
		return Result{}, fmt.Errorf("persist buffer for %s: %w", chatID, err)
	}

	return Result{
		Action:            ActionBuffering,
		MessageCount:      len(entry.Entries),
		SecondsUntilFlush: time.Until(entry.FlushDeadline).Seconds(),
	}, nil
}

// ShouldFlush reports whether chatID has a buffer whose flush_deadline has passed.
func (b *Buffer) ShouldFlush(ctx context.Context, chatID string) (bool, error) {
	raw, err := b.cache.Raw().Get(ctx, chatKey(chatID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read buffer for %s: %w", chatID, err)
	}
	var entry bufferEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return false, fmt.Errorf("decode buffer for %s: %w", chatID, err)
	}
	return !time.Now().Before(entry.FlushDeadline), nil
}

// Combined is the result of GetCombinedMessage: the joined text plus every
// entry's original metadata, newest last, so callers can recover
// per-message routing fields (e.g. session, message_id) stored alongside content.
type Combined struct {
	Text     string
	Entries  []Entry
}

// GetCombinedMessage atomically reads and clears chatID's buffer, joining
// every entry's text with "\n". Returns a zero Combined if no buffer existed
// or a concurrent caller already won the race to clear it.
func (b *Buffer) GetCombinedMessage(ctx context.Context, chatID string) (Combined, error) {
	raw, err := b.cache.GetAndDelete(ctx, chatKey(chatID))
	if err == redis.Nil {
		return Combined{}, nil
	}
	if err != nil {
		return Combined{}, fmt.Errorf("get-and-delete buffer for %s: %w", chatID, err)
	}

	var entry bufferEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Combined{}, fmt.Errorf("decode buffer for %s: %w", chatID, err)
	}

	var combined strings.Builder
	for i, e := range entry.Entries {
		if i > 0 {
			combined.WriteByte('\n')
		}
		combined.WriteString(e.Content)
	}
	return Combined{Text: combined.String(), Entries: entry.Entries}, nil
}

// ActiveChatIDs scans the cache for chat ids with a pending buffer.
func (b *Buffer) ActiveChatIDs(ctx context.Context) ([]string, error) {
	keys, err := b.cache.ScanKeys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k[len(keyPrefix):])
	}
	return ids, nil
}
