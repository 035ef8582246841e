package outgoing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tokowa/commerce-agent/internal/bus"
)

var chunkPublishes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "outgoing_chunk_publishes_total",
		Help: "Total number of outgoing message chunks published by status.",
	},
	[]string{"status"},
)

// DefaultDelayBetween is the pause between successive chunk publishes.
const DefaultDelayBetween = 1500 * time.Millisecond

// Message is the wa_messages queue wire shape.
type Message struct {
	MessageID string                 `json:"message_id"`
	WASession string                 `json:"wa_session"`
	ChatID    string                 `json:"chat_id"`
	Text      string                 `json:"text"`
	ReplyTo   string                 `json:"reply_to,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Pacer splits a response into chunks and publishes each as a distinct
// outgoing-queue message, sleeping delayBetween between publishes; one
// PublishSplit call runs its publishing loop to completion before returning.
// Two concurrent calls for the same chat may interleave their chunks.
type Pacer struct {
	publisher        *bus.Publisher
	queue            string
	delayBetween     time.Duration
	minSplitLength   int
	maxLength        int
}

// NewPacer builds a Pacer that publishes through publisher onto queue.
func NewPacer(publisher *bus.Publisher, queue string) *Pacer {
	return &Pacer{
		publisher:      publisher,
		queue:          queue,
		delayBetween:   DefaultDelayBetween,
		minSplitLength: DefaultMinSplitLength,
		maxLength:      DefaultMaxLength,
	}
}

// PublishSplit splits text into chunks and publishes each as a distinct
// wa_messages entry, carrying {chunk, total_chunks} plus baseMetadata in
// each chunk's metadata, pausing delayBetween between publishes.
func (p *Pacer) PublishSplit(ctx context.Context, session, chatID, text, replyTo string, baseMetadata map[string]interface{}) error {
	chunks := SplitIntoChunks(text, p.minSplitLength, p.maxLength)

	for i, chunk := range chunks {
		metadata := make(map[string]interface{}, len(baseMetadata)+2)
		for k, v := range baseMetadata {
			metadata[k] = v
		}
		metadata["chunk"] = i + 1
		metadata["total_chunks"] = len(chunks)

		msg := Message{
			MessageID: uuid.NewString(),
			WASession: session,
			ChatID:    chatID,
			Text:      chunk,
			ReplyTo:   replyTo,
			Metadata:  metadata,
		}
		body, err := json.Marshal(msg)
		if err != nil {
			chunkPublishes.WithLabelValues("marshal_error").Inc()
			return err
		}
		if err := p.publisher.PublishTask(ctx, p.queue, body); err != nil {
			chunkPublishes.WithLabelValues("publish_error").Inc()
			return err
		}
		chunkPublishes.WithLabelValues("published").Inc()

		if i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.delayBetween):
			}
		}
	}
	return nil
}
