package buffer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var flushesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "buffer_flushes_total",
		Help: "Total number of buffer flush dispatches by outcome.",
	},
	[]string{"outcome"},
)

// Callback is invoked once per flushed buffer with the combined text and
// the per-message metadata of every entry that made up the buffer.
type Callback func(ctx context.Context, chatID string, combined Combined) error

// FlushWorker polls the cache for chats past their flush deadline and
// dispatches their combined message to a downstream Callback.
type FlushWorker struct {
	buffer        *Buffer
	checkInterval time.Duration
	callback      Callback
	logger        *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewFlushWorker builds a FlushWorker over buf, polling every checkInterval.
func NewFlushWorker(buf *Buffer, checkInterval time.Duration, callback Callback, logger *zap.Logger) *FlushWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &FlushWorker{
		buffer:        buf,
		checkInterval: checkInterval,
		callback:      callback,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins the polling loop in a background goroutine. Idempotent.
func (w *FlushWorker) Start() {
	if w.running.Load() {
		return
	}
	w.running.Store(true)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
}

func (w *FlushWorker) loop() {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(w.ctx)
		}
	}
}

// pollOnce enumerates active chats and flushes any whose deadline has passed.
// A single dispatch error is logged and does not stop the loop.
func (w *FlushWorker) pollOnce(ctx context.Context) {
	chatIDs, err := w.buffer.ActiveChatIDs(ctx)
	if err != nil {
		w.logger.Warn("buffer flush: failed to list active chats", zap.Error(err))
		return
	}

	for _, chatID := range chatIDs {
		due, err := w.buffer.ShouldFlush(ctx, chatID)
		if err != nil {
			w.logger.Warn("buffer flush: should_flush check failed", zap.String("chat_id", chatID), zap.Error(err))
			continue
		}
		if !due {
			continue
		}
		w.flush(ctx, chatID)
	}
}

func (w *FlushWorker) flush(ctx context.Context, chatID string) {
	combined, err := w.buffer.GetCombinedMessage(ctx, chatID)
	if err != nil {
		flushesTotal.WithLabelValues("get_failed").Inc()
		w.logger.Warn("buffer flush: get_combined_message failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	if combined.Text == "" {
		return
	}
	if err := w.callback(ctx, chatID, combined); err != nil {
		flushesTotal.WithLabelValues("callback_failed").Inc()
		w.logger.Warn("buffer flush: callback failed", zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	flushesTotal.WithLabelValues("dispatched").Inc()
}

// Stop signals the loop to exit, force-flushing every remaining buffer
// before returning so no buffered message is lost on shutdown.
func (w *FlushWorker) Stop() {
	if !w.running.Load() {
		return
	}
	w.running.Store(false)
	w.cancel()
	w.wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	w.pollOnce(drainCtx)
	w.forceFlushAll(drainCtx)
}

// forceFlushAll flushes every remaining buffer regardless of flush_deadline.
func (w *FlushWorker) forceFlushAll(ctx context.Context) {
	chatIDs, err := w.buffer.ActiveChatIDs(ctx)
	if err != nil {
		w.logger.Warn("buffer flush: drain listing failed", zap.Error(err))
		return
	}
	for _, chatID := range chatIDs {
		w.flush(ctx, chatID)
	}
}
