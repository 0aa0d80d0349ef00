package api

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Zeyadhatem391/Weather/metrics"
	"github.com/Zeyadhatem391/Weather/widget"
)

// Broadcaster renders every store change once and fans the frame out to
// connected event streams. Each client channel holds at most one frame; a
// slow client has its pending frame replaced by the newer one.
type Broadcaster struct {
	mu          sync.Mutex
	clients     map[chan []byte]struct{}
	last        []byte
	lastVersion uint64
	render      func(widget.Snapshot) ([]byte, error)
	logger      *slog.Logger
	metrics     *metrics.AppMetrics
	unsubscribe func()
}

// NewBroadcaster subscribes to store. Call Close to detach it.
func NewBroadcaster(store *widget.Store, render func(widget.Snapshot) ([]byte, error), logger *slog.Logger, m *metrics.AppMetrics) *Broadcaster {
	b := &Broadcaster{
		clients: make(map[chan []byte]struct{}),
		render:  render,
		logger:  logger,
		metrics: m,
	}
	b.unsubscribe = store.Subscribe(b.publish)

	// a change that raced the subscription already published a newer frame
	b.publish(store.Snapshot())
	return b
}

// Close detaches from the store and ends every client stream
func (b *Broadcaster) Close() {
	b.unsubscribe()

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		close(ch)
		delete(b.clients, ch)
	}
}

// Join registers a client. It returns the client's frame channel, the most
// recent frame, and a function that must be called when the client leaves.
func (b *Broadcaster) Join() (<-chan []byte, []byte, func()) {
	ch := make(chan []byte, 1)

	b.mu.Lock()
	b.clients[ch] = struct{}{}
	last := b.last
	b.mu.Unlock()

	leave := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.clients[ch]; ok {
			delete(b.clients, ch)
			close(ch)
		}
	}
	return ch, last, leave
}

// Clients returns the number of connected streams
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) publish(s widget.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.last != nil && s.Version <= b.lastVersion {
		return
	}

	frame, err := b.render(s)
	if err != nil {
		b.logger.Error("Failed to render view state", slog.Uint64("version", s.Version), slog.Any("error", err))
		return
	}
	b.metrics.RendersTotal.Add(context.Background(), 1)

	b.last = frame
	b.lastVersion = s.Version

	for ch := range b.clients {
		select {
		case ch <- frame:
		default:
			// only publish sends, so after the drain there is room
			select {
			case <-ch:
			default:
			}
			ch <- frame
		}
	}
}
