// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	applog "tranquil/internal/log"
)

var (
	// ErrQueueFull is returned by Offer when the queue has no free slot. The
	// item is dropped.
	ErrQueueFull = errors.New("udp: publish queue full")
	// ErrNotRunning is returned by Offer before Start or after Stop.
	ErrNotRunning = errors.New("udp: publisher not running")
)

// Stats counts what happened to offered items.
type Stats struct {
	Offered uint64 // accepted into the queue
	Dropped uint64 // rejected because the queue was full, or discarded at Stop
	Handled uint64 // passed to the handler
}

// Publisher decouples a real-time producer from a slow consumer. Offer
// never blocks; a single goroutine started by Start drains the queue in FIFO
// order and hands each item to the handler.
type Publisher[T any] struct {
	queue  chan T
	handle func(T)

	doneChan chan struct{}  // Signals the drain goroutine to exit.
	stopOnce sync.Once      // Ensures the stop logic runs only once.
	wg       sync.WaitGroup // Waits for the drain goroutine during Stop.
	// mu guards running and started. Offer holds the read lock across its
	// send, so no item can enter the queue once Stop has cleared running.
	mu      sync.RWMutex
	running bool
	started bool

	offered atomic.Uint64
	dropped atomic.Uint64
	handled atomic.Uint64
}

// NewPublisher creates a publisher with room for capacity queued items.
func NewPublisher[T any](capacity int, handle func(T)) (*Publisher[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("udp: queue capacity must be at least 1, got %d", capacity)
	}
	if handle == nil {
		return nil, errors.New("udp: publisher handler cannot be nil")
	}
	return &Publisher[T]{
		queue:    make(chan T, capacity),
		handle:   handle,
		doneChan: make(chan struct{}),
	}, nil
}

// Start launches the drain goroutine. Calls after the first are no-ops; a
// stopped publisher cannot be restarted.
func (p *Publisher[T]) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.doneChan:
				return
			case item := <-p.queue:
				p.handle(item)
				p.handled.Add(1)
			}
		}
	}()
}

// Offer enqueues item without blocking.
func (p *Publisher[T]) Offer(item T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrNotRunning
	}
	select {
	case p.queue <- item:
		p.offered.Add(1)
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

// Stop signals the drain goroutine and waits for it to finish the item in
// hand. Items still queued are discarded and counted as dropped. Safe to call
// more than once.
func (p *Publisher[T]) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.stopOnce.Do(func() {
		close(p.doneChan)
	})
	p.mu.Unlock()

	p.wg.Wait()

	var discarded uint64
	for {
		select {
		case <-p.queue:
			discarded++
			continue
		default:
		}
		break
	}
	if discarded > 0 {
		p.dropped.Add(discarded)
		applog.Debugf("UDP Publisher: Discarded %d queued items on stop", discarded)
	}
	return nil
}

// Len returns the number of queued items.
func (p *Publisher[T]) Len() int {
	return len(p.queue)
}

// Cap returns the queue capacity.
func (p *Publisher[T]) Cap() int {
	return cap(p.queue)
}

// Stats returns a snapshot of the counters.
func (p *Publisher[T]) Stats() Stats {
	return Stats{
		Offered: p.offered.Load(),
		Dropped: p.dropped.Load(),
		Handled: p.handled.Load(),
	}
}

// Close implements io.Closer.
func (p *Publisher[T]) Close() error {
	return p.Stop()
}
