// Package livesearch serves search-as-you-type over a websocket. Each
// connection owns a Debouncer so that only the last query typed within the
// debounce window reaches the resolver, and only its answer is sent back.
package livesearch

import (
	"context"
	"strings"
	"sync"
	"time"

	"bookclub/internal/resolver"
)

const DefaultDelay = 500 * time.Millisecond

// SearchFunc runs one search.
type SearchFunc func(ctx context.Context, query string) ([]resolver.Result, error)

// Reply is the outcome of one query. Err is set when the search failed.
type Reply struct {
	Query   string
	Results []resolver.Result
	Err     error
}

// Debouncer delays searches until input pauses for the configured delay.
// Every Submit supersedes the previous query: its pending timer is stopped,
// its in-flight search is cancelled and its result, should it still arrive,
// is dropped. Delivery happens under the debouncer's lock, so a superseded
// reply can never be delivered after a newer Submit returned.
type Debouncer struct {
	parent  context.Context
	delay   time.Duration
	search  SearchFunc
	deliver func(Reply)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

func NewDebouncer(ctx context.Context, delay time.Duration, search SearchFunc, deliver func(Reply)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{parent: ctx, delay: delay, search: search, deliver: deliver}
}

// Submit schedules a search for query. A blank query is answered at once
// with no results.
func (d *Debouncer) Submit(query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.gen++
	d.stopLocked()

	if query == "" {
		d.deliver(Reply{Query: query, Results: []resolver.Result{}})
		return
	}

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.run(gen, query) })
}

func (d *Debouncer) run(gen uint64, query string) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(d.parent)
	d.cancel = cancel
	d.mu.Unlock()

	results, err := d.search(ctx, query)
	cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || gen != d.gen {
		return
	}
	d.cancel = nil
	d.deliver(Reply{Query: query, Results: results, Err: err})
}

// stopLocked drops the pending timer and the in-flight search.
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Close cancels pending work. Nothing is delivered after Close returns.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
}
