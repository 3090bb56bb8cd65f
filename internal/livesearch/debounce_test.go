package livesearch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookclub/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	queries []string
	replies []Reply
	got     chan Reply
}

func newRecorder() *recorder {
	return &recorder{got: make(chan Reply, 16)}
}

func (r *recorder) search(_ context.Context, q string) ([]resolver.Result, error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
	return []resolver.Result{{Source: resolver.SourceLocal, DisplayCoverURL: q}}, nil
}

func (r *recorder) deliver(reply Reply) {
	r.mu.Lock()
	r.replies = append(r.replies, reply)
	r.mu.Unlock()
	r.got <- reply
}

func (r *recorder) searched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func waitReply(t *testing.T, ch <-chan Reply) Reply {
	t.Helper()
	select {
	case reply := <-ch:
		return reply
	case <-time.After(2 * time.Second):
		t.Fatal("no reply delivered")
		return Reply{}
	}
}

func TestDebouncer_OnlyLastQuerySearched(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(context.Background(), 30*time.Millisecond, rec.search, rec.deliver)
	defer d.Close()

	for _, q := range []string{"d", "du", "dun", "dune"} {
		d.Submit(q)
	}

	reply := waitReply(t, rec.got)
	assert.Equal(t, "dune", reply.Query)
	require.Len(t, reply.Results, 1)
	assert.NoError(t, reply.Err)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"dune"}, rec.searched())
	assert.Empty(t, rec.got)
}

func TestDebouncer_BlankQueryAnsweredImmediately(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(context.Background(), time.Hour, rec.search, rec.deliver)
	defer d.Close()

	d.Submit("dune")
	d.Submit("   ")

	reply := waitReply(t, rec.got)
	assert.Equal(t, "", reply.Query)
	assert.NotNil(t, reply.Results)
	assert.Empty(t, reply.Results)
	assert.Empty(t, rec.searched())
}

func TestDebouncer_SupersededSearchIsCancelledAndDropped(t *testing.T) {
	started := make(chan struct{})
	var cancelled sync.WaitGroup
	cancelled.Add(1)

	search := func(ctx context.Context, q string) ([]resolver.Result, error) {
		if q == "slow" {
			close(started)
			<-ctx.Done()
			cancelled.Done()
			return nil, ctx.Err()
		}
		return []resolver.Result{}, nil
	}
	got := make(chan Reply, 4)
	d := NewDebouncer(context.Background(), 10*time.Millisecond, search, func(r Reply) { got <- r })
	defer d.Close()

	d.Submit("slow")
	<-started
	d.Submit("fast")

	cancelled.Wait()
	reply := waitReply(t, got)
	assert.Equal(t, "fast", reply.Query)
	assert.NoError(t, reply.Err)

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, got)
}

func TestDebouncer_SearchErrorIsDelivered(t *testing.T) {
	boom := errors.New("database down")
	got := make(chan Reply, 1)
	d := NewDebouncer(context.Background(), time.Millisecond,
		func(context.Context, string) ([]resolver.Result, error) { return nil, boom },
		func(r Reply) { got <- r })
	defer d.Close()

	d.Submit("dune")
	reply := waitReply(t, got)
	assert.ErrorIs(t, reply.Err, boom)
	assert.Equal(t, "dune", reply.Query)
}

func TestDebouncer_NothingAfterClose(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(context.Background(), 20*time.Millisecond, rec.search, rec.deliver)

	d.Submit("dune")
	d.Close()
	d.Submit("again")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.searched())
	assert.Empty(t, rec.got)
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(context.Background(), 0, nil, nil)
	assert.Equal(t, DefaultDelay, d.delay)
}
