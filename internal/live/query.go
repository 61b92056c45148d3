// Package live turns plain store queries into streams of snapshots that are
// refreshed after every commit touching the queried tables.
package live

import (
	"context"
	"sync"
)

// Query is a restartable live query. Nothing runs until Subscribe is called,
// and every subscription starts from a fresh snapshot.
type Query[T any] struct {
	hub    *Hub
	tables []string
	fetch  func(ctx context.Context) (T, error)
	skip   func(T) bool
}

// NewQuery returns a live query that re-runs fetch whenever one of tables
// changes.
func NewQuery[T any](hub *Hub, fetch func(ctx context.Context) (T, error), tables ...string) *Query[T] {
	return &Query[T]{hub: hub, tables: tables, fetch: fetch}
}

// SkipWhen returns a copy of q that does not emit snapshots for which pred is true.
func (q *Query[T]) SkipWhen(pred func(T) bool) *Query[T] {
	cp := *q
	cp.skip = pred
	return &cp
}

// IsNil is a SkipWhen predicate for single-row queries.
func IsNil[E any](v *E) bool {
	return v == nil
}

// Get runs the query once.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	return q.fetch(ctx)
}

// Subscribe starts streaming snapshots. The stream ends when ctx is done,
// Close is called or a fetch fails.
func (q *Query[T]) Subscribe(ctx context.Context) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		updates: make(chan T),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	// Register before the first fetch so no commit slips between the two.
	id, wake := q.hub.Register(q.tables...)
	go s.run(ctx, q, id, wake)
	return s
}

// Subscription is one active stream of a Query.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// Updates delivers snapshots. It is closed when the subscription ends.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Err returns the fetch error that ended the stream, if any.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription and waits for it to unregister.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription[T]) run(ctx context.Context, q *Query[T], id string, wake <-chan struct{}) {
	defer close(s.done)
	defer close(s.updates)
	defer q.hub.Unregister(id)

	for {
		snap, err := q.fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}
		if q.skip == nil || !q.skip(snap) {
			select {
			case s.updates <- snap:
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-wake:
		case <-ctx.Done():
			return
		}
	}
}
