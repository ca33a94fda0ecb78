// Package events provides small in-process broadcast primitives: a typed
// Topic with any number of subscribers, and a payload-less Signal used to
// nudge loosely-coupled components (e.g. a stats display refreshing after a
// finished game).
package events

import "sync"

// Topic is a broadcast channel for values of type T. Publish delivers the
// value to every active subscriber exactly once, in subscription order, and
// each handler runs to completion before the next one starts.
type Topic[T any] struct {
	mu   sync.Mutex
	next int
	subs []topicSub[T]
}

type topicSub[T any] struct {
	id      int
	handler func(T)
}

// Subscription undoes a Subscribe. Unsubscribe is idempotent.
type Subscription struct {
	cancel func()
	once   sync.Once
}

func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Subscribe registers handler for future publications.
func (t *Topic[T]) Subscribe(handler func(T)) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	t.subs = append(t.subs, topicSub[T]{id: id, handler: handler})

	return &Subscription{cancel: func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, sub := range t.subs {
			if sub.id == id {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				break
			}
		}
	}}
}

// Publish delivers v to every subscriber registered at the time of the call.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	handlers := make([]func(T), len(t.subs))
	for i, sub := range t.subs {
		handlers[i] = sub.handler
	}
	t.mu.Unlock()

	for _, h := range handlers {
		h(v)
	}
}

// Signal is a payload-less Topic. It replaces ad hoc global events with an
// injectable value that any number of listeners can share.
type Signal struct {
	topic Topic[struct{}]
}

func (s *Signal) Notify() {
	s.topic.Publish(struct{}{})
}

func (s *Signal) Listen(handler func()) *Subscription {
	return s.topic.Subscribe(func(struct{}) { handler() })
}
