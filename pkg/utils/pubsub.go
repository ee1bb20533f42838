package utils

import (
	"github.com/sasha-s/go-deadlock"
)

// Topic fans values out to its subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the value.
type Topic[T any] struct {
	subscribers map[chan T]struct{}
	mutex       deadlock.Mutex
	dropped     uint64
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{
		subscribers: make(map[chan T]struct{}),
	}
}

// Publish returns the number of subscribers that received the value.
func (t *Topic[T]) Publish(value T) (delivered int) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for subscriber := range t.subscribers {
		select {
		case subscriber <- value:
			delivered++
		default:
			t.dropped++
		}
	}
	return
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (t *Topic[T]) Dropped() uint64 {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.dropped
}

type Subscriber[T any] struct {
	channel chan T
	topic   *Topic[T]
}

// Subscribe registers a subscriber that can hold up to size undelivered
// values.
func (t *Topic[T]) Subscribe(size int) *Subscriber[T] {
	channel := make(chan T, size)
	t.mutex.Lock()
	t.subscribers[channel] = struct{}{}
	t.mutex.Unlock()

	return &Subscriber[T]{channel, t}
}

func (t *Subscriber[T]) Recv() <-chan T {
	return t.channel
}

func (t *Subscriber[T]) Done() {
	topic := t.topic
	topic.mutex.Lock()
	delete(topic.subscribers, t.channel)
	topic.mutex.Unlock()
}
