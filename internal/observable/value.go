package observable

import "sync"

// View is the read side of a Value. Consumers get a View so they can read
// and subscribe but never publish.
type View[T any] interface {
	// Get returns the last published value
	Get() T
	// Subscribe registers fn for every later publish. The returned func
	// removes the subscription; it is safe to call more than once.
	Subscribe(fn func(T)) (unsubscribe func())
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Value holds the last published value and notifies subscribers on replacement
type Value[T any] struct {
	mu          sync.RWMutex
	current     T
	subscribers []subscriber[T]
	nextID      uint64
}

// NewValue creates a Value seeded with initial
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{current: initial}
}

// Get returns the last published value
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.current
}

// Publish replaces the current value and synchronously calls every subscriber
// registered at that moment, in registration order. Missed values are not
// buffered.
func (v *Value[T]) Publish(value T) {
	v.mu.Lock()
	v.current = value
	subscribers := make([]subscriber[T], len(v.subscribers))
	copy(subscribers, v.subscribers)
	v.mu.Unlock()

	for _, s := range subscribers {
		s.fn(value)
	}
}

// Subscribe registers fn. It is not called with the current value.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}

	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.subscribers = append(v.subscribers, subscriber[T]{id: id, fn: fn})
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { v.remove(id) })
	}
}

// Subscribers returns the number of registered subscribers
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.subscribers)
}

func (v *Value[T]) remove(id uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, s := range v.subscribers {
		if s.id == id {
			v.subscribers = append(v.subscribers[:i:i], v.subscribers[i+1:]...)
			return
		}
	}
}
