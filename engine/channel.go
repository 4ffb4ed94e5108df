package engine

// Channel fans published values out to every subscriber's queue.
type Channel[T any] struct {
	subscribers []*Subscriber[T]
}

func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{}
}

// Subscribe returns a new receiving end. It only sees values published after
// it was created.
func (c *Channel[T]) Subscribe() *Subscriber[T] {
	sub := &Subscriber[T]{}
	c.subscribers = append(c.subscribers, sub)
	return sub
}

// Unsubscribe stops delivery to sub.
func (c *Channel[T]) Unsubscribe(sub *Subscriber[T]) {
	for i, s := range c.subscribers {
		if s == sub {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			return
		}
	}
}

func (c *Channel[T]) Publish(v T) {
	if c == nil {
		return
	}
	for _, sub := range c.subscribers {
		sub.push(v)
	}
}

// Subscriber is a FIFO queue fed by a Channel.
type Subscriber[T any] struct {
	items []T
}

func (s *Subscriber[T]) push(v T) {
	s.items = append(s.items, v)
}

// Len returns the number of pending values.
func (s *Subscriber[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Consume hands the oldest pending value to fn. It reports false when the
// queue is empty.
func (s *Subscriber[T]) Consume(fn func(T)) bool {
	if s == nil || len(s.items) == 0 {
		return false
	}
	v := s.items[0]
	var zero T
	s.items[0] = zero
	s.items = s.items[1:]
	fn(v)
	return true
}

// Drain returns all pending values and clears the queue.
func (s *Subscriber[T]) Drain() []T {
	if s == nil || len(s.items) == 0 {
		return nil
	}
	out := s.items
	s.items = nil
	return out
}
