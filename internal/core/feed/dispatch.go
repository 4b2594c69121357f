package feed

import "sync"

// Subscriber receives state snapshots.
type Subscriber func(State)

// dispatcher delivers snapshots to subscribers one at a time in the order
// they were queued. Whichever goroutine finds the dispatcher idle drains the
// queue; others only enqueue. Subscribers may therefore call back into the
// store without deadlocking.
type dispatcher struct {
	mu       sync.Mutex
	subs     []Subscriber
	queue    []State
	draining bool
}

func (d *dispatcher) subscribe(fn Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, fn)
}

func (d *dispatcher) enqueue(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, s)
}

func (d *dispatcher) drain() {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true

	for len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]
		subs := make([]Subscriber, len(d.subs))
		copy(subs, d.subs)
		d.mu.Unlock()

		for _, fn := range subs {
			fn(next)
		}

		d.mu.Lock()
	}

	d.draining = false
	d.mu.Unlock()
}
