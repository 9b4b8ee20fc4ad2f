package surface

// Scheduler defers work until the current UI update has been rendered.
type Scheduler interface {
	Defer(fn func())
}

// Queue is a FIFO Scheduler drained explicitly by the host loop.
type Queue struct {
	pending []func()
}

// Defer appends fn to the queue.
func (q *Queue) Defer(fn func()) {
	if fn == nil {
		return
	}
	q.pending = append(q.pending, fn)
}

// Pending reports how many callbacks wait for the next flush.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Flush runs the callbacks queued so far in order. Callbacks deferred while
// flushing wait for the next flush.
func (q *Queue) Flush() int {
	batch := q.pending
	q.pending = nil
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
