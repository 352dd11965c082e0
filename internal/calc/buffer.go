package calc

// flusher is a view with notifications queued in an EventBuffer.
type flusher interface {
	flush()
}

// EventBuffer holds back the notifications of buffering views between
// Buffer and Flush. Views queue themselves once per buffering period.
type EventBuffer struct {
	buffering bool
	queue     []flusher
	queued    map[flusher]struct{}
}

// NewEventBuffer returns an idle buffer.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{queued: make(map[flusher]struct{})}
}

// Buffer starts holding back notifications.
func (b *EventBuffer) Buffer() {
	b.buffering = true
}

// Buffering reports whether notifications are being held back.
func (b *EventBuffer) Buffering() bool {
	return b.buffering
}

// Flush stops buffering and delivers queued notifications in the order the
// views were first queued. Views queued by handlers during the flush are
// delivered in the same call.
func (b *EventBuffer) Flush() {
	b.buffering = false
	for len(b.queue) > 0 {
		q := b.queue
		b.queue = nil
		clear(b.queued)
		for _, f := range q {
			f.flush()
		}
	}
}

func (b *EventBuffer) enqueue(f flusher) {
	if _, ok := b.queued[f]; ok {
		return
	}
	b.queued[f] = struct{}{}
	b.queue = append(b.queue, f)
}
