// Package events defines the message sink connecting the edit coordinator
// and sync engine to the UI, so neither holds a back-reference to the
// other (spec.md §9 "Cyclic state between UI and coordinator").
package events

// UpdateEvent is one of the three messages a background task can send
// back to the UI loop.
type UpdateEvent struct {
	Kind Kind

	// RowChanged
	URL string

	// StatusLine
	Message string

	// ProgressTick
	Done  int
	Total int
}

// Kind discriminates an UpdateEvent's payload.
type Kind int

const (
	RowChanged Kind = iota
	StatusLine
	ProgressTick
)

// NewRowChanged reports that the row for url should be re-read from the store.
func NewRowChanged(url string) UpdateEvent {
	return UpdateEvent{Kind: RowChanged, URL: url}
}

// NewStatusLine reports a human-readable status update.
func NewStatusLine(message string) UpdateEvent {
	return UpdateEvent{Kind: StatusLine, Message: message}
}

// NewProgressTick reports sync progress.
func NewProgressTick(done, total int, message string) UpdateEvent {
	return UpdateEvent{Kind: ProgressTick, Done: done, Total: total, Message: message}
}

// Sink is a bounded channel of UpdateEvents. A nil *Sink is safe for Send
// (it silently drops), so callers that run headless (CLI --no-ui mode)
// don't need a no-op implementation.
type Sink struct {
	ch chan UpdateEvent
}

// NewSink creates a Sink with the given channel capacity.
func NewSink(capacity int) *Sink {
	return &Sink{ch: make(chan UpdateEvent, capacity)}
}

// Send enqueues an event, dropping it if the channel is full rather than
// blocking a background worker indefinitely.
func (s *Sink) Send(e UpdateEvent) {
	if s == nil {
		return
	}
	select {
	case s.ch <- e:
	default:
	}
}

// Events exposes the receive side for the UI loop to range over.
func (s *Sink) Events() <-chan UpdateEvent {
	if s == nil {
		return nil
	}
	return s.ch
}

// Close closes the underlying channel. Safe to call once.
func (s *Sink) Close() {
	if s == nil {
		return
	}
	close(s.ch)
}
