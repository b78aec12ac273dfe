package worker

import "context"

// Event is a dispatched push or click event whose lifetime has been
// extended until the work it started settles.
type Event struct {
	Type string

	done chan struct{}
	err  error
}

func newEvent(typ string) *Event {
	return &Event{Type: typ, done: make(chan struct{})}
}

func (e *Event) settle(err error) {
	e.err = err
	close(e.done)
}

// Done is closed once the event has settled.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

// Err is only meaningful after Done is closed.
func (e *Event) Err() error {
	select {
	case <-e.done:
		return e.err
	default:
		return nil
	}
}

// Wait blocks until the event settles or ctx is done. Giving up on the wait
// does not cancel the event.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return e.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
