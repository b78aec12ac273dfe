// Package worker dispatches push and notification-click events to the
// handlers in package webpush and performs the resulting host operations.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shinosaki/sparkup-push-go/host"
	"github.com/shinosaki/sparkup-push-go/webpush"
	"go.uber.org/zap"
)

const (
	EventPush              = "push"
	EventNotificationClick = "notificationclick"
)

var ErrClosed = errors.New("worker: shut down")

type Worker struct {
	registration host.Registration
	clients      host.Clients
	logger       *zap.Logger
	metrics      *Metrics

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

func New(registration host.Registration, clients host.Clients, logger *zap.Logger, metrics *Metrics) *Worker {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Worker{
		registration: registration,
		clients:      clients,
		logger:       logger.Named("worker"),
		metrics:      metrics,
	}
}

// DispatchPush shows the notification derived from body.
func (w *Worker) DispatchPush(ctx context.Context, body []byte) *Event {
	return w.waitUntil(ctx, EventPush, func(ctx context.Context) error {
		return w.handlePush(ctx, body)
	})
}

// DispatchNotificationClick closes the notification with the given id and
// focuses or opens the window it points to.
func (w *Worker) DispatchNotificationClick(ctx context.Context, id string) *Event {
	return w.waitUntil(ctx, EventNotificationClick, func(ctx context.Context) error {
		return w.handleClick(ctx, id)
	})
}

// Run dispatches every message body received on messages as a push event,
// until messages is closed or ctx is done. Each event settles before the
// next message is taken, so notifications are shown in delivery order.
// An event still pending when ctx is done keeps running; Shutdown waits
// for it.
func (w *Worker) Run(ctx context.Context, messages <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body, ok := <-messages:
			if !ok {
				return nil
			}
			ev := w.DispatchPush(ctx, body)
			select {
			case <-ev.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Shutdown stops accepting events and waits for pending ones to settle.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker: pending events: %w", ctx.Err())
	}
}

// waitUntil runs fn detached from ctx cancellation; the event settles when
// fn returns.
func (w *Worker) waitUntil(ctx context.Context, typ string, fn func(ctx context.Context) error) *Event {
	ev := newEvent(typ)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		ev.settle(ErrClosed)
		return ev
	}
	w.pending.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.pending.Done()

		err := fn(context.WithoutCancel(ctx))
		if err != nil {
			w.metrics.failures.WithLabelValues(typ).Inc()
			w.logger.Warn("event failed", zap.String("event", typ), zap.Error(err))
		}
		ev.settle(err)
	}()

	return ev
}

func (w *Worker) handlePush(ctx context.Context, body []byte) error {
	payload := webpush.Parse(body)
	w.metrics.pushes.WithLabelValues(string(payload.Kind)).Inc()

	n, err := w.registration.ShowNotification(ctx, payload.Spec())
	if err != nil {
		return err
	}

	w.logger.Debug("push handled", zap.String("kind", string(payload.Kind)), zap.String("notification_id", n.ID))
	return nil
}

func (w *Worker) handleClick(ctx context.Context, id string) error {
	n, err := w.registration.Notification(id)
	if err != nil {
		return err
	}
	w.registration.Close(id)

	clients, err := w.clients.MatchAll(ctx, host.MatchOptions{
		Type:                host.ClientTypeWindow,
		IncludeUncontrolled: true,
	})
	if err != nil {
		return fmt.Errorf("match clients: %w", err)
	}

	opener, canOpen := w.clients.(host.WindowOpener)
	canOpen = canOpen && opener.CanOpenWindow()

	action := webpush.HandleClick(n.Data, clients, canOpen)
	w.metrics.clicks.WithLabelValues(action.Kind.String()).Inc()
	w.logger.Debug("click handled",
		zap.String("notification_id", id),
		zap.Stringer("action", action.Kind),
		zap.String("url", action.URL),
	)

	switch action.Kind {
	case webpush.ActionFocus:
		return action.Client.(webpush.Focuser).Focus(ctx)
	case webpush.ActionOpenWindow:
		_, err := opener.OpenWindow(ctx, action.URL)
		return err
	}
	return nil
}
