package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shinosaki/sparkup-push-go/webpush"
	"go.uber.org/zap"
)

// Window is an open application window tracked by a WindowRegistry.
type Window struct {
	id       string
	registry *WindowRegistry
}

var (
	_ webpush.WindowClient = (*Window)(nil)
	_ webpush.Focuser      = (*Window)(nil)
)

func (w *Window) ID() string { return w.id }

func (w *Window) URL() string {
	s, _ := w.registry.state(w.id)
	return s.url
}

func (w *Window) Controlled() bool {
	s, _ := w.registry.state(w.id)
	return s.controlled
}

func (w *Window) Focused() bool {
	return w.registry.focusedID() == w.id
}

func (w *Window) Focus(ctx context.Context) error {
	return w.registry.focus(w.id)
}

type windowState struct {
	url        string
	controlled bool
}

// WindowRegistry is the set of open windows, enumerated in the order they
// were registered. At most one window is focused.
type WindowRegistry struct {
	launcher Launcher
	logger   *zap.Logger

	mu      sync.RWMutex
	windows map[string]windowState
	order   []string
	focused string
}

// NewWindowRegistry returns a registry that opens windows through launcher.
// A nil launcher means windows cannot be opened.
func NewWindowRegistry(launcher Launcher, logger *zap.Logger) *WindowRegistry {
	return &WindowRegistry{
		launcher: launcher,
		logger:   logger.Named("windows"),
		windows:  make(map[string]windowState),
	}
}

var (
	_ Clients      = (*WindowRegistry)(nil)
	_ WindowOpener = (*WindowRegistry)(nil)
)

// Register records a window that was opened outside the registry.
func (r *WindowRegistry) Register(url string, controlled bool) *Window {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.windows[id] = windowState{url: url, controlled: controlled}
	r.order = append(r.order, id)

	r.logger.Debug("window registered", zap.String("id", id), zap.String("url", url), zap.Bool("controlled", controlled))
	return &Window{id: id, registry: r}
}

func (r *WindowRegistry) Navigate(id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.windows[id]
	if !ok {
		return fmt.Errorf("window %s: %w", id, ErrNotFound)
	}
	s.url = url
	r.windows[id] = s
	return nil
}

func (r *WindowRegistry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.windows[id]; !ok {
		return fmt.Errorf("window %s: %w", id, ErrNotFound)
	}
	delete(r.windows, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.focused == id {
		r.focused = ""
	}
	return nil
}

func (r *WindowRegistry) Window(id string) (*Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.windows[id]; !ok {
		return nil, fmt.Errorf("window %s: %w", id, ErrNotFound)
	}
	return &Window{id: id, registry: r}, nil
}

// MatchAll returns a snapshot of the matching windows in registration order.
func (r *WindowRegistry) MatchAll(ctx context.Context, opts MatchOptions) ([]webpush.WindowClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch opts.Type {
	case ClientTypeWindow, ClientTypeAll, "":
	default:
		return []webpush.WindowClient{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]webpush.WindowClient, 0, len(r.order))
	for _, id := range r.order {
		if !opts.IncludeUncontrolled && !r.windows[id].controlled {
			continue
		}
		list = append(list, &Window{id: id, registry: r})
	}
	return list, nil
}

func (r *WindowRegistry) CanOpenWindow() bool {
	return r.launcher != nil
}

// OpenWindow launches url and tracks the new window as focused.
func (r *WindowRegistry) OpenWindow(ctx context.Context, url string) (webpush.WindowClient, error) {
	if r.launcher == nil {
		return nil, ErrUnsupported
	}
	if err := r.launcher.Launch(ctx, url); err != nil {
		return nil, fmt.Errorf("open window %s: %w", url, err)
	}

	w := r.Register(url, true)
	if err := r.focus(w.id); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *WindowRegistry) state(id string) (windowState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.windows[id]
	return s, ok
}

func (r *WindowRegistry) focusedID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focused
}

func (r *WindowRegistry) focus(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.windows[id]
	if !ok {
		return fmt.Errorf("focus window %s: %w", id, ErrWindowGone)
	}
	r.focused = id
	r.logger.Debug("window focused", zap.String("id", id), zap.String("url", s.url))
	return nil
}
