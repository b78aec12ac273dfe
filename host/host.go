// Package host models the runtime a push handler lives in: the notification
// registration that shows and closes notifications, and the set of open
// application windows.
package host

import (
	"context"
	"errors"
	"time"

	"github.com/shinosaki/sparkup-push-go/webpush"
)

var (
	ErrNotFound    = errors.New("host: not found")
	ErrUnsupported = errors.New("host: operation not supported")
	// ErrWindowGone is returned when a window was closed after it had
	// been enumerated.
	ErrWindowGone = errors.New("host: window closed")
)

type ClientType string

const (
	ClientTypeWindow ClientType = "window"
	ClientTypeAll    ClientType = "all"
)

type MatchOptions struct {
	Type                ClientType
	IncludeUncontrolled bool
}

// Notification is a notification currently shown to the user.
type Notification struct {
	ID string `json:"id"`
	webpush.NotificationSpec
	ShownAt time.Time `json:"shown_at"`
}

type Registration interface {
	ShowNotification(ctx context.Context, spec webpush.NotificationSpec) (*Notification, error)
	Notification(id string) (*Notification, error)
	Notifications() []*Notification
	Close(id string)
}

type Clients interface {
	MatchAll(ctx context.Context, opts MatchOptions) ([]webpush.WindowClient, error)
}

// WindowOpener is implemented by Clients that may open new windows.
type WindowOpener interface {
	CanOpenWindow() bool
	OpenWindow(ctx context.Context, url string) (webpush.WindowClient, error)
}

// Displayer renders a notification to the user.
type Displayer interface {
	Display(ctx context.Context, n *Notification) error
}

// Launcher brings a URL up in a new window.
type Launcher interface {
	Launch(ctx context.Context, url string) error
}
