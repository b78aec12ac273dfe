package webpush

import "context"

// WindowClient is an open application window as enumerated by the host.
type WindowClient interface {
	URL() string
}

// Focuser is implemented by clients that can be brought to the foreground.
type Focuser interface {
	Focus(ctx context.Context) error
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionFocus
	ActionOpenWindow
)

func (k ActionKind) String() string {
	switch k {
	case ActionFocus:
		return "focus"
	case ActionOpenWindow:
		return "open_window"
	default:
		return "none"
	}
}

// Action is what the host should do in response to a notification click.
// Client is set for ActionFocus, URL for ActionOpenWindow.
type Action struct {
	Kind   ActionKind
	Client WindowClient
	URL    string
}

// TargetURL returns data["url"] when it is a non-empty string.
func TargetURL(data map[string]any) string {
	if url, ok := data["url"].(string); ok && url != "" {
		return url
	}
	return DefaultURL
}

// HandleClick picks the first focusable client, in enumeration order, whose
// URL equals the notification's target. Otherwise a new window is requested
// if the host can open one.
func HandleClick(data map[string]any, clients []WindowClient, canOpenWindow bool) Action {
	url := TargetURL(data)

	for _, client := range clients {
		if client == nil || client.URL() != url {
			continue
		}
		if _, ok := client.(Focuser); ok {
			return Action{Kind: ActionFocus, Client: client, URL: url}
		}
	}

	if canOpenWindow {
		return Action{Kind: ActionOpenWindow, URL: url}
	}
	return Action{Kind: ActionNone, URL: url}
}
