package webpush

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticClient struct {
	url string
}

func (c *staticClient) URL() string { return c.url }

type focusableClient struct {
	staticClient
	focused bool
}

func (c *focusableClient) Focus(ctx context.Context) error {
	c.focused = true
	return nil
}

func TestTargetURL(t *testing.T) {
	assert.Equal(t, "/ideas", TargetURL(map[string]any{"url": "/ideas"}))
	assert.Equal(t, "/", TargetURL(map[string]any{"url": ""}))
	assert.Equal(t, "/", TargetURL(map[string]any{"url": 12}))
	assert.Equal(t, "/", TargetURL(map[string]any{}))
	assert.Equal(t, "/", TargetURL(nil))
}

func TestHandleClick(t *testing.T) {
	t.Run("focuses matching window", func(t *testing.T) {
		other := &focusableClient{staticClient: staticClient{url: "/home"}}
		match := &focusableClient{staticClient: staticClient{url: "/ideas/3"}}

		action := HandleClick(map[string]any{"url": "/ideas/3"}, []WindowClient{other, match}, true)

		assert.Equal(t, ActionFocus, action.Kind)
		assert.Same(t, match, action.Client)
	})

	t.Run("first match wins", func(t *testing.T) {
		first := &focusableClient{staticClient: staticClient{url: "/"}}
		second := &focusableClient{staticClient: staticClient{url: "/"}}

		action := HandleClick(nil, []WindowClient{first, second}, true)

		assert.Equal(t, ActionFocus, action.Kind)
		assert.Same(t, first, action.Client)
	})

	t.Run("skips clients that cannot focus", func(t *testing.T) {
		plain := &staticClient{url: "/x"}
		focusable := &focusableClient{staticClient: staticClient{url: "/x"}}

		action := HandleClick(map[string]any{"url": "/x"}, []WindowClient{plain, focusable}, false)

		assert.Equal(t, ActionFocus, action.Kind)
		assert.Same(t, focusable, action.Client)
	})

	t.Run("url match is exact", func(t *testing.T) {
		c := &focusableClient{staticClient: staticClient{url: "/x/"}}

		action := HandleClick(map[string]any{"url": "/x"}, []WindowClient{c}, true)

		assert.Equal(t, Action{Kind: ActionOpenWindow, URL: "/x"}, action)
	})

	t.Run("opens window at root without url", func(t *testing.T) {
		action := HandleClick(map[string]any{}, nil, true)
		assert.Equal(t, Action{Kind: ActionOpenWindow, URL: "/"}, action)
	})

	t.Run("nothing when host cannot open windows", func(t *testing.T) {
		action := HandleClick(map[string]any{"url": "/x"}, []WindowClient{&staticClient{url: "/x"}}, false)
		assert.Equal(t, ActionNone, action.Kind)
		assert.Nil(t, action.Client)
	})
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "none", ActionNone.String())
	assert.Equal(t, "focus", ActionFocus.String())
	assert.Equal(t, "open_window", ActionOpenWindow.String())
}
