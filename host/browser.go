package host

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/browser"
)

// BrowserLauncher opens windows in the system browser. Relative targets
// such as "/" are resolved against Origin.
type BrowserLauncher struct {
	Origin string
	open   func(string) error
}

func NewBrowserLauncher(origin string) *BrowserLauncher {
	return &BrowserLauncher{Origin: origin, open: browser.OpenURL}
}

func (l *BrowserLauncher) Launch(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resolved, err := l.Resolve(target)
	if err != nil {
		return err
	}
	if l.open == nil {
		return browser.OpenURL(resolved)
	}
	return l.open(resolved)
}

func (l *BrowserLauncher) Resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", target, err)
	}
	if ref.IsAbs() || l.Origin == "" {
		return ref.String(), nil
	}

	base, err := url.Parse(l.Origin)
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", l.Origin, err)
	}
	return base.ResolveReference(ref).String(), nil
}
