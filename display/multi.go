package display

import (
	"context"
	"errors"

	"github.com/shinosaki/sparkup-push-go/host"
)

// Multi displays on every backend and joins their errors.
type Multi []host.Displayer

func (m Multi) Display(ctx context.Context, n *host.Notification) error {
	var errs []error
	for _, d := range m {
		if err := d.Display(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
