package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shinosaki/sparkup-push-go/webpush"
	"go.uber.org/zap"
)

// NotificationCenter keeps the notifications that are shown and renders new
// ones through a Displayer. It is safe for concurrent use.
type NotificationCenter struct {
	displayer Displayer
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.RWMutex
	shown map[string]*Notification
	order []string
}

func NewNotificationCenter(displayer Displayer, logger *zap.Logger) *NotificationCenter {
	return &NotificationCenter{
		displayer: displayer,
		logger:    logger.Named("notification_center"),
		now:       time.Now,
		shown:     make(map[string]*Notification),
	}
}

var _ Registration = (*NotificationCenter)(nil)

// ShowNotification only records the notification once it was displayed.
func (c *NotificationCenter) ShowNotification(ctx context.Context, spec webpush.NotificationSpec) (*Notification, error) {
	n := &Notification{
		ID:               uuid.NewString(),
		NotificationSpec: spec,
		ShownAt:          c.now(),
	}

	if err := c.displayer.Display(ctx, n); err != nil {
		return nil, fmt.Errorf("display notification: %w", err)
	}

	c.mu.Lock()
	c.shown[n.ID] = n
	c.order = append(c.order, n.ID)
	c.mu.Unlock()

	c.logger.Debug("notification shown", zap.String("id", n.ID), zap.String("title", n.Title))
	return n, nil
}

func (c *NotificationCenter) Notification(id string) (*Notification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.shown[id]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return n, nil
}

// Notifications returns the shown notifications, oldest first.
func (c *NotificationCenter) Notifications() []*Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]*Notification, 0, len(c.order))
	for _, id := range c.order {
		list = append(list, c.shown[id])
	}
	return list
}

// Close is a no-op for unknown ids.
func (c *NotificationCenter) Close(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.shown[id]; !ok {
		return
	}
	delete(c.shown, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.logger.Debug("notification closed", zap.String("id", id))
}
