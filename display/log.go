package display

import (
	"context"

	"github.com/shinosaki/sparkup-push-go/host"
	"go.uber.org/zap"
)

// LogDisplayer writes each notification as a structured log entry.
type LogDisplayer struct {
	logger *zap.Logger
}

func NewLogDisplayer(logger *zap.Logger) *LogDisplayer {
	return &LogDisplayer{logger: logger.Named("display")}
}

func (d *LogDisplayer) Display(ctx context.Context, n *host.Notification) error {
	d.logger.Info("notification",
		zap.String("id", n.ID),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.String("icon", n.Icon),
		zap.Any("data", n.Data),
	)
	return nil
}
