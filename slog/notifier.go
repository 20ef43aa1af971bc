package slog

import (
	"log/slog"

	"github.com/fwojciec/sourcebook"
)

// Ensure Notifier implements sourcebook.Notifier.
var _ sourcebook.Notifier = (*Notifier)(nil)

// Notifier writes notices to a structured logger, for surfaces that have
// no notification UI.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a new Notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Notify logs the notice at a level matching its severity.
func (n *Notifier) Notify(level sourcebook.NotificationLevel, message string) {
	switch level {
	case sourcebook.NotificationError:
		n.logger.Error(message)
	default:
		n.logger.Info(message)
	}
}
