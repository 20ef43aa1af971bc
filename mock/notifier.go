package mock

import "github.com/fwojciec/sourcebook"

var _ sourcebook.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of sourcebook.Notifier.
type Notifier struct {
	NotifyFn func(level sourcebook.NotificationLevel, message string)
}

func (n *Notifier) Notify(level sourcebook.NotificationLevel, message string) {
	n.NotifyFn(level, message)
}
