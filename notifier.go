package sourcebook

// NotificationLevel classifies a user-facing notice.
type NotificationLevel string

// Notification levels.
const (
	NotificationInfo  NotificationLevel = "info"
	NotificationError NotificationLevel = "error"
)

// Notifier surfaces transient notices from background work to the user.
// Each failure is surfaced at most once. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(level NotificationLevel, message string)
}
