package enums

// NotificationType categorizes in-app alerts raised by the engine.
type NotificationType string

const (
	NotificationTypeOversold NotificationType = "oversold"
	NotificationTypeConflict NotificationType = "conflict"
	NotificationTypeSystem   NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOversold,
	NotificationTypeConflict,
	NotificationTypeSystem,
}

// IsValid reports whether the value matches the canonical notification type enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}
