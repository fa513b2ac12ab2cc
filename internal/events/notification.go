package events

import "time"

// NotificationChannel membentuk nama channel redis pub/sub per company.
func NotificationChannel(companyID string) string {
	return "notifications:" + companyID
}

const NotificationEventType = "new_notification"

type Notification struct {
	EventType  string    `json:"event_type"`
	CompanyID  string    `json:"company_id"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}
