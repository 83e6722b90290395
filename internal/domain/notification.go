package domain

type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeveritySuccess NotificationSeverity = "success"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeverityError   NotificationSeverity = "error"
)

type Notification struct {
	ID             int32                `json:"id"`
	MemberID       int32                `json:"member_id"`
	Title          string               `json:"title"`
	Message        string               `json:"message"`
	Severity       NotificationSeverity `json:"severity"`
	IsRead         bool                 `json:"is_read"`
	Attributes     map[string]string    `json:"attributes,omitempty"`
	WhatsAppSent   bool                 `json:"whatsapp_sent"`
	WhatsAppSentAt *string              `json:"whatsapp_sent_at,omitempty"`
	CreatedOn      string               `json:"created_on"`
}
