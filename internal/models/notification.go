package models

import "github.com/google/uuid"

// Notification record statuses. A record is created pending before the vendor
// call and moved to exactly one of sent/failed afterwards, never back.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// NotificationRecord is the audit trail of one outbound SMS attempt.
// ProviderResponse holds the raw vendor payload verbatim.
type NotificationRecord struct {
	BaseModel
	Phone            string     `gorm:"index" json:"phone"`
	Message          string     `json:"message"`
	OrderID          *uuid.UUID `gorm:"type:uuid" json:"order_id"`
	UserID           *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	Status           string     `gorm:"index" json:"status"`
	Provider         string     `json:"provider"`
	ProviderResponse string     `json:"provider_response"`
}

// SMSProviderConfig is the admin-managed configuration of the active SMS
// vendor. The dispatcher reads the most recently updated row per request.
type SMSProviderConfig struct {
	BaseModel
	Provider  string `json:"provider"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"-"`
	SenderID  string `json:"sender_id"`
	APIURL    string `json:"api_url"`
	Enabled   bool   `json:"enabled"`
}
