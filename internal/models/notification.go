package models

import "time"

// Notification channels.
const (
	ChannelInApp    = "INAPP"
	ChannelEmail    = "EMAIL"
	ChannelWhatsApp = "WHATSAPP"
)

// Notification is an in-app notification row written by the dispatcher's
// store sink. UserID 0 means campus-wide broadcast.
type Notification struct {
	ID        int       `json:"id"`
	UUID      string    `json:"uuid"`
	CampusID  int       `json:"campus_id"`
	UserID    int       `json:"user_id,omitempty"`
	Channel   string    `json:"channel"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
