package chat

import "time"

// Session is the durable record of one visitor conversation. The category
// fixes which canned-response set answers the first visitor message.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Category  string    `gorm:"size:64" json:"category"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Messages []Message `gorm:"foreignKey:SessionID;references:ID" json:"messages,omitempty"`
}
