package chat

import "time"

// Sender roles carried by messages and connections.
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
	SenderAI    = "ai"
)

// Message is one transcript entry. Seq is the append order within the store;
// timestamps are informational only.
type Message struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string    `gorm:"uniqueIndex;size:36" json:"id"`
	SessionID string    `gorm:"index;size:36" json:"sessionId"`
	Sender    string    `gorm:"size:16" json:"sender"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
