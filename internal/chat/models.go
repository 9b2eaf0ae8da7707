package chat

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Session struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"session_id"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	Title     string    `gorm:"type:varchar(120);not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Session) TableName() string { return "chat_sessions" }

// Message is one committed turn half. SeqNo is session-scoped and
// monotonic; the (session_id, seq_no) order is the conversational ground
// truth and is never reordered or deduplicated after commit.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(26);not null;uniqueIndex:uniq_chat_msg_session_seq,priority:1" json:"session_id"`
	UserID    uint64    `gorm:"not null;index" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	SeqNo     uint64    `gorm:"not null;uniqueIndex:uniq_chat_msg_session_seq,priority:2" json:"seq_no"`
	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }
