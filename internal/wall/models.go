package wall

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Submission is the single wall slot a user owns. Resubmitting overwrites
// every field in place; there is no submission history on this row (the
// append-only trail lives in moderation_audits).
type Submission struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID    uint64    `gorm:"uniqueIndex;not null" json:"-"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Status    Status    `gorm:"type:varchar(20);not null" json:"status"`
	Reason    string    `gorm:"type:text" json:"reason"`
	DecidedAt time.Time `json:"decided_at"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Submission) TableName() string { return "wall_submissions" }

// Decision sources recorded in the audit trail.
const (
	SourceLocalFilter = "local_filter"
	SourceClassifier  = "classifier"
	SourceFailClosed  = "fail_closed"
)

// ModerationAudit is one append-only record per moderation decision,
// written by the audit worker from queued events.
type ModerationAudit struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	Status    Status    `gorm:"type:varchar(20);not null" json:"status"`
	Reason    string    `gorm:"type:text" json:"reason"`
	Source    string    `gorm:"type:varchar(20);not null" json:"source"`
	DecidedAt time.Time `json:"decided_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (ModerationAudit) TableName() string { return "moderation_audits" }

// AuditEvent is the wire form of a moderation decision on the queue.
type AuditEvent struct {
	EventID   string    `json:"event_id"`
	UserID    uint64    `json:"user_id"`
	Status    Status    `json:"status"`
	Reason    string    `json:"reason"`
	Source    string    `json:"source"`
	DecidedAt time.Time `json:"decided_at"`
}
