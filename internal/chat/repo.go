package chat

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateSessionWithGreeting commits the session row and its opening
// assistant message as one unit.
func (r *Repo) CreateSessionWithGreeting(ctx context.Context, s *Session, greeting *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		return tx.Create(greeting).Error
	})
}

func (r *Repo) GetSessionBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) ListSessionsByUser(ctx context.Context, userID uint64) ([]Session, error) {
	var sessions []Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListMessagesAsc returns the full transcript oldest -> newest.
func (r *Repo) ListMessagesAsc(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq_no ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// AppendTurn inserts the user half and the assistant half of one turn in
// a single transaction. Readers never observe the user message alone.
func (r *Repo) AppendTurn(ctx context.Context, userMsg, assistantMsg *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(userMsg).Error; err != nil {
			return err
		}
		return tx.Create(assistantMsg).Error
	})
}

func (r *Repo) RenameSession(ctx context.Context, sessionID, title string) error {
	return r.db.WithContext(ctx).
		Model(&Session{}).
		Where("session_id = ?", sessionID).
		Update("title", title).Error
}

// DeleteSessionCascade removes the session and all of its messages so no
// orphan rows remain.
func (r *Repo) DeleteSessionCascade(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&Message{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionID).Delete(&Session{}).Error
	})
}
