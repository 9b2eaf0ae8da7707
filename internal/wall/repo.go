package wall

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Upsert replaces the user's slot in full: text, status, reason and
// decision time are all overwritten, never merged.
func (r *Repo) Upsert(ctx context.Context, s *Submission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "status", "reason", "decided_at", "updated_at"}),
		}).
		Create(s).Error
}

func (r *Repo) GetByUserID(ctx context.Context, userID uint64) (*Submission, error) {
	var s Submission
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListApprovedTexts returns the text of every currently approved slot.
// No ordering is promised; this is a scan, not a log.
func (r *Repo) ListApprovedTexts(ctx context.Context) ([]string, error) {
	var texts []string
	if err := r.db.WithContext(ctx).
		Model(&Submission{}).
		Where("status = ?", StatusApproved).
		Pluck("text", &texts).Error; err != nil {
		return nil, err
	}
	return texts, nil
}

func (r *Repo) InsertAudit(ctx context.Context, a *ModerationAudit) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repo) ListAuditsByUser(ctx context.Context, userID uint64, limit int) ([]ModerationAudit, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var audits []ModerationAudit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}
