package wall

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/havenlisten/haven/internal/common"
	"github.com/havenlisten/haven/internal/lock"
	"github.com/havenlisten/haven/internal/moderation"
)

// ReasonModerationUnavailable is the fail-closed reason stored when the
// classifier cannot be reached. A submission is never approved by default.
const ReasonModerationUnavailable = "moderation unavailable, please try again later"

// Arbiter is the external classifier capability injected into the service.
type Arbiter interface {
	Arbitrate(ctx context.Context, text string) (moderation.Decision, error)
}

// AuditPublisher emits one event per moderation decision. Publishing is
// best-effort: a queue outage must not fail the submission itself.
type AuditPublisher interface {
	PublishAuditEvent(ctx context.Context, ev AuditEvent) error
}

type Service struct {
	repo      *Repo
	arbiter   Arbiter
	locker    lock.Locker
	publisher AuditPublisher
	logger    *zap.Logger
}

func NewService(repo *Repo, arbiter Arbiter, locker lock.Locker, publisher AuditPublisher, logger *zap.Logger) *Service {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, arbiter: arbiter, locker: locker, publisher: publisher, logger: logger}
}

// Submit runs the two-stage moderation pipeline and replaces the user's
// wall slot with the outcome. Submissions for one user are serialized so
// two concurrent submits cannot produce a lost update.
func (s *Service) Submit(ctx context.Context, userID uint64, text string) (*Submission, error) {
	text = strings.TrimSpace(text)
	if userID == 0 || text == "" {
		return nil, fmt.Errorf("%w: message text is required", common.ErrInvalidInput)
	}

	var out *Submission
	err := s.locker.WithLock(ctx, fmt.Sprintf("lock:wall:%d", userID), func(ctx context.Context) error {
		// Stage one: deterministic local rules. A rejection here never
		// reaches the classifier.
		verdict := moderation.Evaluate(moderation.Normalize(text))
		if !verdict.Safe {
			sub, err := s.decide(ctx, userID, text, StatusRejected, verdict.Reason, SourceLocalFilter)
			out = sub
			return err
		}

		// Stage two: external arbitration, failing closed on any error.
		dec, err := s.arbiter.Arbitrate(ctx, text)
		if err != nil {
			if errors.Is(err, common.ErrExternal) {
				s.logger.Warn("classifier unavailable, rejecting submission",
					zap.Uint64("user_id", userID), zap.Error(err))
				sub, uerr := s.decide(ctx, userID, text, StatusRejected, ReasonModerationUnavailable, SourceFailClosed)
				out = sub
				return uerr
			}
			return err
		}

		status := StatusRejected
		if dec.Approve {
			status = StatusApproved
		}
		sub, err := s.decide(ctx, userID, text, status, dec.Reason, SourceClassifier)
		out = sub
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) decide(ctx context.Context, userID uint64, text string, status Status, reason, source string) (*Submission, error) {
	sub := &Submission{
		UserID:    userID,
		Text:      text,
		Status:    status,
		Reason:    reason,
		DecidedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.publishAudit(ctx, userID, status, reason, source, sub.DecidedAt)

	s.logger.Info("submission decided",
		zap.Uint64("user_id", userID),
		zap.String("status", string(status)),
		zap.String("source", source))
	return sub, nil
}

func (s *Service) publishAudit(ctx context.Context, userID uint64, status Status, reason, source string, decidedAt time.Time) {
	if s.publisher == nil {
		return
	}
	eventID, err := common.NewULID()
	if err != nil {
		s.logger.Warn("audit event id generation failed", zap.Error(err))
		return
	}
	ev := AuditEvent{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		Reason:    reason,
		Source:    source,
		DecidedAt: decidedAt,
	}
	if err := s.publisher.PublishAuditEvent(ctx, ev); err != nil {
		s.logger.Warn("audit event publish failed",
			zap.String("event_id", eventID), zap.Error(err))
	}
}

// ListApproved returns the text of every submission currently on the wall.
func (s *Service) ListApproved(ctx context.Context) ([]string, error) {
	return s.repo.ListApprovedTexts(ctx)
}

// GetMine returns the caller's own slot, or common.ErrNotFound.
func (s *Service) GetMine(ctx context.Context, userID uint64) (*Submission, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no submission yet", common.ErrNotFound)
		}
		return nil, err
	}
	return sub, nil
}

// ListMyAudits returns the caller's recent moderation decisions, newest
// first. This is the only submission history the single-slot model keeps.
func (s *Service) ListMyAudits(ctx context.Context, userID uint64, limit int) ([]ModerationAudit, error) {
	return s.repo.ListAuditsByUser(ctx, userID, limit)
}

// RecordAudit persists one queued audit event. Called by the worker.
func (s *Service) RecordAudit(ctx context.Context, ev AuditEvent) error {
	if ev.EventID == "" || ev.UserID == 0 {
		return fmt.Errorf("%w: malformed audit event", common.ErrInvalidInput)
	}
	return s.repo.InsertAudit(ctx, &ModerationAudit{
		ID:        ev.EventID,
		UserID:    ev.UserID,
		Status:    ev.Status,
		Reason:    ev.Reason,
		Source:    ev.Source,
		DecidedAt: ev.DecidedAt,
	})
}
