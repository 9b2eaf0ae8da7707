package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/havenlisten/haven/internal/ai"
	"github.com/havenlisten/haven/internal/common"
	"github.com/havenlisten/haven/internal/lock"
)

// Service owns per-user conversation sessions: it assembles transcript
// context for assistant calls and commits turns atomically.
type Service struct {
	repo          *Repo
	assistant     ai.Provider
	locker        lock.Locker
	logger        *zap.Logger
	contextWindow int
}

// NewService wires the transcript manager. contextWindow caps how many of
// the most recent messages are sent as context; 0 resends the full history
// every turn.
func NewService(repo *Repo, assistant ai.Provider, locker lock.Locker, logger *zap.Logger, contextWindow int) *Service {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if contextWindow < 0 {
		contextWindow = 0
	}
	return &Service{
		repo:          repo,
		assistant:     assistant,
		locker:        locker,
		logger:        logger,
		contextWindow: contextWindow,
	}
}

// CreateSession opens a session and stores its opening assistant message.
// The greeting comes from the assistant, seeded with the intake answers;
// if that call fails the fixed fallback greeting is stored instead, so
// onboarding never hard-fails on an assistant outage.
func (s *Service) CreateSession(ctx context.Context, userID uint64, intake []string) (*Session, string, error) {
	if userID == 0 {
		return nil, "", fmt.Errorf("%w: user is required", common.ErrInvalidInput)
	}

	sid, err := common.NewULID()
	if err != nil {
		return nil, "", err
	}

	greeting := s.openingMessage(ctx, intake)

	sess := &Session{
		SessionID: sid,
		UserID:    userID,
		Title:     "New conversation",
	}
	first := &Message{
		SessionID: sid,
		UserID:    userID,
		Role:      RoleAssistant,
		Content:   greeting,
		SeqNo:     1,
	}
	if err := s.repo.CreateSessionWithGreeting(ctx, sess, first); err != nil {
		return nil, "", err
	}

	s.logger.Info("session created",
		zap.String("session_id", sid), zap.Uint64("user_id", userID))
	return sess, greeting, nil
}

func (s *Service) openingMessage(ctx context.Context, intake []string) string {
	if len(intake) == 0 {
		return fallbackGreeting
	}

	var b strings.Builder
	b.WriteString(greetingTask)
	for _, answer := range intake {
		b.WriteString("- ")
		b.WriteString(answer)
		b.WriteString("\n")
	}

	reply, err := s.assistant.Chat(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: RoleUser, Content: b.String()},
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		s.logger.Warn("opening message generation failed, using fallback greeting", zap.Error(err))
		return fallbackGreeting
	}
	return reply
}

// PostTurn appends one user/assistant exchange. Turns on a session are
// serialized under a per-session lock, and the two message inserts share
// one transaction: if the assistant call fails, nothing is persisted and
// the transcript is exactly as it was before the call.
func (s *Service) PostTurn(ctx context.Context, userID uint64, sessionID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: message text is required", common.ErrInvalidInput)
	}

	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return "", err
	}

	var reply string
	err = s.locker.WithLock(ctx, "lock:session:"+sess.SessionID, func(ctx context.Context) error {
		history, err := s.repo.ListMessagesAsc(ctx, sess.SessionID)
		if err != nil {
			return err
		}

		var lastSeq uint64
		if len(history) > 0 {
			lastSeq = history[len(history)-1].SeqNo
		}

		msgs := s.assembleContext(history, text)
		reply, err = s.assistant.Chat(ctx, msgs)
		if err != nil {
			return fmt.Errorf("%w: assistant call: %v", common.ErrExternal, err)
		}

		userMsg := &Message{
			SessionID: sess.SessionID,
			UserID:    userID,
			Role:      RoleUser,
			Content:   text,
			SeqNo:     lastSeq + 1,
		}
		assistantMsg := &Message{
			SessionID: sess.SessionID,
			UserID:    userID,
			Role:      RoleAssistant,
			Content:   reply,
			SeqNo:     lastSeq + 2,
		}
		return s.repo.AppendTurn(ctx, userMsg, assistantMsg)
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// assembleContext builds the provider message list: the fixed system
// prompt, the transcript oldest -> newest, then the new user turn. When a
// window is configured, only the most recent messages are kept; the
// truncation is a deterministic suffix, so the same history always yields
// the same context.
func (s *Service) assembleContext(history []Message, userText string) []ai.Message {
	if s.contextWindow > 0 && len(history) > s.contextWindow {
		history = history[len(history)-s.contextWindow:]
	}

	msgs := make([]ai.Message, 0, len(history)+2)
	msgs = append(msgs, ai.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, ai.Message{Role: RoleUser, Content: userText})
	return msgs
}

// ListSessions returns the caller's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID uint64) ([]Session, error) {
	return s.repo.ListSessionsByUser(ctx, userID)
}

// GetMessages returns the full transcript, ownership-checked.
func (s *Service) GetMessages(ctx context.Context, userID uint64, sessionID string) ([]Message, error) {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMessagesAsc(ctx, sess.SessionID)
}

func (s *Service) RenameSession(ctx context.Context, userID uint64, sessionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidInput)
	}
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	return s.repo.RenameSession(ctx, sess.SessionID, title)
}

func (s *Service) DeleteSession(ctx context.Context, userID uint64, sessionID string) error {
	sess, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	return s.repo.DeleteSessionCascade(ctx, sess.SessionID)
}

func (s *Service) ownedSession(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", common.ErrInvalidInput)
	}
	sess, err := s.repo.GetSessionBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %s", common.ErrNotFound, sessionID)
		}
		return nil, err
	}
	if sess.UserID != userID {
		return nil, fmt.Errorf("%w: session belongs to another user", common.ErrForbidden)
	}
	return sess, nil
}
