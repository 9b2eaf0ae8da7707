package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/havenlisten/haven/internal/ai"
	"github.com/havenlisten/haven/internal/common"
)

// The moderator instruction is deliberately asymmetric: a false reject is a
// minor annoyance, a false approve puts unsafe text on a public wall. Only
// general, anonymous, unambiguously positive statements are approvable.
const moderatorPrompt = `You are an inhumanly strict, safety-obsessed content moderation bot for an anonymous teen support wall.
Your default decision is REJECT. APPROVE a message ONLY if it is a general, anonymous, unambiguously positive statement of encouragement.
REJECT any message containing: names, ages, locations, phone numbers, contact details or social media handles; requests or offers to meet or talk privately; advice of any kind; sadness, anger, hopelessness or any other negative emotion; profanity or innuendo; text that is not in English; sarcasm, irony, or anything you find ambiguous. When in doubt, REJECT.
Respond with a single JSON object and nothing else, in exactly this shape:
{"decision": "APPROVE" or "REJECT", "reason": "<one short sentence>"}`

// Decision is the closed two-variant verdict parsed from the classifier.
type Decision struct {
	Approve bool
	Reason  string
}

// Arbiter sends candidate wall text to the external classifier and parses
// its structured verdict. Any transport failure or off-contract reply is
// common.ErrExternal; the caller fails closed, never open.
type Arbiter struct {
	provider ai.Provider
	logger   *zap.Logger
}

func NewArbiter(provider ai.Provider, logger *zap.Logger) *Arbiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arbiter{provider: provider, logger: logger}
}

type arbiterVerdict struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (a *Arbiter) Arbitrate(ctx context.Context, text string) (Decision, error) {
	msgs := []ai.Message{
		{Role: "system", Content: moderatorPrompt},
		{Role: "user", Content: text},
	}

	var raw string
	var err error
	if jc, ok := a.provider.(ai.JSONChatter); ok {
		raw, err = jc.ChatJSON(ctx, msgs)
	} else {
		raw, err = a.provider.Chat(ctx, msgs)
	}
	if err != nil {
		a.logger.Warn("arbiter call failed", zap.Error(err))
		return Decision{}, fmt.Errorf("%w: classifier call: %v", common.ErrExternal, err)
	}

	var v arbiterVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		a.logger.Warn("arbiter reply not parseable", zap.String("raw", truncate(raw, 256)))
		return Decision{}, fmt.Errorf("%w: classifier reply not parseable", common.ErrExternal)
	}

	switch strings.ToUpper(strings.TrimSpace(v.Decision)) {
	case "APPROVE":
		return Decision{Approve: true, Reason: v.Reason}, nil
	case "REJECT":
		return Decision{Approve: false, Reason: v.Reason}, nil
	default:
		a.logger.Warn("arbiter reply off contract", zap.String("decision", v.Decision))
		return Decision{}, fmt.Errorf("%w: classifier decision %q off contract", common.ErrExternal, v.Decision)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
