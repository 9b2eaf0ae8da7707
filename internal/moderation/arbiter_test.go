package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenlisten/haven/internal/ai"
	"github.com/havenlisten/haven/internal/common"
)

type fakeClassifier struct {
	reply     string
	err       error
	calls     int
	jsonCalls int
	last      []ai.Message
}

func (f *fakeClassifier) Chat(_ context.Context, messages []ai.Message) (string, error) {
	f.calls++
	f.last = append([]ai.Message(nil), messages...)
	return f.reply, f.err
}

type fakeJSONClassifier struct {
	fakeClassifier
}

func (f *fakeJSONClassifier) ChatJSON(ctx context.Context, messages []ai.Message) (string, error) {
	f.jsonCalls++
	f.last = append([]ai.Message(nil), messages...)
	return f.reply, f.err
}

func TestArbitrate_Approve(t *testing.T) {
	p := &fakeClassifier{reply: `{"decision":"APPROVE","reason":"general positive statement"}`}
	a := NewArbiter(p, nil)

	dec, err := a.Arbitrate(context.Background(), "Sending good vibes your way.")
	require.NoError(t, err)
	assert.True(t, dec.Approve)
	assert.Equal(t, "general positive statement", dec.Reason)
}

func TestArbitrate_Reject(t *testing.T) {
	p := &fakeClassifier{reply: `{"decision":"REJECT","reason":"contains personal detail"}`}
	a := NewArbiter(p, nil)

	dec, err := a.Arbitrate(context.Background(), "my name is Alex")
	require.NoError(t, err)
	assert.False(t, dec.Approve)
	assert.Equal(t, "contains personal detail", dec.Reason)
}

func TestArbitrate_ToleratesCasingAndWhitespace(t *testing.T) {
	p := &fakeClassifier{reply: `{"decision":" approve ","reason":"ok"}`}
	a := NewArbiter(p, nil)

	dec, err := a.Arbitrate(context.Background(), "be kind")
	require.NoError(t, err)
	assert.True(t, dec.Approve)
}

func TestArbitrate_UnparseableReplyIsExternalError(t *testing.T) {
	p := &fakeClassifier{reply: "I think this is probably fine to post!"}
	a := NewArbiter(p, nil)

	_, err := a.Arbitrate(context.Background(), "anything")
	assert.ErrorIs(t, err, common.ErrExternal)
}

func TestArbitrate_OffContractDecisionIsExternalError(t *testing.T) {
	// A third variant must never be silently treated as an approval.
	p := &fakeClassifier{reply: `{"decision":"MAYBE","reason":"unsure"}`}
	a := NewArbiter(p, nil)

	_, err := a.Arbitrate(context.Background(), "anything")
	assert.ErrorIs(t, err, common.ErrExternal)
}

func TestArbitrate_TransportFailureIsExternalError(t *testing.T) {
	p := &fakeClassifier{err: errors.New("connection refused")}
	a := NewArbiter(p, nil)

	_, err := a.Arbitrate(context.Background(), "anything")
	assert.ErrorIs(t, err, common.ErrExternal)
}

func TestArbitrate_SendsPolicyPreambleAndText(t *testing.T) {
	p := &fakeClassifier{reply: `{"decision":"REJECT","reason":"r"}`}
	a := NewArbiter(p, nil)

	_, err := a.Arbitrate(context.Background(), "candidate text")
	require.NoError(t, err)
	require.Len(t, p.last, 2)
	assert.Equal(t, "system", p.last[0].Role)
	assert.Contains(t, p.last[0].Content, "REJECT")
	assert.Equal(t, "user", p.last[1].Role)
	assert.Equal(t, "candidate text", p.last[1].Content)
}

func TestArbitrate_PrefersJSONMode(t *testing.T) {
	p := &fakeJSONClassifier{}
	p.reply = `{"decision":"APPROVE","reason":"ok"}`
	a := NewArbiter(p, nil)

	_, err := a.Arbitrate(context.Background(), "be kind")
	require.NoError(t, err)
	assert.Equal(t, 1, p.jsonCalls)
	assert.Equal(t, 0, p.calls)
}
