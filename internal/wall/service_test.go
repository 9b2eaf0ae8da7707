package wall

import (
	"context"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/havenlisten/haven/internal/common"
	"github.com/havenlisten/haven/internal/moderation"
)

type scriptedArbiter struct {
	decision moderation.Decision
	err      error
	calls    int
}

func (a *scriptedArbiter) Arbitrate(_ context.Context, _ string) (moderation.Decision, error) {
	a.calls++
	return a.decision, a.err
}

type capturingPublisher struct {
	events []AuditEvent
}

func (p *capturingPublisher) PublishAuditEvent(_ context.Context, ev AuditEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Submission{}, &ModerationAudit{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, arb *scriptedArbiter) (*Service, *capturingPublisher) {
	t.Helper()
	pub := &capturingPublisher{}
	svc := NewService(NewRepo(openTestDB(t)), arb, nil, pub, nil)
	return svc, pub
}

func TestSubmit_LocalRejectShortCircuitsArbiter(t *testing.T) {
	arb := &scriptedArbiter{decision: moderation.Decision{Approve: true}}
	svc, pub := newTestService(t, arb)

	sub, err := svc.Submit(context.Background(), 1, "call me at 5551234567")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, sub.Status)
	assert.Equal(t, moderation.ReasonContactInfo, sub.Reason)
	assert.Equal(t, 0, arb.calls, "local rejection must never reach the classifier")

	require.Len(t, pub.events, 1)
	assert.Equal(t, SourceLocalFilter, pub.events[0].Source)
}

func TestSubmit_CrisisTextNeverReachesClassifier(t *testing.T) {
	arb := &scriptedArbiter{decision: moderation.Decision{Approve: true}}
	svc, _ := newTestService(t, arb)

	sub, err := svc.Submit(context.Background(), 1, "I feel hopeless and want to end it")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, sub.Status)
	assert.Equal(t, moderation.ReasonCrisisLanguage, sub.Reason)
	assert.Equal(t, 0, arb.calls)
}

func TestSubmit_ClassifierApprove(t *testing.T) {
	arb := &scriptedArbiter{decision: moderation.Decision{Approve: true, Reason: "positive and anonymous"}}
	svc, pub := newTestService(t, arb)

	sub, err := svc.Submit(context.Background(), 1, "Sending good vibes your way.")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, sub.Status)
	assert.Equal(t, 1, arb.calls)

	texts, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Contains(t, texts, "Sending good vibes your way.")

	require.Len(t, pub.events, 1)
	assert.Equal(t, SourceClassifier, pub.events[0].Source)
	assert.Equal(t, StatusApproved, pub.events[0].Status)
}

func TestSubmit_ClassifierReject(t *testing.T) {
	arb := &scriptedArbiter{decision: moderation.Decision{Approve: false, Reason: "too ambiguous"}}
	svc, _ := newTestService(t, arb)

	sub, err := svc.Submit(context.Background(), 1, "Keep going I guess.")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, sub.Status)
	assert.Equal(t, "too ambiguous", sub.Reason)
}

func TestSubmit_FailsClosedWhenClassifierUnavailable(t *testing.T) {
	arb := &scriptedArbiter{err: fmt.Errorf("%w: timeout", common.ErrExternal)}
	svc, pub := newTestService(t, arb)

	sub, err := svc.Submit(context.Background(), 1, "Sending good vibes your way.")
	require.NoError(t, err, "a classifier outage is not a submit failure")
	assert.Equal(t, StatusRejected, sub.Status)
	assert.Equal(t, ReasonModerationUnavailable, sub.Reason)

	texts, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Empty(t, texts, "an outage must never silently approve")

	require.Len(t, pub.events, 1)
	assert.Equal(t, SourceFailClosed, pub.events[0].Source)
}

func TestSubmit_ResubmitOverwritesSlot(t *testing.T) {
	arb := &scriptedArbiter{decision: moderation.Decision{Approve: true, Reason: "ok"}}
	svc, _ := newTestService(t, arb)

	first, err := svc.Submit(context.Background(), 7, "You are doing better than you think.")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, first.Status)

	// The second submit is rejected; the approved text must vanish with it.
	arb.decision = moderation.Decision{Approve: false, Reason: "negative affect"}
	second, err := svc.Submit(context.Background(), 7, "Everything is fine probably.")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, second.Status)

	mine, err := svc.GetMine(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Everything is fine probably.", mine.Text)
	assert.Equal(t, StatusRejected, mine.Status)
	assert.Equal(t, "negative affect", mine.Reason)

	texts, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, texts, "You are doing better than you think.")
	assert.NotContains(t, texts, "Everything is fine probably.")
}

func TestListApproved_ExcludesRejected(t *testing.T) {
	arb := &scriptedArbiter{decision: moderation.Decision{Approve: true, Reason: "ok"}}
	svc, _ := newTestService(t, arb)

	_, err := svc.Submit(context.Background(), 1, "You matter.")
	require.NoError(t, err)

	arb.decision = moderation.Decision{Approve: false, Reason: "no"}
	_, err = svc.Submit(context.Background(), 2, "Hidden message.")
	require.NoError(t, err)

	texts, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"You matter."}, texts)
}

func TestGetMine_NotFound(t *testing.T) {
	svc, _ := newTestService(t, &scriptedArbiter{})

	_, err := svc.GetMine(context.Background(), 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmit_ValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, &scriptedArbiter{})

	_, err := svc.Submit(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestListMyAudits_ReturnsOwnDecisions(t *testing.T) {
	arb := &scriptedArbiter{decision: moderation.Decision{Approve: true, Reason: "ok"}}
	svc, pub := newTestService(t, arb)

	_, err := svc.Submit(context.Background(), 4, "You matter.")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 5, "call me at 5551234567")
	require.NoError(t, err)

	for _, ev := range pub.events {
		require.NoError(t, svc.RecordAudit(context.Background(), ev))
	}

	audits, err := svc.ListMyAudits(context.Background(), 4, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, StatusApproved, audits[0].Status)

	audits, err = svc.ListMyAudits(context.Background(), 5, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, SourceLocalFilter, audits[0].Source)
}

func TestRecordAudit_PersistsEvent(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db), nil, nil, nil, nil)

	ev := AuditEvent{
		EventID: "01AUDITEVENT00000000000000",
		UserID:  3,
		Status:  StatusRejected,
		Reason:  "contains crisis or unsafe emotional language",
		Source:  SourceLocalFilter,
	}
	require.NoError(t, svc.RecordAudit(context.Background(), ev))

	var got ModerationAudit
	require.NoError(t, db.First(&got, "id = ?", ev.EventID).Error)
	assert.Equal(t, uint64(3), got.UserID)
	assert.Equal(t, SourceLocalFilter, got.Source)
}
