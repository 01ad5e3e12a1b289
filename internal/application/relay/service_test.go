package relay

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-relay-bot/internal/domain"
	"github.com/go-relay-bot/internal/logging"
	"github.com/go-relay-bot/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const operatorID = int64(1000)

var frozenTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// stubClock pins Now to a fixed instant. The relay service never schedules
// timers, so AfterFunc is unreachable.
type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func (c stubClock) AfterFunc(time.Duration, func()) clock.Timer { return nil }

// --- mocks ---

type mockLogRepo struct{ mock.Mock }

func (m *mockLogRepo) Insert(ctx context.Context, msg *domain.RelayMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	return m.Called(ctx, chatID, text).Error(0)
}
func (m *mockSender) ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	return m.Called(ctx, chatID, fromChatID, messageID).Error(0)
}
func (m *mockSender) CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	return m.Called(ctx, chatID, fromChatID, messageID).Error(0)
}

// --- builder ---

func newTestService(repo *mockLogRepo, auth *mockAuth, sender *mockSender) *Service {
	return NewService(ServiceDeps{
		LogRepo:    repo,
		Auth:       auth,
		Sender:     sender,
		Clock:      stubClock{now: frozenTime},
		OperatorID: operatorID,
		Logger:     logging.Discard(),
	})
}

// --- Submit ---

func TestSubmit_UnauthorizedUserRejectedAndNotRecorded(t *testing.T) {
	repo := &mockLogRepo{}
	auth := &mockAuth{}
	auth.On("IsAuthorized", mock.Anything, int64(42)).Return(false, nil)
	svc := newTestService(repo, auth, &mockSender{})

	err := svc.Submit(context.Background(), 42, "bob", domain.RelayKindRequest, "hello")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSubmit_AuthorizedRequestRecordedAndForwarded(t *testing.T) {
	repo := &mockLogRepo{}
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(m *domain.RelayMessage) bool {
		return m.UserID == 42 && m.Kind == domain.RelayKindRequest &&
			m.Body == "hello" && m.MessageID != "" && m.Timestamp.Equal(frozenTime)
	})).Return(nil)
	auth := &mockAuth{}
	auth.On("IsAuthorized", mock.Anything, int64(42)).Return(true, nil)
	sender := &mockSender{}
	sender.On("SendMessage", mock.Anything, operatorID, mock.MatchedBy(func(text string) bool {
		// formatted notification names the sender and carries the body
		return containsAll(text, "@bob (42)", "hello", "Request")
	})).Return(nil)
	svc := newTestService(repo, auth, sender)

	require.NoError(t, svc.Submit(context.Background(), 42, "bob", domain.RelayKindRequest, "hello"))
	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestSubmit_ComplaintUsesComplaintLabel(t *testing.T) {
	repo := &mockLogRepo{}
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(m *domain.RelayMessage) bool {
		return m.Kind == domain.RelayKindComplaint
	})).Return(nil)
	auth := &mockAuth{}
	auth.On("IsAuthorized", mock.Anything, int64(42)).Return(true, nil)
	sender := &mockSender{}
	sender.On("SendMessage", mock.Anything, operatorID, mock.MatchedBy(func(text string) bool {
		return containsAll(text, "Complaint", "too slow")
	})).Return(nil)
	svc := newTestService(repo, auth, sender)

	require.NoError(t, svc.Submit(context.Background(), 42, "bob", domain.RelayKindComplaint, "too slow"))
}

func TestSubmit_EmptyTextRejected(t *testing.T) {
	auth := &mockAuth{}
	auth.On("IsAuthorized", mock.Anything, int64(42)).Return(true, nil)
	repo := &mockLogRepo{}
	svc := newTestService(repo, auth, &mockSender{})

	err := svc.Submit(context.Background(), 42, "bob", domain.RelayKindRequest, "")

	assert.ErrorIs(t, err, domain.ErrBadRequest)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSubmit_OperatorSendFailureSurfaced(t *testing.T) {
	repo := &mockLogRepo{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	auth := &mockAuth{}
	auth.On("IsAuthorized", mock.Anything, int64(42)).Return(true, nil)
	sender := &mockSender{}
	sender.On("SendMessage", mock.Anything, operatorID, mock.Anything).
		Return(errors.New("chat unreachable"))
	svc := newTestService(repo, auth, sender)

	err := svc.Submit(context.Background(), 42, "bob", domain.RelayKindRequest, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat unreachable")
}

// --- Direct delivery ---

func TestDirectText_DeliveryFailureWrapped(t *testing.T) {
	sender := &mockSender{}
	sender.On("SendMessage", mock.Anything, int64(42), "hi").
		Return(errors.New("blocked by user"))
	svc := newTestService(&mockLogRepo{}, &mockAuth{}, sender)

	err := svc.DirectText(context.Background(), 42, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked by user")
}

func TestDirectCopy_CopiesRepliedMessage(t *testing.T) {
	sender := &mockSender{}
	sender.On("CopyMessage", mock.Anything, int64(42), operatorID, 7).Return(nil)
	svc := newTestService(&mockLogRepo{}, &mockAuth{}, sender)

	require.NoError(t, svc.DirectCopy(context.Background(), 42, operatorID, 7))
	sender.AssertExpectations(t)
}

// --- Auto relay ---

func TestForwardToOperator(t *testing.T) {
	sender := &mockSender{}
	sender.On("ForwardMessage", mock.Anything, operatorID, int64(42), 9).Return(nil)
	svc := newTestService(&mockLogRepo{}, &mockAuth{}, sender)

	require.NoError(t, svc.ForwardToOperator(context.Background(), 42, 9))
	sender.AssertExpectations(t)
}

func TestCommandNotice_SummarizesInsteadOfForwarding(t *testing.T) {
	sender := &mockSender{}
	sender.On("SendMessage", mock.Anything, operatorID, mock.MatchedBy(func(text string) bool {
		return containsAll(text, "@bob (42)", "/frobnicate now")
	})).Return(nil)
	svc := newTestService(&mockLogRepo{}, &mockAuth{}, sender)

	require.NoError(t, svc.CommandNotice(context.Background(), 42, "bob", "/frobnicate now"))
	sender.AssertNotCalled(t, "ForwardMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
