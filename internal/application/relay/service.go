package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-relay-bot/internal/domain"
	"github.com/go-relay-bot/internal/pkg/clock"
	"github.com/go-relay-bot/internal/pkg/id"
)

// UnauthorizedNotice is the fixed rejection sent whenever a gated action is
// attempted without authorization.
const UnauthorizedNotice = "🚫 Unauthorized User\n\nUse /login (your_password) to access this bot."

// LogRepository appends relay messages to the audit log.
type LogRepository interface {
	Insert(ctx context.Context, m *domain.RelayMessage) error
}

// AuthChecker is the slice of the authorization service the relay needs.
type AuthChecker interface {
	IsAuthorized(ctx context.Context, userID int64) (bool, error)
}

// Sender delivers messages through the chat transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error
	CopyMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error
}

// ServiceDeps holds the collaborators for NewService.
type ServiceDeps struct {
	LogRepo    LogRepository
	Auth       AuthChecker
	Sender     Sender
	Clock      clock.Clock
	OperatorID int64
	Logger     *slog.Logger
}

// Service moves content between ordinary users and the operator. All
// transport failures it reports are per-request; none are fatal.
type Service struct {
	logRepo    LogRepository
	auth       AuthChecker
	sender     Sender
	clock      clock.Clock
	operatorID int64
	log        *slog.Logger
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		logRepo:    deps.LogRepo,
		auth:       deps.Auth,
		sender:     deps.Sender,
		clock:      deps.Clock,
		operatorID: deps.OperatorID,
		log:        deps.Logger,
	}
}

// Submit records a request or complaint from an authorized user and forwards
// a formatted copy to the operator. Returns domain.ErrUnauthorized when the
// sender holds no valid authorization and domain.ErrBadRequest on empty text.
func (s *Service) Submit(ctx context.Context, userID int64, username, kind, text string) error {
	authorized, err := s.auth.IsAuthorized(ctx, userID)
	if err != nil {
		return fmt.Errorf("authorization check: %w", err)
	}
	if !authorized {
		return domain.ErrUnauthorized
	}
	if text == "" {
		return fmt.Errorf("empty %s text: %w", kind, domain.ErrBadRequest)
	}

	if err := s.logRepo.Insert(ctx, &domain.RelayMessage{
		MessageID: id.New(),
		UserID:    userID,
		Kind:      kind,
		Body:      text,
		Timestamp: s.clock.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}

	if err := s.sender.SendMessage(ctx, s.operatorID, formatSubmission(userID, username, kind, text)); err != nil {
		return fmt.Errorf("notify operator: %w", err)
	}
	s.log.Info("relay message submitted", "user_id", userID, "kind", kind)
	return nil
}

// DirectText sends arbitrary operator text to the target identity.
func (s *Service) DirectText(ctx context.Context, targetID int64, text string) error {
	if err := s.sender.SendMessage(ctx, targetID, text); err != nil {
		return fmt.Errorf("deliver to %d: %w", targetID, err)
	}
	return nil
}

// DirectCopy copies a rich message (the one the operator replied to) to the
// target identity.
func (s *Service) DirectCopy(ctx context.Context, targetID, fromChatID int64, messageID int) error {
	if err := s.sender.CopyMessage(ctx, targetID, fromChatID, messageID); err != nil {
		return fmt.Errorf("deliver to %d: %w", targetID, err)
	}
	return nil
}

// ForwardToOperator forwards an exact copy of a non-command message from an
// ordinary user to the operator.
func (s *Service) ForwardToOperator(ctx context.Context, fromChatID int64, messageID int) error {
	return s.sender.ForwardMessage(ctx, s.operatorID, fromChatID, messageID)
}

// CommandNotice tells the operator that a user sent a command, as a one-line
// summary rather than a forwarded copy.
func (s *Service) CommandNotice(ctx context.Context, senderID int64, username, raw string) error {
	return s.sender.SendMessage(ctx, s.operatorID,
		fmt.Sprintf("⚙️ %s sent: %s", handle(senderID, username), raw))
}

func formatSubmission(userID int64, username, kind, text string) string {
	label := "Request"
	header := "📥 New Request"
	if kind == domain.RelayKindComplaint {
		label = "Complaint"
		header = "📢 New Complaint"
	}
	return fmt.Sprintf("%s\n\n👤 From: %s\n📝 %s: %s", header, handle(userID, username), label, text)
}

func handle(userID int64, username string) string {
	if username == "" {
		return fmt.Sprintf("(%d)", userID)
	}
	return fmt.Sprintf("@%s (%d)", username, userID)
}
