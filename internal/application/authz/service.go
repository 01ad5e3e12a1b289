package authz

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/go-relay-bot/internal/domain"
	"github.com/go-relay-bot/internal/pkg/clock"
)

const expiredNotice = "⏰ Your access has expired. Ask the operator for a new password."

// storeTimeout bounds the background store/notify work done by expiry timers,
// which have no caller context.
const storeTimeout = 10 * time.Second

// UserRepository is the persisted credential store the service needs.
type UserRepository interface {
	Get(ctx context.Context, userID int64) (*domain.UserRecord, error)
	Upsert(ctx context.Context, userID int64, updates map[string]interface{}) error
	CountAuthorized(ctx context.Context) (int, error)
	ListAuthorized(ctx context.Context) ([]domain.UserRecord, error)
}

// Notifier delivers the expiry notice to a user.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Stats is the read-only aggregate returned by Stats.
type Stats struct {
	AuthorizedUsers int
	Uptime          time.Duration
}

// ServiceDeps holds the collaborators for NewService.
type ServiceDeps struct {
	UserRepo   UserRepository
	Notifier   Notifier
	Clock      clock.Clock
	OperatorID int64
	Logger     *slog.Logger
}

// Service owns the credential lifecycle: it issues one-time passwords,
// redeems them into persisted authorized state, revokes access and expires
// unredeemed credentials. It is the only writer of the users table and of
// the in-memory pending table.
type Service struct {
	users      UserRepository
	notifier   Notifier
	clock      clock.Clock
	operatorID int64
	log        *slog.Logger
	startedAt  time.Time

	mu      sync.Mutex
	pending map[int64]*pendingCredential
}

// pendingCredential is a one-time password awaiting redemption. At most one
// exists per user; issuing a new one replaces it.
type pendingCredential struct {
	password  string
	issuedAt  time.Time
	expiresAt time.Time
	timer     clock.Timer
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		users:      deps.UserRepo,
		notifier:   deps.Notifier,
		clock:      deps.Clock,
		operatorID: deps.OperatorID,
		log:        deps.Logger,
		startedAt:  deps.Clock.Now(),
		pending:    make(map[int64]*pendingCredential),
	}
}

// Grant issues a fresh one-time password for userID, valid for ttl. Any
// previous pending credential for the same user is replaced and its timer
// cancelled. The plaintext password is returned to the caller only.
func (s *Service) Grant(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive: %w", domain.ErrBadRequest)
	}
	password, err := newPassword()
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	s.mu.Lock()
	if prev, ok := s.pending[userID]; ok {
		prev.timer.Stop()
	}
	s.pending[userID] = &pendingCredential{
		password:  password,
		issuedAt:  now,
		expiresAt: now.Add(ttl),
		timer:     s.clock.AfterFunc(ttl, func() { s.expire(userID, password) }),
	}
	s.mu.Unlock()

	s.log.Info("issued one-time password", "user_id", userID, "ttl", ttl)
	return password, nil
}

// Redeem exchanges a pending one-time password for persisted authorized
// state. The comparison is byte-for-byte against the most recently issued
// password; any mismatch, including "no pending credential at all", yields
// the same domain.ErrInvalidCredential so callers cannot probe the table.
func (s *Service) Redeem(ctx context.Context, userID int64, username, password string) error {
	s.mu.Lock()
	p, ok := s.pending[userID]
	if ok && p.password == password {
		p.timer.Stop()
		delete(s.pending, userID)
		s.mu.Unlock()

		err := s.users.Upsert(ctx, userID, map[string]interface{}{
			"authorized": true,
			"username":   username,
			"expires_at": nil,
		})
		if err != nil {
			// The store write failed, not the credential: put it back so a
			// retry within the original TTL can still succeed.
			s.reinstate(userID, p)
			return fmt.Errorf("persist authorization for %d: %w", userID, err)
		}
		s.log.Info("credential redeemed", "user_id", userID)
		return nil
	}
	s.mu.Unlock()

	if authorized, err := s.IsAuthorized(ctx, userID); err == nil && authorized {
		return domain.ErrAlreadyAuthorized
	}
	return domain.ErrInvalidCredential
}

// Revoke flips an existing user record to unauthorized. Revoking an unknown
// user is a no-op: no record is created.
func (s *Service) Revoke(ctx context.Context, userID int64) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.users.Upsert(ctx, userID, map[string]interface{}{"authorized": false}); err != nil {
		return err
	}
	s.log.Info("access revoked", "user_id", userID)
	return nil
}

// IsAuthorized reports whether userID may use gated commands. The operator
// identity is implicitly authorized; everyone else needs a persisted record
// with authorized=true. A pending credential alone never authorizes.
func (s *Service) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	if userID == s.operatorID {
		return true, nil
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Authorized, nil
}

// Stats returns the count of authorized records and the process uptime.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	count, err := s.users.CountAuthorized(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		AuthorizedUsers: count,
		Uptime:          s.clock.Now().Sub(s.startedAt),
	}, nil
}

// ListAuthorized enumerates all authorized records.
func (s *Service) ListAuthorized(ctx context.Context) ([]domain.UserRecord, error) {
	return s.users.ListAuthorized(ctx)
}

// Close stops all pending expiry timers. Pending credentials are not
// persisted and do not survive a restart.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, userID)
	}
}

// reinstate restores a consumed credential after a failed store write. The
// original deadline stands: the entry gets a fresh timer for whatever TTL is
// left. A grant issued in the meantime wins and the old credential stays
// consumed; so does one whose TTL already ran out.
func (s *Service) reinstate(userID int64, p *pendingCredential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[userID]; exists {
		return
	}
	remaining := p.expiresAt.Sub(s.clock.Now())
	if remaining <= 0 {
		return
	}
	password := p.password
	p.timer = s.clock.AfterFunc(remaining, func() { s.expire(userID, password) })
	s.pending[userID] = p
}

// expire is the timer callback for a credential issued with the given
// password. The pending entry is the single source of truth for the
// redemption race: if it is gone, or holds a different password because the
// grant was replaced, the timer is stale and does nothing.
func (s *Service) expire(userID int64, password string) {
	s.mu.Lock()
	p, ok := s.pending[userID]
	if !ok || p.password != password {
		s.mu.Unlock()
		return
	}
	delete(s.pending, userID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	u, err := s.users.Get(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound) || (err == nil && !u.Authorized):
		// Never redeemed and never previously authorized: nothing to revoke.
		s.log.Info("pending credential expired unredeemed", "user_id", userID)
		return
	case err != nil:
		// Cannot tell whether the user holds authorized state; don't guess.
		s.log.Error("could not check record for expired credential", "user_id", userID, "err", err)
		return
	}
	if err := s.users.Upsert(ctx, userID, map[string]interface{}{"authorized": false}); err != nil {
		s.log.Error("failed to revoke expired access", "user_id", userID, "err", err)
		return
	}
	if err := s.notifier.SendMessage(ctx, userID, expiredNotice); err != nil {
		s.log.Warn("failed to deliver expiry notice", "user_id", userID, "err", err)
	}
	s.log.Info("access expired", "user_id", userID)
}

// newPassword draws a uniformly random 8-digit numeric password. Collisions
// across users are accepted: credentials are keyed per identity, so a
// duplicate password in another user's entry is harmless.
func newPassword() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000000))
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return fmt.Sprintf("%08d", n.Int64()+10000000), nil
}
