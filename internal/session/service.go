package session

import (
	"context"
	"time"

	"github.com/sessionlite/sessionlite/internal/person"
	"github.com/sessionlite/sessionlite/pkg/id"
	"go.uber.org/zap"
)

// AuthGate is the slice of the authentication layer this service needs:
// who is calling, and the ability to void their other devices' cached
// authentication artifacts.
type AuthGate interface {
	// CurrentPrincipal resolves the acting person, or (nil, nil) when the
	// request carries no identity.
	CurrentPrincipal(ctx context.Context) (*person.Person, error)
	// InvalidateOtherDevices voids authentication state (refresh tokens,
	// password rehash) for every session of the person except keepID. The
	// password must already be verified by the caller.
	InvalidateOtherDevices(ctx context.Context, personID int64, keepID id.SessionID, password string) error
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(plaintext, hash string) bool
}

type BrowserSessionService interface {
	// ListForCurrentUser returns the caller's sessions, most recently
	// active first. Unauthenticated callers get an empty slice, not an
	// error.
	ListForCurrentUser(ctx context.Context) ([]SessionView, error)
	// LogoutOtherSessionsWithPassword revokes every session of the caller
	// except the current one, gated behind password re-verification.
	// Returns ErrUnauthenticated without a principal and
	// ErrInvalidCredential on a password mismatch; in both cases nothing
	// has been mutated.
	LogoutOtherSessionsWithPassword(ctx context.Context, password string) (int64, error)
	// ForceLogoutOthersForUser is the administrative variant: the caller
	// names the target directly. A nil password skips the auth-layer
	// invalidation; the row deletion always runs.
	ForceLogoutOthersForUser(ctx context.Context, userID int64, password *string) (int64, error)
	ActiveSessionCount(ctx context.Context) (int, error)
	HasMultipleSessions(ctx context.Context) (bool, error)
}

type browserSessionService struct {
	repo     SessionRepo
	gate     AuthGate
	verifier PasswordVerifier
	logger   *zap.Logger
}

func NewBrowserSessionService(repo SessionRepo, gate AuthGate, verifier PasswordVerifier, logger *zap.Logger) BrowserSessionService {
	return &browserSessionService{
		repo:     repo,
		gate:     gate,
		verifier: verifier,
		logger:   logger,
	}
}

func (s *browserSessionService) ListForCurrentUser(ctx context.Context) ([]SessionView, error) {
	p, err := s.gate.CurrentPrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []SessionView{}, nil
	}

	records, err := s.repo.ListByOwner(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	current := s.repo.CurrentSessionID(ctx)
	views := make([]SessionView, 0, len(records))
	for _, rec := range records {
		views = append(views, toView(rec, current))
	}
	return views, nil
}

func (s *browserSessionService) LogoutOtherSessionsWithPassword(ctx context.Context, password string) (int64, error) {
	p, err := s.gate.CurrentPrincipal(ctx)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, ErrUnauthenticated
	}

	// the caller already holds a valid session; the fresh password check is
	// what keeps a hijacked token from locking the real owner out
	if !s.verifier.Verify(password, p.Password) {
		s.logger.Debug("password verification failed for session revocation", zap.Int64("person_id", p.ID))
		return 0, ErrInvalidCredential
	}

	return s.ForceLogoutOthersForUser(ctx, p.ID, &password)
}

func (s *browserSessionService) ForceLogoutOthersForUser(ctx context.Context, userID int64, password *string) (int64, error) {
	current := s.repo.CurrentSessionID(ctx)

	if password != nil {
		if err := s.gate.InvalidateOtherDevices(ctx, userID, current, *password); err != nil {
			return 0, err
		}
	}

	deleted, err := s.repo.DeleteAllExcept(ctx, userID, current)
	if err != nil {
		return 0, err
	}

	s.logger.Info("revoked other sessions",
		zap.Int64("person_id", userID),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}

func (s *browserSessionService) ActiveSessionCount(ctx context.Context) (int, error) {
	views, err := s.ListForCurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return len(views), nil
}

func (s *browserSessionService) HasMultipleSessions(ctx context.Context) (bool, error) {
	count, err := s.ActiveSessionCount(ctx)
	if err != nil {
		return false, err
	}
	return count > 1, nil
}

func toView(rec SessionRecord, current id.SessionID) SessionView {
	ip := rec.IPAddress
	if ip == "" {
		ip = "Unknown"
	}
	ua := rec.UserAgent
	if ua == "" {
		ua = "Unknown"
	}
	return SessionView{
		ID:           rec.ID,
		IPAddress:    ip,
		UserAgent:    ua,
		LastActiveAt: time.Unix(rec.LastActivity, 0).UTC(),
		IsCurrent:    rec.ID == current,
		DeviceHint:   Classify(rec.UserAgent),
	}
}
