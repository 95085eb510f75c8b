package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sessionlite/sessionlite/internal/httpx"
	"github.com/sessionlite/sessionlite/internal/person"
	"github.com/sessionlite/sessionlite/internal/session"
	"github.com/sessionlite/sessionlite/internal/token"
	"github.com/sessionlite/sessionlite/pkg/id"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, email, username, password string) (id.PublicID, error)
	// Login verifies the credentials, creates the session row for this
	// device and issues access + refresh tokens bound to it.
	Login(ctx context.Context, email, password string, meta httpx.ClientMeta) (*LoginResult, error)
	// CurrentPrincipal implements session.AuthGate: it reads the person the
	// middleware resolved, (nil, nil) when the request carries none.
	CurrentPrincipal(ctx context.Context) (*person.Person, error)
	// InvalidateOtherDevices rehashes the (already verified) password and
	// revokes every refresh token of the person outside keepID. The rehash
	// mirrors what session-cookie frameworks do on logout-other-devices:
	// any cached credential material tied to the old hash stops matching.
	InvalidateOtherDevices(ctx context.Context, personID int64, keepID id.SessionID, password string) error
}

type LoginResult struct {
	Person    *person.Person
	SessionID id.SessionID
	Tokens    *token.IssueResult
}

type authService struct {
	personRepo  person.PersonRepo
	sessionRepo session.SessionRepo
	tokenRepo   token.RefreshTokenRepo
	tokens      token.TokenService
	logger      *zap.Logger
}

func NewAuthenticationService(
	personRepo person.PersonRepo,
	sessionRepo session.SessionRepo,
	tokenRepo token.RefreshTokenRepo,
	tokens token.TokenService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		personRepo:  personRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		tokens:      tokens,
		logger:      logger,
	}
}

func (a *authService) Register(ctx context.Context, email, username, password string) (id.PublicID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.logger.Error("failed to hash password", zap.Error(err))
		return "", err
	}

	publicID, err := a.personRepo.Create(ctx, &person.PersonDTO{
		Email:    email,
		Username: username,
		Password: string(hashed),
	})
	if err != nil {
		return "", err
	}

	return publicID, nil
}

func (a *authService) Login(ctx context.Context, email, password string, meta httpx.ClientMeta) (*LoginResult, error) {
	p, err := a.personRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, person.ErrNotFound) {
			// same outcome as a bad password so the response does not leak
			// which accounts exist
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)) != nil {
		a.logger.Debug("password mismatch at login", zap.Int64("person_id", p.ID))
		return nil, ErrInvalidCredentials
	}
	if !p.IsActive || p.IsDeleted {
		return nil, ErrUserNotActive
	}

	sessionID := id.SessionID(uuid.NewString())
	err = a.sessionRepo.Create(ctx, session.SessionRecord{
		ID:           sessionID,
		UserID:       p.ID,
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
		LastActivity: time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	tokens, err := a.tokens.Issue(ctx, p, sessionID, token.IssueMeta{
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("person logged in",
		zap.Int64("person_id", p.ID),
		zap.String("session_id", string(sessionID)),
	)
	return &LoginResult{Person: p, SessionID: sessionID, Tokens: tokens}, nil
}

func (a *authService) CurrentPrincipal(ctx context.Context) (*person.Person, error) {
	return PrincipalFromContext(ctx), nil
}

func (a *authService) InvalidateOtherDevices(ctx context.Context, personID int64, keepID id.SessionID, password string) error {
	rehashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.logger.Error("failed to rehash password", zap.Error(err))
		return err
	}
	if err := a.personRepo.UpdatePassword(ctx, personID, string(rehashed)); err != nil {
		return err
	}

	revoked, err := a.tokenRepo.RevokeAllExceptSession(ctx, personID, keepID)
	if err != nil {
		return err
	}

	a.logger.Info("invalidated other devices",
		zap.Int64("person_id", personID),
		zap.Int64("tokens_revoked", revoked),
	)
	return nil
}
