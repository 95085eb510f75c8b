package token

import (
	"context"
	"database/sql"
	"time"

	"github.com/sessionlite/sessionlite/pkg/id"
	"go.uber.org/zap"
)

// RefreshTokenDTO carries the necessary fields to persist a refresh token record.
type RefreshTokenDTO struct {
	PersonID  int64
	SessionID id.SessionID
	TokenHash string
	ExpiresAt time.Time
	UserAgent string
	IP        string
}

type RefreshTokenRepo interface {
	Create(ctx context.Context, dto RefreshTokenDTO) (string, error)
	RevokeBySession(ctx context.Context, sessionID id.SessionID) error
	// RevokeAllExceptSession voids every live refresh token of the person
	// whose session id differs from keepID. Returns the number of tokens
	// revoked.
	RevokeAllExceptSession(ctx context.Context, personID int64, keepID id.SessionID) (int64, error)
}

const (
	insertRefreshTokenQuery = `
						INSERT INTO refresh_tokens (
						person_id, session_id, token_hash, expires_at, user_agent, ip
						) VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING id
						`
	revokeBySessionQuery = `
						UPDATE refresh_tokens
						SET revoked_at = COALESCE(revoked_at, now())
						WHERE session_id = $1 AND revoked_at IS NULL
						`
	revokeAllExceptSessionQuery = `
						UPDATE refresh_tokens
						SET revoked_at = COALESCE(revoked_at, now())
						WHERE person_id = $1 AND session_id <> $2 AND revoked_at IS NULL
						`
)

type refreshTokenRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRefreshTokenRepo(db *sql.DB, logger *zap.Logger) RefreshTokenRepo {
	return &refreshTokenRepo{db: db, logger: logger}
}

func (r *refreshTokenRepo) Create(ctx context.Context, dto RefreshTokenDTO) (string, error) {
	var rid string
	row := r.db.QueryRowContext(ctx, insertRefreshTokenQuery,
		dto.PersonID,
		string(dto.SessionID),
		dto.TokenHash,
		dto.ExpiresAt,
		dto.UserAgent,
		dto.IP,
	)
	if err := row.Scan(&rid); err != nil {
		r.logger.Error("failed to insert refresh token", zap.Error(err))
		return "", err
	}
	return rid, nil
}

func (r *refreshTokenRepo) RevokeBySession(ctx context.Context, sessionID id.SessionID) error {
	_, err := r.db.ExecContext(ctx, revokeBySessionQuery, string(sessionID))
	if err != nil {
		r.logger.Error("failed to revoke refresh tokens for session",
			zap.String("session_id", string(sessionID)), zap.Error(err))
	}
	return err
}

func (r *refreshTokenRepo) RevokeAllExceptSession(ctx context.Context, personID int64, keepID id.SessionID) (int64, error) {
	res, err := r.db.ExecContext(ctx, revokeAllExceptSessionQuery, personID, string(keepID))
	if err != nil {
		r.logger.Error("failed to revoke refresh tokens for other sessions",
			zap.Int64("person_id", personID), zap.Error(err))
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// nothing live besides the kept session, which is fine
		r.logger.Debug("no refresh tokens revoked", zap.Int64("person_id", personID))
	}
	return n, nil
}
