package session

import (
	"context"
	"database/sql"

	"github.com/sessionlite/sessionlite/pkg/id"
	"go.uber.org/zap"
)

// SessionRepo translates between the raw sessions table and typed records.
// It carries no business rules; the service layer decides who may delete
// what.
type SessionRepo interface {
	Create(ctx context.Context, rec SessionRecord) error
	// ListByOwner returns every session row of the owner, most recently
	// active first. An owner without rows yields an empty slice, not an
	// error.
	ListByOwner(ctx context.Context, ownerID int64) ([]SessionRecord, error)
	// CurrentSessionID returns the session id bound to the request context.
	// Stable across any number of calls within one request.
	CurrentSessionID(ctx context.Context) id.SessionID
	Touch(ctx context.Context, sessionID id.SessionID, ip string, lastActivity int64) error
	// DeleteAllExcept removes every row of ownerID except keepID and
	// reports how many rows went away. The predicate is always scoped by
	// owner, never by id alone.
	DeleteAllExcept(ctx context.Context, ownerID int64, keepID id.SessionID) (int64, error)
}

const (
	insertSessionQuery = `
						INSERT INTO sessions (id, user_id, ip_address, user_agent, last_activity)
						VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
						`
	listSessionsByOwnerQuery = `
						SELECT id, user_id, COALESCE(ip_address, ''), COALESCE(user_agent, ''), last_activity
						FROM sessions
						WHERE user_id = $1
						ORDER BY last_activity DESC, id
						`
	touchSessionQuery = `
						UPDATE sessions
						SET last_activity = $2, ip_address = COALESCE(NULLIF($3, ''), ip_address)
						WHERE id = $1
						`
	deleteAllExceptQuery = `
						DELETE FROM sessions
						WHERE user_id = $1 AND id <> $2
						`
)

type sessionRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSessionRepo(db *sql.DB, logger *zap.Logger) SessionRepo {
	return &sessionRepo{db: db, logger: logger}
}

func (s *sessionRepo) Create(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx, insertSessionQuery,
		string(rec.ID),
		rec.UserID,
		rec.IPAddress,
		rec.UserAgent,
		rec.LastActivity,
	)
	if err != nil {
		s.logger.Error("failed to create session", zap.String("id", string(rec.ID)), zap.Error(err))
	}
	return err
}

func (s *sessionRepo) ListByOwner(ctx context.Context, ownerID int64) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, listSessionsByOwnerQuery, ownerID)
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	records := make([]SessionRecord, 0)
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.IPAddress, &rec.UserAgent, &rec.LastActivity); err != nil {
			s.logger.Error("failed to scan session row", zap.Error(err))
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *sessionRepo) CurrentSessionID(ctx context.Context) id.SessionID {
	return IDFromContext(ctx)
}

func (s *sessionRepo) Touch(ctx context.Context, sessionID id.SessionID, ip string, lastActivity int64) error {
	_, err := s.db.ExecContext(ctx, touchSessionQuery, string(sessionID), lastActivity, ip)
	if err != nil {
		s.logger.Error("failed to touch session", zap.String("id", string(sessionID)), zap.Error(err))
	}
	return err
}

func (s *sessionRepo) DeleteAllExcept(ctx context.Context, ownerID int64, keepID id.SessionID) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteAllExceptQuery, ownerID, string(keepID))
	if err != nil {
		s.logger.Error("failed to delete other sessions",
			zap.Int64("owner_id", ownerID), zap.Error(err))
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
