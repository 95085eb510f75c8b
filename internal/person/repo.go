package person

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sessionlite/sessionlite/pkg/id"
	"go.uber.org/zap"
)

type PersonDTO struct {
	Email    string
	Username string
	Password string // bcrypt hash, never the plaintext
}

type PersonRepo interface {
	Create(ctx context.Context, dto *PersonDTO) (id.PublicID, error)
	GetByEmail(ctx context.Context, email string) (*Person, error)
	GetByPublicID(ctx context.Context, publicID id.PublicID) (*Person, error)
	UpdatePassword(ctx context.Context, personID int64, hash string) error
}

const (
	insertPersonQuery = `
						INSERT INTO persons (email, username, password, role, is_active, is_deleted)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING public_id
						`
	selectPersonColumns = `
						SELECT id, public_id, email, username, password, role, is_active, is_deleted, created_at, updated_at
						FROM persons
						`
	selectPersonByEmailQuery    = selectPersonColumns + ` WHERE lower(email) = lower($1) AND NOT is_deleted`
	selectPersonByPublicIDQuery = selectPersonColumns + ` WHERE public_id = $1 AND NOT is_deleted`
	updatePersonPasswordQuery   = `
						UPDATE persons SET password = $2, updated_at = now() WHERE id = $1
						`
)

type personRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPersonRepo(db *sql.DB, logger *zap.Logger) PersonRepo {
	return &personRepo{
		db:     db,
		logger: logger,
	}
}

func (p *personRepo) Create(ctx context.Context, dto *PersonDTO) (id.PublicID, error) {
	row := p.db.QueryRowContext(ctx,
		insertPersonQuery,
		strings.ToLower(strings.TrimSpace(dto.Email)),
		strings.TrimSpace(dto.Username),
		dto.Password,
		RoleUser,
		true,
		false,
	)

	var publicID id.PublicID
	if err := row.Scan(&publicID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "persons_email_key":
				p.logger.Debug("duplicate email", zap.String("email", dto.Email))
				return "", ErrDuplicateEmail
			case "persons_username_key":
				p.logger.Debug("duplicate username", zap.String("username", dto.Username))
				return "", ErrDuplicateUsername
			}
		}
		p.logger.Error("failed to create person", zap.Error(err))
		return "", err
	}

	return publicID, nil
}

func (p *personRepo) GetByEmail(ctx context.Context, email string) (*Person, error) {
	return p.scanOne(p.db.QueryRowContext(ctx, selectPersonByEmailQuery, strings.TrimSpace(email)))
}

func (p *personRepo) GetByPublicID(ctx context.Context, publicID id.PublicID) (*Person, error) {
	return p.scanOne(p.db.QueryRowContext(ctx, selectPersonByPublicIDQuery, string(publicID)))
}

func (p *personRepo) UpdatePassword(ctx context.Context, personID int64, hash string) error {
	res, err := p.db.ExecContext(ctx, updatePersonPasswordQuery, personID, hash)
	if err != nil {
		p.logger.Error("failed to update password", zap.Int64("person_id", personID), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *personRepo) scanOne(row *sql.Row) (*Person, error) {
	var rec Person
	err := row.Scan(
		&rec.ID,
		&rec.PublicID,
		&rec.Email,
		&rec.Username,
		&rec.Password,
		&rec.Role,
		&rec.IsActive,
		&rec.IsDeleted,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Error("failed to load person", zap.Error(err))
		return nil, err
	}
	return &rec, nil
}
