package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hr-rest-clean-arch/internal/core/user"
	pgdb "github.com/ogurasousui/hr-rest-clean-arch/internal/platform/db/postgres"
)

// TokenRepository は PostgreSQL を利用した API トークン永続化の実装です。
type TokenRepository struct {
	pool pgdb.Queryer
}

// NewTokenRepository は TokenRepository を生成します。
func NewTokenRepository(pool pgdb.Queryer) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Create はトークンを新規作成します。
func (r *TokenRepository) Create(ctx context.Context, t *user.Token) (*user.Token, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO auth_tokens (key, user_id, created_at)
        VALUES ($1, $2, $3)
        RETURNING key, user_id, created_at
    `, t.Key, t.UserID, t.CreatedAt)

	var created user.Token
	if err := row.Scan(&created.Key, &created.UserID, &created.CreatedAt); err != nil {
		return nil, translateTokenPgError(err)
	}
	return &created, nil
}

// FindByUserID はユーザー ID でトークンを取得します。
func (r *TokenRepository) FindByUserID(ctx context.Context, userID string) (*user.Token, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT key, user_id, created_at
          FROM auth_tokens
         WHERE user_id = $1
         LIMIT 1
    `, userID)

	var found user.Token
	if err := row.Scan(&found.Key, &found.UserID, &found.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrTokenNotFound
		}
		return nil, err
	}
	return &found, nil
}

// FindUserByKey はトークンキーからユーザーを取得します。
func (r *TokenRepository) FindUserByKey(ctx context.Context, key string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT u.id, u.email, u.username, u.password_hash, u.role, u.is_active, u.date_joined
          FROM auth_tokens t
          JOIN users u ON u.id = t.user_id
         WHERE t.key = $1
         LIMIT 1
    `, key)

	found, err := scanUser(row)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrTokenNotFound
		}
		return nil, err
	}
	return found, nil
}

func translateTokenPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == foreignKeyViolationCode {
			return user.ErrUserNotFound
		}
	}

	return err
}
