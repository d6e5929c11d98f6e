package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/listman/internal/model"
)

// uniqueViolation はPostgreSQLのユニーク制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresRefreshTokenRepo はPostgreSQLを使用したリフレッシュトークンリポジトリ。
// トークン列のユニーク制約が重複検出と原子性の実施機構となる
// （アプリケーションレベルのロックは使用しない）。
type PostgresRefreshTokenRepo struct {
	db *sql.DB
}

// NewPostgresRefreshTokenRepo はPostgresRefreshTokenRepoを生成する。
func NewPostgresRefreshTokenRepo(db *sql.DB) *PostgresRefreshTokenRepo {
	return &PostgresRefreshTokenRepo{db: db}
}

// Create はリフレッシュトークンレコードを作成する。
// トークン値が既に存在する場合はmodel.ErrDuplicateTokenを返す。
func (r *PostgresRefreshTokenRepo) Create(ctx context.Context, token *model.RefreshToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token, user_id, user_agent, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.Token, token.UserID, token.UserAgent, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.ErrDuplicateToken
		}
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// FindValid は有効期限内のトークンレコードを取得する。
// 存在しない場合と期限切れの場合はnilを返す。
// expires_at > now() の比較により、ちょうど期限時刻のレコードは期限切れ扱いになる。
func (r *PostgresRefreshTokenRepo) FindValid(ctx context.Context, token string) (*model.RefreshToken, error) {
	record := &model.RefreshToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, user_agent, expires_at, created_at
		 FROM refresh_tokens
		 WHERE token = $1 AND expires_at > now()`,
		token,
	).Scan(&record.Token, &record.UserID, &record.UserAgent, &record.ExpiresAt, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	return record, nil
}

// Delete は指定トークンのレコードを削除する。存在しない場合もエラーにしない（冪等）。
func (r *PostgresRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// compile-time interface check
var _ RefreshTokenRepository = (*PostgresRefreshTokenRepo)(nil)
