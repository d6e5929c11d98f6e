package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/listman/internal/model"
	"github.com/hitoshi/listman/internal/repository"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// nilを渡した場合は記録をスキップする。
type MetricsRecorder interface {
	RecordLogin(newUser bool)
	RecordTokenRefresh()
	RecordLogout()
}

// Service は認証に関するビジネスロジックを提供する。
// ログイン（外部IDアサーションの交換）、リフレッシュ、ログアウトを司る。
type Service struct {
	google    GoogleProvider
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	issuer    *Issuer
	metrics   MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(
	google GoogleProvider,
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	issuer *Issuer,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		google:    google,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		issuer:    issuer,
		metrics:   metrics,
	}
}

// LoginWithGoogle はGoogleの認可コードをローカルの認証情報に交換する。
// 未登録のGoogleサブジェクトIDの場合はユーザーを自動作成する。
// 登録済みの場合は既存ユーザーを再利用し、新しいリフレッシュトークンを追加発行する
// （複数デバイスの並行セッションを許容する）。
func (s *Service) LoginWithGoogle(ctx context.Context, req GoogleExchangeRequest, userAgent *string) (*model.User, *TokenPair, error) {
	// 1. 認可コードをGoogleで検証し、ユーザー情報を取得
	info, err := s.google.Exchange(ctx, req)
	if err != nil {
		return nil, nil, model.NewGoogleAuthFailedError(err.Error())
	}

	// 2. GoogleサブジェクトIDで既存ユーザーを検索
	user, err := s.userRepo.FindByGoogleID(ctx, info.Sub)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	newUser := false
	if user == nil {
		// 3. 新規ユーザーの自動作成
		now := time.Now()
		googleID := info.Sub
		user = &model.User{
			ID:        uuid.New().String(),
			GoogleID:  &googleID,
			Name:      info.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if info.Email != "" {
			email := info.Email
			user.Email = &email
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
		newUser = true
		slog.Info("new user created",
			slog.String("user_id", user.ID),
			slog.String("provider", "google"),
		)
	} else {
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
			slog.String("provider", "google"),
		)
	}

	// 4. トークンの発行（リフレッシュトークンはストアに永続化される）
	pair, err := s.issuer.IssueTokens(ctx, user.ID, userAgent)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin(newUser)
	}

	return user, pair, nil
}

// Refresh は有効なリフレッシュトークンと引き換えに新しいアクセストークンを発行する。
// トークンがストアに存在しない、または期限切れの場合はRefreshNotFoundエラーを返す。
// このフローではリフレッシュトークン自体はローテーションしない。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	record, err := s.tokenRepo.FindValid(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}
	if record == nil {
		return "", model.NewRefreshNotFoundError()
	}

	accessToken, err := s.issuer.SignAccessToken(record.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordTokenRefresh()
	}

	return accessToken, nil
}

// Logout はリフレッシュトークンを失効させる。
// レコードが存在しない場合もエラーにしない（冪等）。
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	if err := s.tokenRepo.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogout()
	}

	slog.Info("user logged out")
	return nil
}

// GetCurrentUser は検証済みのユーザーIDからユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
