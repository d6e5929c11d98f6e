// Package auth はGoogle OAuth認証フローとトークンライフサイクル管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/listman/internal/model"
	"github.com/hitoshi/listman/internal/repository"
)

// refreshTokenBytes はリフレッシュトークンの乱数バイト長。
// 40バイト（320ビット）をhexエンコードして80文字の不透明文字列にする。
const refreshTokenBytes = 40

// expiryPattern は有効期間文字列の形式。例: "15m", "7d"
var expiryPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseExpiry は"15m"や"7d"形式の有効期間文字列をtime.Durationに変換する。
// 形式が不正な場合はゼロを返す（fail closed: 期限切れ扱いに倒す）。
// ゼロ値は設定エラーとして起動時バリデーションで弾くこと。
func ParseExpiry(s string) time.Duration {
	m := expiryPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	switch m[2] {
	case "s":
		return time.Duration(value) * time.Second
	case "m":
		return time.Duration(value) * time.Minute
	case "h":
		return time.Duration(value) * time.Hour
	case "d":
		return time.Duration(value) * 24 * time.Hour
	}
	return 0
}

// accessClaims はアクセストークンのJWTクレーム。
type accessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenPair は発行されたアクセストークンとリフレッシュトークンの組。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IssuerConfig はトークン発行の設定。
type IssuerConfig struct {
	AccessSecret  []byte        // HS256署名鍵（プロセス全体の秘密）
	AccessExpiry  time.Duration // アクセストークンの有効期間（短命）
	RefreshExpiry time.Duration // リフレッシュトークンの有効期間（長命）
}

// Issuer はアクセストークンとリフレッシュトークンの発行を担う。
// アクセストークンは署名付きJWTでありステートレス。
// リフレッシュトークンは暗号的乱数の不透明文字列で、Refresh Storeに永続化される。
type Issuer struct {
	tokenRepo repository.RefreshTokenRepository
	config    IssuerConfig
	now       func() time.Time // テスト用に差し替え可能
}

// NewIssuer はIssuerを生成する。
func NewIssuer(tokenRepo repository.RefreshTokenRepository, config IssuerConfig) *Issuer {
	return &Issuer{
		tokenRepo: tokenRepo,
		config:    config,
		now:       time.Now,
	}
}

// IssueTokens はユーザーに対してアクセストークンとリフレッシュトークンの組を発行し、
// リフレッシュトークンをストアに永続化する。
// 同一ユーザーの既存リフレッシュトークンは削除しない（複数デバイスの並行セッションを許容する）。
func (i *Issuer) IssueTokens(ctx context.Context, userID string, userAgent *string) (*TokenPair, error) {
	accessToken, err := i.SignAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	record := &model.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: i.now().Add(i.config.RefreshExpiry),
		CreatedAt: i.now(),
	}
	if err := i.tokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// SignAccessToken はユーザーIDを主張する短命のJWTを署名して返す。
// リフレッシュ時はこのメソッドのみを呼び、リフレッシュトークンは再発行しない。
func (i *Issuer) SignAccessToken(userID string) (string, error) {
	now := i.now()
	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.AccessExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.config.AccessSecret)
}

// generateRefreshToken は暗号的に安全な不透明リフレッシュトークンを生成する。
// 安全性はトークンの構造ではなく秘匿性に依存する。
func generateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
