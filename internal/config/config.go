// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/listman/internal/auth"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// OAuth
	// GoogleClientSecret はコンフィデンシャルクライアント用。PKCEのみの公開クライアントでは空でよい。
	GoogleClientSecret string

	// Token
	JWTAccessSecret string
	AccessExpiry    time.Duration // アクセストークンの有効期間（デフォルト 15m）
	RefreshExpiry   time.Duration // リフレッシュトークンの有効期間（デフォルト 7d）

	// Rate Limit（req/min/principal）
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、またはトークン有効期間の形式が不正な場合はエラーを返す。
// 有効期間のパースはfail closed（不正な形式はゼロ）であり、
// ゼロ値をここで拒否することで「期限なし」として黙認される事故を防ぐ。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTAccessSecret = os.Getenv("JWT_ACCESS_SECRET")
	if cfg.JWTAccessSecret == "" {
		missing = append(missing, "JWT_ACCESS_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Token expiry（形式不正はゼロ = 設定エラー）
	accessExpiry := getEnvString("JWT_ACCESS_EXPIRY", "15m")
	cfg.AccessExpiry = auth.ParseExpiry(accessExpiry)
	if cfg.AccessExpiry <= 0 {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRY: %q (expected <integer><s|m|h|d>)", accessExpiry)
	}

	refreshExpiry := getEnvString("JWT_REFRESH_EXPIRY", "7d")
	cfg.RefreshExpiry = auth.ParseExpiry(refreshExpiry)
	if cfg.RefreshExpiry <= 0 {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRY: %q (expected <integer><s|m|h|d>)", refreshExpiry)
	}

	// Optional fields with defaults
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:8081")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
