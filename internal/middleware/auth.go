// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	// accessTokenCookieName はWebクライアント向けのアクセストークンCookie名。
	accessTokenCookieName = "accessToken"
	// bearerPrefix はAuthorizationヘッダーのスキームプレフィックス。
	bearerPrefix = "Bearer "
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はアクセストークンの検証インターフェース。
// auth.Verifierの部分集合として定義する。
type TokenVerifier interface {
	Verify(token string) (string, bool)
}

// NewAuthMiddleware はアクセストークンを検証し、ユーザーIDをリクエスト
// コンテキストに注入するミドルウェアを返す。
// トークンはAuthorizationヘッダー（Bearer）を優先し、なければaccessToken Cookieを読む。
// 認証情報の欠落はこの層ではエラーではない（匿名として通過させ、
// 認可が必要かどうかは各ルートが判断する）。
// 署名不正・期限切れのトークンもユーザーID未設定のまま通過させる。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := verifier.Verify(token)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken はリクエストからアクセストークンを取り出す。
// ヘッダーとCookieの両方が存在する場合はヘッダーを優先する。
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if strings.HasPrefix(authHeader, bearerPrefix) {
			return strings.TrimPrefix(authHeader, bearerPrefix)
		}
		return ""
	}

	if cookie, err := r.Cookie(accessTokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアが有効なトークンを検証したリクエストでのみ値が存在する。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
