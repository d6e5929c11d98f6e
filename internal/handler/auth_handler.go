// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/listman/internal/auth"
	"github.com/hitoshi/listman/internal/middleware"
	"github.com/hitoshi/listman/internal/model"
)

const refreshTokenCookieName = "refreshToken"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	LoginWithGoogle(ctx context.Context, req auth.GoogleExchangeRequest, userAgent *string) (*model.User, *auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	GetCurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	RefreshMaxAge int // refreshTokenクッキーの有効期間（秒）
}

// AuthHandler はトークンライフサイクル関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// googleLoginRequest はGoogleログインリクエストのボディ。
type googleLoginRequest struct {
	Code         string `json:"code"`
	CodeVerifier string `json:"codeVerifier"`
	RedirectURI  string `json:"redirectUri"`
	ClientID     string `json:"clientId"`
}

// accessTokenResponse はアクセストークンのAPIレスポンス。
type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// GoogleLogin はGoogleの認可コードをローカルの認証情報に交換する。
// POST /api/auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if req.Code == "" || req.CodeVerifier == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("認可コードが不足しています"))
		return
	}

	var userAgent *string
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}

	_, pair, err := h.service.LoginWithGoogle(r.Context(), auth.GoogleExchangeRequest{
		Code:         req.Code,
		CodeVerifier: req.CodeVerifier,
		RedirectURI:  req.RedirectURI,
		ClientID:     req.ClientID,
	}, userAgent)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeGoogleAuthFailed {
			// 外部プロバイダーでの交換失敗は不正なコードとして扱う
			writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
			return
		}
		handleServiceError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accessTokenResponse{AccessToken: pair.AccessToken})
}

// Me は現在のログインユーザー情報を返す。パスワードハッシュは含めない。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := map[string]interface{}{
		"id":   user.ID,
		"name": user.Name,
	}
	if user.GoogleID != nil {
		resp["googleId"] = *user.GoogleID
	}
	if user.Email != nil {
		resp["email"] = *user.Email
	}
	if user.Mobile != nil {
		resp["mobile"] = *user.Mobile
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Refresh はリフレッシュトークンと引き換えに新しいアクセストークンを発行する。
// クッキーがない場合は401、ストアに存在しない・期限切れの場合は403を返す。
// POST /api/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeRefreshNotFound {
			writeAPIErrorResponse(w, http.StatusForbidden, apiErr)
			return
		}
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accessTokenResponse{AccessToken: accessToken})
}

// Logout はリフレッシュトークンを失効させる。
// クッキーの有無・レコードの有無にかかわらず常に204を返す（冪等）。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// 失効に失敗してもCookieはクリアする
		}
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// setRefreshCookie はrefreshTokenクッキーを設定する。
// HttpOnly、SameSite=Strict。Secureは本番（https）のみ。
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.RefreshMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie はrefreshTokenクッキーを削除する。
func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
