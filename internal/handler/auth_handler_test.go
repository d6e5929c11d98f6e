package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/listman/internal/auth"
	"github.com/hitoshi/listman/internal/middleware"
	"github.com/hitoshi/listman/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginWithGoogleFn func(ctx context.Context, req auth.GoogleExchangeRequest, userAgent *string) (*model.User, *auth.TokenPair, error)
	refreshFn         func(ctx context.Context, refreshToken string) (string, error)
	logoutFn          func(ctx context.Context, refreshToken string) error
	getCurrentUserFn  func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) LoginWithGoogle(ctx context.Context, req auth.GoogleExchangeRequest, userAgent *string) (*model.User, *auth.TokenPair, error) {
	if m.loginWithGoogleFn != nil {
		return m.loginWithGoogleFn(ctx, req, userAgent)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return "", nil
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, refreshToken)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, userID)
	}
	return nil, nil
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(r.Context(), userID)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// findCookie はレスポンスから指定名のCookieを取得するヘルパー。
func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieSecure:  false,
		RefreshMaxAge: 7 * 24 * 60 * 60,
	}
}

// --- POST /api/auth/google テスト ---

func TestAuthHandler_GoogleLogin_Success(t *testing.T) {
	svc := &mockAuthService{
		loginWithGoogleFn: func(ctx context.Context, req auth.GoogleExchangeRequest, userAgent *string) (*model.User, *auth.TokenPair, error) {
			if req.Code != "auth-code" || req.CodeVerifier != "verifier" {
				t.Errorf("unexpected exchange request: %+v", req)
			}
			return &model.User{ID: "user-1", Name: "Hitoshi"},
				&auth.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-opaque"},
				nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := bytes.NewBufferString(`{"code":"auth-code","codeVerifier":"verifier","redirectUri":"app://cb","clientId":"cid"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", body)
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["accessToken"] != "access-jwt" {
		t.Errorf("accessToken = %q, want %q", resp["accessToken"], "access-jwt")
	}

	cookie := findCookie(t, w, "refreshToken")
	if cookie == nil {
		t.Fatal("refreshToken cookie should be set")
	}
	if cookie.Value != "refresh-opaque" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "refresh-opaque")
	}
	if !cookie.HttpOnly {
		t.Error("refreshToken cookie should be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Error("refreshToken cookie should be SameSite=Strict")
	}
	if cookie.MaxAge != 7*24*60*60 {
		t.Errorf("cookie MaxAge = %d, want %d", cookie.MaxAge, 7*24*60*60)
	}
}

func TestAuthHandler_GoogleLogin_MissingCode(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	body := bytes.NewBufferString(`{"codeVerifier":"verifier"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", body)
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_GoogleLogin_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_GoogleLogin_ExchangeFailure(t *testing.T) {
	svc := &mockAuthService{
		loginWithGoogleFn: func(ctx context.Context, req auth.GoogleExchangeRequest, userAgent *string) (*model.User, *auth.TokenPair, error) {
			return nil, nil, model.NewGoogleAuthFailedError("invalid grant")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	body := bytes.NewBufferString(`{"code":"bad-code","codeVerifier":"verifier"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", body)
	w := httptest.NewRecorder()

	h.GoogleLogin(w, req)

	// 外部プロバイダーでの交換失敗は不正なコードとして400を返す
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if c := findCookie(t, w, "refreshToken"); c != nil {
		t.Error("refreshToken cookie should not be set on failure")
	}
}

// --- GET /api/auth/me テスト ---

func TestAuthHandler_Me_Success(t *testing.T) {
	googleID := "sub-123"
	email := "hitoshi@example.com"
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return &model.User{ID: "user-1", GoogleID: &googleID, Email: &email, Name: "Hitoshi"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "user-1")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] != "user-1" {
		t.Errorf("id = %v, want user-1", resp["id"])
	}
	if resp["email"] != email {
		t.Errorf("email = %v, want %s", resp["email"], email)
	}
	if resp["googleId"] != googleID {
		t.Errorf("googleId = %v, want %s", resp["googleId"], googleID)
	}
	if _, exists := resp["passwordHash"]; exists {
		t.Error("response must not contain passwordHash")
	}
	if _, exists := resp["mobile"]; exists {
		t.Error("mobile should be omitted when absent")
	}
}

func TestAuthHandler_Me_NoIdentity(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_UserNotFound(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := withUserID(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), "ghost")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- POST /api/refresh テスト ---

func TestAuthHandler_Refresh_Success(t *testing.T) {
	svc := &mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
			if refreshToken != "valid-refresh" {
				t.Errorf("refreshToken = %q, want %q", refreshToken, "valid-refresh")
			}
			return "new-access-jwt", nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "valid-refresh"})
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["accessToken"] != "new-access-jwt" {
		t.Errorf("accessToken = %q, want %q", resp["accessToken"], "new-access-jwt")
	}
}

func TestAuthHandler_Refresh_NoCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Refresh_UnknownToken(t *testing.T) {
	svc := &mockAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (string, error) {
			return "", model.NewRefreshNotFoundError()
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "revoked-or-expired"})
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// --- POST /api/logout テスト ---

func TestAuthHandler_Logout_WithCookie(t *testing.T) {
	logoutCalled := false
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, refreshToken string) error {
			logoutCalled = true
			if refreshToken != "some-refresh" {
				t.Errorf("refreshToken = %q, want %q", refreshToken, "some-refresh")
			}
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "some-refresh"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !logoutCalled {
		t.Error("Logout service should be called")
	}

	cookie := findCookie(t, w, "refreshToken")
	if cookie == nil {
		t.Fatal("refreshToken cookie should be cleared")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", cookie.MaxAge)
	}
}

func TestAuthHandler_Logout_NoCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	// Cookieがなくても常に204
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestAuthHandler_Logout_ServiceErrorStillSucceeds(t *testing.T) {
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, refreshToken string) error {
			return errors.New("db down")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "some-refresh"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if cookie := findCookie(t, w, "refreshToken"); cookie == nil || cookie.MaxAge != -1 {
		t.Error("refreshToken cookie should be cleared even when revocation fails")
	}
}
