package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/listman/internal/middleware"
	"github.com/hitoshi/listman/internal/model"
	"github.com/hitoshi/listman/internal/security"
)

// routerStubVerifier はルーターテスト用のTokenVerifier実装。
type routerStubVerifier struct {
	valid map[string]string
}

func (v *routerStubVerifier) Verify(token string) (string, bool) {
	userID, ok := v.valid[token]
	return userID, ok
}

// stubHealthChecker はHealthCheckerのスタブ実装。
type stubHealthChecker struct {
	err error
}

func (s *stubHealthChecker) PingContext(ctx context.Context) error {
	return s.err
}

func newTestRouter(t *testing.T, health *stubHealthChecker) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     1000,
		GeneralBurst:    1000,
		LoginRate:       1000,
		LoginBurst:      1000,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)

	email := "hitoshi@example.com"
	return NewRouter(&RouterDeps{
		Verifier:          &routerStubVerifier{valid: map[string]string{"good-token": "user-1"}},
		CORSAllowedOrigin: "http://localhost:8081",
		RateLimiter:       rl,
		AuthService: &mockAuthService{
			getCurrentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
				return &model.User{ID: userID, Name: "Hitoshi", Email: &email}, nil
			},
		},
		AuthConfig:     testAuthConfig(),
		ChecklistStore: &mockChecklistStore{},
		TemplateStore:  &mockTemplateStore{},
		Sanitizer:      security.NewTextSanitizer(),
		HealthChecker:  health,
	})
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_HealthEndpoint_DatabaseDown(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{err: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_ChecklistsAccessibleAnonymously(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/checklists", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// チェックリストルートはルート自体では認可を強制しない
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_MeRequiresCredential(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_MeWithBearerToken(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, &stubHealthChecker{})

	req := httptest.NewRequest(http.MethodOptions, "/api/checklists", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:8081" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
