package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/listman/internal/middleware"
	"github.com/hitoshi/listman/internal/security"
)

// HealthChecker はDB疎通確認のインターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Verifier          middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           middleware.HTTPMetricsRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// チェックリスト/テンプレート
	ChecklistStore ChecklistStoreInterface
	TemplateStore  TemplateStoreInterface
	Sanitizer      security.TextSanitizerService

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Auth（匿名通過） → Logging → Metrics → Recovery
//
// Authを先に置くことでロギングがuser_idを記録できる。
// チェックリスト/テンプレートルートはルート自体では認可を強制しない
// （認証任意）。レート制限は認証済みユーザーIDまたはリモートIP単位で効く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewAuthMiddleware(deps.Verifier))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	checklistHandler := NewChecklistHandler(deps.ChecklistStore, deps.Sanitizer)
	templateHandler := NewTemplateHandler(deps.TemplateStore, deps.Sanitizer)

	// --- 運用ルート（レート制限の外） ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証（ログインのみ専用の厳しいレート制限を追加）
		r.Route("/api/auth", func(r chi.Router) {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/google", authHandler.GoogleLogin)
			r.Get("/me", authHandler.Me)
		})
		r.Post("/api/refresh", authHandler.Refresh)
		r.Post("/api/logout", authHandler.Logout)

		// チェックリスト
		r.Route("/api/checklists", func(r chi.Router) {
			r.Get("/", checklistHandler.List)
			r.Post("/", checklistHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", checklistHandler.Update)
				r.Delete("/", checklistHandler.Delete)
			})
		})

		// テンプレート
		r.Route("/api/templates", func(r chi.Router) {
			r.Get("/", templateHandler.List)
			r.Post("/", templateHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", templateHandler.Update)
				r.Delete("/", templateHandler.Delete)
			})
		})
	})

	return r
}

// NewHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				writeEntityError(w, http.StatusServiceUnavailable, "database unreachable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
