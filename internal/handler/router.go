package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goodmemory/tripmark/internal/middleware"
	"github.com/goodmemory/tripmark/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionResolver   middleware.SessionResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPRecorder      middleware.HTTPRecorder // nilの場合メトリクス記録なし

	// 運用エンドポイント
	MetricsHandler http.Handler // nilの場合 /metrics なし

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// リソース
	PlaceService      PlaceServiceInterface
	AnnotationService AnnotationServiceInterface
	TravelService     TravelServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Session → Logging → RateLimit
//
// SessionMiddlewareはプロセス全体で単一のSessionResolverを共有し、
// ルーターの最上位で1回だけ適用する。リソース操作は認証なしでも許可されるため、
// 匿名リクエストは通過させる。
// LoggingはSessionより後段に置く。セッションが注入したユーザーを
// リクエストログのuser_idとして読めるのは後段のミドルウェアだけになる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.HTTPRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPRecorder))
	}
	r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware())
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	placeHandler := NewPlaceHandler(deps.PlaceService, deps.AnnotationService)
	travelHandler := NewTravelHandler(deps.TravelService)

	// 運用エンドポイント
	r.Get("/health", healthCheck)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Get("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 旅行先管理
	r.Route("/places", func(r chi.Router) {
		r.Get("/", placeHandler.ListPlaces)
		r.Post("/", placeHandler.CreatePlace)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", placeHandler.GetPlace)
			r.Put("/", placeHandler.UpdatePlace)
			r.Delete("/", placeHandler.DeletePlace)

			// 行きたい（wish）
			r.Post("/wish", placeHandler.AddAnnotation(model.AnnotationWish))
			r.Delete("/wish", placeHandler.RemoveAnnotation(model.AnnotationWish))
			r.Get("/wishCount", placeHandler.CountAnnotations(model.AnnotationWish))

			// レビュー
			r.Post("/review", placeHandler.AddAnnotation(model.AnnotationReview))
			r.Delete("/review", placeHandler.RemoveAnnotation(model.AnnotationReview))
			r.Get("/reviewCount", placeHandler.CountAnnotations(model.AnnotationReview))
		})
	})

	// 旅行計画管理
	r.Route("/travels", func(r chi.Router) {
		r.Get("/", travelHandler.ListTravels)
		r.Post("/", travelHandler.CreateTravel)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", travelHandler.GetTravel)
			r.Patch("/", travelHandler.PatchTravel)
			r.Delete("/", travelHandler.DeleteTravel)
		})
	})

	return r
}

// healthCheck は稼働確認エンドポイント。
// GET /health
func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
