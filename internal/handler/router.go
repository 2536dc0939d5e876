package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/northernhub/keyhub/internal/metrics"
	"github.com/northernhub/keyhub/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter

	// 運用エンドポイント
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer

	// ドメインサービス
	LicenseService LicenseServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestIDMiddleware → LoggingMiddleware → RecoveryMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// 運用ルート（/health, /metrics）はレート制限の外に配置する。
// キー引き換え（POST /api/products/{name}/redeem）には専用レート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// リクエストID・ログ・パニック回復は全ルートに効く
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())

	productHandler := NewProductHandler(deps.LicenseService)
	redemptionHandler := NewRedemptionHandler(deps.LicenseService)
	customerHandler := NewCustomerHandler(deps.LicenseService)
	statsHandler := NewStatsHandler(deps.LicenseService)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 運用ルート（レート制限の外） ---
	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- APIルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 商品・在庫管理
		r.Route("/api/products", func(r chi.Router) {
			r.Post("/", productHandler.AddProduct)
			r.Get("/stock", productHandler.ListStock)

			r.Route("/{name}", func(r chi.Router) {
				r.Post("/keys", productHandler.AddKeys)
				r.Get("/stock", productHandler.GetStock)

				// POST /api/products/{name}/redeem - キー引き換え（専用レート制限を追加）
				r.With(deps.RateLimiter.RedeemMiddleware()).Post("/redeem", redemptionHandler.Redeem)
			})
		})

		// 顧客管理
		r.Route("/api/customers", func(r chi.Router) {
			r.Get("/{id}/purchases", customerHandler.GetPurchases)
		})

		// 売上集計
		r.Route("/api/stats", func(r chi.Router) {
			r.Get("/sales", statsHandler.GetSalesStats)
		})
	})

	return r
}
