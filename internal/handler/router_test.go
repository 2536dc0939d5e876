package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/northernhub/keyhub/internal/middleware"
	"github.com/northernhub/keyhub/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// mockHealthChecker はHealthCheckerのモック実装。
type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func newTestRouter(t *testing.T, svc LicenseServiceInterface, checker HealthChecker) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		RateLimiter:    rl,
		HealthChecker:  checker,
		Gatherer:       prometheus.NewRegistry(),
		LicenseService: svc,
	})
}

func TestRouter_Health_OK(t *testing.T) {
	r := newTestRouter(t, &mockLicenseService{}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
}

func TestRouter_Health_DatabaseDown(t *testing.T) {
	checker := &mockHealthChecker{
		pingFn: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}
	r := newTestRouter(t, &mockLicenseService{}, checker)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(t, &mockLicenseService{}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// ルーティング経由でURLパラメータがハンドラーに届くことを確認する。
func TestRouter_StockRoute(t *testing.T) {
	svc := &mockLicenseService{
		stockFn: func(ctx context.Context, productName string) int {
			if productName != "VPN Pro" {
				t.Errorf("productName = %q, want %q", productName, "VPN Pro")
			}
			return 7
		},
	}
	r := newTestRouter(t, svc, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/VPN%20Pro/stock", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp stockResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 7 {
		t.Errorf("count = %d, want 7", resp.Count)
	}
}

// 全商品在庫のルートが /api/products/{name}/stock より優先されることを確認する。
func TestRouter_ListStockRoute(t *testing.T) {
	svc := &mockLicenseService{
		stockAllFn: func(ctx context.Context) []model.StockEntry {
			return []model.StockEntry{{ProductName: "VPN Pro", Count: 7}}
		},
	}
	r := newTestRouter(t, svc, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/stock", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp stockListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Stock) != 1 {
		t.Fatalf("len(stock) = %d, want 1", len(resp.Stock))
	}
}

// キー引き換えルートには専用レート制限がかかる。
func TestRouter_RedeemRateLimit(t *testing.T) {
	svc := &mockLicenseService{
		redeemFn: func(ctx context.Context, productName, buyerTag string, buyerID int64, amountSpent float64) model.RedeemResult {
			return model.RedeemResult{Status: model.RedeemStatusRedeemed, KeyValue: "K"}
		},
	}
	r := newTestRouter(t, svc, &mockHealthChecker{})

	body := `{"buyer_tag": "alice#1234", "buyer_id": 1001, "amount_spent": 1.00}`

	// バーストサイズ(10)まで成功し、その次が429になる
	var lastCode int
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/products/VPN/redeem", bytes.NewBufferString(body))
		req.RemoteAddr = "10.0.0.2:54321"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("11th request status = %d, want %d", lastCode, http.StatusTooManyRequests)
	}
}

// リクエストIDミドルウェアが全ルートに効くことを確認する。
func TestRouter_RequestIDHeader(t *testing.T) {
	r := newTestRouter(t, &mockLicenseService{}, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header is empty")
	}
}
