package handler

import (
	"net/http"
	"time"

	"github.com/northernhub/keyhub/internal/invoice"
)

// StatsHandler は売上集計のHTTPハンドラー。
// 集計そのものはinvoiceパッケージの純粋関数が行い、
// このハンドラーは購入履歴をレコードに変換して渡すだけ。
type StatsHandler struct {
	service LicenseServiceInterface
	now     func() time.Time
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(service LicenseServiceInterface) *StatsHandler {
	return &StatsHandler{
		service: service,
		now:     time.Now,
	}
}

// GetSalesStats は全購入履歴の売上集計を返す。
// 「今月」は呼び出し時点の暦月。
// GET /api/stats/sales
func (h *StatsHandler) GetSalesStats(w http.ResponseWriter, r *http.Request) {
	purchases := h.service.AllPurchases(r.Context())

	records := make([]invoice.Record, 0, len(purchases))
	for _, p := range purchases {
		records = append(records, invoice.Record{
			CustomerID:  p.BuyerID,
			CustomerTag: p.BuyerTag,
			Product:     p.ProductName,
			Amount:      p.AmountSpent,
			IssuedAt:    p.PurchasedAt,
		})
	}

	stats := invoice.ComputeStats(records, h.now())
	writeJSONResponse(w, http.StatusOK, stats)
}
