package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/northernhub/keyhub/internal/model"
	"github.com/northernhub/keyhub/internal/tier"
)

// CustomerHandler は顧客の購入履歴とティア情報のHTTPハンドラー。
type CustomerHandler struct {
	service LicenseServiceInterface
}

// NewCustomerHandler はCustomerHandlerを生成する。
func NewCustomerHandler(service LicenseServiceInterface) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// customerPurchasesResponse は購入履歴・ティアレスポンス。
// NextTierThresholdは最上位ティアの場合省略される。
type customerPurchasesResponse struct {
	Purchases         []model.ProductPurchaseSummary `json:"purchases"`
	TotalPurchases    int                            `json:"total_purchases"`
	LifetimeSpent     float64                        `json:"lifetime_spent"`
	Tier              tier.Tier                      `json:"tier"`
	TierBenefits      string                         `json:"tier_benefits"`
	NextTierThreshold *float64                       `json:"next_tier_threshold,omitempty"`
}

// GetPurchases は顧客の購入履歴と現在のティアを返す。
// 履歴のない顧客にはゼロ値の履歴と最下位ティアを返す（404ではない）。
// GET /api/customers/{id}/purchases
func (h *CustomerHandler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	buyerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  "顧客IDが不正です。",
			Category: "validation",
			Action:   "数値の顧客IDを指定してください。",
		})
		return
	}

	history := h.service.BuyerPurchases(r.Context(), buyerID)
	customerTier := tier.Classify(history.LifetimeSpent)

	resp := customerPurchasesResponse{
		Purchases:      history.Purchases,
		TotalPurchases: history.TotalPurchases,
		LifetimeSpent:  history.LifetimeSpent,
		Tier:           customerTier,
		TierBenefits:   tier.Benefits(customerTier),
	}
	if next, ok := tier.NextThreshold(history.LifetimeSpent); ok {
		resp.NextTierThreshold = &next
	}

	writeJSONResponse(w, http.StatusOK, resp)
}
