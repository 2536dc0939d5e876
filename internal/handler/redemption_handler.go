package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/northernhub/keyhub/internal/model"
)

// RedemptionHandler はキー引き換えのHTTPハンドラー。
type RedemptionHandler struct {
	service LicenseServiceInterface
}

// NewRedemptionHandler はRedemptionHandlerを生成する。
func NewRedemptionHandler(service LicenseServiceInterface) *RedemptionHandler {
	return &RedemptionHandler{service: service}
}

// redeemRequest はキー引き換えリクエストのボディ。
type redeemRequest struct {
	BuyerTag    string  `json:"buyer_tag"`
	BuyerID     int64   `json:"buyer_id"`
	AmountSpent float64 `json:"amount_spent"`
}

// Redeem はキー引き換えを処理する。
// 在庫切れは409（障害ではない）、検証エラーは400、ストア障害は500。
// POST /api/products/{name}/redeem
func (h *RedemptionHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	productName := chi.URLParam(r, "name")

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.AmountSpent < 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidAmountError(req.AmountSpent))
		return
	}

	result := h.service.Redeem(r.Context(), productName, req.BuyerTag, req.BuyerID, req.AmountSpent)

	switch result.Status {
	case model.RedeemStatusRedeemed:
		writeJSONResponse(w, http.StatusOK, result)
	case model.RedeemStatusOutOfStock:
		writeAPIErrorResponse(w, http.StatusConflict, model.NewOutOfStockError(productName))
	default:
		writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
	}
}
