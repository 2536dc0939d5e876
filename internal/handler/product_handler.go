package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/northernhub/keyhub/internal/model"
)

// LicenseServiceInterface はハンドラーが必要とするサービスインターフェース。
// すべてのオペレーションは例外フリーの契約を持ち、エラーではなく値を返す。
type LicenseServiceInterface interface {
	AddProduct(ctx context.Context, name, description string) bool
	AddKeys(ctx context.Context, productName string, keys []string) model.AddKeysResult
	Redeem(ctx context.Context, productName, buyerTag string, buyerID int64, amountSpent float64) model.RedeemResult
	Stock(ctx context.Context, productName string) int
	StockAll(ctx context.Context) []model.StockEntry
	BuyerPurchases(ctx context.Context, buyerID int64) model.PurchaseHistory
	AllPurchases(ctx context.Context) []model.Purchase
}

// ProductHandler は商品・キー在庫管理のHTTPハンドラー。
type ProductHandler struct {
	service LicenseServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service LicenseServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// addProductRequest は商品作成リクエストのボディ。
type addProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// addProductResponse は商品作成レスポンス。
type addProductResponse struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// addKeysRequest はキー一括追加リクエストのボディ。
type addKeysRequest struct {
	Keys []string `json:"keys"`
}

// stockResponse は単一商品の在庫レスポンス。
type stockResponse struct {
	ProductName string `json:"product_name"`
	Count       int    `json:"count"`
}

// stockListResponse は全商品の在庫レスポンス。
type stockListResponse struct {
	Stock []model.StockEntry `json:"stock"`
}

// AddProduct は商品作成を処理する。冪等: 既存の商品名はcreated=falseで200を返す。
// POST /api/products
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidProductError())
		return
	}

	created := h.service.AddProduct(r.Context(), name, req.Description)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSONResponse(w, status, addProductResponse{Name: name, Created: created})
}

// AddKeys はキー一括追加を処理する。
// 部分的な成功は正常系であり、追加数と重複数の両方を返す。
// POST /api/products/{name}/keys
func (h *ProductHandler) AddKeys(w http.ResponseWriter, r *http.Request) {
	productName := chi.URLParam(r, "name")

	var req addKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	result := h.service.AddKeys(r.Context(), productName, req.Keys)
	if !result.Success {
		switch {
		case strings.HasPrefix(result.Message, "database error"):
			writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
		case result.Message == "no product name provided":
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidProductError())
		default:
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewEmptyKeyListError())
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// GetStock は単一商品の在庫を返す。未知の商品は0（404ではない）。
// GET /api/products/{name}/stock
func (h *ProductHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productName := chi.URLParam(r, "name")

	count := h.service.Stock(r.Context(), productName)
	writeJSONResponse(w, http.StatusOK, stockResponse{ProductName: productName, Count: count})
}

// ListStock は未使用キーのある全商品の在庫を商品名順で返す。
// GET /api/products/stock
func (h *ProductHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	entries := h.service.StockAll(r.Context())
	writeJSONResponse(w, http.StatusOK, stockListResponse{Stock: entries})
}
