// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, inventory, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInvalidProduct  = "INVALID_PRODUCT"
	ErrCodeEmptyKeyList    = "EMPTY_KEY_LIST"
	ErrCodeInvalidAmount   = "INVALID_AMOUNT"
	ErrCodeOutOfStock      = "OUT_OF_STOCK"
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidProductError は商品名が空または不正な場合のエラーを生成する。
func NewInvalidProductError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProduct,
		Message:  "商品名が指定されていません。",
		Category: "validation",
		Action:   "商品名を指定してください。",
	}
}

// NewEmptyKeyListError はトリム後に有効なキーが1件もない場合のエラーを生成する。
func NewEmptyKeyListError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyKeyList,
		Message:  "追加するキーが1件も指定されていません。",
		Category: "validation",
		Action:   "空でないキー文字列を1件以上指定してください。",
	}
}

// NewInvalidAmountError は支払金額が負の場合のエラーを生成する。
func NewInvalidAmountError(amount float64) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAmount,
		Message:  fmt.Sprintf("支払金額が不正です: %.2f", amount),
		Category: "validation",
		Action:   "0以上の金額を指定してください。",
	}
}

// NewOutOfStockError は在庫切れレスポンス用のエラーを生成する。
// ストア障害ではなく「未使用キーなし」を表す。
func NewOutOfStockError(productName string) *APIError {
	return &APIError{
		Code:     ErrCodeOutOfStock,
		Message:  fmt.Sprintf("商品の在庫がありません: %s", productName),
		Category: "inventory",
		Action:   "キーを追加してから再度お試しください。",
	}
}

// NewInternalError は内部エラーレスポンス用のエラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
