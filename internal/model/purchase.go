package model

import "time"

// Purchase は引き換え1回につき1件作成される購入履歴を表す。
// append-onlyであり、作成後に更新・削除されることはない。
// BuyerTagは購入時点のスナップショット（非正規化）で、生きた参照ではない。
type Purchase struct {
	ID            int64
	BuyerID       int64
	BuyerTag      string
	ProductName   string
	AmountSpent   float64
	PurchasedAt   time.Time
	TransactionID string
}

// ProductPurchaseSummary は購入履歴を商品ごとに集計した1行を表す。
type ProductPurchaseSummary struct {
	ProductName  string    `json:"product_name"`
	Count        int       `json:"count"`
	TotalSpent   float64   `json:"total_spent"`
	LastPurchase time.Time `json:"last_purchase"`
}

// PurchaseHistory は購入者単位の購入履歴と生涯合計を表す。
// 履歴のない購入者に対してはゼロ値の構造体を返す（エラーにはしない）。
type PurchaseHistory struct {
	Purchases      []ProductPurchaseSummary `json:"purchases"`
	TotalPurchases int                      `json:"total_purchases"`
	LifetimeSpent  float64                  `json:"lifetime_spent"`
}
