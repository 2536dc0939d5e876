// Package model はドメインモデルを定義する。
package model

import "time"

// Product はライセンスキーを発行する対象の商品を表す。
// nameがビジネス上の主キーであり、ストア全体で一意。
type Product struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// StockEntry は商品ごとの未使用キー数を表す。
type StockEntry struct {
	ProductName string `json:"product_name"`
	Count       int    `json:"count"`
}
