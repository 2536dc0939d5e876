// Package invoice は請求レコードの売上集計を行う純粋関数を提供する。
// ストアへのアクセスは行わず、呼び出し側がレコード一覧を渡す。
package invoice

import (
	"sort"
	"time"
)

// Record は集計対象の請求1件を表す。
type Record struct {
	CustomerID  int64
	CustomerTag string
	Product     string
	Amount      float64
	IssuedAt    time.Time
}

// ProductSales は商品別の売上集計を表す。
type ProductSales struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// CustomerSales は顧客別の売上集計を表す。
type CustomerSales struct {
	ID      int64   `json:"id"`
	Tag     string  `json:"tag"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// Stats は売上集計の結果を表す。
type Stats struct {
	TotalInvoices     int             `json:"total_invoices"`
	TotalRevenue      float64         `json:"total_revenue"`
	AvgInvoiceValue   float64         `json:"avg_invoice_value"`
	InvoicesThisMonth int             `json:"invoices_this_month"`
	RevenueThisMonth  float64         `json:"revenue_this_month"`
	TopProducts       []ProductSales  `json:"top_products"`
	TopCustomers      []CustomerSales `json:"top_customers"`
}

const topLimit = 5

// ComputeStats は請求レコード一覧から売上集計を算出する。
// 「今月」はnowの属する暦月（nowのロケーションの月初以降）。
// 売上上位はrevenue降順の上位5件。同額の順序はレコードの初出順であり、
// 意味のある保証ではない。
func ComputeStats(records []Record, now time.Time) Stats {
	stats := Stats{
		TopProducts:  []ProductSales{},
		TopCustomers: []CustomerSales{},
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	productIdx := map[string]int{}
	customerIdx := map[int64]int{}

	for _, rec := range records {
		stats.TotalInvoices++
		stats.TotalRevenue += rec.Amount

		if !rec.IssuedAt.Before(monthStart) {
			stats.InvoicesThisMonth++
			stats.RevenueThisMonth += rec.Amount
		}

		if rec.Product != "" {
			i, ok := productIdx[rec.Product]
			if !ok {
				i = len(stats.TopProducts)
				productIdx[rec.Product] = i
				stats.TopProducts = append(stats.TopProducts, ProductSales{Name: rec.Product})
			}
			stats.TopProducts[i].Count++
			stats.TopProducts[i].Revenue += rec.Amount
		}

		if rec.CustomerID != 0 {
			i, ok := customerIdx[rec.CustomerID]
			if !ok {
				i = len(stats.TopCustomers)
				customerIdx[rec.CustomerID] = i
				stats.TopCustomers = append(stats.TopCustomers, CustomerSales{ID: rec.CustomerID, Tag: rec.CustomerTag})
			}
			stats.TopCustomers[i].Count++
			stats.TopCustomers[i].Revenue += rec.Amount
		}
	}

	if stats.TotalInvoices > 0 {
		stats.AvgInvoiceValue = stats.TotalRevenue / float64(stats.TotalInvoices)
	}

	// 初出順のスライスを安定ソートすることで、同額の並びを初出順に保つ
	sort.SliceStable(stats.TopProducts, func(i, j int) bool {
		return stats.TopProducts[i].Revenue > stats.TopProducts[j].Revenue
	})
	sort.SliceStable(stats.TopCustomers, func(i, j int) bool {
		return stats.TopCustomers[i].Revenue > stats.TopCustomers[j].Revenue
	})

	if len(stats.TopProducts) > topLimit {
		stats.TopProducts = stats.TopProducts[:topLimit]
	}
	if len(stats.TopCustomers) > topLimit {
		stats.TopCustomers = stats.TopCustomers[:topLimit]
	}

	return stats
}
