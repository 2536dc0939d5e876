package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northernhub/keyhub/internal/model"
)

// PostgresPurchaseRepo はPostgreSQLを使用した購入履歴リポジトリ。
// 読み取り専用。書き込みはKeyRepository.ClaimUnusedだけが行う。
type PostgresPurchaseRepo struct {
	db *sql.DB
}

// NewPostgresPurchaseRepo はPostgresPurchaseRepoを生成する。
func NewPostgresPurchaseRepo(db *sql.DB) *PostgresPurchaseRepo {
	return &PostgresPurchaseRepo{db: db}
}

// HistoryByBuyer は購入者の商品別集計と生涯合計を返す。
// 履歴のない購入者にはゼロ値の構造体を返す（エラーにはしない）。
func (r *PostgresPurchaseRepo) HistoryByBuyer(ctx context.Context, buyerID int64) (*model.PurchaseHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_name, COUNT(*), COALESCE(SUM(amount_spent), 0), MAX(purchased_at)
		 FROM purchases
		 WHERE buyer_id = $1
		 GROUP BY product_name
		 ORDER BY MAX(purchased_at) DESC`,
		buyerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase summaries: %w", err)
	}
	defer rows.Close()

	history := &model.PurchaseHistory{
		Purchases: []model.ProductPurchaseSummary{},
	}
	for rows.Next() {
		var summary model.ProductPurchaseSummary
		if err := rows.Scan(&summary.ProductName, &summary.Count, &summary.TotalSpent, &summary.LastPurchase); err != nil {
			return nil, fmt.Errorf("failed to scan purchase summary: %w", err)
		}
		history.Purchases = append(history.Purchases, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchase summaries: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount_spent), 0)
		 FROM purchases
		 WHERE buyer_id = $1`,
		buyerID,
	).Scan(&history.TotalPurchases, &history.LifetimeSpent)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase totals: %w", err)
	}

	return history, nil
}

// ListAll は全購入履歴をpurchased_at昇順で返す。
func (r *PostgresPurchaseRepo) ListAll(ctx context.Context) ([]model.Purchase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, buyer_id, buyer_tag, product_name, amount_spent, purchased_at, transaction_id
		 FROM purchases
		 ORDER BY purchased_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.BuyerID, &p.BuyerTag, &p.ProductName, &p.AmountSpent, &p.PurchasedAt, &p.TransactionID); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	return purchases, nil
}

// compile-time interface check
var _ PurchaseRepository = (*PostgresPurchaseRepo)(nil)
