package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/northernhub/keyhub/internal/model"
)

// PostgresKeyRepo はPostgreSQLを使用したライセンスキーリポジトリ。
type PostgresKeyRepo struct {
	db *sql.DB
}

// NewPostgresKeyRepo はPostgresKeyRepoを生成する。
func NewPostgresKeyRepo(db *sql.DB) *PostgresKeyRepo {
	return &PostgresKeyRepo{db: db}
}

// BulkInsert はキーを一括追加する。
// 商品のinsert-or-ignoreと各キーの挿入を1トランザクションで実行し、
// 末尾で1回だけコミットする。既存のキー文字列はON CONFLICT DO NOTHINGで
// スキップし、duplicatesとしてカウントする。部分的な成功は正常系であり、
// 追加分はコミットされ、重複分はカウントのみ増える。
// 予期しないストア障害が発生した場合はバッチ全体をロールバックする。
func (r *PostgresKeyRepo) BulkInsert(ctx context.Context, productName string, keys []string) (added, duplicates int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 商品が未登録なら同一トランザクション内で作成する
	_, err = tx.ExecContext(ctx,
		`INSERT INTO products (name, description) VALUES ($1, '')
		 ON CONFLICT (name) DO NOTHING`,
		productName,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to ensure product: %w", err)
	}

	for _, key := range keys {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO keys (product_name, key_value) VALUES ($1, $2)
			 ON CONFLICT (key_value) DO NOTHING`,
			productName, key,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert key: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected > 0 {
			added++
		} else {
			duplicates++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return added, duplicates, nil
}

// ClaimUnused は未使用キーを1件、1トランザクションで引き換える。
// FOR UPDATE SKIP LOCKEDにより、並行する引き換え同士が同一行を観測することはなく、
// 「1つのキーの値を受け取る購入者は高々1人」の不変条件がエンジンレベルで成立する。
// どの未使用行が選ばれるかは未規定（任意の1行）。
// 未使用キーが存在しない場合は (nil, nil) を返す。
func (r *PostgresKeyRepo) ClaimUnused(ctx context.Context, params ClaimParams) (*model.Redemption, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var keyID int64
	var keyValue string
	err = tx.QueryRowContext(ctx,
		`SELECT id, key_value FROM keys
		 WHERE product_name = $1 AND used = FALSE
		 LIMIT 1
		 FOR UPDATE SKIP LOCKED`,
		params.ProductName,
	).Scan(&keyID, &keyValue)

	if err == sql.ErrNoRows {
		// 在庫切れ。エラーではない。
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select unused key: %w", err)
	}

	redeemedAt := time.Now().UTC()
	transactionID := fmt.Sprintf("txn_%d_%d", params.BuyerID, redeemedAt.UnixNano())

	_, err = tx.ExecContext(ctx,
		`UPDATE keys
		 SET used = TRUE, buyer_tag = $1, buyer_id = $2, redeemed_at = $3
		 WHERE id = $4`,
		params.BuyerTag, params.BuyerID, redeemedAt, keyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark key used: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchases (buyer_id, buyer_tag, product_name, amount_spent, purchased_at, transaction_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		params.BuyerID, params.BuyerTag, params.ProductName, params.AmountSpent, redeemedAt, transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &model.Redemption{
		KeyValue:      keyValue,
		ProductName:   params.ProductName,
		BuyerTag:      params.BuyerTag,
		BuyerID:       params.BuyerID,
		AmountSpent:   params.AmountSpent,
		TransactionID: transactionID,
		RedeemedAt:    redeemedAt,
	}, nil
}

// CountUnused は指定商品の未使用キー数を返す。未知の商品は0を返す。
func (r *PostgresKeyRepo) CountUnused(ctx context.Context, productName string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM keys WHERE product_name = $1 AND used = FALSE`,
		productName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unused keys: %w", err)
	}

	return count, nil
}

// CountUnusedAll は未使用キーが1件以上ある全商品の在庫を商品名順で返す。
func (r *PostgresKeyRepo) CountUnusedAll(ctx context.Context) ([]model.StockEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_name, COUNT(*) FROM keys
		 WHERE used = FALSE
		 GROUP BY product_name
		 ORDER BY product_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	defer rows.Close()

	var entries []model.StockEntry
	for rows.Next() {
		var entry model.StockEntry
		if err := rows.Scan(&entry.ProductName, &entry.Count); err != nil {
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock entries: %w", err)
	}

	return entries, nil
}

// compile-time interface check
var _ KeyRepository = (*PostgresKeyRepo)(nil)
