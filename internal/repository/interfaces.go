// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/northernhub/keyhub/internal/model"
)

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// InsertIgnore は商品が存在しない場合のみ作成する（insert-or-ignore）。
	// 新しい行が実際に作成されたかどうかを返す。既存の商品名に対しては
	// (false, nil) を返し、エラーにはしない。
	InsertIgnore(ctx context.Context, name, description string) (bool, error)
}

// ClaimParams はClaimUnusedへの入力をまとめた構造体。
type ClaimParams struct {
	ProductName string
	BuyerTag    string
	BuyerID     int64
	AmountSpent float64
}

// KeyRepository はライセンスキーデータの永続化インターフェース。
type KeyRepository interface {
	// BulkInsert はキーを一括追加する。商品が未登録の場合は同一トランザクション内で
	// insert-or-ignoreにより作成する。既存のキー文字列はスキップして
	// duplicatesとしてカウントし、バッチ全体のエラーにはしない。
	// コミットはバッチ末尾の1回のみ。
	BulkInsert(ctx context.Context, productName string, keys []string) (added, duplicates int, err error)

	// ClaimUnused は未使用キーを1件、1トランザクションで引き換える。
	// SELECT ... FOR UPDATE SKIP LOCKED で行を確保し、used/buyer情報の更新と
	// 購入履歴の挿入を同一トランザクションでコミットする。
	// 並行する呼び出しが同一行を取得することはない（SKIP LOCKEDによる保証）。
	// どの未使用行が選ばれるかは未規定。
	// 未使用キーが存在しない場合は (nil, nil) を返す（在庫切れ、エラーではない）。
	ClaimUnused(ctx context.Context, params ClaimParams) (*model.Redemption, error)

	// CountUnused は指定商品の未使用キー数を返す。未知の商品は0を返す。
	CountUnused(ctx context.Context, productName string) (int, error)

	// CountUnusedAll は未使用キーが1件以上ある全商品の在庫を商品名順で返す。
	CountUnusedAll(ctx context.Context) ([]model.StockEntry, error)
}

// PurchaseRepository は購入履歴の読み取りインターフェース。
// 購入履歴の書き込みはKeyRepository.ClaimUnusedだけが行う。
type PurchaseRepository interface {
	// HistoryByBuyer は購入者の商品別集計と生涯合計を返す。
	// 履歴のない購入者にはゼロ値の構造体を返す。
	HistoryByBuyer(ctx context.Context, buyerID int64) (*model.PurchaseHistory, error)

	// ListAll は全購入履歴をpurchased_at昇順で返す。売上集計用。
	ListAll(ctx context.Context) ([]model.Purchase, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
