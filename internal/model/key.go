package model

import "time"

// Key は一度だけ引き換え可能なライセンスキーを表す。
// key_valueはストア全体で一意（商品ごとではない）。
// usedはfalse→trueへ一度だけ遷移し、以降リセットされない。
// 引き換え前のBuyerTag/BuyerID/RedeemedAtはNULL（ゼロ値）であり、
// 引き換え後は不変。
type Key struct {
	ID          int64
	ProductName string
	KeyValue    string
	Used        bool
	BuyerTag    string
	BuyerID     int64
	RedeemedAt  time.Time
	CreatedAt   time.Time
}

// Redemption は引き換えに成功した1件の結果を表す。
// ClaimUnusedが1トランザクションで確定させた内容のスナップショット。
type Redemption struct {
	KeyValue      string
	ProductName   string
	BuyerTag      string
	BuyerID       int64
	AmountSpent   float64
	TransactionID string
	RedeemedAt    time.Time
}
