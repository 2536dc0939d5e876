package model

// AddKeysResult はキー一括追加の結果を表す。
// 部分的な成功を許容する: 追加できたキーと重複でスキップされたキーの
// 両方のカウントを呼び出し側に返す。
type AddKeysResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
}

// RedeemStatus はキー引き換えの結果種別を表す。
type RedeemStatus string

const (
	// RedeemStatusRedeemed は引き換えに成功したことを示す。
	RedeemStatusRedeemed RedeemStatus = "redeemed"
	// RedeemStatusOutOfStock は未使用キーが存在しなかったことを示す。
	// エラーではなく在庫切れとして扱うこと。
	RedeemStatusOutOfStock RedeemStatus = "out_of_stock"
	// RedeemStatusFailed はストア障害または検証エラーを示す。
	// 在庫切れとは区別される。
	RedeemStatusFailed RedeemStatus = "failed"
)

// RedeemResult はキー引き換えの結果を表す。
// Statusがredeemedの場合のみKeyValueとTransactionIDが設定される。
type RedeemResult struct {
	Status        RedeemStatus `json:"status"`
	KeyValue      string       `json:"key_value,omitempty"`
	TransactionID string       `json:"transaction_id,omitempty"`
	Message       string       `json:"message,omitempty"`
}
