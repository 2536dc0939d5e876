// Package license はライセンスキーの在庫管理と引き換えのドメインロジックを提供する。
//
// 公開オペレーションはすべて全域・例外フリーの契約を持つ: ストア起因のエラーは
// この層でログに記録して失敗値（false / failed / ゼロ値）へ変換し、
// リポジトリ固有のエラー型を呼び出し側へ漏らさない。
// not-found（未知の商品、在庫切れ、履歴のない購入者）はエラーではなく値で表現する。
package license

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/northernhub/keyhub/internal/metrics"
	"github.com/northernhub/keyhub/internal/model"
	"github.com/northernhub/keyhub/internal/repository"
	"github.com/northernhub/keyhub/internal/security"
)

// Service はライセンスキー管理のサービス層。
type Service struct {
	productRepo  repository.ProductRepository
	keyRepo      repository.KeyRepository
	purchaseRepo repository.PurchaseRepository
	sanitizer    security.DescriptionSanitizerService
	collector    metrics.MetricsCollector // nilの場合はメトリクスを記録しない
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilを許容する。
func NewService(
	productRepo repository.ProductRepository,
	keyRepo repository.KeyRepository,
	purchaseRepo repository.PurchaseRepository,
	sanitizer security.DescriptionSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		productRepo:  productRepo,
		keyRepo:      keyRepo,
		purchaseRepo: purchaseRepo,
		sanitizer:    sanitizer,
		collector:    collector,
	}
}

// AddProduct は商品が存在しない場合のみ作成する（insert-or-ignore）。
// 新しい行が実際に作成されたかどうかを返す。既存の商品名に対する再作成は
// no-opでありfalseを返す。エラーではない。
// 説明文は保存前にサニタイズされる。
func (s *Service) AddProduct(ctx context.Context, name, description string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		slog.Warn("add product rejected: empty name")
		return false
	}

	if s.sanitizer != nil {
		description = s.sanitizer.Sanitize(description)
	}

	created, err := s.productRepo.InsertIgnore(ctx, name, description)
	if err != nil {
		slog.Error("failed to create product",
			slog.String("product", name),
			slog.String("error", err.Error()),
		)
		return false
	}

	return created
}

// AddKeys はキーを一括追加する。
// 各キーはトリムされ、空文字列は黙ってスキップされる。商品が未登録の場合は
// 副作用として作成される。既存のキー文字列は重複としてカウントされるだけで
// バッチ全体のエラーにはならない（部分的な成功は正常系）。
// トリム後に有効なキーが1件もない場合はsuccess=falseの検証エラーを返す。
// ストア障害時はバッチ全体が中断され、何もコミットされない。
func (s *Service) AddKeys(ctx context.Context, productName string, rawKeys []string) model.AddKeysResult {
	productName = strings.TrimSpace(productName)

	var keys []string
	for _, raw := range rawKeys {
		key := strings.TrimSpace(raw)
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}

	if productName == "" {
		return model.AddKeysResult{Success: false, Message: "no product name provided"}
	}
	if len(keys) == 0 {
		return model.AddKeysResult{Success: false, Message: "no keys provided"}
	}

	added, duplicates, err := s.keyRepo.BulkInsert(ctx, productName, keys)
	if err != nil {
		slog.Error("failed to add keys",
			slog.String("product", productName),
			slog.String("error", err.Error()),
		)
		return model.AddKeysResult{
			Success: false,
			Message: fmt.Sprintf("database error: %v", err),
		}
	}

	message := fmt.Sprintf("Added %d keys to %s", added, productName)
	if duplicates > 0 {
		message += fmt.Sprintf(" (%d duplicates skipped)", duplicates)
	}

	slog.Info("keys added",
		slog.String("product", productName),
		slog.Int("added", added),
		slog.Int("duplicates", duplicates),
	)
	if s.collector != nil {
		s.collector.RecordKeysAdded(productName, added, duplicates)
	}

	return model.AddKeysResult{
		Success:    true,
		Message:    message,
		Added:      added,
		Duplicates: duplicates,
	}
}

// Redeem は未使用キーを1件引き換える。
// 結果はステータスで区別される:
//   - redeemed: 引き換え成功。KeyValueとTransactionIDが設定される。
//   - out_of_stock: 未使用キーが存在しなかった。エラーではなく在庫切れ。
//   - failed: 検証エラーまたはストア障害。在庫切れとは区別される。
//
// キーのused更新と購入履歴の挿入は1トランザクションで確定するため、
// 両方が可視になるか、どちらも可視にならないかのいずれかとなる。
func (s *Service) Redeem(ctx context.Context, productName, buyerTag string, buyerID int64, amountSpent float64) model.RedeemResult {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return model.RedeemResult{Status: model.RedeemStatusFailed, Message: "no product name provided"}
	}
	if amountSpent < 0 {
		return model.RedeemResult{Status: model.RedeemStatusFailed, Message: fmt.Sprintf("invalid amount: %.2f", amountSpent)}
	}

	start := time.Now()
	redemption, err := s.keyRepo.ClaimUnused(ctx, repository.ClaimParams{
		ProductName: productName,
		BuyerTag:    buyerTag,
		BuyerID:     buyerID,
		AmountSpent: amountSpent,
	})
	if err != nil {
		slog.Error("failed to redeem key",
			slog.String("product", productName),
			slog.Int64("buyer_id", buyerID),
			slog.String("error", err.Error()),
		)
		if s.collector != nil {
			s.collector.RecordRedeemFailure(productName)
		}
		return model.RedeemResult{Status: model.RedeemStatusFailed, Message: "store failure"}
	}

	if redemption == nil {
		slog.Info("redeem attempted with no stock",
			slog.String("product", productName),
			slog.Int64("buyer_id", buyerID),
		)
		if s.collector != nil {
			s.collector.RecordOutOfStock(productName)
		}
		return model.RedeemResult{Status: model.RedeemStatusOutOfStock}
	}

	slog.Info("key redeemed",
		slog.String("product", productName),
		slog.Int64("buyer_id", buyerID),
		slog.String("transaction_id", redemption.TransactionID),
	)
	if s.collector != nil {
		s.collector.RecordRedemption(productName)
		s.collector.RecordRedeemLatency(time.Since(start))
	}

	return model.RedeemResult{
		Status:        model.RedeemStatusRedeemed,
		KeyValue:      redemption.KeyValue,
		TransactionID: redemption.TransactionID,
	}
}

// Stock は指定商品の未使用キー数を返す。
// 未知の商品は0（エラーではない）。ストア障害時も0を返し、ログに記録する。
func (s *Service) Stock(ctx context.Context, productName string) int {
	count, err := s.keyRepo.CountUnused(ctx, strings.TrimSpace(productName))
	if err != nil {
		slog.Error("failed to get stock",
			slog.String("product", productName),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return count
}

// StockAll は未使用キーが1件以上ある全商品の在庫を商品名順で返す。
// ストア障害時は空スライスを返し、ログに記録する。
func (s *Service) StockAll(ctx context.Context) []model.StockEntry {
	entries, err := s.keyRepo.CountUnusedAll(ctx)
	if err != nil {
		slog.Error("failed to list stock", slog.String("error", err.Error()))
		return []model.StockEntry{}
	}
	if entries == nil {
		entries = []model.StockEntry{}
	}
	return entries
}

// BuyerPurchases は購入者の商品別集計と生涯合計を返す。
// 履歴のない購入者にもストア障害時にもゼロ値の構造体を返す（エラーにしない）。
func (s *Service) BuyerPurchases(ctx context.Context, buyerID int64) model.PurchaseHistory {
	history, err := s.purchaseRepo.HistoryByBuyer(ctx, buyerID)
	if err != nil {
		slog.Error("failed to get buyer purchases",
			slog.Int64("buyer_id", buyerID),
			slog.String("error", err.Error()),
		)
		return model.PurchaseHistory{Purchases: []model.ProductPurchaseSummary{}}
	}
	return *history
}

// AllPurchases は全購入履歴を返す。売上集計のデータソースとして使用する。
// ストア障害時は空スライスを返し、ログに記録する。
func (s *Service) AllPurchases(ctx context.Context) []model.Purchase {
	purchases, err := s.purchaseRepo.ListAll(ctx)
	if err != nil {
		slog.Error("failed to list purchases", slog.String("error", err.Error()))
		return nil
	}
	return purchases
}
