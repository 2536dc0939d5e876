// Package stockwatch は在庫監視の定期ジョブを提供する。
// 未使用キー数を定期的に集計してメトリクスゲージに反映し、
// しきい値以下まで減った商品を警告ログに出力する。
package stockwatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/northernhub/keyhub/internal/model"
)

// StockLister は在庫集計の読み取りインターフェース。
type StockLister interface {
	CountUnusedAll(ctx context.Context) ([]model.StockEntry, error)
}

// GaugeSetter は在庫ゲージの更新インターフェース。
type GaugeSetter interface {
	SetStockLevel(productName string, count int)
}

// Job は在庫監視の定期ジョブ。
// 冪等であり、同じ在庫状態に対して何度実行しても結果は変わらない。
type Job struct {
	lister    StockLister
	gauge     GaugeSetter
	logger    *slog.Logger
	Threshold int // この値以下の在庫を低在庫として警告する
}

// NewJob は新しいJobを生成する。
func NewJob(lister StockLister, gauge GaugeSetter, logger *slog.Logger, threshold int) *Job {
	return &Job{
		lister:    lister,
		gauge:     gauge,
		logger:    logger,
		Threshold: threshold,
	}
}

// Run は在庫を1回集計し、ゲージの更新と低在庫の警告を行う。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	entries, err := j.lister.CountUnusedAll(ctx)
	if err != nil {
		j.logger.Error("stock watch failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to count stock: %w", err)
	}

	lowCount := 0
	for _, entry := range entries {
		if j.gauge != nil {
			j.gauge.SetStockLevel(entry.ProductName, entry.Count)
		}
		if entry.Count <= j.Threshold {
			lowCount++
			j.logger.Warn("low stock",
				slog.String("product", entry.ProductName),
				slog.Int("count", entry.Count),
				slog.Int("threshold", j.Threshold),
			)
		}
	}

	duration := time.Since(start)
	j.logger.Info("stock watch completed",
		slog.Int("products", len(entries)),
		slog.Int("low_stock_products", lowCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start はintervalごとにRunを実行するループを開始する。
// 起動直後に1回実行し、以降はティッカーに従う。
// ctxのキャンセルで停止する（ブロッキング）。
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil {
		j.logger.Error("stock watch run failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("stock watch run failed", slog.String("error", err.Error()))
			}
		}
	}
}
