// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とワーカーから利用する。
type MetricsCollector interface {
	RecordKeysAdded(productName string, added, duplicates int)
	RecordRedemption(productName string)
	RecordOutOfStock(productName string)
	RecordRedeemFailure(productName string)
	RecordRedeemLatency(duration time.Duration)
	SetStockLevel(productName string, count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	keysAdded     prometheus.Counter
	duplicateKeys prometheus.Counter
	redemptions   *prometheus.CounterVec
	outOfStock    *prometheus.CounterVec
	redeemFail    *prometheus.CounterVec
	redeemLatency prometheus.Histogram
	stockLevel    *prometheus.GaugeVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		keysAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keyhub_keys_added_total",
			Help: "追加されたライセンスキーの合計数",
		}),
		duplicateKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "keyhub_duplicate_keys_total",
			Help: "重複によりスキップされたキーの合計数",
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyhub_redemptions_total",
			Help: "商品別のキー引き換え成功数",
		}, []string{"product"}),
		outOfStock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyhub_out_of_stock_total",
			Help: "商品別の在庫切れ引き換え試行数",
		}, []string{"product"}),
		redeemFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "keyhub_redeem_failures_total",
			Help: "商品別のストア障害による引き換え失敗数",
		}, []string{"product"}),
		redeemLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "keyhub_redeem_latency_seconds",
			Help:    "キー引き換えのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		stockLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "keyhub_stock_unused_keys",
			Help: "商品別の未使用キー在庫数",
		}, []string{"product"}),
	}

	reg.MustRegister(
		c.keysAdded,
		c.duplicateKeys,
		c.redemptions,
		c.outOfStock,
		c.redeemFail,
		c.redeemLatency,
		c.stockLevel,
	)

	return c
}

// RecordKeysAdded はキー追加の結果を記録する。
func (c *Collector) RecordKeysAdded(productName string, added, duplicates int) {
	c.keysAdded.Add(float64(added))
	c.duplicateKeys.Add(float64(duplicates))
}

// RecordRedemption は引き換え成功を記録する。
func (c *Collector) RecordRedemption(productName string) {
	c.redemptions.WithLabelValues(productName).Inc()
}

// RecordOutOfStock は在庫切れの引き換え試行を記録する。
func (c *Collector) RecordOutOfStock(productName string) {
	c.outOfStock.WithLabelValues(productName).Inc()
}

// RecordRedeemFailure はストア障害による引き換え失敗を記録する。
func (c *Collector) RecordRedeemFailure(productName string) {
	c.redeemFail.WithLabelValues(productName).Inc()
}

// RecordRedeemLatency は引き換えのレイテンシを記録する。
func (c *Collector) RecordRedeemLatency(duration time.Duration) {
	c.redeemLatency.Observe(duration.Seconds())
}

// SetStockLevel は商品の未使用キー在庫数を記録する。
func (c *Collector) SetStockLevel(productName string, count int) {
	c.stockLevel.WithLabelValues(productName).Set(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
