// Package tier は生涯支払額から顧客ティアを算出する純粋関数を提供する。
// ストアへのアクセスは行わず、呼び出し側が集計済みの数値を渡す。
package tier

// Tier は顧客の分類ラベルを表す。
type Tier string

// ティアは下限を含む6段階のはしご。高い方の条件が優先される。
const (
	TierNew      Tier = "New Customer"
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
)

// threshold はティアの下限額。昇順に並べる。
type threshold struct {
	amount float64
	tier   Tier
}

var ladder = []threshold{
	{0, TierNew},
	{50, TierBronze},
	{100, TierSilver},
	{250, TierGold},
	{500, TierPlatinum},
	{1000, TierDiamond},
}

// benefits はティアごとの特典説明。
var benefits = map[Tier]string{
	TierNew:      "Basic support",
	TierBronze:   "Standard support",
	TierSilver:   "Standard support",
	TierGold:     "Exclusive giveaway entries",
	TierPlatinum: "Priority support, early access",
	TierDiamond:  "Priority support, special discounts, exclusive access",
}

// Classify は生涯支払額からティアを返す。
// 全域関数であり、非負のすべての値が正確に1つのティアに対応する。
// 最初の閾値を下回る値（負値を含む）には最下位ティアを返す。
// 支払額に対して単調非減少。
func Classify(lifetimeSpent float64) Tier {
	result := TierNew
	for _, t := range ladder {
		if lifetimeSpent >= t.amount {
			result = t.tier
		}
	}
	return result
}

// Benefits はティアの特典説明を返す。
func Benefits(t Tier) string {
	return benefits[t]
}

// NextThreshold は現在の支払額より厳密に大きい最小の閾値を返す。
// 最上位ティア以上の場合は (0, false) を返す（次のティアは存在しない）。
func NextThreshold(lifetimeSpent float64) (float64, bool) {
	for _, t := range ladder {
		if t.amount > lifetimeSpent {
			return t.amount, true
		}
	}
	return 0, false
}
