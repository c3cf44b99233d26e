package decimalx

import (
	"github.com/shopspring/decimal"
)

// Slope 对序列做 min-max 归一化后求最小二乘斜率。
// 所有值相同时返回零。
func Slope(ds []decimal.Decimal) decimal.Decimal {
	if len(ds) < 2 {
		return decimal.Zero
	}

	// 归一化
	maxY, minY := ds[0], ds[0]
	for _, d := range ds {
		maxY = decimal.Max(maxY, d)
		minY = decimal.Min(minY, d)
	}
	diff := maxY.Sub(minY)
	if diff.IsZero() {
		return decimal.Zero
	}
	normalized := make([]decimal.Decimal, 0, len(ds))
	for _, d := range ds {
		normalized = append(normalized, d.Sub(minY).Div(diff))
	}

	sumX, sumY, sumXY, sumX2 := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for i, d := range normalized {
		x := decimal.NewFromInt(int64(i))
		sumX = sumX.Add(x)
		sumY = sumY.Add(d)
		sumXY = sumXY.Add(x.Mul(d))
		sumX2 = sumX2.Add(x.Mul(x))
	}

	n := decimal.NewFromInt(int64(len(normalized)))
	denominator := n.Mul(sumX2).Sub(sumX.Mul(sumX))
	if denominator.IsZero() {
		return decimal.Zero
	}
	return n.Mul(sumXY).Sub(sumX.Mul(sumY)).Div(denominator)
}
