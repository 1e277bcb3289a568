package model

import "github.com/shopspring/decimal"

// 決済プロバイダは最小単位（kobo）で受け渡す
var minorUnitFactor = decimal.NewFromInt(100)

func init() {
	// 価格はJSON上で数値として出す
	decimal.MarshalJSONWithoutQuotes = true
}

// 45000 -> 4500000
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitFactor).Round(0).IntPart()
}

// 4500000 -> 45000
func FromMinor(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(minorUnitFactor)
}
