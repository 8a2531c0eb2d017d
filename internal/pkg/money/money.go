package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultFeePercent — комиссия платформы по умолчанию.
const DefaultFeePercent = 10.0

// Round2 округляет сумму до копеек (половина вверх).
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	r, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return r
}

// ToMoney приводит произвольное значение к денежной сумме с двумя знаками.
// Строки принимаются с разделителями тысяч (запятые и пробелы).
// Нечисловое или бесконечное значение даёт 0.
func ToMoney(v interface{}) float64 {
	return Round2(toFloat(v, 0))
}

// ToPercent приводит значение к проценту комиссии в диапазоне [0, 100].
// Нечисловое значение даёт DefaultFeePercent.
func ToPercent(v interface{}) float64 {
	p := toFloat(v, DefaultFeePercent)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ClampInt ограничивает число диапазоном [min, max].
func ClampInt(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// Net вычисляет чистую выплату после удержания комиссии.
func Net(gross, feePercent float64) float64 {
	fee := ToPercent(feePercent)
	net := decimal.NewFromFloat(gross).
		Mul(decimal.NewFromFloat(1).Sub(decimal.NewFromFloat(fee).Div(decimal.NewFromInt(100))))
	r, _ := net.Round(2).Float64()
	return r
}

// toFloat разбирает значение в float64, возвращая fallback для мусора.
func toFloat(v interface{}, fallback float64) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		cleaned := strings.ReplaceAll(t, ",", "")
		cleaned = strings.ReplaceAll(cleaned, " ", "")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		if err != nil {
			return fallback
		}
		f = parsed
	case nil:
		return fallback
	default:
		return fallback
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}
