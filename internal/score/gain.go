package score

import (
	"github.com/shopspring/decimal"
)

// Scores are rounded to hundredths, half away from zero. All arithmetic on
// scores goes through decimal so totals do not accumulate float drift.
const scorePlaces = 2

// ComputeGain is the score earned by logging amount units at perUnitRate.
func ComputeGain(amount, perUnitRate float64) float64 {
	gain := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(perUnitRate))
	return gain.Round(scorePlaces).InexactFloat64()
}

// Round2 rounds x to hundredths with the same rule as ComputeGain.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(scorePlaces).InexactFloat64()
}

// PleasureScore maps a subjective intensity to its score. Only 3, 6 and 10
// are valid; anything else scores zero.
func PleasureScore(intensity int) float64 {
	switch intensity {
	case 3, 6, 10:
		return float64(intensity)
	}
	return 0
}

func sumDecimal(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}
