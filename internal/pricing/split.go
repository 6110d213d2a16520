package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Ratio returns total/base, or 1 when base is zero.
func Ratio(total, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.NewFromInt(1)
	}
	return total.Div(base)
}

// Split distributes total across weights proportionally. The parts always sum
// to total exactly: the division remainder lands on the last non-zero weight.
// When every weight is zero nothing can be distributed and the weights are
// returned unchanged.
func Split(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	parts := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 {
		return parts
	}

	sum := decimal.Zero
	last := -1
	for i, w := range weights {
		sum = sum.Add(w)
		if !w.IsZero() {
			last = i
		}
	}

	ratio := Ratio(total, sum)
	allocated := decimal.Zero
	for i, w := range weights {
		parts[i] = w.Mul(ratio)
		if i != last {
			allocated = allocated.Add(parts[i])
		}
	}
	if last >= 0 {
		parts[last] = total.Sub(allocated)
	}
	return parts
}

// Present rounds to one decimal place for JSON output.
func Present(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}
