package emi

import "github.com/shopspring/decimal"

// Redistribute splits total into n shares rounded half-up to the cent.
// The last share absorbs the rounding remainder so that the shares always sum up to total.
func Redistribute(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	count := decimal.NewFromInt(int64(n))
	others := decimal.NewFromInt(int64(n - 1))

	share := total.Div(count).Round(2)
	// rounding up tiny totals over many shares could leave the last one negative
	if share.Mul(others).GreaterThan(total) {
		share = total.Div(count).Truncate(2)
	}

	shares := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		shares[i] = share
	}
	shares[n-1] = total.Sub(share.Mul(others))
	return shares
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
