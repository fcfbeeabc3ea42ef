// Package earnings computes the platform fee split for a contract.
// All math is integer, on minor units and basis points, so the split is
// exact: PlatformFee + NetEarnings == gross always.
package earnings

import "math"

// DefaultFeeBPS is the documented fallback (5%) used when the admin has
// not configured finder_earnings_charge_percentage. Earnings must stay
// computable for display even before configuration exists.
const DefaultFeeBPS = 500

type Earnings struct {
	PlatformFee int64 `json:"platform_fee"`
	NetEarnings int64 `json:"net_earnings"`
}

// Calculate splits a gross amount (minor units) by a fee in basis points.
// The fee is rounded half-up to the nearest minor unit. feeBPS outside
// [0, 10000] is clamped; a negative gross yields a zero split.
func Calculate(gross int64, feeBPS int) Earnings {
	if gross <= 0 {
		return Earnings{}
	}
	if feeBPS < 0 {
		feeBPS = 0
	}
	if feeBPS > 10000 {
		feeBPS = 10000
	}

	product := gross * int64(feeBPS)
	fee := product / 10000
	if product%10000*2 >= 10000 {
		fee++
	}

	return Earnings{
		PlatformFee: fee,
		NetEarnings: gross - fee,
	}
}

// FeePercentToBPS converts a percentage (e.g. 5.0) to basis points,
// rounding to the nearest point.
func FeePercentToBPS(percent float64) int {
	if percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return 10000
	}
	return int(math.Round(percent * 100))
}
