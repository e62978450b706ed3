package fundamental

import "github.com/wonny/sepa/internal/contracts"

// accelerationQuarters is how many most-recent quarters feed the chain (3 QoQ rates)
const accelerationQuarters = 4

// growthRates returns QoQ rates r_k = (q_k - q_{k+1}) / q_{k+1}, most recent first.
// The sequence stops at the first zero denominator.
func growthRates(quarters []float64) []float64 {
	n := len(quarters)
	if n > accelerationQuarters {
		n = accelerationQuarters
	}

	var rates []float64
	for k := 0; k+1 < n; k++ {
		prev := quarters[k+1]
		if prev == 0 {
			break
		}
		rates = append(rates, (quarters[k]-prev)/prev)
	}
	return rates
}

// accelerationChain counts consecutive pairs with r_k > r_{k+1} starting from
// the most recent rate, stopping at the first pair that does not accelerate.
func accelerationChain(rates []float64) int {
	count := 0
	for k := 0; k+1 < len(rates); k++ {
		if rates[k] <= rates[k+1] {
			break
		}
		count++
	}
	return count
}

func detectAcceleration(quarters []float64) contracts.Acceleration {
	count := accelerationChain(growthRates(quarters))
	return contracts.Acceleration{
		Accelerating: count >= 1,
		Quarters:     count,
	}
}

// yoyGrowth compares the latest quarter with the one 3 quarters earlier.
// The base keeps its sign, so growth off a loss comes out negative.
// ok is false when the base is zero or there are fewer than 4 quarters.
func yoyGrowth(quarters []float64) (float64, bool) {
	if len(quarters) < accelerationQuarters {
		return 0, false
	}
	base := quarters[accelerationQuarters-1]
	if base == 0 {
		return 0, false
	}
	return (quarters[0] - base) / base * 100, true
}

// accelerationBonus: 2구간 이상 +20, 1구간 +10
func accelerationBonus(acc contracts.Acceleration) float64 {
	switch {
	case acc.Quarters >= 2:
		return 20
	case acc.Quarters >= 1:
		return 10
	default:
		return 0
	}
}
