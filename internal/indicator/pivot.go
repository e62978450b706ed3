package indicator

// PivotHighs returns indices whose value is the maximum of the centered window
// of width values on each side. Of a run of equal pivots only the first index
// is kept. Bars closer than width to either edge are never pivots.
func PivotHighs(values []float64, width int) []int {
	return pivots(values, width, func(center, other float64) bool { return center >= other })
}

// PivotLows returns indices whose value is the minimum of the centered window.
func PivotLows(values []float64, width int) []int {
	return pivots(values, width, func(center, other float64) bool { return center <= other })
}

func pivots(values []float64, width int, beats func(center, other float64) bool) []int {
	var idx []int
	last := -1 // 직전 피벗 (고원 중복 포함)
	for i := width; i < len(values)-width; i++ {
		ok := true
		for j := i - width; j <= i+width; j++ {
			if j == i {
				continue
			}
			if !beats(values[i], values[j]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		plateau := last == i-1 && values[last] == values[i]
		last = i
		if plateau {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}
