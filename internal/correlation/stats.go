// internal/correlation/stats.go
package correlation

import (
	"math"
	"sort"
)

// ranks assigns average (midrank) ranks to the values, so ties share
// the mean of the positions they occupy.
func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranked := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// positions i..j are tied; they share the average rank
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranked[idx[k]] = avg
		}
		i = j + 1
	}
	return ranked
}

// SpearmanRho computes the Spearman rank correlation between two
// equal-length series. It returns ok=false when the coefficient cannot
// be computed: mismatched or short inputs, or zero variance in either
// ranked series. Callers treat that as "no monotonic signal".
func SpearmanRho(x, y []float64) (rho float64, ok bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}

	rx := ranks(x)
	ry := ranks(y)

	n := float64(len(x))
	var meanX, meanY float64
	for i := range rx {
		meanX += rx[i]
		meanY += ry[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range rx {
		dx := rx[i] - meanX
		dy := ry[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// RankBiserial computes a Cliff's-delta style effect size between two
// groups: the probability that a random value from a exceeds a random
// value from b, minus the reverse probability. Result is in [-1, 1].
// ok=false when either group is empty.
func RankBiserial(a, b []float64) (delta float64, ok bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	var more, less int
	for _, va := range a {
		for _, vb := range b {
			switch {
			case va > vb:
				more++
			case va < vb:
				less++
			}
		}
	}
	total := float64(len(a) * len(b))
	return (float64(more) - float64(less)) / total, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
