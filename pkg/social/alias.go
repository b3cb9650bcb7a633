package social

import (
	"math"
	"math/rand"
)

// aliasTable supports O(1) weighted sampling via Vose's alias method.
type aliasTable struct {
	alias int64
	prob  float64
}

// buildAliasTable builds an alias table over the given weight distribution,
// raised to the given power before normalization.
func buildAliasTable(distribution []float64, power float64) []aliasTable {
	n := len(distribution)
	if n == 0 {
		return nil
	}

	table := make([]aliasTable, n)

	sum := 0.0
	norm := make([]float64, n)
	for i := 0; i < n; i++ {
		if distribution[i] > 0 {
			norm[i] = math.Pow(distribution[i], power)
		}
		sum += norm[i]
	}

	if sum == 0 {
		// Uniform distribution if all weights are zero
		for i := 0; i < n; i++ {
			table[i].prob = 1.0
			table[i].alias = int64(i)
		}
		return table
	}

	for i := 0; i < n; i++ {
		norm[i] = norm[i] * float64(n) / sum
	}

	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i := 0; i < n; i++ {
		if norm[i] < 1.0 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]

		g := large[len(large)-1]
		large = large[:len(large)-1]

		table[l].prob = norm[l]
		table[l].alias = int64(g)

		norm[g] = norm[g] + norm[l] - 1.0
		if norm[g] < 1.0 {
			small = append(small, g)
		} else {
			large = append(large, g)
		}
	}

	for len(large) > 0 {
		g := large[len(large)-1]
		large = large[:len(large)-1]
		table[g].prob = 1.0
		table[g].alias = int64(g)
	}

	for len(small) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		table[l].prob = 1.0
		table[l].alias = int64(l)
	}

	return table
}

// sampleAlias draws one index from the alias table.
func sampleAlias(table []aliasTable, rng *rand.Rand) int64 {
	if len(table) == 0 {
		return -1
	}

	i := rng.Intn(len(table))
	if rng.Float64() < table[i].prob {
		return int64(i)
	}
	return table[i].alias
}
