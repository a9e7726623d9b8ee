package scoring

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/demandrank/internal/domain/model"
)

// rank orders products by score descending, then name ascending, and numbers
// them 1..N. Equal scores never share a rank.
func rank(products []model.ScoredProduct) {
	slices.SortFunc(products, func(a, b model.ScoredProduct) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Product, b.Product)
	})
	for i := range products {
		products[i].Rank = i + 1
	}
}

// roundHalfEven rounds like numpy.round: scale, round half to even, unscale.
func roundHalfEven(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.RoundToEven(v*p) / p
}
