package scoring

import (
	"math"
	"slices"
	"strings"

	"github.com/okian/demandrank/internal/domain/model"
)

// computeMetrics derives avg, min, CoV and the Top-7 count of every product.
// The result is ordered by product name.
func computeMetrics(agg model.YearlyAggregate) []model.ScoredProduct {
	names := make([]string, 0, len(agg))
	for name := range agg {
		names = append(names, name)
	}
	slices.Sort(names)

	products := make([]model.ScoredProduct, len(names))
	for i, name := range names {
		t := *agg[name]
		mean := meanOf(t)
		products[i] = model.ScoredProduct{
			Product: name,
			Totals:  t,
			Avg:     roundHalfEven(mean, 2),
			Min:     min(t[0], t[1], t[2]),
			CoV:     roundHalfEven(coefficientOfVariation(t, mean), 2),
		}
	}

	for year := range model.Years {
		for _, i := range topPositions(products, year) {
			products[i].Top7++
		}
	}
	return products
}

func meanOf(t model.YearlyTotals) float64 {
	return (t[0] + t[1] + t[2]) / float64(len(t))
}

// coefficientOfVariation is the population standard deviation over the mean,
// in percent. It is 0 when the mean is 0.
func coefficientOfVariation(t model.YearlyTotals, mean float64) float64 {
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, v := range t {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(t)))
	return std / mean * 100
}

// topPositions returns the indexes of products whose total for year is at
// least the 7th-best total. Ties at the cutoff are all included, and with
// fewer than seven products every product qualifies.
func topPositions(products []model.ScoredProduct, year int) []int {
	order := make([]int, len(products))
	for i := range order {
		order[i] = i
	}
	if len(order) < top7Positions {
		return order
	}

	slices.SortFunc(order, func(a, b int) int {
		va, vb := products[a].Totals[year], products[b].Totals[year]
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return strings.Compare(products[a].Product, products[b].Product)
	})
	cutoff := products[order[top7Positions-1]].Totals[year]

	out := order[:0]
	for _, i := range order {
		if products[i].Totals[year] >= cutoff {
			out = append(out, i)
		}
	}
	return out
}
