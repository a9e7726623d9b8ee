package scoring

import (
	"github.com/okian/demandrank/internal/domain/model"
)

// normalize fills the Norm* fields using min-max scaling over all products.
func (s *Scorer) normalize(products []model.ScoredProduct) error {
	avgs := make([]float64, len(products))
	mins := make([]float64, len(products))
	covs := make([]float64, len(products))
	for i, p := range products {
		avgs[i], mins[i], covs[i] = p.Avg, p.Min, p.CoV
	}

	nAvg := minMax(avgs)
	nMin := minMax(mins)
	nCoV, ok := invertedMinMax(covs)
	if !ok && s.strictCoV {
		return degenerate("coefficient of variation")
	}

	for i := range products {
		products[i].NormAvg = nAvg[i]
		products[i].NormMin = nMin[i]
		products[i].NormCoV = nCoV[i]
		products[i].NormTop7 = float64(products[i].Top7) / float64(len(model.Years))
	}
	return nil
}

func bounds(vals []float64) (lo, hi float64) {
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// minMax scales vals to [0,1]; all zeros when every value is equal.
func minMax(vals []float64) []float64 {
	out := make([]float64, len(vals))
	lo, hi := bounds(vals)
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range vals {
		out[i] = (v - lo) / span
	}
	return out
}

// invertedMinMax scales vals to [0,1] so the lowest value maps to 1. ok is
// false, and every result 0, when all values are equal.
func invertedMinMax(vals []float64) (out []float64, ok bool) {
	out = make([]float64, len(vals))
	lo, hi := bounds(vals)
	span := hi - lo
	if span == 0 {
		return out, false
	}
	for i, v := range vals {
		out[i] = (hi - v) / span
	}
	return out, true
}
