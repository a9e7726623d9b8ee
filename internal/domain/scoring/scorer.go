// Package scoring ranks products by how steadily they sell during the
// seasonal window of each reference year.
//
// The pipeline is Filter -> Aggregate -> Metrics -> Normalize -> Weight -> Rank.
// A Scorer holds no state between calls and is safe for concurrent use.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/demandrank/internal/domain/model"
	"github.com/okian/demandrank/internal/domain/table"
	"github.com/okian/demandrank/internal/domain/types"
)

// Weights of the normalized factors in the final score. They sum to 1.
type Weights struct {
	Avg       float64
	Min       float64
	Stability float64 // inverted CoV
	Top7      float64
}

// DefaultWeights favours stability and average volume.
func DefaultWeights() Weights {
	return Weights{
		Avg:       0.4,
		Min:       0.2,
		Stability: 0.3,
		Top7:      0.1,
	}
}

const (
	scoreScale    = 10
	top7Positions = 7
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithStrictCoVNormalization makes a ranking fail with
// ErrDegenerateNormalization when every product has the same CoV. By default
// the stability factor is 0 for everyone in that case.
func WithStrictCoVNormalization(strict bool) Option {
	return func(s *Scorer) {
		s.strictCoV = strict
	}
}

// Scorer computes demand-stability rankings.
type Scorer struct {
	weights   Weights
	strictCoV bool
}

// New creates a Scorer with the fixed default weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ranking is the result of one scoring run.
type Ranking struct {
	Products     []model.ScoredProduct // ordered by rank
	RowsRead     int
	RowsInWindow int
}

// Entries converts the ranking to its wire shape.
func (r Ranking) Entries() []types.Entry {
	out := make([]types.Entry, len(r.Products))
	for i, p := range r.Products {
		out[i] = types.Entry{Product: p.Product, Rank: p.Rank, OutOf10: p.Score, Top7: p.Top7}
	}
	return out
}

// ScoreTable validates the table's columns, converts its rows and scores them.
func (s *Scorer) ScoreTable(ctx context.Context, tbl *table.Table) (Ranking, error) {
	records, err := Records(tbl)
	if err != nil {
		return Ranking{}, err
	}
	return s.Score(ctx, records)
}

// Score ranks the products found in records. Every failure caused by the
// data is a *ValidationError; no partial ranking is returned.
func (s *Scorer) Score(ctx context.Context, records []model.OrderRecord) (Ranking, error) {
	if err := ctx.Err(); err != nil {
		return Ranking{}, fmt.Errorf("scoring cancelled: %w", err)
	}

	agg, inWindow := Aggregate(records)
	if len(agg) == 0 {
		return Ranking{}, emptyWindow(len(records))
	}

	products := computeMetrics(agg)
	if err := s.normalize(products); err != nil {
		return Ranking{}, err
	}
	for i := range products {
		products[i].Score = s.weighted(products[i])
	}
	rank(products)

	return Ranking{Products: products, RowsRead: len(records), RowsInWindow: inWindow}, nil
}

// Aggregate sums orders per product and reference year for the rows inside
// a seasonal window. Products without such rows are absent from the result.
func Aggregate(records []model.OrderRecord) (model.YearlyAggregate, int) {
	agg := make(model.YearlyAggregate)
	inWindow := 0
	for _, r := range records {
		idx, ok := windowIndex(r.Date)
		if !ok {
			continue
		}
		inWindow++
		totals, ok := agg[r.Product]
		if !ok {
			totals = &model.YearlyTotals{}
			agg[r.Product] = totals
		}
		totals[idx] += r.TotalOrders
	}
	return agg, inWindow
}

func (s *Scorer) weighted(p model.ScoredProduct) float64 {
	w := s.weights
	sum := p.NormAvg*w.Avg + p.NormMin*w.Min + p.NormCoV*w.Stability + p.NormTop7*w.Top7
	return roundHalfEven(sum*scoreScale, 3)
}
