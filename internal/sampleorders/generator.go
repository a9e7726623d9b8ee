package sampleorders

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/demandrank/internal/domain/scoring"
)

// Demand profiles shape how a product sells across the three years.
const (
	profileSteady = iota
	profileGrowing
	profileDeclining
	profileOneHit
	profileNiche
	profileCount
)

// skuNamespace scopes product names derived from the seed.
var skuNamespace = uuid.MustParse("6f1c2a4e-8a55-4d0e-9c1b-3a9f2f6d7e10")

// Generate returns order rows for cfg.Products products covering every
// seasonal window plus cfg.Margin days on each side. Output is sorted by
// date, then product, and depends only on cfg.
func Generate(cfg Config) []Row {
	if cfg.Products < 1 {
		cfg.Products = DefaultProducts
	}
	if cfg.Margin < 0 {
		cfg.Margin = 0
	}
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15))

	products := make([]string, cfg.Products)
	profiles := make([]int, cfg.Products)
	bases := make([]float64, cfg.Products)
	for i := range products {
		products[i] = productName(cfg.Seed, i)
		profiles[i] = rng.IntN(profileCount)
		bases[i] = 5 + rng.Float64()*45
	}

	var rows []Row
	for year, w := range scoring.Windows {
		first := time.Date(w.Year, w.Month, w.FirstDay, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -cfg.Margin)
		last := time.Date(w.Year, w.Month, w.LastDay, 0, 0, 0, 0, time.UTC).AddDate(0, 0, cfg.Margin)
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			for i, p := range products {
				mean := bases[i] * yearFactor(profiles[i], year)
				rows = append(rows, Row{Date: d, Product: p, TotalOrders: orders(rng, mean)})
			}
		}
	}
	return rows
}

// productName derives a stable, readable SKU from the seed and index.
func productName(seed int64, i int) string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(seed))
	binary.BigEndian.PutUint64(buf[8:], uint64(i))
	id := uuid.NewSHA1(skuNamespace, buf[:])
	return fmt.Sprintf("SKU-%03d-%s", i+1, id.String()[:8])
}

func yearFactor(profile, year int) float64 {
	switch profile {
	case profileGrowing:
		return []float64{0.6, 1.0, 1.5}[year]
	case profileDeclining:
		return []float64{1.5, 1.0, 0.5}[year]
	case profileOneHit:
		return []float64{0.2, 2.5, 0.2}[year]
	case profileNiche:
		return 0.15
	default:
		return 1
	}
}

// orders draws a non-negative daily count around mean with 25% jitter.
func orders(rng *rand.Rand, mean float64) int {
	v := mean + rng.NormFloat64()*mean*0.25
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}
