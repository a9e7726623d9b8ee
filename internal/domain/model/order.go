// Package model contains domain models passed between layers.
package model

import "time"

// Reference years scored by the ranking, oldest first.
const (
	Year2022 = 2022
	Year2023 = 2023
	Year2024 = 2024
)

// Years lists the reference years in column order.
var Years = [3]int{Year2022, Year2023, Year2024}

// OrderRecord is one source row: the orders of a product on a date.
type OrderRecord struct {
	Date        time.Time
	Product     string
	TotalOrders float64
}

// YearlyTotals holds a product's summed orders per reference year, indexed like Years.
type YearlyTotals [3]float64

// YearlyAggregate maps a product to its per-year totals.
type YearlyAggregate map[string]*YearlyTotals

// ScoredProduct is the full breakdown of a ranked product.
type ScoredProduct struct {
	Product  string
	Totals   YearlyTotals
	Avg      float64
	Min      float64
	CoV      float64
	Top7     int
	NormAvg  float64
	NormMin  float64
	NormCoV  float64
	NormTop7 float64
	Score    float64 // 0..10
	Rank     int     // 1-based, unique
}
