// Package sampleorders generates synthetic order workbooks and exercises a
// running server with them.
package sampleorders

import "time"

// Config controls sample generation.
type Config struct {
	Products int   // distinct products
	Seed     int64 // same seed, same workbook
	// Margin adds rows this many days before and after each seasonal window,
	// which the ranking must ignore.
	Margin int
}

// Default generation parameters.
const (
	DefaultProducts = 25
	DefaultMargin   = 3
)

// DefaultConfig returns the generation defaults with a time-based seed.
func DefaultConfig() Config {
	return Config{
		Products: DefaultProducts,
		Seed:     time.Now().UnixNano(),
		Margin:   DefaultMargin,
	}
}

// Row is one generated order line.
type Row struct {
	Date        time.Time
	Product     string
	TotalOrders int
}
