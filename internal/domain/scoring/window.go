package scoring

import (
	"time"

	"github.com/okian/demandrank/internal/domain/model"
)

// Window is an inclusive day-of-month range inside one month of one year.
type Window struct {
	Year     int
	Month    time.Month
	FirstDay int
	LastDay  int
}

// Windows are the late-May holiday weeks of the reference years. The holiday
// falls on a different calendar day each year, so each year has its own range.
var Windows = [3]Window{
	{Year: model.Year2022, Month: time.May, FirstDay: 23, LastDay: 29},
	{Year: model.Year2023, Month: time.May, FirstDay: 22, LastDay: 28},
	{Year: model.Year2024, Month: time.May, FirstDay: 20, LastDay: 26},
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	return d.Year() == w.Year && d.Month() == w.Month && d.Day() >= w.FirstDay && d.Day() <= w.LastDay
}

// windowIndex returns the index into model.Years of the window containing d.
func windowIndex(d time.Time) (int, bool) {
	for i, w := range Windows {
		if w.Contains(d) {
			return i, true
		}
	}
	return 0, false
}
