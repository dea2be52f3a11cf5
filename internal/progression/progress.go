package progression

import (
	"fmt"
	"math"
)

// Progress is a completed/total lesson count
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent is the completed share rounded to the nearest whole percent, 0 for an empty course
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
}

// Label renders the progress as "P% Complete (c / t)"
func (p Progress) Label() string {
	return fmt.Sprintf("%d%% Complete (%d / %d)", p.Percent(), p.Completed, p.Total)
}

// Visible reports whether there is anything to show
func (p Progress) Visible() bool {
	return p.Total > 0
}
