package treetop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_analyses_total",
		Help: "The total number of height grids analyzed",
	})
	cellsAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "treetop_cells_analyzed_total",
		Help: "The total number of trees analyzed",
	})
)

// A Report summarizes the analysis of a height grid.
type Report struct {
	Height         int
	Width          int
	VisibleCount   int
	MaxScenicScore ScenicScore
	BestCoord      Coord // Only meaningful if MaxScenicScore is non-zero.
}

// Analyze returns the Report for heights.
func Analyze(heights *HeightGrid) Report {
	analysesTotal.Inc()
	cellsAnalyzedTotal.Add(float64(heights.Height() * heights.Width()))

	scores := ScenicScores(heights)
	bestCoord, _ := BestScenicCoord(scores)
	return Report{
		Height:         heights.Height(),
		Width:          heights.Width(),
		VisibleCount:   CountVisible(Visibility(heights)),
		MaxScenicScore: MaxScenicScore(scores),
		BestCoord:      bestCoord,
	}
}
