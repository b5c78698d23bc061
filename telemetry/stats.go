// Package telemetry adapts the teacher's per-window CSV statistics
// (telemetry/stats.go, telemetry/output.go) to the diffuse-particle engine:
// one FrameStats record per emitted frame instead of one WindowStats
// record per simulation tick window, written with the same
// gocarina/gocsv marshal-with-then-without-headers pattern, plus a
// run-level RunSummary accumulated across the whole run.
package telemetry

import (
	"log/slog"

	"github.com/foamkit/diffuse/diffuse"
)

// FrameStats holds the per-frame counters the driver loop reports, per
// spec.md §4.12's expanded ambient stack.
type FrameStats struct {
	Step          int     `csv:"step"`
	FluidCount    int     `csv:"fluid_count"`
	Births        int     `csv:"births"`
	Deaths        int     `csv:"deaths"`
	SprayCount    int     `csv:"spray_count"`
	FoamCount     int     `csv:"foam_count"`
	BubbleCount   int     `csv:"bubble_count"`
	TotalDiffuse  int     `csv:"total_diffuse"`
	MeanTTL       float64 `csv:"mean_ttl"`
	TOut          float64 `csv:"tout"`
	ElapsedMillis float64 `csv:"elapsed_ms"`
}

// LogValue implements slog.LogValuer, mirroring
// telemetry.WindowStats.LogValue in the teacher.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", s.Step),
		slog.Int("fluid_count", s.FluidCount),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("spray_count", s.SprayCount),
		slog.Int("foam_count", s.FoamCount),
		slog.Int("bubble_count", s.BubbleCount),
		slog.Int("total_diffuse", s.TotalDiffuse),
		slog.Float64("mean_ttl", s.MeanTTL),
		slog.Float64("tout", s.TOut),
		slog.Float64("elapsed_ms", s.ElapsedMillis),
	)
}

// ClassCounts tallies a pool by class.
func ClassCounts(pool *diffuse.Pool, spray, bubbles float64) (sprayN, foamN, bubbleN int) {
	for i := 0; i < pool.Len(); i++ {
		switch diffuse.ClassOf(pool.Density[i], spray, bubbles) {
		case diffuse.Spray:
			sprayN++
		case diffuse.Foam:
			foamN++
		case diffuse.Bubble:
			bubbleN++
		}
	}
	return
}

// MeanTTL returns the mean TTL across the pool, or 0 for an empty pool.
func MeanTTL(pool *diffuse.Pool) float64 {
	if pool.Len() == 0 {
		return 0
	}
	sum := 0
	for _, ttl := range pool.TTL {
		sum += ttl
	}
	return float64(sum) / float64(pool.Len())
}

// RunSummary accumulates totals across the whole run. The reference
// implementation recomputes some of its run-level totals from a buffer
// that is overwritten each frame rather than accumulated, so its final
// printed summary silently reflects only the last frame; RunSummary fixes
// this by summing as it goes (see DESIGN.md).
type RunSummary struct {
	Frames      int
	TotalBirths int
	TotalDeaths int
	PeakDiffuse int
	FinalCounts struct{ Spray, Foam, Bubble int }
}

// Add folds one frame's stats into the running summary.
func (r *RunSummary) Add(s FrameStats) {
	r.Frames++
	r.TotalBirths += s.Births
	r.TotalDeaths += s.Deaths
	if s.TotalDiffuse > r.PeakDiffuse {
		r.PeakDiffuse = s.TotalDiffuse
	}
	r.FinalCounts.Spray = s.SprayCount
	r.FinalCounts.Foam = s.FoamCount
	r.FinalCounts.Bubble = s.BubbleCount
}

// LogValue implements slog.LogValuer for the end-of-run summary line.
func (r RunSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", r.Frames),
		slog.Int("total_births", r.TotalBirths),
		slog.Int("total_deaths", r.TotalDeaths),
		slog.Int("peak_diffuse", r.PeakDiffuse),
		slog.Int("final_spray", r.FinalCounts.Spray),
		slog.Int("final_foam", r.FinalCounts.Foam),
		slog.Int("final_bubble", r.FinalCounts.Bubble),
	)
}
