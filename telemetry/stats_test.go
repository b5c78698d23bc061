package telemetry

import (
	"testing"

	"github.com/foamkit/diffuse/diffuse"
	"github.com/foamkit/diffuse/vecmath"
)

func TestClassCounts(t *testing.T) {
	pool := &diffuse.Pool{
		Density: []float64{0, 1, 5, 9, 20},
		Pos:     make([]vecmath.Vec, 5),
		Vel:     make([]vecmath.Vec, 5),
		ID:      []int64{1, 2, 3, 4, 5},
		TTL:     []int{0, 0, 0, 0, 0},
	}
	spray, foam, bubble := ClassCounts(pool, 2, 8)
	// 0,1 < spray; 5 in [spray,bubbles]; 9,20 > bubbles.
	if spray != 2 || foam != 1 || bubble != 2 {
		t.Errorf("ClassCounts = (%d,%d,%d), want (2,1,2)", spray, foam, bubble)
	}
}

func TestMeanTTLEmptyPool(t *testing.T) {
	pool := &diffuse.Pool{}
	if got := MeanTTL(pool); got != 0 {
		t.Errorf("MeanTTL(empty) = %v, want 0", got)
	}
}

func TestMeanTTL(t *testing.T) {
	pool := &diffuse.Pool{TTL: []int{10, 20, 30}, ID: []int64{1, 2, 3}}
	if got := MeanTTL(pool); got != 20 {
		t.Errorf("MeanTTL = %v, want 20", got)
	}
}

func TestRunSummaryAdd(t *testing.T) {
	var r RunSummary
	r.Add(FrameStats{Births: 5, Deaths: 1, TotalDiffuse: 5, SprayCount: 3, FoamCount: 2})
	r.Add(FrameStats{Births: 2, Deaths: 4, TotalDiffuse: 3, SprayCount: 1, FoamCount: 1, BubbleCount: 1})

	if r.Frames != 2 {
		t.Errorf("Frames = %d, want 2", r.Frames)
	}
	if r.TotalBirths != 7 || r.TotalDeaths != 5 {
		t.Errorf("totals = (%d,%d), want (7,5)", r.TotalBirths, r.TotalDeaths)
	}
	if r.PeakDiffuse != 5 {
		t.Errorf("PeakDiffuse = %d, want 5 (max, not sum)", r.PeakDiffuse)
	}
	if r.FinalCounts.Spray != 1 || r.FinalCounts.Foam != 1 || r.FinalCounts.Bubble != 1 {
		t.Errorf("FinalCounts = %+v, want last frame's counts", r.FinalCounts)
	}
}
