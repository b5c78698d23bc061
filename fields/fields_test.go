package fields

import (
	"math"
	"testing"

	"github.com/foamkit/diffuse/grid"
	"github.com/foamkit/diffuse/vecmath"
	"github.com/foamkit/diffuse/workpool"
)

func buildGrid(h float64, pos []vecmath.Vec) *grid.Grid {
	g := grid.New(h)
	g.Build(pos)
	return g
}

// TestLoneParticleHasNoFields covers boundary scenario S1 of spec.md §8: a
// single fluid particle with no neighbors produces colorField=0, Ita=0,
// waveCrest=0, ndiffuse=0 regardless of velocity.
func TestLoneParticleHasNoFields(t *testing.T) {
	h := 0.1
	pos := []vecmath.Vec{{X: 0.5, Y: 0.5, Z: 0.5}}
	vel := []vecmath.Vec{{X: 3, Y: -1, Z: 2}}
	frame := &FluidFrame{Pos: pos, Vel: vel, Rhop: []float64{1000}}
	g := buildGrid(h, pos)
	pool := workpool.New()
	defer pool.Stop()

	scratch := NewScratch(frame.N())
	RunPasses(pool, frame, g, 0.001, h, scratch)

	if scratch.ColorField[0] != 0 {
		t.Errorf("colorField = %v, want 0", scratch.ColorField[0])
	}
	if scratch.Ita[0] != 0 {
		t.Errorf("Ita = %v, want 0", scratch.Ita[0])
	}
	if scratch.WaveCrest[0] != 0 {
		t.Errorf("waveCrest = %v, want 0", scratch.WaveCrest[0])
	}

	ClampAll(scratch, 2, 8, 5, 20, 0, 0.5)
	total := GenerationCounts(scratch, 4000, 4000, 1.0/60)
	if total != 0 {
		t.Errorf("ndiffuse total = %v, want 0", total)
	}
}

// TestClampRange covers property 1 of spec.md §8: φ outputs lie in [0,1].
func TestClampRange(t *testing.T) {
	cases := []struct {
		i, tmin, tmax float64
	}{
		{-5, 0, 10}, {0, 0, 10}, {5, 0, 10}, {10, 0, 10}, {15, 0, 10},
	}
	for _, c := range cases {
		got := Clamp(c.i, c.tmin, c.tmax)
		if got < 0 || got > 1 {
			t.Errorf("Clamp(%v,%v,%v) = %v, out of [0,1]", c.i, c.tmin, c.tmax, got)
		}
	}
}

// TestClampBoundaryScenarioS6 covers scenario S6 of spec.md §8.
func TestClampBoundaryScenarioS6(t *testing.T) {
	minTA, maxTA := 5.0, 20.0
	inputs := []float64{minTA - 1, minTA, (minTA + maxTA) / 2, maxTA, maxTA + 1}
	want := []float64{0, 0, 0.5, 1, 1}
	for i, in := range inputs {
		got := Clamp(in, minTA, maxTA)
		if math.Abs(got-want[i]) > 1e-12 {
			t.Errorf("Clamp(%v,%v,%v) = %v, want %v", in, minTA, maxTA, got, want[i])
		}
	}
}

// TestGenerationCountFormula covers property 2 of spec.md §8.
func TestGenerationCountFormula(t *testing.T) {
	s := NewScratch(3)
	s.Energy = []float64{0.5, 0.2, 0.0}
	s.Ita = []float64{0.8, 0.1, 1.0}
	s.WaveCrest = []float64{0.1, 0.9, 1.0}
	kta, kwc, dt := 10.0, 5.0, 0.1

	total := GenerationCounts(s, kta, kwc, dt)

	wantTotal := 0
	for i := range s.Energy {
		wantTotal += int(math.Floor(s.Energy[i] * (kta*s.Ita[i] + kwc*s.WaveCrest[i]) * dt))
	}
	if total != wantTotal {
		t.Errorf("total = %v, want %v", total, wantTotal)
	}
}

// TestTwoParticlesProduceColorField is a minimal sanity check that
// neighboring particles accumulate a nonzero colorField and that energy is
// self-only.
func TestTwoParticlesProduceColorField(t *testing.T) {
	h := 1.0
	pos := []vecmath.Vec{{X: 0, Y: 0, Z: 0}, {X: 0.2, Y: 0, Z: 0}}
	vel := []vecmath.Vec{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
	frame := &FluidFrame{Pos: pos, Vel: vel, Rhop: []float64{1000, 1000}}
	g := buildGrid(h, pos)
	pool := workpool.New()
	defer pool.Stop()

	scratch := NewScratch(frame.N())
	RunPasses(pool, frame, g, 0.001, h, scratch)

	if scratch.ColorField[0] <= 0 {
		t.Errorf("colorField[0] = %v, want > 0", scratch.ColorField[0])
	}
	wantEnergy0 := 0.5 * 0.001 * vecmath.Norm2(vel[0])
	if math.Abs(scratch.Energy[0]-wantEnergy0) > 1e-12 {
		t.Errorf("energy[0] = %v, want %v", scratch.Energy[0], wantEnergy0)
	}
}
