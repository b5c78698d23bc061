package spawn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/foamkit/diffuse/fields"
	"github.com/foamkit/diffuse/vecmath"
	"github.com/foamkit/diffuse/workpool"
)

func TestSpawnBasisOrthogonal(t *testing.T) {
	cases := []vecmath.Vec{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1.5, Y: -2.3, Z: 0.7},
		{X: -0.1, Y: 0, Z: 4.0},
	}
	pos := vecmath.Vec{X: 1, Y: 2, Z: 3}

	for _, v := range cases {
		e1, e2 := spawnBasis(pos, v)

		if math.Abs(vecmath.Dot(e1, v)) > 1e-9 {
			t.Errorf("v=%v: e1 not orthogonal to v, dot=%v", v, vecmath.Dot(e1, v))
		}
		if math.Abs(vecmath.Dot(e2, v)) > 1e-9 {
			t.Errorf("v=%v: e2 not orthogonal to v, dot=%v", v, vecmath.Dot(e2, v))
		}
		if math.Abs(vecmath.Dot(e1, e2)) > 1e-9 {
			t.Errorf("v=%v: e1 not orthogonal to e2, dot=%v", v, vecmath.Dot(e1, e2))
		}
		if math.Abs(vecmath.Norm(e1)-1) > 1e-9 {
			t.Errorf("v=%v: e1 not unit length, norm=%v", v, vecmath.Norm(e1))
		}
		if math.Abs(vecmath.Norm(e2)-1) > 1e-9 {
			t.Errorf("v=%v: e2 not unit length, norm=%v", v, vecmath.Norm(e2))
		}
	}
}

func TestSpawnProducesExactCountAndMonotonicIDs(t *testing.T) {
	frame := &fields.FluidFrame{
		Pos:  []vecmath.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}},
		Vel:  []vecmath.Vec{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0}},
		Rhop: []float64{1000, 1000},
	}
	scratch := fields.NewScratch(2)
	scratch.NDiffuse = []int{3, 5}

	pool := workpool.New()
	defer pool.Stop()

	ids := &IDCounter{}
	rng := rand.New(rand.NewSource(1))

	newborns := Spawn(pool, frame, scratch, ids, 0.1, 10, 1.0/60, rng)

	if len(newborns.Pos) != 8 {
		t.Fatalf("got %d newborns, want 8", len(newborns.Pos))
	}

	for i := 1; i < len(newborns.ID); i++ {
		if newborns.ID[i] <= newborns.ID[i-1] {
			t.Fatalf("ids not strictly increasing at %d: %d <= %d", i, newborns.ID[i], newborns.ID[i-1])
		}
	}

	// Source particle 0 spawned 3 newborns, so TTL should be 3*lifetime.
	if newborns.TTL[0] != 3*10 {
		t.Errorf("TTL[0] = %d, want %d", newborns.TTL[0], 30)
	}
	// Source particle 1's newborns (indices 3..7) should have TTL 5*lifetime.
	if newborns.TTL[3] != 5*10 {
		t.Errorf("TTL[3] = %d, want %d", newborns.TTL[3], 50)
	}
}

func TestSpawnSkipsZeroVelocitySource(t *testing.T) {
	frame := &fields.FluidFrame{
		Pos:  []vecmath.Vec{{X: 0, Y: 0, Z: 0}},
		Vel:  []vecmath.Vec{{X: 0, Y: 0, Z: 0}},
		Rhop: []float64{1000},
	}
	scratch := fields.NewScratch(1)
	scratch.NDiffuse = []int{4}

	pool := workpool.New()
	defer pool.Stop()

	ids := &IDCounter{}
	rng := rand.New(rand.NewSource(1))

	newborns := Spawn(pool, frame, scratch, ids, 0.1, 10, 1.0/60, rng)

	// The slots are still reserved (offsets are computed from ndiffuse
	// alone), but zero-velocity sources never populate them, per spec.md
	// §4.1/§7 — so every position stays the zero value.
	for i, p := range newborns.Pos {
		if p != vecmath.Zero {
			t.Errorf("newborn %d: pos = %v, want zero (skipped spawn)", i, p)
		}
	}
}

func TestIDCounterMonotonic(t *testing.T) {
	c := &IDCounter{}
	first := c.Reserve(5)
	if first != 0 {
		t.Errorf("first reserve = %d, want 0", first)
	}
	second := c.Reserve(3)
	if second != 5 {
		t.Errorf("second reserve = %d, want 5", second)
	}
}
