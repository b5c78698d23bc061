// Package spawn implements the diffuse-particle spawner (spec.md §4.4): for
// every fluid source particle with ndiffuse[i] >= 1, it draws that many
// samples from a cylindrical region oriented along the source's velocity
// and assigns each a globally monotonically increasing id.
//
// Grounded on DiffuseCalculator.cpp's sixth pass, with two deliberate
// deviations documented in DESIGN.md: the standard right-handed cross
// product is used to build the second spawn basis vector (design note §9),
// and newborn offsets are assigned from a serial prefix sum over ndiffuse
// rather than from a counter incremented inside the parallel loop, so id
// order is deterministic regardless of worker count (spec.md §4.4, §9).
package spawn

import (
	"math"
	"math/rand"

	"github.com/foamkit/diffuse/fields"
	"github.com/foamkit/diffuse/vecmath"
	"github.com/foamkit/diffuse/workpool"
)

// Newborns holds one frame's freshly spawned diffuse particles, in
// source-particle order.
type Newborns struct {
	Pos []vecmath.Vec
	Vel []vecmath.Vec
	ID  []int64
	TTL []int
}

// IDCounter is the shared, monotonically increasing diffuse-id counter. It
// is never decremented and never reused.
type IDCounter struct {
	next int64
}

// Reserve reserves n consecutive ids and returns the first one. Reserve is
// called only from Spawn's serial prefix-sum step, so no atomics are
// needed: there is at most one call per frame (none when the frame has no
// newborns), before any parallel work starts.
func (c *IDCounter) Reserve(n int) int64 {
	first := c.next
	c.next += int64(n)
	return first
}

// Spawn draws diffuse particles for every source particle with
// scratch.NDiffuse[i] >= 1 and returns them in Newborns, in source-particle
// order. h is the SPH kernel radius (the spawn cylinder's radius scale);
// dt is the current frame's tout. rng is used only for the serial
// sample-generation step (random number generators are typically not safe
// for concurrent use); the per-particle basis construction and
// position/velocity math then runs in parallel over pool.
func Spawn(pool *workpool.Pool, frame *fields.FluidFrame, scratch *fields.Scratch, ids *IDCounter, h float64, lifetime int, dt float64, rng *rand.Rand) *Newborns {
	n := frame.N()

	// Prefix-sum ndiffuse into per-source output offsets, and reserve a
	// contiguous id range matching that offset — this is what keeps id
	// order equal to birth order regardless of how Run below schedules
	// workers (spec.md §4.4, §9).
	offsets := make([]int, n+1)
	for i := 0; i < n; i++ {
		offsets[i+1] = offsets[i] + scratch.NDiffuse[i]
	}
	total := offsets[n]

	out := &Newborns{
		Pos: make([]vecmath.Vec, total),
		Vel: make([]vecmath.Vec, total),
		ID:  make([]int64, total),
		TTL: make([]int, total),
	}
	if total == 0 {
		return out
	}

	firstID := ids.Reserve(total)

	// Random samples are pre-generated serially: math/rand.Rand is not
	// safe for concurrent use, per spec.md §4.4/§5.
	samples := make([]float64, total*3)
	for i := range samples {
		samples[i] = rng.Float64()
	}

	pool.Run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			count := scratch.NDiffuse[i]
			if count < 1 {
				continue
			}

			vel := frame.Vel[i]
			if vecmath.IsZero(vel) {
				// Undefined: normalizing a zero vector. The spawner must
				// guard against it, per spec.md §4.1/§7 — no basis can be
				// built from a stationary source particle, so it spawns
				// nothing for it this frame; its reserved ids are simply
				// left unused (ndiffuse[i] should be 0 in that case anyway
				// since energy includes a velocity term, but guard for
				// safety regardless).
				continue
			}
			pos := frame.Pos[i]
			speed := vecmath.Norm(vel)
			vHat := vecmath.Unit(vel)
			e1, e2 := spawnBasis(pos, vel)

			base := offsets[i]
			ttl := count * lifetime

			for k := 0; k < count; k++ {
				idx := base + k
				u1, u2, u3 := samples[idx*3], samples[idx*3+1], samples[idx*3+2]

				hAlong := u1 * speed * dt * 0.5
				r := h * math.Sqrt(u2)
				theta := u3 * 2 * math.Pi
				cosT, sinT := math.Cos(theta), math.Sin(theta)

				radial := vecmath.Add(vecmath.Scale(r*cosT, e1), vecmath.Scale(r*sinT, e2))

				out.Pos[idx] = vecmath.Add(vecmath.Add(pos, radial), vecmath.Scale(hAlong, vHat))
				out.Vel[idx] = vecmath.Add(radial, vel)
				out.ID[idx] = firstID + int64(idx)
				out.TTL[idx] = ttl
			}
		}
	})

	return out
}

// spawnBasis builds an orthonormal pair {e1,e2} perpendicular to velocity
// v, per spec.md §4.4: the first nonzero component of v (checked x, then y,
// then z) picks which closed-form solveEq rotation builds e1, and e2 is the
// standard right-handed cross product e1×v̂ (see design note §9 and
// DESIGN.md for why this differs from the reference's sign-flipped
// formula without changing the spawner's output distribution).
//
// solveEq is evaluated with the origin as its plane point, so the solved
// vector is itself a direction perpendicular to v; pos does not affect the
// result.
func spawnBasis(pos, v vecmath.Vec) (e1, e2 vecmath.Vec) {
	switch {
	case v.X != 0:
		e1 = vecmath.Unit(vecmath.Vec{
			X: solveEq(0, 0, 0, v.Z, v.Y, v.X, 0, 1),
			Y: 1,
			Z: 0,
		})
	case v.Y != 0:
		e1 = vecmath.Unit(vecmath.Vec{
			X: 1,
			Y: solveEq(0, 0, 0, v.X, v.Z, v.Y, 1, 0),
			Z: 0,
		})
	default:
		e1 = vecmath.Unit(vecmath.Vec{
			X: 1,
			Y: 0,
			Z: solveEq(0, 0, 0, v.X, v.Y, v.Z, 1, 0),
		})
	}

	e2 = vecmath.Unit(vecmath.Cross(e1, vecmath.Unit(v)))
	return e1, e2
}

// solveEq solves the plane equation (e1-p)·v=0 in closed form for the
// unknown component of e1, given that e1's other two components are fixed
// at (x,y); with p at the origin this is the orthogonality constraint
// v·e1=0. Ported verbatim from DiffuseCalculator.cpp's solveEq.
func solveEq(px, py, pz, vx, vy, vz, x, y float64) float64 {
	return (-(x-px)*vx-(y-py)*vy)/vz + pz
}
