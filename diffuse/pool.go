// Package diffuse owns the persistent diffuse-particle population: its
// structure-of-arrays storage (spec.md §4.7 requires lock-step arrays, not
// an array of structs), density-based classification (C7), per-class
// advection (C8), and the TTL/domain-cull/append lifecycle (C9).
//
// Grounded on DiffuseCalculator.cpp's seventh through tenth passes, with
// the classify/advect/cull stages mapped onto the teacher's fork-join
// worker pool (package workpool) for the two parallel regions (density
// recount, per-particle advect) and a single serial compaction pass for
// cull+append, matching spec.md §5's "serial regions" list exactly.
package diffuse

import (
	"github.com/foamkit/diffuse/fields"
	"github.com/foamkit/diffuse/grid"
	"github.com/foamkit/diffuse/kernel"
	"github.com/foamkit/diffuse/spawn"
	"github.com/foamkit/diffuse/vecmath"
	"github.com/foamkit/diffuse/workpool"
)

// Class is the diffuse-particle class derived at read time from density; it
// is never stored.
type Class int

const (
	Spray Class = iota
	Foam
	Bubble
)

func (c Class) String() string {
	switch c {
	case Spray:
		return "spray"
	case Foam:
		return "foam"
	case Bubble:
		return "bubble"
	default:
		return "unknown"
	}
}

// ClassOf derives a diffuse particle's class from its density and the
// configured spray/bubble thresholds, per spec.md §4.5.
func ClassOf(density, sprayThreshold, bubblesThreshold float64) Class {
	switch {
	case density < sprayThreshold:
		return Spray
	case density > bubblesThreshold:
		return Bubble
	default:
		return Foam
	}
}

// Pool is the persistent diffuse-particle population, structure-of-arrays,
// all slices maintained in lock-step per spec.md §4.7.
type Pool struct {
	Pos     []vecmath.Vec
	Vel     []vecmath.Vec
	ID      []int64
	TTL     []int
	Density []float64
}

// Len returns the number of particles currently in the pool.
func (p *Pool) Len() int { return len(p.ID) }

// Params bundles the physical constants Classify/Advect/Cull need.
type Params struct {
	H                float64
	Spray, Bubbles   float64
	KB, KD, Gravity  float64
	DomainMin        vecmath.Vec
	DomainMax        vecmath.Vec
}

// RecomputeDensity fills dst[i] with the neighbor-count density of pos[i]:
// the number of fluid particles within distance H, per spec.md §4.5/§4.6.
// dst must already be sized to len(pos).
func RecomputeDensity(pool *workpool.Pool, pos []vecmath.Vec, frame *fields.FluidFrame, g *grid.Grid, h float64, dst []float64) {
	pool.Run(len(pos), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			var count float64
			for _, sc := range g.SurroundingOfPoint(pos[i]) {
				for _, j := range g.Particles(sc) {
					if vecmath.Dist(pos[i], frame.Pos[j]) <= h {
						count++
					}
				}
			}
			dst[i] = count
		}
	})
}

// Classify recomputes density for every newborn diffuse particle, per
// spec.md §4.5 (C7). It does not advect or cull; newborns are appended
// as-is after classification-for-density-only.
func Classify(pool *workpool.Pool, newborns *spawn.Newborns, frame *fields.FluidFrame, g *grid.Grid, h float64) []float64 {
	density := make([]float64, len(newborns.Pos))
	RecomputeDensity(pool, newborns.Pos, frame, g, h, density)
	return density
}

// smoothedFluidVelocity returns the Wendland-kernel-weighted average fluid
// velocity at point p over the 27-cell neighborhood, and whether the
// denominator was nonzero (ok=false means "undefined", per spec.md §4.6).
func smoothedFluidVelocity(p vecmath.Vec, frame *fields.FluidFrame, g *grid.Grid, h float64) (v vecmath.Vec, ok bool) {
	var num vecmath.Vec
	var den float64
	for _, sc := range g.SurroundingOfPoint(p) {
		for _, j := range g.Particles(sc) {
			w := kernel.WendlandQuintic(vecmath.Dist(p, frame.Pos[j]), h)
			num = vecmath.Add(num, vecmath.Scale(w, frame.Vel[j]))
			den += w
		}
	}
	if den == 0 {
		return vecmath.Zero, false
	}
	return vecmath.Scale(1/den, num), true
}

// Advect recomputes density and integrates every particle in the persistent
// pool forward by dt, per spec.md §4.6 (C8): ballistic for spray,
// drag+buoyancy toward the smoothed fluid velocity for bubbles, pure fluid
// advection for foam. If the smoothed fluid velocity is undefined (zero
// kernel-weight denominator), the particle is demoted to spray behavior for
// this step, per spec.md §4.6/§7.
func Advect(pool *workpool.Pool, diffuse *Pool, frame *fields.FluidFrame, g *grid.Grid, p Params, dt float64) {
	n := diffuse.Len()
	RecomputeDensity(pool, diffuse.Pos, frame, g, p.H, diffuse.Density)

	pool.Run(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			density := diffuse.Density[i]
			pos := diffuse.Pos[i]
			vel := diffuse.Vel[i]

			var vbar vecmath.Vec
			haveVBar := false
			if density >= p.Spray {
				vbar, haveVBar = smoothedFluidVelocity(pos, frame, g, p.H)
			}

			switch {
			case density < p.Spray || !haveVBar:
				vel = vecmath.Add(vel, vecmath.Vec{Z: -p.Gravity * dt})
				pos = vecmath.Add(pos, vecmath.Scale(dt, vel))
			case density > p.Bubbles:
				vel = vecmath.Vec{
					X: vel.X + p.KD*(vbar.X-vel.X),
					Y: vel.Y + p.KD*(vbar.Y-vel.Y),
					Z: vel.Z + p.KB*p.Gravity*dt + p.KD*(vbar.Z-vel.Z),
				}
				pos = vecmath.Add(pos, vecmath.Scale(dt, vel))
			default: // foam
				vel = vbar
				pos = vecmath.Add(pos, vecmath.Scale(dt, vbar))
			}

			diffuse.Pos[i] = pos
			diffuse.Vel[i] = vel
		}
	})
}

// inDomain reports whether p is strictly inside [min,max] on every axis,
// per spec.md §3/§4.7.
func inDomain(p, min, max vecmath.Vec) bool {
	return p.X > min.X && p.X < max.X &&
		p.Y > min.Y && p.Y < max.Y &&
		p.Z > min.Z && p.Z < max.Z
}

// CullAndAppend decrements TTL for every particle currently classified as
// foam, removes particles with TTL<0 or outside the domain box, and appends
// the frame's newborns, all as a single serial compaction pass (spec.md
// §4.7, §5). newbornDensity must be the density array Classify computed for
// newborns.
func CullAndAppend(diffuse *Pool, p Params, newborns *spawn.Newborns, newbornDensity []float64) *Pool {
	survivors := &Pool{
		Pos:     diffuse.Pos[:0],
		Vel:     diffuse.Vel[:0],
		ID:      diffuse.ID[:0],
		TTL:     diffuse.TTL[:0],
		Density: diffuse.Density[:0],
	}

	for i := 0; i < diffuse.Len(); i++ {
		ttl := diffuse.TTL[i]
		if ClassOf(diffuse.Density[i], p.Spray, p.Bubbles) == Foam {
			ttl--
		}

		if ttl < 0 || !inDomain(diffuse.Pos[i], p.DomainMin, p.DomainMax) {
			continue
		}

		survivors.Pos = append(survivors.Pos, diffuse.Pos[i])
		survivors.Vel = append(survivors.Vel, diffuse.Vel[i])
		survivors.ID = append(survivors.ID, diffuse.ID[i])
		survivors.TTL = append(survivors.TTL, ttl)
		survivors.Density = append(survivors.Density, diffuse.Density[i])
	}

	for i := range newborns.Pos {
		survivors.Pos = append(survivors.Pos, newborns.Pos[i])
		survivors.Vel = append(survivors.Vel, newborns.Vel[i])
		survivors.ID = append(survivors.ID, newborns.ID[i])
		survivors.TTL = append(survivors.TTL, newborns.TTL[i])
		survivors.Density = append(survivors.Density, newbornDensity[i])
	}

	return survivors
}
