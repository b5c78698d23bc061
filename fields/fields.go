// Package fields implements the five neighborhood-summation passes that
// turn a raw fluid snapshot into the scalar/vector scratch fields the
// spawner reads: trapped-air potential, colorField, its gradient, wave
// crests, and kinetic energy.
//
// Grounded directly on DiffuseCalculator.cpp's four OpenMP-parallel stages
// (trapped air/colorField/energy, gradient, wave crests, clamping), ported
// onto the teacher's fork-join worker pool (package workpool) instead of
// OpenMP "parallel for schedule(guided)".
package fields

import (
	"math"

	"github.com/foamkit/diffuse/grid"
	"github.com/foamkit/diffuse/kernel"
	"github.com/foamkit/diffuse/vecmath"
	"github.com/foamkit/diffuse/workpool"
)

// Surface is the colorField threshold below which a fluid particle is
// treated as surface-adjacent for the wave-crest pass.
const Surface = 0.75

// FluidFrame holds one frame's fluid particle data. It is read-only after
// load; every array has the same length N.
type FluidFrame struct {
	Pos  []vecmath.Vec
	Vel  []vecmath.Vec
	Rhop []float64
}

// N returns the number of fluid particles in the frame.
func (f *FluidFrame) N() int { return len(f.Pos) }

// Scratch holds the frame-local scalar/vector fields the passes write into.
// Every slice has length N; Gradient and NDiffuse start zeroed.
type Scratch struct {
	Ita        []float64
	ColorField []float64
	WaveCrest  []float64
	Energy     []float64
	Gradient   []vecmath.Vec
	NDiffuse   []int
}

// NewScratch allocates a zeroed scratch set sized for n fluid particles.
func NewScratch(n int) *Scratch {
	return &Scratch{
		Ita:        make([]float64, n),
		ColorField: make([]float64, n),
		WaveCrest:  make([]float64, n),
		Energy:     make([]float64, n),
		Gradient:   make([]vecmath.Vec, n),
		NDiffuse:   make([]int, n),
	}
}

// Reset zeros every field in place, so the scratch can be reused frame to
// frame without reallocating.
func (s *Scratch) Reset() {
	for i := range s.Ita {
		s.Ita[i] = 0
		s.ColorField[i] = 0
		s.WaveCrest[i] = 0
		s.Energy[i] = 0
		s.Gradient[i] = vecmath.Zero
		s.NDiffuse[i] = 0
	}
}

// RunPasses executes passes 1 through 3 of spec.md §4.2 in order, writing
// Ita, ColorField, Energy, Gradient and WaveCrest into scratch. mass and h
// are the SPH particle mass and kernel radius (h must match the radius the
// grid g was built with).
func RunPasses(pool *workpool.Pool, frame *FluidFrame, g *grid.Grid, mass, h float64, scratch *Scratch) {
	pass1TrappedAirColorFieldEnergy(pool, frame, g, mass, h, scratch)
	pass2Gradient(pool, frame, g, h, scratch)
	pass3WaveCrests(pool, frame, g, h, scratch)
}

// pass1TrappedAirColorFieldEnergy computes Ita, ColorField (over neighbors
// j != i) and Energy (self-only), for every particle in every occupied
// cell.
func pass1TrappedAirColorFieldEnergy(pool *workpool.Pool, frame *FluidFrame, g *grid.Grid, mass, h float64, scratch *Scratch) {
	cells := g.NonEmptyCells()

	pool.Run(len(cells), func(lo, hi int) {
		for ci := lo; ci < hi; ci++ {
			cell := cells[ci]
			surrounding := g.Surrounding(cell)

			for _, i := range g.Particles(cell) {
				xi := frame.Pos[i]
				vi := frame.Vel[i]

				var ita, colorField float64
				for _, sc := range surrounding {
					for _, j := range g.Particles(sc) {
						if i == j {
							continue
						}
						xj := frame.Pos[j]
						vj := frame.Vel[j]

						xij := vecmath.Sub(xi, xj)
						r := vecmath.Norm(xij)
						if r <= h {
							vij := vecmath.Sub(vi, vj)
							mv := vecmath.Norm(vij)
							if mv > 0 {
								e := 1 - vecmath.Dot(vecmath.Scale(1/mv, vij), vecmath.Scale(1/r, xij))
								ita += mv * e * kernel.LinearSpike(r, h)
							}
						}

						q := r / h
						if q >= 0 && q <= 2 {
							colorField += (mass / frame.Rhop[j]) * kernel.WendlandQuintic(r, h)
						}
					}
				}

				scratch.Ita[i] = ita
				scratch.ColorField[i] = colorField
				scratch.Energy[i] = 0.5 * mass * vecmath.Norm2(vi)
			}
		}
	})
}

// pass2Gradient computes the gradient of the smoothed colorField. Unlike
// pass 1, this pass does not special-case i==j: the Wendland term is finite
// at r=0 and contributes a zero displacement, so including it changes
// nothing, per spec.md §4.2.
func pass2Gradient(pool *workpool.Pool, frame *FluidFrame, g *grid.Grid, h float64, scratch *Scratch) {
	cells := g.NonEmptyCells()

	pool.Run(len(cells), func(lo, hi int) {
		for ci := lo; ci < hi; ci++ {
			cell := cells[ci]
			surrounding := g.Surrounding(cell)

			for _, i := range g.Particles(cell) {
				xi := frame.Pos[i]
				var grad vecmath.Vec

				for _, sc := range surrounding {
					for _, j := range g.Particles(sc) {
						xj := frame.Pos[j]
						xij := vecmath.Sub(xi, xj)
						r := vecmath.Norm(xij)
						q := r / h
						if q < 0 || q > 2 {
							continue
						}
						w := kernel.WendlandQuintic(r, h)
						grad = vecmath.Add(grad, vecmath.Scale(scratch.ColorField[j]*w, xij))
					}
				}

				scratch.Gradient[i] = grad
			}
		}
	})
}

// pass3WaveCrests computes the wave-crest curvature accumulator, but only
// for particles whose colorField is below Surface; particles at or above
// Surface skip the neighborhood fetch entirely, matching the
// performance-critical early-out of spec.md §4.2.
func pass3WaveCrests(pool *workpool.Pool, frame *FluidFrame, g *grid.Grid, h float64, scratch *Scratch) {
	cells := g.NonEmptyCells()

	pool.Run(len(cells), func(lo, hi int) {
		for ci := lo; ci < hi; ci++ {
			cell := cells[ci]
			var surrounding []grid.CellKey // fetched lazily, once per cell

			for _, i := range g.Particles(cell) {
				if scratch.ColorField[i] >= Surface {
					continue
				}
				if surrounding == nil {
					surrounding = g.Surrounding(cell)
				}

				xi := frame.Pos[i]
				vi := frame.Vel[i]
				ni := scratch.Gradient[i]
				if vecmath.IsZero(ni) || vecmath.IsZero(vi) {
					continue
				}
				nHat := vecmath.Unit(ni)
				vHat := vecmath.Unit(vi)

				var wc float64
				for _, sc := range surrounding {
					for _, j := range g.Particles(sc) {
						xj := frame.Pos[j]
						nj := scratch.Gradient[j]
						if vecmath.IsZero(nj) {
							continue
						}
						xji := vecmath.Sub(xj, xi)
						if vecmath.Dot(xji, nHat) < 0 && vecmath.Dot(vHat, nHat) >= 0.6 {
							njHat := vecmath.Unit(nj)
							wc += (1 - vecmath.Dot(nHat, njHat)) * kernel.LinearSpike(vecmath.Norm(vecmath.Sub(xi, xj)), h)
						}
					}
				}
				scratch.WaveCrest[i] = wc
			}
		}
	})
}

// Clamp implements φ(I,tmin,tmax) = (min(I,tmax)-min(I,tmin))/(tmax-tmin),
// per spec.md §4.3. Callers must ensure tmax>tmin (config.Validate checks
// this at startup).
func Clamp(value, tmin, tmax float64) float64 {
	return (math.Min(value, tmax) - math.Min(value, tmin)) / (tmax - tmin)
}

// ClampAll applies Clamp elementwise to WaveCrest, Ita and Energy using the
// given windows, in place.
func ClampAll(scratch *Scratch, minWC, maxWC, minTA, maxTA, minK, maxK float64) {
	for i := range scratch.WaveCrest {
		scratch.WaveCrest[i] = Clamp(scratch.WaveCrest[i], minWC, maxWC)
		scratch.Ita[i] = Clamp(scratch.Ita[i], minTA, maxTA)
		scratch.Energy[i] = Clamp(scratch.Energy[i], minK, maxK)
	}
}

// GenerationCounts computes ndiffuse[i] = floor(energy[i]*(kta*Ita[i] +
// kwc*WaveCrest[i])*dt) for every particle, post-clamp, and returns the
// total newborn count Σndiffuse, per spec.md §4.3.
func GenerationCounts(scratch *Scratch, kta, kwc, dt float64) int {
	total := 0
	for i := range scratch.NDiffuse {
		n := int(math.Floor(scratch.Energy[i] * (kta*scratch.Ita[i] + kwc*scratch.WaveCrest[i]) * dt))
		if n < 0 {
			n = 0
		}
		scratch.NDiffuse[i] = n
		total += n
	}
	return total
}
