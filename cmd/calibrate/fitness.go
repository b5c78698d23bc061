package main

import (
	"github.com/foamkit/diffuse/config"
	"github.com/foamkit/diffuse/fields"
	"github.com/foamkit/diffuse/grid"
	"github.com/foamkit/diffuse/workpool"
)

// FitnessEvaluator scores a birth-rate parameter vector by how far the
// generated newborn count for one fixed frame lands from a target count.
type FitnessEvaluator struct {
	pool         *workpool.Pool
	frame        *fields.FluidFrame
	grid         *grid.Grid
	h, mass, dt  float64
	clamp        config.ClampConfig
	targetBirths float64
}

// NewFitnessEvaluator builds an evaluator against a single loaded frame.
// The frame, grid and field passes are fixed; only kta/kwc vary per call.
func NewFitnessEvaluator(pool *workpool.Pool, frame *fields.FluidFrame, g *grid.Grid, h, mass, dt float64, clamp config.ClampConfig, targetBirths float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		pool: pool, frame: frame, grid: g, h: h, mass: mass, dt: dt,
		clamp: clamp, targetBirths: targetBirths,
	}
}

// Evaluate returns the squared error between the generated birth count and
// the target (lower is better), matching optimize.Problem's minimization
// convention.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	kta, kwc := x[0], x[1]

	scratch := fields.NewScratch(fe.frame.N())
	fields.RunPasses(fe.pool, fe.frame, fe.grid, fe.mass, fe.h, scratch)
	fields.ClampAll(scratch,
		fe.clamp.MinWC, fe.clamp.MaxWC,
		fe.clamp.MinTA, fe.clamp.MaxTA,
		fe.clamp.MinK, fe.clamp.MaxK,
	)
	total := fields.GenerationCounts(scratch, kta, kwc, fe.dt)

	diff := float64(total) - fe.targetBirths
	return diff * diff
}
