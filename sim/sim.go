// Package sim implements the per-frame driver loop (spec.md §4.8): load a
// fluid snapshot, run the field passes, spawn and classify newborns, advect
// and cull the persistent diffuse pool, and emit the frame's output
// artifacts — advancing the configured timestep schedule exactly as
// spec.md describes.
package sim

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/foamkit/diffuse/config"
	"github.com/foamkit/diffuse/diffuse"
	"github.com/foamkit/diffuse/fields"
	"github.com/foamkit/diffuse/grid"
	"github.com/foamkit/diffuse/snapshot"
	"github.com/foamkit/diffuse/spawn"
	"github.com/foamkit/diffuse/telemetry"
	"github.com/foamkit/diffuse/workpool"
)

// Run drives the frame loop of spec.md §4.8 from cfg.Frames.Start to
// cfg.Frames.End inclusive, stopping cleanly (returning nil) when loader
// reports end-of-input or any other load failure; frames already emitted
// are kept. om may be nil to disable telemetry output.
func Run(cfg *config.Config, loader snapshot.Loader, emitters []snapshot.Emitter, om *telemetry.OutputManager, rng *rand.Rand) error {
	pool := workpool.New()
	defer pool.Stop()

	perf := telemetry.NewPerfCollector(60)
	summary := telemetry.RunSummary{}

	ids := &spawn.IDCounter{}
	diffusePool := &diffuse.Pool{}

	tstepIdx := 0

	for nstep := cfg.Frames.Start; nstep <= cfg.Frames.End; nstep++ {
		dt, newIdx := cfg.TimestepFor(tstepIdx, nstep)
		tstepIdx = newIdx

		perf.StartFrame()
		perf.StartPhase(telemetry.PhaseLoad)

		frame, g, err := loader.Load(nstep)
		if err != nil {
			if errors.Is(err, snapshot.ErrEndOfInput) {
				slog.Info("end of input, stopping run", "step", nstep)
			} else {
				slog.Warn("snapshot load failed, stopping run", "step", nstep, "err", err)
			}
			break
		}

		h := cfg.ResolveKernelRadius(frame.N())
		if g.H() != h {
			g = grid.New(h)
			g.Build(frame.Pos)
		}
		scratch := fields.NewScratch(frame.N())

		perf.StartPhase(telemetry.PhaseFields)
		fields.RunPasses(pool, frame, g, cfg.Kernel.Mass, h, scratch)
		fields.ClampAll(scratch,
			cfg.Clamp.MinWC, cfg.Clamp.MaxWC,
			cfg.Clamp.MinTA, cfg.Clamp.MaxTA,
			cfg.Clamp.MinK, cfg.Clamp.MaxK,
		)
		fields.GenerationCounts(scratch, cfg.Birth.KTA, cfg.Birth.KWC, dt)

		perf.StartPhase(telemetry.PhaseSpawn)
		newborns := spawn.Spawn(pool, frame, scratch, ids, h, cfg.Lifecycle.Lifetime, dt, rng)
		newbornDensity := diffuse.Classify(pool, newborns, frame, g, h)

		perf.StartPhase(telemetry.PhaseAdvect)
		advectParams := diffuse.Params{
			H: h, Spray: cfg.Classify.Spray, Bubbles: cfg.Classify.Bubbles,
			KB: cfg.Advect.KB, KD: cfg.Advect.KD, Gravity: cfg.Advect.Gravity,
			DomainMin: cfg.Derived.DomainMin, DomainMax: cfg.Derived.DomainMax,
		}
		diffuse.Advect(pool, diffusePool, frame, g, advectParams, dt)

		perf.StartPhase(telemetry.PhaseLifecycle)
		before := diffusePool.Len()
		diffusePool = diffuse.CullAndAppend(diffusePool, advectParams, newborns, newbornDensity)
		deaths := before - (diffusePool.Len() - len(newborns.Pos))

		perf.StartPhase(telemetry.PhaseEmit)
		for _, e := range emitters {
			if err := e.Emit(nstep, diffusePool, frame, scratch); err != nil {
				slog.Error("emit failed", "step", nstep, "err", err)
			}
		}
		perf.EndFrame()

		sprayN, foamN, bubbleN := telemetry.ClassCounts(diffusePool, cfg.Classify.Spray, cfg.Classify.Bubbles)
		stats := telemetry.FrameStats{
			Step:          nstep,
			FluidCount:    frame.N(),
			Births:        len(newborns.Pos),
			Deaths:        deaths,
			SprayCount:    sprayN,
			FoamCount:     foamN,
			BubbleCount:   bubbleN,
			TotalDiffuse:  diffusePool.Len(),
			MeanTTL:       telemetry.MeanTTL(diffusePool),
			TOut:          dt,
			ElapsedMillis: float64(perf.Stats().AvgFrameDuration) / float64(time.Millisecond),
		}
		summary.Add(stats)
		slog.Info("frame complete", "stats", stats)

		if err := om.WriteFrameStats(stats); err != nil {
			slog.Error("writing frame stats", "step", nstep, "err", err)
		}
		if err := om.WritePerf(perf.Stats(), nstep); err != nil {
			slog.Error("writing perf stats", "step", nstep, "err", err)
		}
	}

	slog.Info("run complete", "summary", summary)
	return om.WriteRunSummary(summary)
}
