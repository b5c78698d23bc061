// Package main provides a birth-rate calibration tool for the diffuse
// engine: given one recorded fluid frame and a target newborn count, it
// searches kta/kwc (spec.md §4.4) with Nelder-Mead so the engine's birth
// formula reproduces that count on that frame.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/foamkit/diffuse/config"
	"github.com/foamkit/diffuse/grid"
	"github.com/foamkit/diffuse/snapshot"
	"github.com/foamkit/diffuse/workpool"
)

// formatDuration formats a duration as e.g. "1h02m03s", or "2m03s" for
// durations under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use embedded defaults)")
	dataPath := flag.String("data-path", "", "Override io.data_path (directory holding the calibration frame)")
	step := flag.Int("step", 0, "Frame index to calibrate against")
	targetBirths := flag.Float64("target-births", 0, "Desired newborn count on the calibration frame")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of fitness evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *targetBirths <= 0 {
		log.Fatal("--target-births must be > 0")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()
	if *dataPath != "" {
		cfg.IO.DataPath = *dataPath
	}

	loader := snapshot.NewVTKLoader(cfg.IO.DataPath, cfg.IO.FilePrefix, cfg.Frames.PadWidth, cfg.Kernel.H)
	frame, g, err := loader.Load(*step)
	if err != nil {
		log.Fatalf("failed to load calibration frame: %v", err)
	}
	h := cfg.ResolveKernelRadius(frame.N())
	if g.H() != h {
		g = grid.New(h)
		g.Build(frame.Pos)
	}
	dt, _ := cfg.TimestepFor(0, *step)

	pool := workpool.New()
	defer pool.Stop()

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(pool, frame, g, h, cfg.Kernel.Mass, dt, cfg.Clamp, *targetBirths)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			return evaluator.Evaluate(raw)
		},
	}

	settings := &optimize.Settings{FuncEvaluations: *maxEvals}
	method := &optimize.NelderMead{}

	logPath := filepath.Join(*outputDir, "calibrate_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := 1e18
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		raw := params.Denormalize(x)
		clamped := params.Clamp(raw)
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = append(bestParams[:0], clamped...)
		}

		row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness)}
		for _, v := range clamped {
			row = append(row, fmt.Sprintf("%.6f", v))
		}
		logWriter.Write(row)
		logWriter.Flush()

		return fitness
	}

	fmt.Printf("Calibrating %d parameters against target_births=%.0f, max_evals=%d\n", dim, *targetBirths, *maxEvals)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Denormalize(result.X)
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness (squared birth-count error): %.3f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	bestCfg, _ := config.Load(*configPath)
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "calibrated_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write calibrated config: %v", err)
	} else {
		fmt.Printf("\nCalibrated config saved to: %s\n", configOutPath)
	}
}
