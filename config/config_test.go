package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Classify.Spray >= cfg.Classify.Bubbles {
		t.Errorf("default spray threshold must be below bubbles threshold")
	}
	if len(cfg.Frames.Timesteps) == 0 {
		t.Errorf("default timesteps must not be empty")
	}
}

func TestValidateRejectsInvertedClampWindow(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Clamp.MinTA = 10
	cfg.Clamp.MaxTA = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for tmax == tmin, got nil")
	}
}

func TestValidateRejectsSprayAboveBubbles(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Classify.Spray = 30
	cfg.Classify.Bubbles = 20
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for spray >= bubbles, got nil")
	}
}

func TestValidateRejectsEmptyTimesteps(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Frames.Timesteps = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty timestep schedule, got nil")
	}
}

func TestTimestepForAdvancesCursor(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Frames.Timesteps = []TimestepEntry{
		{NStep: 0, TOut: 0.01},
		{NStep: 10, TOut: 0.02},
		{NStep: 20, TOut: 0.03},
	}

	idx := 0
	tout, idx := cfg.TimestepFor(idx, 0)
	if tout != 0.01 {
		t.Errorf("frame 0: tout = %v, want 0.01", tout)
	}
	tout, idx = cfg.TimestepFor(idx, 15)
	if tout != 0.02 {
		t.Errorf("frame 15: tout = %v, want 0.02", tout)
	}
	tout, idx = cfg.TimestepFor(idx, 25)
	if tout != 0.03 {
		t.Errorf("frame 25: tout = %v, want 0.03", tout)
	}
	_ = idx
}

func TestResolveKernelRadiusPrefersConfigured(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Kernel.H = 0.5
	if got := cfg.ResolveKernelRadius(1000); got != 0.5 {
		t.Errorf("ResolveKernelRadius = %v, want 0.5", got)
	}
}

func TestResolveKernelRadiusFallback(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Kernel.H = 0
	if got := cfg.ResolveKernelRadius(1000); got <= 0 {
		t.Errorf("ResolveKernelRadius fallback = %v, want > 0", got)
	}
}
