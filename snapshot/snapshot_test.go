package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/foamkit/diffuse/diffuse"
	"github.com/foamkit/diffuse/vecmath"
)

// TestVTKDiffuseRoundTrip covers property 7 of spec.md §8: emitting and
// re-reading a VTK diffuse snapshot yields identical positions, velocities,
// ids, types and densities.
func TestVTKDiffuseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	emitter := &VTKDiffuseEmitter{OutputPath: dir, OutputPrefix: "out", PadWidth: 4, Spray: 2, Bubbles: 8}

	pool := &diffuse.Pool{
		Pos:     []vecmath.Vec{{X: 1, Y: 2, Z: 3}, {X: -4.5, Y: 0, Z: 6.25}},
		Vel:     []vecmath.Vec{{X: 0.1, Y: -0.2, Z: 0.3}, {X: 1, Y: 1, Z: 1}},
		ID:      []int64{10, 20},
		TTL:     []int{5, 0},
		Density: []float64{1, 9}, // spray, bubble
	}

	if err := emitter.Emit(7, pool, nil, nil); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "out0007_diffuse.vtk"))
	if err != nil {
		t.Fatalf("opening emitted file: %v", err)
	}
	defer f.Close()

	got, err := ReadDiffuseVTK(f)
	if err != nil {
		t.Fatalf("ReadDiffuseVTK: %v", err)
	}

	if len(got.Pos) != 2 {
		t.Fatalf("len(Pos) = %d, want 2", len(got.Pos))
	}
	for i := range pool.Pos {
		if vecmath.Dist(got.Pos[i], pool.Pos[i]) > 1e-9 {
			t.Errorf("Pos[%d] = %v, want %v", i, got.Pos[i], pool.Pos[i])
		}
		if vecmath.Dist(got.Vel[i], pool.Vel[i]) > 1e-9 {
			t.Errorf("Vel[%d] = %v, want %v", i, got.Vel[i], pool.Vel[i])
		}
		if got.ID[i] != pool.ID[i] {
			t.Errorf("ID[%d] = %d, want %d", i, got.ID[i], pool.ID[i])
		}
		if got.Density[i] != pool.Density[i] {
			t.Errorf("Density[%d] = %v, want %v", i, got.Density[i], pool.Density[i])
		}
		wantClass := diffuse.ClassOf(pool.Density[i], emitter.Spray, emitter.Bubbles)
		gotClass := diffuse.ClassOf(got.Density[i], emitter.Spray, emitter.Bubbles)
		if gotClass != wantClass {
			t.Errorf("class[%d] = %v, want %v", i, gotClass, wantClass)
		}
	}
}

// TestVTKLoaderParsesMinimalFluidFrame checks the loader against a hand
// written minimal legacy VTK POLYDATA file with points, velocity and Rhop.
func TestVTKLoaderParsesMinimalFluidFrame(t *testing.T) {
	content := `# vtk DataFile Version 3.0
fluid frame
ASCII
DATASET POLYDATA
POINTS 2 float
0.0 0.0 0.0
1.0 2.0 3.0
VERTICES 2 4
1 0
1 1
POINT_DATA 2
VECTORS Velocity float
0.5 0.0 0.0
0.0 1.5 0.0
SCALARS Rhop float 1
LOOKUP_TABLE default
1000.0
999.5
`
	frame, err := parseVTKFluidFrame(bytes.NewReader([]byte(content)))
	if err != nil {
		t.Fatalf("parseVTKFluidFrame: %v", err)
	}
	if frame.N() != 2 {
		t.Fatalf("N() = %d, want 2", frame.N())
	}
	if vecmath.Dist(frame.Pos[1], vecmath.Vec{X: 1, Y: 2, Z: 3}) > 1e-9 {
		t.Errorf("Pos[1] = %v", frame.Pos[1])
	}
	if vecmath.Dist(frame.Vel[1], vecmath.Vec{X: 0, Y: 1.5, Z: 0}) > 1e-9 {
		t.Errorf("Vel[1] = %v", frame.Vel[1])
	}
	if frame.Rhop[1] != 999.5 {
		t.Errorf("Rhop[1] = %v, want 999.5", frame.Rhop[1])
	}
}

// TestVTKLoaderMissingFileIsEndOfInput checks that a nonexistent frame file
// is reported as ErrEndOfInput, not a generic error, per spec.md §7.
func TestVTKLoaderMissingFileIsEndOfInput(t *testing.T) {
	loader := NewVTKLoader(t.TempDir(), "frame_", 4, 0.1)
	_, _, err := loader.Load(999)
	if !errors.Is(err, ErrEndOfInput) {
		t.Fatalf("err = %v, want ErrEndOfInput", err)
	}
}
