package snapshot

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/foamkit/diffuse/diffuse"
	"github.com/foamkit/diffuse/fields"
)

func seqPath(dir, prefix string, step, padWidth int, suffix string) string {
	name := fmt.Sprintf("%s%0*d%s", prefix, padWidth, step, suffix)
	return filepath.Join(dir, name)
}

func openWriter(path string) (*os.File, *bufio.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: creating %s: %w", path, err)
	}
	return f, bufio.NewWriter(f), nil
}

// TextEmitter writes one line per diffuse particle: "x y z class", with
// class in {0=spray,1=foam,2=bubble}, per spec.md §6.
type TextEmitter struct {
	OutputPath, OutputPrefix string
	PadWidth                 int
	Spray, Bubbles           float64
}

func (e *TextEmitter) Emit(step int, pool *diffuse.Pool, _ *fields.FluidFrame, _ *fields.Scratch) error {
	path := seqPath(e.OutputPath, e.OutputPrefix, step, e.PadWidth, ".txt")
	f, w, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for i := 0; i < pool.Len(); i++ {
		class := diffuse.ClassOf(pool.Density[i], e.Spray, e.Bubbles)
		p := pool.Pos[i]
		if _, err := fmt.Fprintf(w, "%e %e %e %d\n", p.X, p.Y, p.Z, class); err != nil {
			return fmt.Errorf("snapshot: writing %s: %w", path, err)
		}
	}
	return w.Flush()
}

func writeLegacyHeader(w *bufio.Writer, title string) {
	fmt.Fprintln(w, "# vtk DataFile Version 3.0")
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, "ASCII")
	fmt.Fprintln(w, "DATASET POLYDATA")
}

func writePointsAndVertices(w *bufio.Writer, pos [][3]float64) {
	fmt.Fprintf(w, "POINTS %d float\n", len(pos))
	for _, p := range pos {
		fmt.Fprintf(w, "%e %e %e\n", p[0], p[1], p[2])
	}
	fmt.Fprintf(w, "VERTICES %d %d\n", len(pos), 2*len(pos))
	for i := range pos {
		fmt.Fprintf(w, "1 %d\n", i)
	}
}

// VTKDiffuseEmitter writes PolyData for the diffuse pool: points, vertex
// cells, scalar id, ParticleType, Density, and a Velocity vector array, per
// spec.md §6.
type VTKDiffuseEmitter struct {
	OutputPath, OutputPrefix string
	PadWidth                 int
	Spray, Bubbles           float64
}

func (e *VTKDiffuseEmitter) Emit(step int, pool *diffuse.Pool, _ *fields.FluidFrame, _ *fields.Scratch) error {
	path := seqPath(e.OutputPath, e.OutputPrefix, step, e.PadWidth, "_diffuse.vtk")
	f, w, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n := pool.Len()
	pos := make([][3]float64, n)
	for i, p := range pool.Pos {
		pos[i] = [3]float64{p.X, p.Y, p.Z}
	}

	writeLegacyHeader(w, "diffuse particles")
	writePointsAndVertices(w, pos)

	fmt.Fprintf(w, "POINT_DATA %d\n", n)

	fmt.Fprintln(w, "SCALARS id int 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%d\n", pool.ID[i])
	}

	fmt.Fprintln(w, "SCALARS ParticleType int 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%d\n", diffuse.ClassOf(pool.Density[i], e.Spray, e.Bubbles))
	}

	fmt.Fprintln(w, "SCALARS Density float 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%e\n", pool.Density[i])
	}

	fmt.Fprintln(w, "VECTORS Velocity float")
	for i := 0; i < n; i++ {
		v := pool.Vel[i]
		fmt.Fprintf(w, "%e %e %e\n", v.X, v.Y, v.Z)
	}

	return w.Flush()
}

// VTKFluidEmitter writes PolyData for the fluid frame: points plus the
// per-particle scratch fields TrappedAir, WaveCrests, Energy and
// DiffuseParticles, per spec.md §6 (the "intermediate" diagnostic output).
type VTKFluidEmitter struct {
	OutputPath, OutputPrefix string
	PadWidth                 int
}

func (e *VTKFluidEmitter) Emit(step int, _ *diffuse.Pool, frame *fields.FluidFrame, scratch *fields.Scratch) error {
	path := seqPath(e.OutputPath, e.OutputPrefix, step, e.PadWidth, "_fluid.vtk")
	f, w, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n := frame.N()
	pos := make([][3]float64, n)
	for i, p := range frame.Pos {
		pos[i] = [3]float64{p.X, p.Y, p.Z}
	}

	writeLegacyHeader(w, "fluid intermediate fields")
	writePointsAndVertices(w, pos)

	fmt.Fprintf(w, "POINT_DATA %d\n", n)

	writeScalarFloat := func(name string, values []float64) {
		fmt.Fprintf(w, "SCALARS %s float 1\n", name)
		fmt.Fprintln(w, "LOOKUP_TABLE default")
		for _, v := range values {
			fmt.Fprintf(w, "%e\n", v)
		}
	}
	writeScalarFloat("TrappedAir", scratch.Ita)
	writeScalarFloat("WaveCrests", scratch.WaveCrest)
	writeScalarFloat("Energy", scratch.Energy)

	fmt.Fprintln(w, "SCALARS DiffuseParticles int 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for _, v := range scratch.NDiffuse {
		fmt.Fprintf(w, "%d\n", v)
	}

	return w.Flush()
}

// VTKPosVelEmitter is the simplified writer of spec.md §6: points and a
// Velocity vector array for the diffuse pool, nothing else.
type VTKPosVelEmitter struct {
	OutputPath, OutputPrefix string
	PadWidth                 int
}

func (e *VTKPosVelEmitter) Emit(step int, pool *diffuse.Pool, _ *fields.FluidFrame, _ *fields.Scratch) error {
	path := seqPath(e.OutputPath, e.OutputPrefix, step, e.PadWidth, ".vtk")
	f, w, err := openWriter(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n := pool.Len()
	pos := make([][3]float64, n)
	for i, p := range pool.Pos {
		pos[i] = [3]float64{p.X, p.Y, p.Z}
	}

	writeLegacyHeader(w, "diffuse particles (pos+vel)")
	writePointsAndVertices(w, pos)

	fmt.Fprintf(w, "POINT_DATA %d\n", n)
	fmt.Fprintln(w, "VECTORS Velocity float")
	for i := 0; i < n; i++ {
		v := pool.Vel[i]
		fmt.Fprintf(w, "%e %e %e\n", v.X, v.Y, v.Z)
	}

	return w.Flush()
}
