package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/foamkit/diffuse/fields"
	"github.com/foamkit/diffuse/grid"
	"github.com/foamkit/diffuse/vecmath"
)

// VTKLoader reads fluid frames from legacy VTK POLYDATA ASCII files named
// {dataPath}/{filePrefix}{step, zero-padded to padWidth}.vtk, and buckets
// the loaded positions into a fresh grid with cell size h.
type VTKLoader struct {
	DataPath   string
	FilePrefix string
	PadWidth   int
	H          float64
}

// NewVTKLoader constructs a VTKLoader.
func NewVTKLoader(dataPath, filePrefix string, padWidth int, h float64) *VTKLoader {
	return &VTKLoader{DataPath: dataPath, FilePrefix: filePrefix, PadWidth: padWidth, H: h}
}

func (l *VTKLoader) path(step int) string {
	name := fmt.Sprintf("%s%0*d.vtk", l.FilePrefix, l.PadWidth, step)
	return filepath.Join(l.DataPath, name)
}

// Load implements Loader. A missing file is reported as ErrEndOfInput; any
// other I/O or parse failure is wrapped and returned as-is, per spec.md §7.
func (l *VTKLoader) Load(step int) (*fields.FluidFrame, *grid.Grid, error) {
	path := l.path(step)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrEndOfInput
		}
		return nil, nil, fmt.Errorf("snapshot: opening %s: %w", path, err)
	}
	defer f.Close()

	frame, err := parseVTKFluidFrame(f)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: parsing %s: %w", path, err)
	}

	g := grid.New(l.H)
	g.Build(frame.Pos)
	return frame, g, nil
}

// vtkScanner walks a legacy VTK ASCII file word by word; the format is
// whitespace-delimited regardless of line breaks, so word scanning is
// sufficient for both header keywords and numeric payloads.
type vtkScanner struct {
	sc *bufio.Scanner
}

func newVTKScanner(r io.Reader) *vtkScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	return &vtkScanner{sc: sc}
}

func (v *vtkScanner) next() (string, bool) {
	if !v.sc.Scan() {
		return "", false
	}
	return v.sc.Text(), true
}

// seek advances until a token exactly equal to keyword is found, returning
// false if the stream runs out first.
func (v *vtkScanner) seek(keyword string) bool {
	for {
		tok, ok := v.next()
		if !ok {
			return false
		}
		if tok == keyword {
			return true
		}
	}
}

func (v *vtkScanner) int() (int, error) {
	tok, ok := v.next()
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.Atoi(tok)
}

func (v *vtkScanner) float() (float64, error) {
	tok, ok := v.next()
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(tok, 64)
}

// parseVTKFluidFrame reads the POINTS block (required), and the Velocity
// VECTORS and Rhop/Density SCALARS arrays (optional — defaulted if absent,
// since not every producer emits both), ignoring VERTICES and any other
// array.
func parseVTKFluidFrame(r io.Reader) (*fields.FluidFrame, error) {
	v := newVTKScanner(r)

	if !v.seek("POINTS") {
		return nil, fmt.Errorf("snapshot: no POINTS section")
	}
	n, err := v.int()
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading POINTS count: %w", err)
	}
	if _, ok := v.next(); !ok { // the datatype token (float/double)
		return nil, io.ErrUnexpectedEOF
	}

	pos := make([]vecmath.Vec, n)
	for i := 0; i < n; i++ {
		x, err := v.float()
		if err != nil {
			return nil, fmt.Errorf("snapshot: reading point %d.x: %w", i, err)
		}
		y, err := v.float()
		if err != nil {
			return nil, fmt.Errorf("snapshot: reading point %d.y: %w", i, err)
		}
		z, err := v.float()
		if err != nil {
			return nil, fmt.Errorf("snapshot: reading point %d.z: %w", i, err)
		}
		pos[i] = vecmath.Vec{X: x, Y: y, Z: z}
	}

	vel := make([]vecmath.Vec, n)
	rhop := make([]float64, n)
	for i := range rhop {
		rhop[i] = 1000 // default rest density when no Rhop/Density array is present
	}

	for {
		tok, ok := v.next()
		if !ok {
			break
		}
		switch tok {
		case "VECTORS":
			name, _ := v.next()
			v.next() // datatype
			for i := 0; i < n; i++ {
				x, err := v.float()
				if err != nil {
					return nil, fmt.Errorf("snapshot: reading VECTORS %s[%d]: %w", name, i, err)
				}
				y, err := v.float()
				if err != nil {
					return nil, fmt.Errorf("snapshot: reading VECTORS %s[%d]: %w", name, i, err)
				}
				z, err := v.float()
				if err != nil {
					return nil, fmt.Errorf("snapshot: reading VECTORS %s[%d]: %w", name, i, err)
				}
				if name == "Velocity" || name == "Vel" {
					vel[i] = vecmath.Vec{X: x, Y: y, Z: z}
				}
			}
		case "SCALARS":
			name, _ := v.next()
			v.next() // datatype
			tok, _ := v.next()
			if tok != "LOOKUP_TABLE" {
				tok, _ = v.next() // tok was the component count
			}
			if tok == "LOOKUP_TABLE" {
				v.next() // table name
			}
			for i := 0; i < n; i++ {
				val, err := v.float()
				if err != nil {
					return nil, fmt.Errorf("snapshot: reading SCALARS %s[%d]: %w", name, i, err)
				}
				if name == "Rhop" || name == "Density" {
					rhop[i] = val
				}
			}
		}
	}

	return &fields.FluidFrame{Pos: pos, Vel: vel, Rhop: rhop}, nil
}
