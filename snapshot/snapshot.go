// Package snapshot implements the fluid-frame loader and the diffuse/fluid
// emitters the driver loop (package sim) depends on, behind two small
// interfaces so that a future upstream solver's own reader/writer can be
// substituted without touching the hard core.
//
// Grounded on the original_source/foamsimulator reference's FluidData
// reader and the four VtkDWriter-style output stages of
// DiffuseCalculator.cpp's runSimulation, reading/writing the legacy VTK
// POLYDATA ASCII format that vtkPolyDataReader/vtkPolyDataWriter consume
// and produce by default (see DESIGN.md: no VTK binding exists anywhere in
// the reference corpus, so this format is read and written directly against
// the standard library).
package snapshot

import (
	"errors"

	"github.com/foamkit/diffuse/diffuse"
	"github.com/foamkit/diffuse/fields"
	"github.com/foamkit/diffuse/grid"
)

// ErrEndOfInput is returned by a Loader when the requested step has no
// corresponding snapshot on disk. The driver treats this as a clean,
// successful end of the run, per spec.md §7.
var ErrEndOfInput = errors.New("snapshot: end of input")

// Loader produces a fluid frame and its spatial index for a given frame
// step. Implementations own the on-disk format; the hard core depends only
// on this interface.
type Loader interface {
	Load(step int) (*fields.FluidFrame, *grid.Grid, error)
}

// Emitter writes one frame's output artifact. Implementations must not
// mutate the pool, frame or scratch they are given; multiple emitters may
// run over the same frame concurrently since each owns a distinct output
// file, per spec.md §5.
type Emitter interface {
	Emit(step int, pool *diffuse.Pool, frame *fields.FluidFrame, scratch *fields.Scratch) error
}
