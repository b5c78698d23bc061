package snapshot

import (
	"fmt"
	"io"

	"github.com/foamkit/diffuse/diffuse"
	"github.com/foamkit/diffuse/vecmath"
)

// ReadDiffuseVTK parses a VTK diffuse snapshot written by VTKDiffuseEmitter
// back into a Pool. It exists for the round-trip property (spec.md §8,
// property 7) and for any future tooling that needs to resume from a
// previous run's diffuse output; the driver loop itself never reads
// diffuse snapshots back in.
func ReadDiffuseVTK(r io.Reader) (*diffuse.Pool, error) {
	v := newVTKScanner(r)

	if !v.seek("POINTS") {
		return nil, fmt.Errorf("snapshot: no POINTS section")
	}
	n, err := v.int()
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading POINTS count: %w", err)
	}
	v.next() // datatype

	pool := &diffuse.Pool{
		Pos:     make([]vecmath.Vec, n),
		Vel:     make([]vecmath.Vec, n),
		ID:      make([]int64, n),
		TTL:     make([]int, n),
		Density: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x, err := v.float()
		if err != nil {
			return nil, err
		}
		y, err := v.float()
		if err != nil {
			return nil, err
		}
		z, err := v.float()
		if err != nil {
			return nil, err
		}
		pool.Pos[i] = vecmath.Vec{X: x, Y: y, Z: z}
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
				x, errX := v.float()
				y, errY := v.float()
				z, errZ := v.float()
				if errX != nil || errY != nil || errZ != nil {
					return nil, fmt.Errorf("snapshot: reading VECTORS %s[%d]", name, i)
				}
				if name == "Velocity" {
					pool.Vel[i] = vecmath.Vec{X: x, Y: y, Z: z}
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
				switch name {
				case "id":
					pool.ID[i] = int64(val)
				case "ParticleType":
					_ = val // class is derived, not stored; re-verified by the caller
				case "Density":
					pool.Density[i] = val
				}
			}
		}
	}

	return pool, nil
}
