// Package vecmath provides the 3-vector arithmetic the foam model is built
// on: component-wise add/subtract, scaling, dot and cross products,
// magnitude and normalization.
package vecmath

import "gonum.org/v1/gonum/spatial/r3"

// Vec is a double-precision 3-vector. It is a type alias for r3.Vec so that
// values can be passed directly to gonum's spatial routines where useful.
type Vec = r3.Vec

// Zero is the additive identity.
var Zero = Vec{}

// Add returns a+b.
func Add(a, b Vec) Vec { return r3.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return r3.Sub(a, b) }

// Scale returns f*v.
func Scale(f float64, v Vec) Vec { return r3.Scale(f, v) }

// Dot returns a·b.
func Dot(a, b Vec) float64 { return r3.Dot(a, b) }

// Cross returns the standard right-handed cross product a×b.
//
// The reference implementation (DiffuseCalculator.cpp) builds its second
// spawn basis vector with a sign-flipped, non-standard cross product. A
// clean reimplementation uses the textbook formula here instead; see
// DESIGN.md for why that substitution is sign-invariant under the spawner's
// uniform random angle.
func Cross(a, b Vec) Vec { return r3.Cross(a, b) }

// Norm returns the Euclidean magnitude of v.
func Norm(v Vec) float64 { return r3.Norm(v) }

// Norm2 returns the squared magnitude of v, avoiding a square root.
func Norm2(v Vec) float64 { return r3.Norm2(v) }

// Unit returns v scaled to unit length. Normalizing the zero vector is
// undefined behavior (division by zero); callers must guard against a zero
// vector before calling Unit, exactly as the spawner (package spawn) does.
func Unit(v Vec) Vec { return r3.Unit(v) }

// IsZero reports whether v is exactly the zero vector.
func IsZero(v Vec) bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// DistSq returns the squared distance between two points.
func DistSq(a, b Vec) float64 { return Norm2(Sub(a, b)) }

// Dist returns the distance between two points.
func Dist(a, b Vec) float64 { return Norm(Sub(a, b)) }
