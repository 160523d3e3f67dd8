// Package pose implements the immutable 3D point-plus-heading value that
// every other package in this module is built around.
package pose

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// keyPrecision is the number of decimal digits kept in a Pose's text key.
// Two poses are equal iff their keys match, so this constant defines the
// resolution at which the tree treats two samples as "the same node".
const keyPrecision = 4

// Pose is an immutable (x, y, z, heading) sample. It uses the world
// convention that z is the vertical axis; x and y span the navigable
// plane that the planner operates over.
type Pose struct {
	x, y, z, heading float64
}

// New builds a Pose from the (x, z, y) argument order used throughout this
// module's ancestry (habitat-sim and the PNG map adapters hand positions
// around as (x, z, y) triples, z being vertical). heading defaults to 0
// when omitted and is always wrapped into (-pi, pi].
func New(x, z, y float64, heading ...float64) Pose {
	var h float64
	if len(heading) > 0 {
		h = heading[0]
	}
	return Pose{x: x, y: y, z: z, heading: WrapHeading(h)}
}

// WrapHeading normalizes an angle into (-pi, pi].
func WrapHeading(heading float64) float64 {
	for heading > math.Pi {
		heading -= 2 * math.Pi
	}
	for heading <= -math.Pi {
		heading += 2 * math.Pi
	}
	return heading
}

// X, Y, Z, Heading are component accessors.
func (p Pose) X() float64       { return p.x }
func (p Pose) Y() float64       { return p.y }
func (p Pose) Z() float64       { return p.z }
func (p Pose) Heading() float64 { return p.heading }

// WithHeading returns a copy of p with heading replaced, wrapped into
// (-pi, pi].
func (p Pose) WithHeading(heading float64) Pose {
	p.heading = WrapHeading(heading)
	return p
}

// AsPos returns the (x, z, y) triple, matching the adapter-facing argument
// convention used by New.
func (p Pose) AsPos() (x, z, y float64) {
	return p.x, p.z, p.y
}

// Vector2 returns the planar (x, y) position as an r3.Vector with z zeroed,
// for use with golang/geo's distance helpers.
func (p Pose) Vector2() r3.Vector {
	return r3.Vector{X: p.x, Y: p.y, Z: 0}
}

// Vector3 returns the full 3D position.
func (p Pose) Vector3() r3.Vector {
	return r3.Vector{X: p.x, Y: p.y, Z: p.z}
}

// EuclidXY returns the planar Euclidean distance between p and q, ignoring
// z and heading. This is the distance metric used by the grid hash and
// neighborhood queries; it is never the cost metric (see package costmodel).
func EuclidXY(p, q Pose) float64 {
	return p.Vector2().Sub(q.Vector2()).Norm()
}

// Bearing returns the bearing (atan2) from p to q in the XY plane.
func Bearing(p, q Pose) float64 {
	return math.Atan2(q.y-p.y, q.x-p.x)
}

// Key returns the canonical text representation used for equality,
// hashing, and on-disk serialization: "x_y_z_heading", each field rendered
// to keyPrecision decimal digits. This matches the field order of the
// checkpoint's pose keys (see package checkpoint) even though New takes
// arguments in (x, z, y) order.
func (p Pose) Key() string {
	return fmt.Sprintf("%s_%s_%s_%s",
		formatComponent(p.x), formatComponent(p.y), formatComponent(p.z), formatComponent(p.heading))
}

func formatComponent(v float64) string {
	return strconv.FormatFloat(v, 'f', keyPrecision, 64)
}

// ParseKey is the inverse of Key: it parses a "x_y_z_heading" string back
// into a Pose. It returns an error if the key does not have exactly four
// underscore-separated numeric fields.
func ParseKey(key string) (Pose, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 4 {
		return Pose{}, fmt.Errorf("pose: malformed key %q: want 4 fields, got %d", key, len(parts))
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return Pose{}, fmt.Errorf("pose: malformed key %q: field %d: %w", key, i, err)
		}
		vals[i] = v
	}
	return Pose{x: vals[0], y: vals[1], z: vals[2], heading: WrapHeading(vals[3])}, nil
}

// IsNaN reports whether any component of p is NaN. Environment adapters'
// Snap methods return a NaN-filled Pose as a sentinel for "no surface
// here"; callers must check this before using the result.
func (p Pose) IsNaN() bool {
	return math.IsNaN(p.x) || math.IsNaN(p.y) || math.IsNaN(p.z) || math.IsNaN(p.heading)
}

// NaN returns the sentinel NaN pose used by Snap implementations to signal
// an unsnappable position.
func NaN() Pose {
	nan := math.NaN()
	return Pose{x: nan, y: nan, z: nan, heading: nan}
}

// String implements fmt.Stringer for debug logging.
func (p Pose) String() string {
	return p.Key()
}
