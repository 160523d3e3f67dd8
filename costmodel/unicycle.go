package costmodel

import (
	"math"

	"github.com/basemotion/rrtapf/pose"
)

// Unicycle models a vehicle that follows a circular arc, tangent to its
// current heading at a, to reach b.
type Unicycle struct {
	maxLinearVelocity  float64
	maxAngularVelocity float64
	navigable          Navigable
	resolution         float64
}

// NewUnicycle builds the unicycle cost model.
func NewUnicycle(maxLinearVelocity, maxAngularVelocity float64, navigable Navigable, resolution float64) *Unicycle {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Unicycle{
		maxLinearVelocity:  maxLinearVelocity,
		maxAngularVelocity: maxAngularVelocity,
		navigable:          navigable,
		resolution:         resolution,
	}
}

// arc describes the tangent circular arc from a to b: radius (signed,
// positive curving left), the bearing error alpha, the arc length s, and
// whether the arc degenerated to a straight line (alpha ~ 0).
type arc struct {
	radius, alpha, length float64
	degenerate            bool
}

func computeArc(a, b pose.Pose) arc {
	d := pose.EuclidXY(a, b)
	if d == 0 {
		return arc{degenerate: true}
	}
	bearing := pose.Bearing(a, b)
	alpha := pose.WrapHeading(bearing - a.Heading())
	if math.Abs(alpha) < headingEpsilon {
		return arc{length: d, degenerate: true}
	}
	r := d / (2 * math.Sin(alpha))
	return arc{radius: r, alpha: alpha, length: 2 * r * alpha}
}

func (a arc) headingAtEnd(start pose.Pose) float64 {
	if a.degenerate {
		return start.Heading()
	}
	return pose.WrapHeading(start.Heading() + 2*a.alpha)
}

// pointAt returns the pose at arc-length fraction t in [0, 1] along the
// arc starting at a.
func (ar arc) pointAt(start pose.Pose, t float64) pose.Pose {
	if ar.degenerate {
		dist := ar.length * t
		x := start.X() + dist*math.Cos(start.Heading())
		y := start.Y() + dist*math.Sin(start.Heading())
		return pose.New(x, start.Z(), y, start.Heading())
	}
	phi := 2 * ar.alpha * t
	theta0 := start.Heading()
	centerX := start.X() - ar.radius*math.Sin(theta0)
	centerY := start.Y() + ar.radius*math.Cos(theta0)
	x := centerX + ar.radius*math.Sin(theta0+phi)
	y := centerY - ar.radius*math.Cos(theta0+phi)
	return pose.New(x, start.Z(), y, pose.WrapHeading(theta0+phi))
}

// CostTo implements Model. considerEndHeading is accepted for interface
// conformance but has no effect: the unicycle's end heading is fully
// determined by the arc geometry, not chosen independently.
func (m *Unicycle) CostTo(a, b pose.Pose, _ bool) (cost, headingAtB float64) {
	if infeasible(a, b) {
		return infPos, 0
	}
	ar := computeArc(a, b)
	if !m.pathExistsFor(a, ar) {
		return infPos, 0
	}
	linTime := ar.length / m.maxLinearVelocity
	angTime := 2 * math.Abs(ar.alpha) / m.maxAngularVelocity
	cost = math.Max(linTime, angTime)
	headingAtB = ar.headingAtEnd(a)
	return cost, headingAtB
}

// PathExists implements Model.
func (m *Unicycle) PathExists(a, b pose.Pose) bool {
	if infeasible(a, b) {
		return false
	}
	return m.pathExistsFor(a, computeArc(a, b))
}

func (m *Unicycle) pathExistsFor(a pose.Pose, ar arc) bool {
	if ar.length == 0 {
		return m.navigable(a)
	}
	steps := int(math.Ceil(math.Abs(ar.length) / m.resolution))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if !m.navigable(ar.pointAt(a, t)) {
			return false
		}
	}
	return true
}

// IntermediatePoints implements Model.
func (m *Unicycle) IntermediatePoints(a, b pose.Pose, resolution float64) []pose.Pose {
	if resolution <= 0 {
		resolution = m.resolution
	}
	ar := computeArc(a, b)
	if ar.length == 0 {
		return nil
	}
	steps := int(math.Ceil(math.Abs(ar.length) / resolution))
	pts := make([]pose.Pose, 0, steps-1)
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		pts = append(pts, ar.pointAt(a, t))
	}
	return pts
}
