package costmodel

import "github.com/basemotion/rrtapf/pose"

// Shortest is the Euclidean cost variant: travel time is straight-line
// distance over max linear velocity, with no attention paid to heading.
type Shortest struct {
	maxLinearVelocity float64
	navigable         Navigable
	resolution        float64
}

// NewShortest builds the shortest-path cost model.
func NewShortest(maxLinearVelocity float64, navigable Navigable, resolution float64) *Shortest {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Shortest{maxLinearVelocity: maxLinearVelocity, navigable: navigable, resolution: resolution}
}

// CostTo implements Model. considerEndHeading is accepted for interface
// conformance but has no effect: the shortest model has no concept of a
// final in-place rotation.
func (m *Shortest) CostTo(a, b pose.Pose, _ bool) (cost, headingAtB float64) {
	if infeasible(a, b) || !m.PathExists(a, b) {
		return infPos, 0
	}
	dist := pose.EuclidXY(a, b)
	headingAtB = pose.Bearing(a, b)
	if dist == 0 {
		headingAtB = a.Heading()
	}
	return dist / m.maxLinearVelocity, headingAtB
}

// PathExists implements Model.
func (m *Shortest) PathExists(a, b pose.Pose) bool {
	if infeasible(a, b) {
		return false
	}
	return sampleStraightNavigable(a, b, m.resolution, m.navigable)
}

// IntermediatePoints implements Model.
func (m *Shortest) IntermediatePoints(a, b pose.Pose, resolution float64) []pose.Pose {
	if resolution <= 0 {
		resolution = m.resolution
	}
	return lerpStraight(a, b, resolution)
}

