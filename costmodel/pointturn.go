package costmodel

import (
	"math"

	"github.com/basemotion/rrtapf/pose"
)

// PointTurn models a vehicle that rotates in place to face the target,
// translates straight to it, and (if asked to consider end heading)
// rotates in place again to match the target's stored heading.
type PointTurn struct {
	maxLinearVelocity  float64
	maxAngularVelocity float64
	navigable          Navigable
	resolution         float64
}

// NewPointTurn builds the point-turn cost model.
func NewPointTurn(maxLinearVelocity, maxAngularVelocity float64, navigable Navigable, resolution float64) *PointTurn {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &PointTurn{
		maxLinearVelocity:  maxLinearVelocity,
		maxAngularVelocity: maxAngularVelocity,
		navigable:          navigable,
		resolution:         resolution,
	}
}

// CostTo implements Model.
func (m *PointTurn) CostTo(a, b pose.Pose, considerEndHeading bool) (cost, headingAtB float64) {
	if infeasible(a, b) || !m.PathExists(a, b) {
		return infPos, 0
	}
	dist := pose.EuclidXY(a, b)
	bearing := a.Heading()
	if dist > 0 {
		bearing = pose.Bearing(a, b)
	}
	turn1 := pose.WrapHeading(bearing - a.Heading())

	cost = math.Abs(turn1)/m.maxAngularVelocity + dist/m.maxLinearVelocity
	headingAtB = bearing

	if considerEndHeading {
		turn2 := pose.WrapHeading(b.Heading() - bearing)
		cost += math.Abs(turn2) / m.maxAngularVelocity
		headingAtB = b.Heading()
	}
	return cost, headingAtB
}

// PathExists implements Model. Point-turn's translate phase is the same
// straight segment as the shortest model's entire path, so feasibility is
// checked the same way; the in-place rotations at either end do not move
// the vehicle and so cannot themselves collide.
func (m *PointTurn) PathExists(a, b pose.Pose) bool {
	if infeasible(a, b) {
		return false
	}
	return sampleStraightNavigable(a, b, m.resolution, m.navigable)
}

// IntermediatePoints implements Model.
func (m *PointTurn) IntermediatePoints(a, b pose.Pose, resolution float64) []pose.Pose {
	if resolution <= 0 {
		resolution = m.resolution
	}
	return lerpStraight(a, b, resolution)
}
