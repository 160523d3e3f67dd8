// Package navmesh adapts a 3D navmesh pathfinder (the host's collision mesh
// and pathfinding engine) to envadapter.Adapter. The pathfinder itself is an
// external collaborator this package never implements; it only adapts the
// capability shape the planner needs.
package navmesh

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/basemotion/rrtapf/envadapter"
	"github.com/basemotion/rrtapf/pose"
)

// Pathfinder is the navmesh capability this package wraps. A host
// integration (e.g. a habitat-sim or Recast/Detour binding) implements it.
type Pathfinder interface {
	// IsNavigable reports whether pos sits on the navmesh within maxYDelta
	// of the surface.
	IsNavigable(pos r3.Vector, maxYDelta float64) bool

	// RandomNavigablePoint draws a uniformly random point on the navmesh.
	RandomNavigablePoint() r3.Vector

	// SnapPoint projects pos onto the nearest navmesh surface. It returns
	// a vector with NaN components when no surface is within range.
	SnapPoint(pos r3.Vector) r3.Vector

	// FindPath computes a baseline path between start and end. ok is false
	// if no path exists.
	FindPath(start, end r3.Vector) (waypoints []r3.Vector, ok bool)

	// Vertices returns every vertex of the navmesh, for bounds computation.
	Vertices() []r3.Vector
}

// Adapter wraps a Pathfinder to satisfy envadapter.Adapter.
type Adapter struct {
	pathfinder Pathfinder
}

// New builds a navmesh-backed adapter around pathfinder.
func New(pathfinder Pathfinder) *Adapter {
	return &Adapter{pathfinder: pathfinder}
}

var _ envadapter.Adapter = (*Adapter)(nil)

// IsNavigable implements envadapter.Adapter.
func (a *Adapter) IsNavigable(p pose.Pose, maxYDelta float64) bool {
	return a.pathfinder.IsNavigable(p.Vector3(), maxYDelta)
}

// SampleRandomNavigable implements envadapter.Adapter.
func (a *Adapter) SampleRandomNavigable() pose.Pose {
	v := a.pathfinder.RandomNavigablePoint()
	return pose.New(v.X, v.Z, v.Y)
}

// Snap implements envadapter.Adapter. It returns pose.NaN() when the
// pathfinder cannot find a surface beneath (x, z, y).
func (a *Adapter) Snap(x, z, y float64) pose.Pose {
	snapped := a.pathfinder.SnapPoint(r3.Vector{X: x, Y: y, Z: z})
	if math.IsNaN(snapped.X) || math.IsNaN(snapped.Y) || math.IsNaN(snapped.Z) {
		return pose.NaN()
	}
	return pose.New(snapped.X, snapped.Z, snapped.Y)
}

// ShortestPathWaypoints implements envadapter.Adapter.
func (a *Adapter) ShortestPathWaypoints(start, goal pose.Pose) []pose.Pose {
	waypoints, ok := a.pathfinder.FindPath(start.Vector3(), goal.Vector3())
	if !ok {
		return nil
	}
	out := make([]pose.Pose, len(waypoints))
	for i, w := range waypoints {
		out[i] = pose.New(w.X, w.Z, w.Y)
	}
	return out
}

// Bounds implements envadapter.Adapter: it scans every navmesh vertex on the
// same floor as startZ (within 0.8 of it) and returns the minimum x and y.
func (a *Adapter) Bounds(startZ float64) (xMin, yMin float64) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	for _, v := range a.pathfinder.Vertices() {
		if math.Abs(v.Z-startZ) >= 0.8 {
			continue
		}
		xMin = math.Min(xMin, v.X)
		yMin = math.Min(yMin, v.Y)
	}
	return xMin, yMin
}
