// Package envadapter defines the capability set a host environment must
// expose to the planner: navigability, random sampling, snapping a
// candidate pose onto the drivable surface, an optional baseline shortest
// path, and the planar bounds used to seed the grid hash. Two concrete
// adapters satisfy it: envadapter/navmesh (3D navmesh-backed) and
// envadapter/raster (2D occupancy-image-backed).
package envadapter

import "github.com/basemotion/rrtapf/pose"

// Adapter is the environment capability set every variant implements.
type Adapter interface {
	// IsNavigable reports whether p sits on drivable surface. maxYDelta
	// bounds how far p.Z() may drift from the surface directly beneath it
	// before it is rejected as a different floor; raster adapters ignore
	// it, since a raster map has no elevation axis.
	IsNavigable(p pose.Pose, maxYDelta float64) bool

	// SampleRandomNavigable draws a uniformly random navigable pose.
	SampleRandomNavigable() pose.Pose

	// Snap projects (x, z, y) onto the drivable surface. It returns
	// pose.NaN() when no surface is found under the point; callers must
	// tolerate that sentinel rather than treating it as an error.
	Snap(x, z, y float64) pose.Pose

	// ShortestPathWaypoints returns a baseline path between start and goal,
	// or nil if the adapter cannot compute one (always true for raster
	// maps, which have no native pathfinding).
	ShortestPathWaypoints(start, goal pose.Pose) []pose.Pose

	// Bounds returns the minimum x and y of the navigable region on the
	// plane containing a start pose with the given z, used to seed the
	// grid hash's origin.
	Bounds(startZ float64) (xMin, yMin float64)
}

// LocalMapper is implemented by raster-backed adapters only: it exposes the
// byte-labeled occupancy window the APF sampler biases its draws against.
type LocalMapper interface {
	// LocalWindow returns a size x size occupancy window centered on
	// center, labeled with the Free/Obstacle/Node/Goal constants below.
	// Cells outside the backing map are reported Obstacle.
	LocalWindow(center pose.Pose, size int) [][]byte

	// MarkNode records that a tree node now occupies pos, so future local
	// windows show it as occupied for the APF repulsive term.
	MarkNode(pos pose.Pose)

	// MarkGoal records the goal position the same way MarkNode does, with
	// its own label. apf.Sample treats a goal-labeled cell like a free one;
	// its attractive term works from the goal position it is passed.
	MarkGoal(pos pose.Pose)

	// CellSize reports the window's edge length in meters per cell.
	CellSize() float64

	// WindowSize reports the adapter's recommended local window extent, in
	// cells, sized off near_threshold (the raster adapter uses a side of
	// 1.2 x near_threshold, rounded up to whole cells).
	WindowSize() int
}

// Occupancy labels used by LocalWindow, matching the original's info map
// convention (0 free / 1 obstacle / 2 node / 3 goal).
const (
	CellFree = byte(iota)
	CellObstacle
	CellNode
	CellGoal
)
