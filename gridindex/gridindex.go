// Package gridindex implements the fixed-cell spatial hash that backs the
// planner's near-neighbor and nearest-neighbor queries over tree nodes.
package gridindex

import (
	"errors"
	"math"

	"github.com/basemotion/rrtapf/pose"
)

// ErrEmptyIndex is returned by Nearest when the index has never had a pose
// inserted into it. The planner always inserts the root before the first
// Nearest call, so this indicates a programming error rather than a
// reachable runtime condition (spec.md §7, §8: "Empty tree at
// nearest-query time").
var ErrEmptyIndex = errors.New("gridindex: nearest queried on empty index")

type cellKey struct{ i, j int }

// GridIndex is a coarse spatial bucket over a pose.Registry: cell size
// equals cellSize (the planner's near_threshold), and lookups are keyed by
// pose.ID rather than by the Pose value itself.
type GridIndex struct {
	registry *pose.Registry
	cellSize float64
	xMin     float64
	yMin     float64
	cells    map[cellKey][]pose.ID
}

// New builds a GridIndex over registry with the given cell size and the
// (xMin, yMin) plane origin supplied by the environment adapter's
// Bounds().
func New(registry *pose.Registry, cellSize, xMin, yMin float64) *GridIndex {
	return &GridIndex{
		registry: registry,
		cellSize: cellSize,
		xMin:     xMin,
		yMin:     yMin,
		cells:    make(map[cellKey][]pose.ID),
	}
}

func (g *GridIndex) cellOf(p pose.Pose) (i, j int) {
	i = int(math.Floor((p.X() - g.xMin) / g.cellSize))
	j = int(math.Floor((p.Y() - g.yMin) / g.cellSize))
	return i, j
}

// Insert adds id to the bucket corresponding to its current coordinates.
func (g *GridIndex) Insert(id pose.ID) {
	p := g.registry.Lookup(id)
	key := cellKeyFrom(g.cellOf(p))
	g.cells[key] = append(g.cells[key], id)
}

func cellKeyFrom(i, j int) cellKey { return cellKey{i, j} }

// Near returns the poses in the 2x2 block of cells containing p, extended
// by the half-plane on whichever side of the cell boundary p sits closer
// to. This guarantees every pose within distance cellSize of p is
// returned (plus some further ones); callers apply their own distance
// filter (spec.md §4.3).
func (g *GridIndex) Near(p pose.Pose) []pose.ID {
	i, j := g.cellOf(p)

	modX := math.Mod(p.X()-g.xMin, g.cellSize)
	if modX < 0 {
		modX += g.cellSize
	}
	modY := math.Mod(p.Y()-g.yMin, g.cellSize)
	if modY < 0 {
		modY += g.cellSize
	}
	left := modX < g.cellSize/2
	down := modY < g.cellSize/2

	var ret []pose.ID
	ret = append(ret, g.cells[cellKeyFrom(i, j)]...)
	if left {
		ret = append(ret, g.cells[cellKeyFrom(i-1, j)]...)
		if down {
			ret = append(ret, g.cells[cellKeyFrom(i-1, j-1)]...)
			ret = append(ret, g.cells[cellKeyFrom(i, j-1)]...)
		} else {
			ret = append(ret, g.cells[cellKeyFrom(i-1, j+1)]...)
			ret = append(ret, g.cells[cellKeyFrom(i, j+1)]...)
		}
	} else {
		ret = append(ret, g.cells[cellKeyFrom(i+1, j)]...)
		if down {
			ret = append(ret, g.cells[cellKeyFrom(i+1, j-1)]...)
			ret = append(ret, g.cells[cellKeyFrom(i, j-1)]...)
		} else {
			ret = append(ret, g.cells[cellKeyFrom(i+1, j+1)]...)
			ret = append(ret, g.cells[cellKeyFrom(i, j+1)]...)
		}
	}
	return ret
}

// Nearest finds the pose in the index closest to p in 2D Euclidean
// distance, via an expanding ring search starting at p's own cell.
//
// Per the REDESIGN FLAGS in spec.md §9, this continues one additional
// ring past the first ring that yields any candidates before taking the
// minimum, which fixes the original source's documented minor bias (a
// diagonally adjacent cell can hold a point closer than anything in the
// first nonempty ring, for an off-center query point).
func (g *GridIndex) Nearest(p pose.Pose) (pose.ID, error) {
	if len(g.cells) == 0 {
		return 0, ErrEmptyIndex
	}
	i0, j0 := g.cellOf(p)

	// Every occupied cell lies within maxRing rings of the query cell.
	maxRing := 0
	for key := range g.cells {
		di, dj := key.i-i0, key.j-j0
		if di < 0 {
			di = -di
		}
		if dj < 0 {
			dj = -dj
		}
		maxRing = max(maxRing, di, dj)
	}

	var candidates []pose.ID
	foundAtRing := -1
	for ring := 0; ; ring++ {
		for _, key := range ringCells(i0, j0, ring) {
			candidates = append(candidates, g.cells[key]...)
		}
		if len(candidates) > 0 && foundAtRing == -1 {
			foundAtRing = ring
		}
		if foundAtRing != -1 && ring == foundAtRing+1 {
			break
		}
		// Safety valve: sweeping past maxRing without a hit means no cell
		// holds a pose.
		if ring > maxRing && foundAtRing == -1 {
			return 0, ErrEmptyIndex
		}
	}

	best := candidates[0]
	bestDist := pose.EuclidXY(p, g.registry.Lookup(best))
	for _, c := range candidates[1:] {
		d := pose.EuclidXY(p, g.registry.Lookup(c))
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best, nil
}

// ringCells returns the grid cells forming the square ring of the given
// radius (0 = just the center cell) around (i0, j0), matching the
// original source's expanding-ring traversal (sides, then corners).
func ringCells(i0, j0, radius int) []cellKey {
	if radius == 0 {
		return []cellKey{{i0, j0}}
	}
	var cells []cellKey
	for c := -radius + 1; c < radius; c++ {
		cells = append(cells,
			cellKey{i0 + radius, j0 + c},
			cellKey{i0 - radius, j0 + c},
			cellKey{i0 + c, j0 + radius},
			cellKey{i0 + c, j0 - radius},
		)
	}
	cells = append(cells,
		cellKey{i0 + radius, j0 + radius},
		cellKey{i0 + radius, j0 - radius},
		cellKey{i0 - radius, j0 + radius},
		cellKey{i0 - radius, j0 - radius},
	)
	return cells
}
