// Package raster adapts a 2D occupancy image to envadapter.Adapter, for
// maps that have no native 3D navmesh: a flat PNG where free space is pixel
// intensity >= 240, obstacles are everything else, and agent radius is
// accounted for by box-blurring the thresholded image and treating only
// pixels that stay at exactly 255 as navigable.
package raster

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/basemotion/rrtapf/envadapter"
	"github.com/basemotion/rrtapf/pose"
)

// Adapter is a flat, PNG-backed environment. Unlike navmesh.Adapter it has
// no elevation axis: Snap is the identity, ShortestPathWaypoints always
// returns nil, and Bounds is always (0, 0).
type Adapter struct {
	metersPerPixel float64
	navigable      [][]bool // [row][col], row 0 at image top
	infoMap        [][]byte
	windowSize     int
	rng            *rand.Rand
}

// Options configures New. AgentRadius and MetersPerPixel together determine
// the box-blur radius, in pixels, by which thresholded obstacles are
// inflated.
// NearThreshold sizes the local APF window the same way the original scales
// it off the planner's near-threshold (1.2x, in pixels).
type Options struct {
	MetersPerPixel float64
	AgentRadius    float64
	NearThreshold  float64
	Rand           *rand.Rand
}

// New decodes the PNG at path and builds a raster adapter from it.
func New(path string, opts Options) (*Adapter, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("envadapter/raster: open %s: %w", path, err)
	}
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	thresholded := make([][]uint8, height)
	for row := 0; row < height; row++ {
		thresholded[row] = make([]uint8, width)
		for col := 0; col < width; col++ {
			c := color.GrayModel.Convert(gray.At(bounds.Min.X+col, bounds.Min.Y+row)).(color.Gray)
			if c.Y >= 240 {
				thresholded[row][col] = 255
			}
		}
	}

	blurRadius := int(math.Round(opts.AgentRadius / opts.MetersPerPixel))
	blurred := boxBlur(thresholded, blurRadius)

	navigable := make([][]bool, height)
	infoMap := make([][]byte, height)
	for row := 0; row < height; row++ {
		navigable[row] = make([]bool, width)
		infoMap[row] = make([]byte, width)
		for col := 0; col < width; col++ {
			navigable[row][col] = blurred[row][col] == 255
			if !navigable[row][col] {
				infoMap[row][col] = envadapter.CellObstacle
			}
		}
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	return &Adapter{
		metersPerPixel: opts.MetersPerPixel,
		navigable:      navigable,
		infoMap:        infoMap,
		windowSize:     windowSizeCells(opts.NearThreshold, opts.MetersPerPixel),
		rng:            rng,
	}, nil
}

var (
	_ envadapter.Adapter     = (*Adapter)(nil)
	_ envadapter.LocalMapper = (*Adapter)(nil)
)

// windowSizeCells computes the APF local window's side length in pixels,
// scaling the planner's near-threshold by 1.2x (matching the original's
// headroom factor) and rounding up: a window one pixel too small can clip
// cells the planner still considers in-reach, while one pixel too large
// only costs a cheap extra ring of lookups.
func windowSizeCells(nearThreshold, metersPerPixel float64) int {
	return int(math.Ceil((nearThreshold * 1.2) / metersPerPixel))
}

// boxBlur averages each cell over a (2*radius+1) square window, excluding
// out-of-bounds neighbors from the average rather than padding them. This
// mirrors a box filter's obstacle-inflation effect well enough for
// navigability purposes without pulling in a dedicated image-convolution
// routine (imaging only exposes a Gaussian Blur, whose fractional falloff
// would never settle back to an exact 255 for the equality test below).
func boxBlur(grid [][]uint8, radius int) [][]uint8 {
	height := len(grid)
	if height == 0 || radius <= 0 {
		out := make([][]uint8, height)
		for i := range grid {
			out[i] = append([]uint8(nil), grid[i]...)
		}
		return out
	}
	width := len(grid[0])
	out := make([][]uint8, height)
	for row := 0; row < height; row++ {
		out[row] = make([]uint8, width)
		for col := 0; col < width; col++ {
			var sum, count int
			for dr := -radius; dr <= radius; dr++ {
				r := row + dr
				if r < 0 || r >= height {
					continue
				}
				for dc := -radius; dc <= radius; dc++ {
					c := col + dc
					if c < 0 || c >= width {
						continue
					}
					sum += int(grid[r][c])
					count++
				}
			}
			out[row][col] = uint8(sum / count)
		}
	}
	return out
}

func (a *Adapter) pixelOf(p pose.Pose) (row, col int) {
	return int(p.Y() / a.metersPerPixel), int(p.X() / a.metersPerPixel)
}

// IsNavigable implements envadapter.Adapter. maxYDelta is accepted for
// interface conformance but unused: a raster map is flat.
func (a *Adapter) IsNavigable(p pose.Pose, _ float64) bool {
	row, col := a.pixelOf(p)
	if row < 0 || row >= len(a.navigable) || col < 0 || col >= len(a.navigable[0]) {
		return false
	}
	return a.navigable[row][col]
}

// SampleRandomNavigable implements envadapter.Adapter. It draws uniformly
// over the full image extent without filtering for navigability, matching
// the original raster adapter; the planner discards non-navigable draws.
func (a *Adapter) SampleRandomNavigable() pose.Pose {
	height, width := len(a.navigable), len(a.navigable[0])
	x := a.rng.Float64() * float64(width) * a.metersPerPixel
	y := a.rng.Float64() * float64(height) * a.metersPerPixel
	return pose.New(x, 0, y)
}

// Snap implements envadapter.Adapter: the identity, since a flat raster map
// needs no elevation snapping.
func (a *Adapter) Snap(x, z, y float64) pose.Pose {
	return pose.New(x, z, y)
}

// ShortestPathWaypoints implements envadapter.Adapter: always empty, since
// raster maps have no native pathfinder.
func (a *Adapter) ShortestPathWaypoints(start, goal pose.Pose) []pose.Pose {
	return nil
}

// Bounds implements envadapter.Adapter: always the origin, since pixel (0,0)
// is already the map's minimum corner.
func (a *Adapter) Bounds(startZ float64) (xMin, yMin float64) {
	return 0, 0
}

// LocalWindow implements envadapter.LocalMapper.
func (a *Adapter) LocalWindow(center pose.Pose, size int) [][]byte {
	half := size / 2
	ci, cj := a.pixelOf(center)
	window := make([][]byte, size)
	for di := 0; di < size; di++ {
		window[di] = make([]byte, size)
		mi := ci - half + di
		for dj := 0; dj < size; dj++ {
			mj := cj - half + dj
			if mi < 0 || mi >= len(a.infoMap) || mj < 0 || mj >= len(a.infoMap[0]) {
				window[di][dj] = envadapter.CellObstacle
				continue
			}
			window[di][dj] = a.infoMap[mi][mj]
		}
	}
	return window
}

// MarkNode implements envadapter.LocalMapper.
func (a *Adapter) MarkNode(pos pose.Pose) {
	row, col := a.pixelOf(pos)
	if row < 0 || row >= len(a.infoMap) || col < 0 || col >= len(a.infoMap[0]) {
		return
	}
	a.infoMap[row][col] = envadapter.CellNode
}

// MarkGoal implements envadapter.LocalMapper.
func (a *Adapter) MarkGoal(pos pose.Pose) {
	row, col := a.pixelOf(pos)
	if row < 0 || row >= len(a.infoMap) || col < 0 || col >= len(a.infoMap[0]) {
		return
	}
	a.infoMap[row][col] = envadapter.CellGoal
}

// CellSize implements envadapter.LocalMapper.
func (a *Adapter) CellSize() float64 {
	return a.metersPerPixel
}

// WindowSize implements envadapter.LocalMapper.
func (a *Adapter) WindowSize() int {
	return a.windowSize
}
