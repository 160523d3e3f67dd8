package apf

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/basemotion/rrtapf/envadapter"
	"github.com/basemotion/rrtapf/pose"
)

func TestDistanceTransformZeroAtMaskedCells(t *testing.T) {
	mask := [][]bool{
		{false, false, false},
		{false, true, false},
		{false, false, false},
	}
	d := distanceTransform(mask)
	test.That(t, d[1][1], test.ShouldAlmostEqual, 0.0)
	test.That(t, d[0][0], test.ShouldAlmostEqual, math.Sqrt2)
	test.That(t, d[0][1], test.ShouldAlmostEqual, 1.0)
	test.That(t, d[1][0], test.ShouldAlmostEqual, 1.0)
}

func TestDistanceTransformAllFreeIsLarge(t *testing.T) {
	mask := [][]bool{{false, false}, {false, false}}
	d := distanceTransform(mask)
	for _, row := range d {
		for _, v := range row {
			test.That(t, v, test.ShouldBeGreaterThan, 100.0)
		}
	}
}

func TestSampleAllMaskedReturnsCenterUnchanged(t *testing.T) {
	size := 5
	window := make([][]byte, size)
	for i := range window {
		window[i] = make([]byte, size)
	}
	center := pose.New(10, 2, 10)
	goal := pose.New(100, 0, 100)
	// maxDistance of 0 masks every cell except the center itself, and the
	// center's own potential is finite, so we instead use a negative
	// maxDistance, which every cell's distance from the center (>= 0) exceeds.
	got := Sample(window, center, goal, 1.0, -1.0, DefaultParams())
	test.That(t, got.X(), test.ShouldAlmostEqual, center.X())
	test.That(t, got.Y(), test.ShouldAlmostEqual, center.Y())
	test.That(t, got.Z(), test.ShouldAlmostEqual, center.Z())
}

func TestSamplePrefersCellAwayFromObstacleTowardGoal(t *testing.T) {
	size := 5
	window := make([][]byte, size)
	for i := range window {
		window[i] = make([]byte, size)
	}
	// obstacle directly at the window center.
	window[2][2] = envadapter.CellObstacle

	center := pose.New(0, 0, 0)
	// goal far to the +x side: the chosen cell should lean +x, away from
	// the centered obstacle.
	goal := pose.New(100, 0, 0)

	got := Sample(window, center, goal, 1.0, 10.0, DefaultParams())
	test.That(t, got.X(), test.ShouldBeGreaterThan, center.X())
}

func TestSampleEmptyWindowReturnsCenter(t *testing.T) {
	got := Sample(nil, pose.New(1, 2, 3), pose.New(4, 5, 6), 1.0, 10.0, DefaultParams())
	test.That(t, got.X(), test.ShouldAlmostEqual, 1.0)
	test.That(t, got.Z(), test.ShouldAlmostEqual, 2.0)
	test.That(t, got.Y(), test.ShouldAlmostEqual, 3.0)
}
