package raster

import (
	"testing"

	"go.viam.com/test"

	"github.com/basemotion/rrtapf/envadapter"
	"github.com/basemotion/rrtapf/pose"
)

func TestBoxBlurInflatesObstacle(t *testing.T) {
	grid := [][]uint8{
		{255, 255, 255, 255, 255},
		{255, 255, 255, 255, 255},
		{255, 255, 0, 255, 255},
		{255, 255, 255, 255, 255},
		{255, 255, 255, 255, 255},
	}
	blurred := boxBlur(grid, 1)
	// every cell in the 3x3 neighborhood of the obstacle now sees a
	// non-255 average, since the obstacle pixel pulls the mean down.
	for r := 1; r <= 3; r++ {
		for c := 1; c <= 3; c++ {
			test.That(t, blurred[r][c], test.ShouldNotEqual, uint8(255))
		}
	}
	// corners untouched by the blur radius remain fully free.
	test.That(t, blurred[0][0], test.ShouldEqual, uint8(255))
}

func TestBoxBlurZeroRadiusIsIdentity(t *testing.T) {
	grid := [][]uint8{{0, 255}, {255, 0}}
	blurred := boxBlur(grid, 0)
	for r := range grid {
		for c := range grid[r] {
			test.That(t, blurred[r][c], test.ShouldEqual, grid[r][c])
		}
	}
}

func TestWindowSizeCellsRoundsUp(t *testing.T) {
	// 1.0 * 1.2 / 0.7 = 1.714285..., which floors to 1 but must ceil to 2.
	test.That(t, windowSizeCells(1.0, 0.7), test.ShouldEqual, 2)
}

func TestWindowSizeCellsExactRatioDoesNotOvershoot(t *testing.T) {
	// 1.0 * 1.2 / 0.6 = 2.0 exactly; ceil of an exact integer must not add
	// a spurious extra cell.
	test.That(t, windowSizeCells(1.0, 0.6), test.ShouldEqual, 2)
}

func buildTestAdapter() *Adapter {
	height, width := 10, 10
	navigable := make([][]bool, height)
	infoMap := make([][]byte, height)
	for r := 0; r < height; r++ {
		navigable[r] = make([]bool, width)
		infoMap[r] = make([]byte, width)
		for c := 0; c < width; c++ {
			navigable[r][c] = true
		}
	}
	navigable[5][5] = false
	infoMap[5][5] = envadapter.CellObstacle
	return &Adapter{
		metersPerPixel: 1.0,
		navigable:      navigable,
		infoMap:        infoMap,
		windowSize:     5,
	}
}

func TestIsNavigableChecksPixel(t *testing.T) {
	a := buildTestAdapter()
	test.That(t, a.IsNavigable(pose.New(5.5, 0, 5.5), 0), test.ShouldBeFalse)
	test.That(t, a.IsNavigable(pose.New(0.0, 0, 0.0), 0), test.ShouldBeTrue)
}

func TestIsNavigableOutOfBoundsIsFalse(t *testing.T) {
	a := buildTestAdapter()
	test.That(t, a.IsNavigable(pose.New(100, 0, 100), 0), test.ShouldBeFalse)
}

func TestLocalWindowMarksOutOfBoundsAsObstacle(t *testing.T) {
	a := buildTestAdapter()
	window := a.LocalWindow(pose.New(0, 0, 0), 4)
	test.That(t, window[0][0], test.ShouldEqual, envadapter.CellObstacle)
}

func TestMarkNodeAndMarkGoalUpdateInfoMap(t *testing.T) {
	a := buildTestAdapter()
	a.MarkNode(pose.New(2, 0, 2))
	a.MarkGoal(pose.New(3, 0, 3))
	test.That(t, a.infoMap[2][2], test.ShouldEqual, envadapter.CellNode)
	test.That(t, a.infoMap[3][3], test.ShouldEqual, envadapter.CellGoal)
}

func TestSnapIsIdentity(t *testing.T) {
	a := buildTestAdapter()
	p := a.Snap(1, 2, 3)
	test.That(t, p.X(), test.ShouldEqual, 1.0)
	test.That(t, p.Z(), test.ShouldEqual, 2.0)
	test.That(t, p.Y(), test.ShouldEqual, 3.0)
}

func TestBoundsIsOrigin(t *testing.T) {
	a := buildTestAdapter()
	xMin, yMin := a.Bounds(0)
	test.That(t, xMin, test.ShouldEqual, 0.0)
	test.That(t, yMin, test.ShouldEqual, 0.0)
}
