package navmesh

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/basemotion/rrtapf/pose"
)

type fakePathfinder struct {
	navigable  bool
	randomPt   r3.Vector
	snapResult r3.Vector
	snapOK     bool
	pathPts    []r3.Vector
	pathOK     bool
	vertices   []r3.Vector
}

func (f *fakePathfinder) IsNavigable(r3.Vector, float64) bool { return f.navigable }
func (f *fakePathfinder) RandomNavigablePoint() r3.Vector     { return f.randomPt }
func (f *fakePathfinder) SnapPoint(r3.Vector) r3.Vector {
	if !f.snapOK {
		return r3.Vector{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	return f.snapResult
}
func (f *fakePathfinder) FindPath(r3.Vector, r3.Vector) ([]r3.Vector, bool) {
	return f.pathPts, f.pathOK
}
func (f *fakePathfinder) Vertices() []r3.Vector { return f.vertices }

func TestSnapReturnsNaNPoseOnFailure(t *testing.T) {
	a := New(&fakePathfinder{snapOK: false})
	p := a.Snap(1, 2, 3)
	test.That(t, p.IsNaN(), test.ShouldBeTrue)
}

func TestSnapReturnsPoseOnSuccess(t *testing.T) {
	a := New(&fakePathfinder{snapOK: true, snapResult: r3.Vector{X: 1, Y: 3, Z: 2}})
	p := a.Snap(9, 9, 9)
	test.That(t, p.X(), test.ShouldEqual, 1.0)
	test.That(t, p.Z(), test.ShouldEqual, 2.0)
	test.That(t, p.Y(), test.ShouldEqual, 3.0)
}

func TestShortestPathWaypointsEmptyWhenUnreachable(t *testing.T) {
	a := New(&fakePathfinder{pathOK: false})
	waypoints := a.ShortestPathWaypoints(pose.New(0, 0, 0), pose.New(1, 0, 1))
	test.That(t, len(waypoints), test.ShouldEqual, 0)
}

func TestBoundsFiltersToStartPlane(t *testing.T) {
	a := New(&fakePathfinder{vertices: []r3.Vector{
		{X: 5, Y: 5, Z: 0},
		{X: -3, Y: -2, Z: 0},
		{X: -100, Y: -100, Z: 50}, // different floor, excluded
	}})
	xMin, yMin := a.Bounds(0)
	test.That(t, xMin, test.ShouldEqual, -3.0)
	test.That(t, yMin, test.ShouldEqual, -2.0)
}

func TestIsNavigableDelegatesToPathfinder(t *testing.T) {
	a := New(&fakePathfinder{navigable: true})
	test.That(t, a.IsNavigable(pose.New(0, 0, 0), 0.5), test.ShouldBeTrue)
}
