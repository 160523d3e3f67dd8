package rrtplan

import (
	"context"
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/basemotion/rrtapf/config"
	"github.com/basemotion/rrtapf/costmodel"
	"github.com/basemotion/rrtapf/logging"
	"github.com/basemotion/rrtapf/pose"
)

// fakeAdapter is a minimal envadapter.Adapter over an open plane: every
// point is navigable, Snap is the identity projection, and the caller
// supplies the sequence SampleRandomNavigable cycles through so tests stay
// deterministic regardless of how the seeded sampler's draws land.
type fakeAdapter struct {
	samples []pose.Pose
	next    int
	blocked func(pose.Pose) bool
}

func (a *fakeAdapter) IsNavigable(p pose.Pose, _ float64) bool {
	if a.blocked != nil && a.blocked(p) {
		return false
	}
	return !p.IsNaN()
}

func (a *fakeAdapter) SampleRandomNavigable() pose.Pose {
	if len(a.samples) == 0 {
		return pose.New(0, 0, 0)
	}
	p := a.samples[a.next%len(a.samples)]
	a.next++
	return p
}

func (a *fakeAdapter) Snap(x, z, y float64) pose.Pose { return pose.New(x, z, y) }

func (a *fakeAdapter) ShortestPathWaypoints(start, goal pose.Pose) []pose.Pose { return nil }

func (a *fakeAdapter) Bounds(startZ float64) (xMin, yMin float64) { return -100, -100 }

func testConfig() *config.Config {
	return &config.Config{
		MaxLinearVelocity:   1.0,
		NearThreshold:       1.0,
		MaxDistance:         0.5,
		RRTType:             config.Shortest,
		VisualizeIterations: 50,
	}
}

func newTestPlanner(t *testing.T, adapter *fakeAdapter, start, goal pose.Pose, seed uint64) *Planner {
	t.Helper()
	dir := t.TempDir()
	p, err := NewPlanner(testConfig(), adapter, logging.NewDevelopment(), dir, "run", start, goal, seed)
	test.That(t, err, test.ShouldBeNil)
	return p
}

func TestMaxPointLeavesShortEdgeUnchanged(t *testing.T) {
	a := pose.New(0, 0, 0)
	b := pose.New(0.2, 0, 0)
	got, changed := maxPoint(a, b, 0.5)
	test.That(t, changed, test.ShouldBeFalse)
	test.That(t, got.X(), test.ShouldAlmostEqual, b.X())
}

func TestMaxPointTruncatesLongEdge(t *testing.T) {
	a := pose.New(0, 0, 0)
	b := pose.New(4, 0, 0)
	got, changed := maxPoint(a, b, 1.0)
	test.That(t, changed, test.ShouldBeTrue)
	test.That(t, got.X(), test.ShouldAlmostEqual, 1.0)
}

func TestMaxPointRandEqualsClosestIsUnchanged(t *testing.T) {
	a := pose.New(1, 0, 1)
	got, changed := maxPoint(a, a, 0.5)
	test.That(t, changed, test.ShouldBeFalse)
	test.That(t, got.X(), test.ShouldAlmostEqual, a.X())
	test.That(t, got.Y(), test.ShouldAlmostEqual, a.Y())
}

func TestCombineSeedVariesByIteration(t *testing.T) {
	s1 := combineSeed(42, 1)
	s2 := combineSeed(42, 2)
	test.That(t, s1, test.ShouldNotEqual, s2)
}

func TestCombineSeedDeterministic(t *testing.T) {
	test.That(t, combineSeed(7, 100), test.ShouldEqual, combineSeed(7, 100))
}

func TestTreeCostFromStartMemoizesAlongParentChain(t *testing.T) {
	registry := pose.NewRegistry()
	rootID := registry.Intern(pose.New(0, 0, 0))
	aID := registry.Intern(pose.New(1, 0, 0))
	bID := registry.Intern(pose.New(2, 0, 0))

	tr := newTree(registry, rootID)
	tr.insert(aID, rootID, 1.0)
	tr.insert(bID, aID, 1.0)

	model := costmodel.NewShortest(1.0, func(pose.Pose) bool { return true }, costmodel.DefaultResolution)
	test.That(t, tr.costFromStart(bID, model), test.ShouldAlmostEqual, 2.0)
}

func TestTreeCostFromStartFillsMissingEdgeFromModel(t *testing.T) {
	registry := pose.NewRegistry()
	rootID := registry.Intern(pose.New(0, 0, 0))
	aID := registry.Intern(pose.New(3, 0, 4))

	tr := newTree(registry, rootID)
	delete(tr.costFromParent, rootID)
	tr.parent[aID] = rootID
	// cost_from_parent for aID was never recorded, e.g. after a checkpoint
	// reload; costFromStart must lazily fill it via the model.
	model := costmodel.NewShortest(1.0, func(pose.Pose) bool { return true }, costmodel.DefaultResolution)
	test.That(t, tr.costFromStart(aID, model), test.ShouldAlmostEqual, 5.0)
}

func TestTreeBestPathNilWhenGoalUnset(t *testing.T) {
	registry := pose.NewRegistry()
	rootID := registry.Intern(pose.New(0, 0, 0))
	tr := newTree(registry, rootID)
	test.That(t, tr.bestPath(0, pose.New(1, 0, 1)), test.ShouldBeNil)
}

func TestPlannerSingleStepInsertsNode(t *testing.T) {
	start := pose.New(0, 0, 0)
	goal := pose.New(10, 0, 10)
	adapter := &fakeAdapter{samples: []pose.Pose{pose.New(0.1, 0, 0.1)}}
	p := newTestPlanner(t, adapter, start, goal, 1)

	test.That(t, p.registry.Len(), test.ShouldEqual, 1)
	test.That(t, p.Run(context.Background(), 1), test.ShouldBeNil)
	test.That(t, p.registry.Len(), test.ShouldBeGreaterThan, 1)
}

func TestPlannerUnreachableGoalLeavesBestGoalUnset(t *testing.T) {
	start := pose.New(0, 0, 0)
	goal := pose.New(10, 0, 10)
	// every sample lands far short of the goal neighborhood and the goal
	// itself is walled off, so no node should ever reach it.
	adapter := &fakeAdapter{
		samples: []pose.Pose{pose.New(0.1, 0, 0.1), pose.New(0.2, 0, 0.05)},
		blocked: func(p pose.Pose) bool { return p.X() > 5 || p.Y() > 5 },
	}
	p := newTestPlanner(t, adapter, start, goal, 7)
	test.That(t, p.Run(context.Background(), 20), test.ShouldBeNil)
	test.That(t, p.PathFound(), test.ShouldBeFalse)
	test.That(t, p.BestPath(), test.ShouldBeNil)
	test.That(t, math.IsInf(p.BestCost(), 1), test.ShouldBeTrue)
}

func TestPlannerRunRespectsContextCancellation(t *testing.T) {
	start := pose.New(0, 0, 0)
	goal := pose.New(10, 0, 10)
	adapter := &fakeAdapter{samples: []pose.Pose{pose.New(0.1, 0, 0.1)}}
	p := newTestPlanner(t, adapter, start, goal, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Run(ctx, 1000)
	test.That(t, err, test.ShouldEqual, context.Canceled)
}

// TestPlannerCheckpointReloadRestoresTreeAndIteration verifies the
// reload mechanism itself: a fresh Planner pointed at an existing
// checkpoint directory reconstructs the same parent/registry structure
// that was written, and resumes numbering from iteration+1 (spec.md §8
// "Checkpoint resume"). Per-iteration reseeding (combineSeed) is what
// makes that resumed numbering independent of how many random draws the
// pre-checkpoint run consumed; this test only exercises the disk
// round-trip, since reproducing attempt-for-attempt equivalence between
// two separately driven fakeAdapter instances isn't a meaningful thing to
// assert without also controlling their internal retry counts.
func TestPlannerCheckpointReloadRestoresTreeAndIteration(t *testing.T) {
	start := pose.New(0, 0, 0)
	goal := pose.New(10, 0, 10)
	samples := []pose.Pose{pose.New(0.3, 0, 0.1), pose.New(0.6, 0, 0.4), pose.New(1.0, 0, 0.8)}

	dir := t.TempDir()
	original, err := NewPlanner(testConfig(), &fakeAdapter{samples: samples}, logging.NewDevelopment(), dir, "run", start, goal, 99)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, original.Run(context.Background(), 3), test.ShouldBeNil)
	test.That(t, original.checkpointTick(3), test.ShouldBeNil)
	wantLen := original.registry.Len()

	reloaded, err := NewPlanner(testConfig(), &fakeAdapter{samples: samples}, logging.NewDevelopment(), dir, "run", start, goal, 99)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, reloaded.startIteration, test.ShouldEqual, 4)
	test.That(t, reloaded.registry.Len(), test.ShouldEqual, wantLen)
	test.That(t, len(reloaded.tree.parent), test.ShouldEqual, len(original.tree.parent))
}
