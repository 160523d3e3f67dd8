// Package rrtplan implements the single-threaded RRT*-with-APF-bias
// planner core (spec.md §4.6): it grows a tree rooted at a start pose
// toward a goal pose over a navigable environment, using a configurable
// traversal-time cost model to choose parents and rewire, and periodically
// checkpoints its state to disk.
package rrtplan

import (
	"context"
	"fmt"
	"math"

	"github.com/basemotion/rrtapf/apf"
	"github.com/basemotion/rrtapf/checkpoint"
	"github.com/basemotion/rrtapf/config"
	"github.com/basemotion/rrtapf/costmodel"
	"github.com/basemotion/rrtapf/envadapter"
	"github.com/basemotion/rrtapf/gridindex"
	"github.com/basemotion/rrtapf/logging"
	"github.com/basemotion/rrtapf/pose"
)

// defaultMaxYDelta is the vertical tolerance used for navigability checks
// against new samples, matching the original's _is_navigable default.
const defaultMaxYDelta = 0.5

// goalTrackingPeriod is how often (in iterations) the best-goal-node is
// recomputed, matching the original's "iteration % 50 == 0" cadence.
const goalTrackingPeriod = 50

// maxAttemptsPerIteration bounds the inner "keep sampling until one node is
// inserted" loop, an implementation-defined cap per spec.md §4.6 so a
// pathological map (e.g. the unreachable-goal scenario) cannot spin an
// iteration forever.
const maxAttemptsPerIteration = 2000

// checkpointCostKey matches the original's fixed cost_key attribute.
const checkpointCostKey = "best_path_time"

// VisualizeFunc is an optional rendering hook invoked on the same cadence
// as the checkpoint write (spec.md §4.6 supplemental feature: the original
// writes a PNG every visualize_iterations; this keeps that extension point
// without the core depending on an image library).
type VisualizeFunc func(iteration int, path []pose.Pose, bestCost float64)

// Planner grows a single RRT* tree over an environment adapter.
type Planner struct {
	cfg         *config.Config
	adapter     envadapter.Adapter
	localMapper envadapter.LocalMapper
	model       costmodel.Model
	logger      *logging.Logger

	registry *pose.Registry
	grid     *gridindex.GridIndex
	tree     *tree
	seed     uint64

	start, goal pose.Pose
	startID     pose.ID
	bestGoalID  pose.ID
	pathFound   bool

	shortestPathWaypoints []pose.Pose

	checkpointWriter *checkpoint.Writer
	startIteration   int

	VisualizeFunc VisualizeFunc
}

// NewPlanner builds a Planner rooted at start and aimed at goal. If
// checkpointDir already contains a checkpoint, the tree and iteration
// counter are reloaded from it (spec.md §4.6, §7: a malformed or unreadable
// checkpoint is logged at Warn and the planner starts fresh from iteration
// 0 rather than failing construction).
func NewPlanner(
	cfg *config.Config,
	adapter envadapter.Adapter,
	logger *logging.Logger,
	checkpointDir string,
	basename string,
	start, goal pose.Pose,
	seed uint64,
) (*Planner, error) {
	registry := pose.NewRegistry()
	startID := registry.Intern(start)

	localMapper, _ := adapter.(envadapter.LocalMapper)
	model := buildModel(cfg, adapter)

	xMin, yMin := adapter.Bounds(start.Z())
	grid := gridindex.New(registry, cfg.NearThreshold, xMin, yMin)
	grid.Insert(startID)

	t := newTree(registry, startID)

	p := &Planner{
		cfg:                   cfg,
		adapter:               adapter,
		localMapper:           localMapper,
		model:                 model,
		logger:                logger,
		registry:              registry,
		grid:                  grid,
		tree:                  t,
		seed:                  seed,
		start:                 start,
		goal:                  goal,
		startID:               startID,
		shortestPathWaypoints: adapter.ShortestPathWaypoints(start, goal),
		checkpointWriter:      checkpoint.NewWriter(checkpointDir, basename),
	}

	if localMapper != nil {
		localMapper.MarkGoal(goal)
	}

	p.loadCheckpoint(checkpointDir)

	return p, nil
}

// buildModel constructs the configured costmodel.Model, binding its
// Navigable callback to the adapter with the planner's y-delta tolerance.
func buildModel(cfg *config.Config, adapter envadapter.Adapter) costmodel.Model {
	navigable := func(p pose.Pose) bool { return adapter.IsNavigable(p, defaultMaxYDelta) }
	switch cfg.RRTType {
	case config.PointTurn:
		return costmodel.NewPointTurn(cfg.MaxLinearVelocity, cfg.MaxAngularVelocityRadians(), navigable, costmodel.DefaultResolution)
	case config.Unicycle:
		return costmodel.NewUnicycle(cfg.MaxLinearVelocity, cfg.MaxAngularVelocityRadians(), navigable, costmodel.DefaultResolution)
	default:
		return costmodel.NewShortest(cfg.MaxLinearVelocity, navigable, costmodel.DefaultResolution)
	}
}

func (p *Planner) loadCheckpoint(checkpointDir string) {
	reader := checkpoint.NewReader(checkpointDir)
	doc, iteration, err := reader.Latest()
	if err != nil {
		if err != checkpoint.ErrNoCheckpoint {
			p.logger.CWarnf(context.Background(), "rrtplan: checkpoint load failed, starting fresh: %v", err)
		}
		return
	}

	ids := make(map[string]pose.ID, len(doc.Graph))
	for key := range doc.Graph {
		parsed, err := pose.ParseKey(key)
		if err != nil {
			p.logger.CWarnf(context.Background(), "rrtplan: skipping malformed checkpoint key %q: %v", key, err)
			continue
		}
		ids[key] = p.registry.Intern(parsed)
	}
	for child, parent := range doc.Graph {
		childID, ok := ids[child]
		if !ok || childID == p.startID {
			continue
		}
		if parent == "" {
			continue
		}
		parentID, ok := ids[parent]
		if !ok {
			continue
		}
		p.tree.parent[childID] = parentID
		p.grid.Insert(childID)
	}
	if doc.BestGoalNode != "" {
		if id, ok := ids[doc.BestGoalNode]; ok {
			p.bestGoalID = id
		}
	}
	p.startIteration = iteration + 1
	p.logger.CDebugf(context.Background(), "rrtplan: resumed from checkpoint at iteration %d", iteration)
}

// Run executes the planner for iterations beyond whatever checkpointed
// iteration it resumed from, returning early if ctx is canceled between
// iterations.
func (p *Planner) Run(ctx context.Context, iterations int) error {
	for iteration := p.startIteration; iteration <= iterations; iteration++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.step(iteration)

		if iteration > 0 && iteration%p.visualizeIterations() == 0 {
			if err := p.checkpointTick(iteration); err != nil {
				return err
			}
		}
	}
	return nil
}

// visualizeIterations is the configured checkpoint/visualization cadence,
// defaulting to 50 if unset (config.Decode already applies this default;
// this guards callers that build a Config by hand).
func (p *Planner) visualizeIterations() int {
	if p.cfg.VisualizeIterations <= 0 {
		return 50
	}
	return p.cfg.VisualizeIterations
}

// step runs the inner sampling loop until one new node is inserted, or
// abandons after maxAttemptsPerIteration tries. Each iteration draws from
// its own independent random stream (see combineSeed) rather than a single
// stream shared across the whole run.
func (p *Planner) step(iteration int) {
	s := newSampler(combineSeed(p.seed, iteration))
	for attempt := 0; attempt < maxAttemptsPerIteration; attempt++ {
		if p.tryInsertOne(s, iteration) {
			return
		}
	}
}

// tryInsertOne runs one pass of sample -> steer -> APF refine -> neighbor
// selection -> parent choice -> insert -> rewire -> goal tracking. It
// returns true iff a node was inserted.
func (p *Planner) tryInsertOne(s *sampler, iteration int) bool {
	randPt, ok := p.sampleCandidate(s)
	if !ok {
		return false
	}

	// Per spec.md §9's "open questions" resolution: closest_pt must always
	// be recomputed fresh against rand before the APF branch, regardless of
	// which sampling branch produced rand.
	closestID, err := p.grid.Nearest(randPt)
	if err != nil {
		return false
	}
	closestPt := p.registry.Lookup(closestID)

	if p.localMapper != nil && s.float64() < 0.5 {
		randPt = p.refineWithAPF(closestPt)
	}

	nearbyIDs := p.neighborsOf(randPt)
	if len(nearbyIDs) == 0 {
		return false
	}

	bestParentIdx, bestCostFromParent, bestHeading, minCost := p.chooseParent(nearbyIDs, randPt)
	if math.IsInf(minCost, 1) {
		return false
	}

	randPt = randPt.WithHeading(bestHeading)
	randID := p.registry.Intern(randPt)
	parentID := nearbyIDs[bestParentIdx]
	p.tree.insert(randID, parentID, bestCostFromParent)
	p.grid.Insert(randID)
	if p.localMapper != nil {
		p.localMapper.MarkNode(randPt)
	}

	p.rewire(randID, randPt, nearbyIDs, bestParentIdx)
	p.trackGoal(randPt, iteration)

	return true
}

// sampleCandidate implements the sample-source policy (spec.md §4.6): with
// probability 0.2, or whenever no baseline waypoints exist and no
// goal-reaching node has been found, sample uniformly at random and steer
// toward the nearest tree node; otherwise sample near a baseline waypoint
// (no goal-reaching node yet) or near a node of the current best path.
func (p *Planner) sampleCandidate(s *sampler) (pose.Pose, bool) {
	sampleRandom := s.float64() < 0.2
	noPathInfo := len(p.shortestPathWaypoints) == 0 && p.bestGoalID == 0

	if sampleRandom || noPathInfo {
		return p.sampleUniform(s)
	}
	return p.samplePathBiased(s)
}

func (p *Planner) sampleUniform(s *sampler) (pose.Pose, bool) {
	randPt := p.adapter.SampleRandomNavigable()
	if math.Abs(randPt.Z()-p.start.Z()) > 0.8 {
		return pose.Pose{}, false
	}
	return p.steerFromNearest(randPt)
}

func (p *Planner) samplePathBiased(s *sampler) (pose.Pose, bool) {
	var seedPt pose.Pose
	if p.bestGoalID == 0 {
		seedPt = p.shortestPathWaypoints[s.intn(len(p.shortestPathWaypoints))]
	} else {
		path := p.tree.pathToStart(p.bestGoalID)
		seedPt = p.registry.Lookup(path[s.intn(len(path))])
	}

	x, y := polarOffset(seedPt, s)
	candidate := p.adapter.Snap(x, seedPt.Z(), y)
	if candidate.IsNaN() || !p.adapter.IsNavigable(candidate, defaultMaxYDelta) {
		return pose.Pose{}, false
	}

	if p.bestGoalID == 0 {
		return p.steerFromNearest(candidate)
	}
	return candidate, true
}

// steerFromNearest truncates candidate toward the tree's nearest node if it
// exceeds max_distance, re-snapping on raster adapters (spec.md §4.6: "on
// raster adapter, re-snap after truncation").
func (p *Planner) steerFromNearest(candidate pose.Pose) (pose.Pose, bool) {
	nearestID, err := p.grid.Nearest(candidate)
	if err != nil {
		return pose.Pose{}, false
	}
	nearest := p.registry.Lookup(nearestID)

	steered, changed := maxPoint(nearest, candidate, p.cfg.MaxDistance)
	if changed && p.localMapper != nil {
		steered = p.adapter.Snap(steered.X(), steered.Z(), steered.Y())
	}
	if steered.IsNaN() {
		return pose.Pose{}, false
	}
	if !changed || p.adapter.IsNavigable(steered, defaultMaxYDelta) {
		return steered, true
	}
	return pose.Pose{}, false
}

// refineWithAPF replaces rand with the APF argmin over a local window
// centered on closest, per spec.md §4.5/§4.6.
func (p *Planner) refineWithAPF(closest pose.Pose) pose.Pose {
	windowSize := p.localMapper.WindowSize()
	window := p.localMapper.LocalWindow(closest, windowSize)
	return apf.Sample(window, closest, p.goal, p.localMapper.CellSize(), p.cfg.MaxDistance, apf.DefaultParams())
}

// neighborsOf returns the tree nodes within near_threshold of rand that
// have a feasible path to it under the configured cost model's motion
// primitive (spec.md §4.6 "Neighborhood selection").
func (p *Planner) neighborsOf(rand pose.Pose) []pose.ID {
	var neighbors []pose.ID
	for _, id := range p.grid.Near(rand) {
		candidate := p.registry.Lookup(id)
		if pose.EuclidXY(rand, candidate) >= p.cfg.NearThreshold {
			continue
		}
		if candidate.X() == rand.X() && candidate.Y() == rand.Y() {
			continue
		}
		if !p.model.PathExists(candidate, rand) {
			continue
		}
		neighbors = append(neighbors, id)
	}
	return neighbors
}

// chooseParent picks the neighbor minimizing cost_from_start(p) +
// cost_from_to(p, rand, true), per spec.md §4.6 "Parent choice".
func (p *Planner) chooseParent(neighbors []pose.ID, rand pose.Pose) (bestIdx int, bestCostFromParent, bestHeading, minCost float64) {
	minCost = math.Inf(1)
	for idx, id := range neighbors {
		parentPose := p.registry.Lookup(id)
		costFromParent, heading := p.model.CostTo(parentPose, rand, true)
		newCost := p.tree.costFromStart(id, p.model) + costFromParent
		if newCost < minCost {
			minCost = newCost
			bestIdx = idx
			bestCostFromParent = costFromParent
			bestHeading = heading
		}
	}
	return bestIdx, bestCostFromParent, bestHeading, minCost
}

// rewire reassigns any remaining neighbor (other than the root and the
// neighbor just chosen as parent) whose cost-from-start would strictly
// improve by routing through the newly inserted node, per spec.md §4.6
// "Rewire".
func (p *Planner) rewire(randID pose.ID, rand pose.Pose, neighbors []pose.ID, parentIdx int) {
	randCost := p.tree.costFromStart(randID, p.model)
	for idx, id := range neighbors {
		if idx == parentIdx || id == p.startID {
			continue
		}
		candidate := p.registry.Lookup(id)
		costFromNew, _ := p.model.CostTo(rand, candidate, true)
		newCost := randCost + costFromNew
		if newCost < p.tree.costFromStart(id, p.model) && p.model.PathExists(rand, candidate) {
			p.tree.rewire(id, randID, costFromNew)
		}
	}
}

// trackGoal marks "path found" the first time rand reaches the goal
// neighborhood, and on the periodic cadence recomputes the best-goal-node
// by scanning the goal's neighborhood, per spec.md §4.6 "Goal tracking".
func (p *Planner) trackGoal(rand pose.Pose, iteration int) {
	if !p.pathFound && pose.EuclidXY(rand, p.goal) < p.cfg.NearThreshold && p.model.PathExists(rand, p.goal) {
		p.pathFound = true
		p.logger.CDebugf(context.Background(), "rrtplan: path found at iteration %d", iteration)
	}

	if iteration%goalTrackingPeriod != 0 && iteration%p.visualizeIterations() != 0 {
		return
	}

	best := p.bestGoalID
	bestCost := math.Inf(1)
	if best != 0 {
		toGoal, _ := p.model.CostTo(p.registry.Lookup(best), p.goal, false)
		bestCost = p.tree.costFromStart(best, p.model) + toGoal
	}
	for _, id := range p.grid.Near(p.goal) {
		candidate := p.registry.Lookup(id)
		if pose.EuclidXY(candidate, p.goal) >= p.cfg.NearThreshold || !p.model.PathExists(candidate, p.goal) {
			continue
		}
		toGoal, _ := p.model.CostTo(candidate, p.goal, false)
		cost := p.tree.costFromStart(id, p.model) + toGoal
		if cost < bestCost {
			bestCost = cost
			best = id
		}
	}
	p.bestGoalID = best
}

// checkpointTick writes the current tree to disk and invokes VisualizeFunc
// if set, matching the original's "iteration % visualize_iterations == 0"
// save cadence.
func (p *Planner) checkpointTick(iteration int) error {
	doc := p.buildCheckpointDocument()
	if err := p.checkpointWriter.Write(iteration, doc); err != nil {
		return fmt.Errorf("rrtplan: writing checkpoint at iteration %d: %w", iteration, err)
	}
	if p.VisualizeFunc != nil {
		p.VisualizeFunc(iteration, p.BestPath(), doc.Cost)
	}
	p.logger.CDebugf(context.Background(), "rrtplan: checkpoint %d written, best cost %v", iteration, doc.Cost)
	return nil
}

func (p *Planner) buildCheckpointDocument() checkpoint.Document {
	graph := make(map[string]string, p.registry.Len())
	for _, id := range p.insertedIDs() {
		childPose := p.registry.Lookup(id)
		if id == p.startID {
			graph[childPose.Key()] = ""
			continue
		}
		parentID, ok := p.tree.parentOf(id)
		if !ok {
			continue
		}
		graph[childPose.Key()] = p.registry.Lookup(parentID).Key()
	}

	var bestPathKeys []string
	for _, pt := range p.BestPath() {
		bestPathKeys = append(bestPathKeys, pt.Key())
	}

	doc := checkpoint.Document{
		Start:       p.start.Key(),
		Goal:        p.goal.Key(),
		CostKey:     checkpointCostKey,
		Graph:       graph,
		BestPathRaw: bestPathKeys,
	}
	if p.bestGoalID == 0 {
		doc.BestGoalNode = ""
		doc.Cost = -1
		return doc
	}
	doc.BestGoalNode = p.registry.Lookup(p.bestGoalID).Key()
	toGoal, _ := p.model.CostTo(p.registry.Lookup(p.bestGoalID), p.goal, false)
	doc.Cost = p.tree.costFromStart(p.bestGoalID, p.model) + toGoal
	return doc
}

// insertedIDs returns every pose.ID that is actually part of the tree
// (the root plus every node that has a parent entry): the root first, the
// rest in map iteration order, which is not defined.
func (p *Planner) insertedIDs() []pose.ID {
	ids := make([]pose.ID, 0, len(p.tree.parent)+1)
	ids = append(ids, p.startID)
	for id := range p.tree.parent {
		ids = append(ids, id)
	}
	return ids
}

// BestPath returns the current best path from start to goal, or nil if no
// goal-reaching node has been found yet.
func (p *Planner) BestPath() []pose.Pose {
	return p.tree.bestPath(p.bestGoalID, p.goal)
}

// BestCost returns the traversal cost of BestPath, or +Inf if none exists.
func (p *Planner) BestCost() float64 {
	if p.bestGoalID == 0 {
		return math.Inf(1)
	}
	toGoal, _ := p.model.CostTo(p.registry.Lookup(p.bestGoalID), p.goal, false)
	return p.tree.costFromStart(p.bestGoalID, p.model) + toGoal
}

// PathFound reports whether any node has ever reached the goal
// neighborhood with a valid path (spec.md §4.6 "Goal tracking").
func (p *Planner) PathFound() bool {
	return p.pathFound
}
