package rrtplan

import (
	"github.com/basemotion/rrtapf/costmodel"
	"github.com/basemotion/rrtapf/pose"
)

// tree is the rooted structure the planner grows: every node is keyed by
// its pose.ID in the shared registry rather than by the Pose value itself
// (spec.md §9 "Tree representation"), so equality and hashing never touch
// floating point.
type tree struct {
	registry       *pose.Registry
	rootID         pose.ID
	parent         map[pose.ID]pose.ID
	costFromParent map[pose.ID]float64
}

func newTree(registry *pose.Registry, rootID pose.ID) *tree {
	return &tree{
		registry:       registry,
		rootID:         rootID,
		parent:         make(map[pose.ID]pose.ID),
		costFromParent: map[pose.ID]float64{rootID: 0},
	}
}

// insert attaches id under parentID with the given cost_from_parent.
func (t *tree) insert(id, parentID pose.ID, cost float64) {
	t.parent[id] = parentID
	t.costFromParent[id] = cost
}

// rewire reassigns id's parent, replacing (not merely shadowing) its prior
// cost_from_parent entry.
func (t *tree) rewire(id, newParentID pose.ID, cost float64) {
	t.parent[id] = newParentID
	t.costFromParent[id] = cost
}

// parentOf reports id's parent; ok is false for the root.
func (t *tree) parentOf(id pose.ID) (pose.ID, bool) {
	if id == t.rootID {
		return 0, false
	}
	p, ok := t.parent[id]
	return p, ok
}

// pathToStart returns the chain of IDs from root to id, inclusive of both
// ends, matching _get_path_to_start.
func (t *tree) pathToStart(id pose.ID) []pose.ID {
	path := []pose.ID{id}
	cur := id
	for cur != t.rootID {
		p, ok := t.parent[cur]
		if !ok {
			break
		}
		path = append([]pose.ID{p}, path...)
		cur = p
	}
	return path
}

// costFromStart walks the parent chain to the root, summing
// cost_from_parent and lazily populating any missing entry via the cost
// model (matches _cost_from_start: entries are only absent right after a
// checkpoint reload, which does not persist per-edge costs).
func (t *tree) costFromStart(id pose.ID, model costmodel.Model) float64 {
	path := t.pathToStart(id)
	total := 0.0
	for i := 0; i < len(path)-1; i++ {
		parentID, childID := path[i], path[i+1]
		cost, ok := t.costFromParent[childID]
		if !ok {
			parentPose := t.registry.Lookup(parentID)
			childPose := t.registry.Lookup(childID)
			cost, _ = model.CostTo(parentPose, childPose, true)
			t.costFromParent[childID] = cost
		}
		total += cost
	}
	return total
}

// bestPath returns the poses from root to goalID's parent chain followed
// by goal itself, or nil if goalID is unset (zero).
func (t *tree) bestPath(goalID pose.ID, goal pose.Pose) []pose.Pose {
	if goalID == 0 {
		return nil
	}
	ids := t.pathToStart(goalID)
	path := make([]pose.Pose, 0, len(ids)+1)
	for _, id := range ids {
		path = append(path, t.registry.Lookup(id))
	}
	return append(path, goal)
}
