package pose

// ID identifies a Pose interned into a Registry. The zero ID is never
// issued by Intern, so a zero-valued ID can be used as a "not set"
// sentinel by callers that need one (e.g. "no best-goal-node").
type ID uint32

// Registry is the pose arena described in the design notes: every sample
// the planner ever produces is stored exactly once here, and the tree,
// grid hash, and cost cache all key off the returned ID rather than off
// Pose values or their string keys. This sidesteps floating-point-hash
// fragility in map[Pose]... — Pose.Key() is only consulted here, to
// deduplicate, and at the checkpoint boundary.
type Registry struct {
	poses []Pose
	byKey map[string]ID
}

// NewRegistry returns an empty pose arena.
func NewRegistry() *Registry {
	return &Registry{
		poses: make([]Pose, 1, 64), // index 0 reserved, so ID 0 means "unset"
		byKey: make(map[string]ID, 64),
	}
}

// Intern stores p if it has not been seen before (by Pose.Key()) and
// returns its ID; if an equal pose was already interned, its existing ID
// is returned instead and the registry is unchanged.
func (r *Registry) Intern(p Pose) ID {
	key := p.Key()
	if id, ok := r.byKey[key]; ok {
		return id
	}
	id := ID(len(r.poses))
	r.poses = append(r.poses, p)
	r.byKey[key] = id
	return id
}

// Find reports the ID of p if it has already been interned.
func (r *Registry) Find(p Pose) (ID, bool) {
	id, ok := r.byKey[p.Key()]
	return id, ok
}

// Lookup returns the Pose for id. It panics on an unset or out-of-range
// ID, which indicates a programming error (every ID handed out by Intern
// is valid for the lifetime of the Registry).
func (r *Registry) Lookup(id ID) Pose {
	if id == 0 || int(id) >= len(r.poses) {
		panic("pose: Lookup of unset or invalid ID")
	}
	return r.poses[id]
}

// Len returns the number of distinct poses interned so far.
func (r *Registry) Len() int {
	return len(r.poses) - 1
}
