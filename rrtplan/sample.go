package rrtplan

import (
	"math"
	mathrand "math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/basemotion/rrtapf/pose"
)

// sampler draws random numbers from one gonum distuv.Uniform fed by one
// math/rand.Source. The planner builds a fresh sampler for every iteration
// from combineSeed, so a fixed seed reproduces the planner's own draws.
type sampler struct {
	uniform distuv.Uniform
}

func newSampler(seed uint64) *sampler {
	src := mathrand.NewSource(int64(seed))
	return &sampler{uniform: distuv.Uniform{Min: 0, Max: 1, Src: src}}
}

// combineSeed derives a per-iteration seed from the planner's base seed, so
// each iteration draws from its own independent stream rather than one
// continuously advancing sequence. This is what makes checkpoint resume
// reproduce a continuous run bit-for-bit (spec.md §8 "Checkpoint resume"):
// an iteration's outcome depends only on (seed, iteration, tree state up to
// that point), never on how many random draws earlier iterations consumed.
// This covers only the planner's own draws: the adapter's
// SampleRandomNavigable uses the adapter's own generator, which is not
// reseeded per iteration, so a resumed run's uniform samples differ from a
// continuous run's whenever the adapter draws randomly. The mix is a splitmix64 finalizer, chosen for its well-known avalanche
// properties; no pack library offers a seed-combining primitive.
func combineSeed(seed uint64, iteration int) uint64 {
	x := seed + uint64(iteration)*0x9E3779B97F4A7C15
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return x
}

// float64 draws U ~ Uniform(0, 1).
func (s *sampler) float64() float64 {
	return s.uniform.Rand()
}

// intn draws a uniform index in [0, n). Returns 0 for n <= 0.
func (s *sampler) intn(n int) int {
	if n <= 0 {
		return 0
	}
	idx := int(s.float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// maxPoint truncates p2 toward p1 so the edge length is at most
// maxDistance, matching the original's _max_point. changed is false when p2
// was already within range, in which case p2 is returned unmodified (the
// boundary case in spec.md §8: "rand == closest: max_point returns the
// original with changed=False").
func maxPoint(p1, p2 pose.Pose, maxDistance float64) (result pose.Pose, changed bool) {
	dist := pose.EuclidXY(p1, p2)
	if dist <= maxDistance {
		return p2, false
	}
	t := maxDistance / dist
	x := p1.X() + (p2.X()-p1.X())*t
	y := p1.Y() + (p2.Y()-p1.Y())*t
	return pose.New(x, p1.Z(), y), true
}

// polarOffset draws a point at radius r = 1.5*sqrt(U) and angle
// theta = 2*pi*U' around center, per spec.md §4.6's path-biased branch.
func polarOffset(center pose.Pose, s *sampler) (x, y float64) {
	r := 1.5 * math.Sqrt(s.float64())
	theta := s.float64() * 2 * math.Pi
	return center.X() + r*math.Cos(theta), center.Y() + r*math.Sin(theta)
}
