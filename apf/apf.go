// Package apf implements the local artificial-potential-field sampler: it
// takes a window of labeled occupancy cells around a candidate tree node and
// returns the lowest-potential reachable cell, biasing samples away from
// obstacles and existing nodes and toward the goal.
package apf

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/basemotion/rrtapf/envadapter"
	"github.com/basemotion/rrtapf/pose"
)

// Params holds the potential-field shaping constants. Defaults mirror the
// original implementation's keyword defaults.
type Params struct {
	Eta      float64 // obstacle repulsion gain
	Xi       float64 // goal attraction gain
	Rho0     float64 // obstacle repulsion radius of influence
	Sigma0   float64 // attraction cone switchover distance
	EtaNode  float64 // node repulsion gain
	Rho0Node float64 // node repulsion radius of influence
}

// DefaultParams returns the field constants the original sampler defaults
// to when a caller supplies none.
func DefaultParams() Params {
	return Params{Eta: 0.5, Xi: 1.0, Rho0: 1.0, Sigma0: 1.0, EtaNode: 1.0, Rho0Node: 0.5}
}

// Sample runs the eight-step APF algorithm (spec.md §4.5) over window, a
// square grid of envadapter.Cell* labels centered on windowCenter. goal is
// the global goal position. cellSize converts cell indices to meters;
// maxDistance masks out cells the planner could not reach in one step. It
// returns windowCenter unchanged (preserving z, resetting heading to 0) if
// every cell winds up masked to +Inf.
func Sample(window [][]byte, windowCenter, goal pose.Pose, cellSize, maxDistance float64, params Params) pose.Pose {
	size := len(window)
	if size == 0 {
		return pose.New(windowCenter.X(), windowCenter.Z(), windowCenter.Y())
	}

	obstacleMask := make([][]bool, size)
	nodeMask := make([][]bool, size)
	for i, row := range window {
		obstacleMask[i] = make([]bool, size)
		nodeMask[i] = make([]bool, size)
		for j, c := range row {
			obstacleMask[i][j] = c == envadapter.CellObstacle
			nodeMask[i][j] = c == envadapter.CellNode
		}
	}

	rhoObs := distanceTransform(obstacleMask)
	rhoNode := distanceTransform(nodeMask)

	half := size / 2
	originX := windowCenter.X() - float64(half)*cellSize
	originY := windowCenter.Y() - float64(half)*cellSize

	total := mat.NewDense(size, size, nil)
	for i := 0; i < size; i++ {
		y := originY + float64(i)*cellSize
		for j := 0; j < size; j++ {
			x := originX + float64(j)*cellSize

			uRepObs := repulsive(rhoObs[i][j]*cellSize, params.Rho0, params.Eta)
			uRepNode := repulsive(rhoNode[i][j]*cellSize, params.Rho0Node, params.EtaNode)
			uAtt := attractive(math.Hypot(x-goal.X(), y-goal.Y()), params.Sigma0, params.Xi)

			u := uRepObs + uRepNode + uAtt
			if math.Hypot(x-windowCenter.X(), y-windowCenter.Y()) > maxDistance {
				u = math.Inf(1)
			}
			total.Set(i, j, u)
		}
	}

	flat := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			flat[i*size+j] = total.At(i, j)
		}
	}

	minIdx := floats.MinIdx(flat)
	if math.IsInf(flat[minIdx], 1) {
		return pose.New(windowCenter.X(), windowCenter.Z(), windowCenter.Y())
	}

	row, col := minIdx/size, minIdx%size
	x := originX + float64(col)*cellSize
	y := originY + float64(row)*cellSize
	return pose.New(x, windowCenter.Z(), y)
}

// repulsive implements U_rep(rho) = 0.5*eta*(1/rho - 1/rho0)^2 for rho <=
// rho0, else 0. rho == 0 (the labeled cell itself) is treated as maximally
// repulsive rather than dividing by zero.
func repulsive(rho, rho0, eta float64) float64 {
	if rho > rho0 {
		return 0
	}
	if rho <= 0 {
		return math.Inf(1)
	}
	term := 1/rho - 1/rho0
	return 0.5 * eta * term * term
}

// attractive implements the conic-continuation attractive potential:
// quadratic near the goal, linear (conic) beyond sigma0.
func attractive(sigma, sigma0, xi float64) float64 {
	if sigma <= sigma0 {
		return 0.5 * xi * sigma * sigma
	}
	return xi * sigma0 * (sigma - 0.5*sigma0)
}
