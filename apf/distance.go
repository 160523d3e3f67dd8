package apf

import "math"

// distanceTransform returns, for every cell, the Euclidean distance (in
// cell units) to the nearest cell where mask is true; true cells themselves
// get distance 0. This mirrors scipy.ndimage.distance_transform_edt applied
// to the mask's complement, via the classic two-pass squared-distance
// transform (Felzenszwalb & Huttenlocher, 2004) run first down columns then
// across rows. No pack dependency exposes a distance transform primitive
// (gonum's image/grid support stops at basic matrix algebra), so this is a
// textbook algorithm implemented directly rather than reached for from an
// ecosystem library.
func distanceTransform(mask [][]bool) [][]float64 {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])
	const inf = 1e20

	sq := make([][]float64, height)
	for i := range sq {
		sq[i] = make([]float64, width)
		for j := range sq[i] {
			if mask[i][j] {
				sq[i][j] = 0
			} else {
				sq[i][j] = inf
			}
		}
	}

	col := make([]float64, height)
	for j := 0; j < width; j++ {
		for i := 0; i < height; i++ {
			col[i] = sq[i][j]
		}
		d := edt1D(col)
		for i := 0; i < height; i++ {
			sq[i][j] = d[i]
		}
	}
	for i := 0; i < height; i++ {
		sq[i] = edt1D(sq[i])
	}

	out := make([][]float64, height)
	for i := 0; i < height; i++ {
		out[i] = make([]float64, width)
		for j := 0; j < width; j++ {
			out[i][j] = math.Sqrt(sq[i][j])
		}
	}
	return out
}

// edt1D computes the 1D squared distance transform of f: for each index q,
// the minimum over all p of (q-p)^2 + f[p]. It is the lower envelope of
// parabolas rooted at each sample, computed in O(n).
func edt1D(f []float64) []float64 {
	n := len(f)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	for q := 1; q < n; q++ {
		s := intersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dx := float64(q - v[k])
		d[q] = dx*dx + f[v[k]]
	}
	return d
}

func intersect(f []float64, q, p int) float64 {
	return ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*(q-p))
}
