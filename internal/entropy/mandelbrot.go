package entropy

import (
	"math"
	mrand "math/rand/v2"
)

const (
	mandelbrotMaxIter      = 100
	mandelbrotEscapeRadius = 2.0

	// fractalCoarseGrid is the lower of the two box-counting resolutions;
	// the finer grid doubles it.
	fractalCoarseGrid = 32
)

// Fractal estimates the box-counting dimension of the Mandelbrot set
// boundary over sampled windows of the complex plane, folded into
// [0,1). Each call scans two full grids, which makes this by far the
// most expensive source; keep it off hot paths unless the result is
// cached.
type Fractal struct {
	rng *mrand.Rand
}

// NewFractal creates a fractal-dimension source. The seed drives window
// selection deterministically.
func NewFractal(seed uint64) *Fractal {
	return &Fractal{rng: mrand.New(mrand.NewPCG(seed, seed^0x6a09e667f3bcc909))}
}

func (f *Fractal) Kind() Kind { return KindFractal }

func (f *Fractal) Next() float64 {
	// Sample a window on the boundary-rich strip of the set.
	cx := -0.75 + (f.rng.Float64()-0.5)*0.8
	cy := (f.rng.Float64() - 0.5) * 0.8
	const span = 0.5
	d := Dimension(cx-span/2, cy-span/2, span)
	// The boundary dimension lives in [0,2]; halving folds it to [0,1).
	return fold(d / 2.0)
}

// Dimension estimates the box-counting dimension of the set boundary
// inside the square window with the given lower-left corner and side
// length, using escape-iteration grids at two resolutions.
func Dimension(x0, y0, span float64) float64 {
	n1 := countBoundaryBoxes(x0, y0, span, fractalCoarseGrid)
	n2 := countBoundaryBoxes(x0, y0, span, fractalCoarseGrid*2)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	// N(ε) ∝ ε^-D with the finer grid halving ε.
	return math.Log(float64(n2)/float64(n1)) / math.Ln2
}

// countBoundaryBoxes counts grid cells whose center escapes after more
// than one iteration but before the cap, i.e. cells straddling the
// boundary region.
func countBoundaryBoxes(x0, y0, span float64, grid int) int {
	step := span / float64(grid)
	count := 0
	for i := 0; i < grid; i++ {
		for j := 0; j < grid; j++ {
			cr := x0 + (float64(i)+0.5)*step
			ci := y0 + (float64(j)+0.5)*step
			it := escapeTime(cr, ci)
			if it > 1 && it < mandelbrotMaxIter {
				count++
			}
		}
	}
	return count
}

// escapeTime returns the iteration at which z escapes the radius, or
// mandelbrotMaxIter if it never does.
func escapeTime(cr, ci float64) int {
	var zr, zi float64
	for it := 0; it < mandelbrotMaxIter; it++ {
		zr2, zi2 := zr*zr, zi*zi
		if zr2+zi2 > mandelbrotEscapeRadius*mandelbrotEscapeRadius {
			return it
		}
		zr, zi = zr2-zi2+cr, 2*zr*zi+ci
	}
	return mandelbrotMaxIter
}
