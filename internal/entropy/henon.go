package entropy

// Classic Hénon parameters.
const (
	henonA = 1.4
	henonB = 0.3

	henonStepsPerSample = 50
)

// Henon iterates the Hénon map x' = 1 - a·x² + y, y' = b·x and emits
// the x component folded into [0,1) via its empirical range of roughly
// [-1.5,1.5]. State persists across calls.
type Henon struct {
	x, y float64
}

// NewHenon creates a Hénon source. The seed picks a deterministic point
// near the attractor basin; equal seeds give equal orbits.
func NewHenon(seed uint64) *Henon {
	offset := float64(seed%9973)/9973.0*0.2 - 0.1
	return &Henon{x: offset, y: 0.0}
}

func (h *Henon) Kind() Kind { return KindHenon }

func (h *Henon) Next() float64 {
	for i := 0; i < henonStepsPerSample; i++ {
		nx := 1.0 - henonA*h.x*h.x + h.y
		ny := henonB * h.x
		h.x, h.y = nx, ny
	}
	return fold((h.x + 1.5) / 3.0)
}
