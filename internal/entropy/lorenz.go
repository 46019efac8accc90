package entropy

// Classic Lorenz parameters.
const (
	lorenzSigma = 10.0
	lorenzRho   = 28.0
	lorenzBeta  = 8.0 / 3.0
	lorenzDt    = 0.01

	// lorenzStepsPerSample decorrelates consecutive samples: the
	// trajectory advances well past one characteristic time per draw.
	lorenzStepsPerSample = 100
)

// Lorenz integrates the Lorenz system with fixed-step RK4 and emits the
// x component folded into [0,1) via its empirical range of roughly
// [-20,20]. The trajectory persists across calls, so one instance
// produces a continuous orbit.
type Lorenz struct {
	x, y, z float64
}

// NewLorenz creates a Lorenz source. The seed perturbs the initial
// condition deterministically; equal seeds give equal trajectories.
func NewLorenz(seed uint64) *Lorenz {
	// Spread seeds across a small neighborhood of the attractor.
	// Sensitivity to initial conditions does the rest.
	offset := float64(seed%10007) / 10007.0
	return &Lorenz{x: 1.0 + offset, y: 1.0, z: 1.0}
}

func (l *Lorenz) Kind() Kind { return KindLorenz }

func (l *Lorenz) Next() float64 {
	for i := 0; i < lorenzStepsPerSample; i++ {
		l.step()
	}
	return fold((l.x + 20.0) / 40.0)
}

// step advances the trajectory by one RK4 step of size lorenzDt.
func (l *Lorenz) step() {
	k1x, k1y, k1z := lorenzDeriv(l.x, l.y, l.z)
	k2x, k2y, k2z := lorenzDeriv(l.x+0.5*lorenzDt*k1x, l.y+0.5*lorenzDt*k1y, l.z+0.5*lorenzDt*k1z)
	k3x, k3y, k3z := lorenzDeriv(l.x+0.5*lorenzDt*k2x, l.y+0.5*lorenzDt*k2y, l.z+0.5*lorenzDt*k2z)
	k4x, k4y, k4z := lorenzDeriv(l.x+lorenzDt*k3x, l.y+lorenzDt*k3y, l.z+lorenzDt*k3z)

	l.x += lorenzDt / 6.0 * (k1x + 2*k2x + 2*k3x + k4x)
	l.y += lorenzDt / 6.0 * (k1y + 2*k2y + 2*k3y + k4y)
	l.z += lorenzDt / 6.0 * (k1z + 2*k2z + 2*k3z + k4z)
}

func lorenzDeriv(x, y, z float64) (dx, dy, dz float64) {
	dx = lorenzSigma * (y - x)
	dy = x*(lorenzRho-z) - y
	dz = x*y - lorenzBeta*z
	return dx, dy, dz
}
