package neb

import "github.com/san-kum/mepsim/internal/geom"

// RelaxToMinimum walks p downhill with p += s.GradientAt(p) until a step
// lowers the energy by less than limit. The step size is whatever the
// surface's scale folds into its gradient.
//
// maxIter bounds the number of steps; zero means unbounded. When the bound
// is hit the last point is returned together with ErrNotConverged.
func RelaxToMinimum(p geom.Vec2, s Surface, limit float64, maxIter int) (geom.Vec2, int, error) {
	energy := s.EnergyAt(p)

	for i := 1; ; i++ {
		if maxIter > 0 && i > maxIter {
			return p, maxIter, ErrNotConverged
		}

		next := p.Add(s.GradientAt(p))
		if !next.IsValid() {
			return p, i, ErrDiverged
		}
		p = next

		prev := energy
		energy = s.EnergyAt(p)
		if prev-energy < limit {
			return p, i, nil
		}
	}
}
