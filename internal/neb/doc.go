// Package neb implements the nudged-elastic-band relaxation of a chain of
// points on a 2D surface.
//
// Each free point moves by the part of the downhill force perpendicular to
// the chain plus a spring force along the chain's tangent, so the field
// pulls the path sideways toward the valley while the springs only even out
// the spacing.
//
//	cfg, err := cfg.WithRelaxedEnds(field, 1e-4, 10000)
//	chain := neb.New(cfg)
//	for {
//	    chain.Iterate(field)
//	    ...
//	}
//
// # Concurrency
//
// Iterate is a Jacobi sweep: every new position is computed from the
// positions before the call. Long chains fan the interior out over
// goroutines; the new slice is swapped in only after all of them finish.
// A Chain itself must not be used from several goroutines at once.
package neb
