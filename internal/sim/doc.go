// Package sim drives a chain relaxation to convergence.
//
// A [Simulator] repeatedly calls Iterate on a chain and recomputes its
// average energy, stopping as soon as one iteration improves the energy by
// less than the configured limit. Progress is published to [Observer]s and
// summarised by [Metric]s, so rendering and reporting stay outside the loop.
//
// # Example
//
//	s := sim.New(field)
//	s.AddObserver(sim.ObserverFunc(func(it sim.Iteration) {
//	    fmt.Println(it.Index, it.Energy)
//	}))
//	result, err := s.Run(ctx, neb.New(cfg), sim.DefaultConfig())
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe, and observers run on the loop's
// goroutine.
package sim
