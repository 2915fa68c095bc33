// Package pes models the potential energy surface searched by the path
// relaxation: a scaled sum of 2D anisotropic Gaussians with an analytic
// gradient.
//
// A [Field] is never mutated after construction, so a single value can be
// shared by the relaxation loop, the renderers and any number of goroutines.
package pes
