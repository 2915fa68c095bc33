package pes

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGaussian is wrapped by every basis-function error.
	ErrInvalidGaussian = errors.New("pes: invalid gaussian")

	ErrZeroSigma = fmt.Errorf("%w: sigma must be non-zero", ErrInvalidGaussian)

	ErrNonFinite = errors.New("pes: NaN or Inf parameter")
)
