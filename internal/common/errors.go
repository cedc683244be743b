package common

import "errors"

// Expected-absence sentinels. These are terminal states of the data
// resolution chain, not faults: callers test with errors.Is and degrade to
// "no result for this instrument" rather than aborting anything.
var (
	// ErrUnresolved means every strategy in a fallback chain was exhausted.
	ErrUnresolved = errors.New("unresolved after all fallbacks")

	// ErrInsufficientData means too few observations exist to compute a
	// statistic safely. Short samples are refused, never estimated.
	ErrInsufficientData = errors.New("insufficient data")
)
