// Package core provides shared helpers for the correlation packages,
// chiefly the lag-step structure of the multi-tau hierarchy.
package core

import "errors"

// Errors returned by lag generation.
var (
	ErrOddBufs  = errors.New("core: number of buffers must be positive and even")
	ErrNoLevels = errors.New("core: number of levels must be at least one")
)

// MultiTauLags returns the total channel count and the delay of every
// correlation channel, in frame units, for a multi-tau hierarchy with
// the given number of levels and buffers per level.
//
// Level 0 contributes lags 0..bufs-1 at native frame spacing. Every
// higher level k contributes bufs/2 lags spaced 2^k frames apart,
// starting at (bufs/2)*2^k; the lower half of its lag range repeats
// delays already covered one level below and is omitted.
func MultiTauLags(levels, bufs int) (int, []int, error) {
	if levels < 1 {
		return 0, nil, ErrNoLevels
	}

	if bufs <= 0 || bufs%2 != 0 {
		return 0, nil, ErrOddBufs
	}

	half := bufs / 2
	total := (levels + 1) * half

	steps := make([]int, 0, total)
	for i := 0; i < bufs; i++ {
		steps = append(steps, i)
	}

	for level := 1; level < levels; level++ {
		scale := 1 << uint(level)
		for j := 0; j < half; j++ {
			steps = append(steps, (half+j)*scale)
		}
	}

	return total, steps, nil
}
