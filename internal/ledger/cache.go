package ledger

import "github.com/mmynk/splitledger/internal/calculator"

type cacheState int

const (
	cacheStale cacheState = iota
	cacheFresh
)

// balanceCache holds the pairwise matrix between mutations.
// It is either stale (no matrix) or fresh (matrix valid for the current ledger).
type balanceCache struct {
	state  cacheState
	matrix calculator.Matrix
}

func (c *balanceCache) invalidate() {
	c.state = cacheStale
	c.matrix = nil
}

func (c *balanceCache) fresh() (calculator.Matrix, bool) {
	if c.state != cacheFresh {
		return nil, false
	}
	return c.matrix, true
}

func (c *balanceCache) store(matrix calculator.Matrix) {
	c.state = cacheFresh
	c.matrix = matrix
}
