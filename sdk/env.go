package sdk

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Env is what a request knows about the block and its caller.
type Env struct {
	Sender    Address
	Value     *uint256.Int
	Timestamp uint64 // unix seconds, never decreasing between requests
	ChainID   *big.Int
	TxID      string
}
