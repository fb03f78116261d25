// Package chainreg is the compile-time table mapping a numeric chain id to
// its human-readable name, grounded on the Rust original's
// config::get_chain table (apps/chain-watcher/src/config/mod.rs).
package chainreg

import "fmt"

// Chain identifies one EVM-compatible network this pipeline can be pinned to.
type Chain struct {
	ID   uint32
	Name string
}

var registry = map[uint32]Chain{
	1:     {ID: 1, Name: "ethereum"},
	5:     {ID: 5, Name: "goerli"},
	10:    {ID: 10, Name: "optimism"},
	56:    {ID: 56, Name: "bnb-smart-chain"},
	137:   {ID: 137, Name: "polygon"},
	8453:  {ID: 8453, Name: "base"},
	42161: {ID: 42161, Name: "arbitrum-one"},
	11155111: {ID: 11155111, Name: "sepolia"},
}

// ErrUnknownChain is returned by Get when the chain id is absent from the
// registry; callers treat this as a fatal startup error per spec.md §6.
type ErrUnknownChain struct {
	ChainID uint32
}

func (e ErrUnknownChain) Error() string {
	return fmt.Sprintf("chainreg: unknown chain id %d", e.ChainID)
}

// Get looks up a chain by id.
func Get(id uint32) (Chain, error) {
	c, ok := registry[id]
	if !ok {
		return Chain{}, ErrUnknownChain{ChainID: id}
	}
	return c, nil
}
