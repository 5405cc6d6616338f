// Package host defines the collaborators the surrounding execution
// environment supplies to the engine: the height clock, the external token
// ledger, and the executable-proposal dispatcher.
package host

// Clock reads the monotonically increasing block height. The host advances
// it; the engine only ever reads.
type Clock interface {
	Height() uint64
}

// TokenLedger is the external token contract surface the engine relies on:
// an identity query used to validate support, balance reads, and transfers
// used for lockup custody.
type TokenLedger interface {
	Name(token string) (string, error)
	BalanceOf(token, account string) (uint64, error)
	Transfer(token string, amount uint64, from, to, memo string) error
}

// Executor dispatches a passed proposal to its executable target.
type Executor interface {
	Execute(target, function string, proposalID uint64) (bool, error)
}
