package host

import "fmt"

// ManualClock is a host clock advanced by explicit calls. The service wires a
// persisted variant; tests and the smoketest drive this one directly.
type ManualClock struct {
	height uint64
}

func NewManualClock(height uint64) *ManualClock { return &ManualClock{height: height} }

func (c *ManualClock) Height() uint64 { return c.height }

func (c *ManualClock) Advance(blocks uint64) { c.height += blocks }

func (c *ManualClock) Set(height uint64) { c.height = height }

// MemLedger is an in-memory token ledger. OnTransfer, when set, runs after
// balances move and before Transfer returns, which lets tests simulate a
// token contract that calls back into the engine mid-transfer.
type MemLedger struct {
	names      map[string]string
	balances   map[string]map[string]uint64
	OnTransfer func(token string, amount uint64, from, to string)
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		names:    make(map[string]string),
		balances: make(map[string]map[string]uint64),
	}
}

// RegisterToken creates a token with the given display name.
func (l *MemLedger) RegisterToken(token, name string) {
	l.names[token] = name
	if l.balances[token] == nil {
		l.balances[token] = make(map[string]uint64)
	}
}

// Mint credits an account.
func (l *MemLedger) Mint(token, account string, amount uint64) {
	if l.balances[token] == nil {
		l.balances[token] = make(map[string]uint64)
	}
	l.balances[token][account] += amount
}

func (l *MemLedger) Name(token string) (string, error) {
	name, ok := l.names[token]
	if !ok {
		return "", fmt.Errorf("unknown token %s", token)
	}
	return name, nil
}

func (l *MemLedger) BalanceOf(token, account string) (uint64, error) {
	accounts, ok := l.balances[token]
	if !ok {
		return 0, fmt.Errorf("unknown token %s", token)
	}
	return accounts[account], nil
}

func (l *MemLedger) Transfer(token string, amount uint64, from, to, memo string) error {
	accounts, ok := l.balances[token]
	if !ok {
		return fmt.Errorf("unknown token %s", token)
	}
	if accounts[from] < amount {
		return fmt.Errorf("insufficient balance for %s", from)
	}
	accounts[from] -= amount
	accounts[to] += amount
	if l.OnTransfer != nil {
		l.OnTransfer(token, amount, from, to)
	}
	return nil
}

// MemExecutor resolves executable targets to registered Go callbacks.
type MemExecutor struct {
	targets map[string]func(function string, proposalID uint64) (bool, error)
}

func NewMemExecutor() *MemExecutor {
	return &MemExecutor{targets: make(map[string]func(string, uint64) (bool, error))}
}

func (e *MemExecutor) Register(target string, fn func(function string, proposalID uint64) (bool, error)) {
	e.targets[target] = fn
}

func (e *MemExecutor) Execute(target, function string, proposalID uint64) (bool, error) {
	fn, ok := e.targets[target]
	if !ok {
		return false, fmt.Errorf("unknown executable target %s", target)
	}
	return fn(function, proposalID)
}
