// Package delegation records one-hop vote-casting authorization. A voter has
// at most one delegate at a time; delegating again requires a revoke first.
package delegation

import (
	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/types"
)

var (
	ErrAlreadyDelegated = types.NewError(101, "already delegated")
	ErrNoDelegation     = types.NewError(102, "no delegation")
	ErrSelfDelegation   = types.NewError(105, "self delegation")
)

type Registry struct {
	clock host.Clock
	store types.Store
	// resolves the voter's power for the snapshot taken at delegation time
	resolve func(address string) uint64

	delegations map[string]*types.Delegation
}

func NewRegistry(clock host.Clock, store types.Store, resolve func(string) uint64) *Registry {
	return &Registry{
		clock:       clock,
		store:       store,
		resolve:     resolve,
		delegations: make(map[string]*types.Delegation),
	}
}

// Restore reloads persisted state. Called once before the registry serves.
func (r *Registry) Restore(delegations []types.Delegation) {
	for i := range delegations {
		d := delegations[i]
		r.delegations[d.Voter] = &d
	}
}

func (r *Registry) DelegateVote(caller, delegate string) error {
	if caller == delegate {
		return ErrSelfDelegation
	}
	if _, ok := r.delegations[caller]; ok {
		return ErrAlreadyDelegated
	}
	rec := &types.Delegation{
		Voter:       caller,
		Delegate:    delegate,
		DelegatedAt: r.clock.Height(),
		VotePower:   r.resolve(caller),
	}
	r.delegations[caller] = rec
	return r.store.Save(rec)
}

func (r *Registry) RevokeDelegation(caller string) error {
	if _, ok := r.delegations[caller]; !ok {
		return ErrNoDelegation
	}
	delete(r.delegations, caller)
	return r.store.Delete(&types.Delegation{Voter: caller})
}

// IsAuthorized reports whether caller may cast voter's vote: either directly
// or as voter's current delegate.
func (r *Registry) IsAuthorized(caller, voter string) bool {
	if caller == voter {
		return true
	}
	rec, ok := r.delegations[voter]
	return ok && rec.Delegate == caller
}

func (r *Registry) Delegation(voter string) (types.Delegation, bool) {
	rec, ok := r.delegations[voter]
	if !ok {
		return types.Delegation{}, false
	}
	return *rec, true
}
