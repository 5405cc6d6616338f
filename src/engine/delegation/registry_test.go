package delegation

import (
	"testing"

	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/types"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	clock := host.NewManualClock(50)
	resolve := func(address string) uint64 {
		if address == "alice" {
			return 3
		}
		return 1
	}
	return NewRegistry(clock, types.NopStore{}, resolve)
}

func TestDelegateVote(t *testing.T) {
	reg := newTestRegistry(t)

	require.ErrorIs(t, reg.DelegateVote("alice", "alice"), ErrSelfDelegation)

	require.NoError(t, reg.DelegateVote("alice", "bob"))
	rec, ok := reg.Delegation("alice")
	require.True(t, ok)
	require.Equal(t, "bob", rec.Delegate)
	require.Equal(t, uint64(50), rec.DelegatedAt)
	require.Equal(t, uint64(3), rec.VotePower)

	// One delegation per voter; switching requires a revoke first.
	require.ErrorIs(t, reg.DelegateVote("alice", "carol"), ErrAlreadyDelegated)
}

func TestRevokeDelegation(t *testing.T) {
	reg := newTestRegistry(t)

	require.ErrorIs(t, reg.RevokeDelegation("alice"), ErrNoDelegation)

	require.NoError(t, reg.DelegateVote("alice", "bob"))
	require.NoError(t, reg.RevokeDelegation("alice"))
	_, ok := reg.Delegation("alice")
	require.False(t, ok)

	require.NoError(t, reg.DelegateVote("alice", "carol"))
	rec, _ := reg.Delegation("alice")
	require.Equal(t, "carol", rec.Delegate)
}

func TestIsAuthorized(t *testing.T) {
	reg := newTestRegistry(t)

	require.True(t, reg.IsAuthorized("alice", "alice"))
	require.False(t, reg.IsAuthorized("bob", "alice"))

	require.NoError(t, reg.DelegateVote("alice", "bob"))
	require.True(t, reg.IsAuthorized("bob", "alice"))
	require.False(t, reg.IsAuthorized("carol", "alice"))
	// Delegation is one-way: alice gains nothing over bob's vote.
	require.False(t, reg.IsAuthorized("alice", "bob"))
}

func TestRestore(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Restore([]types.Delegation{{Voter: "alice", Delegate: "bob", DelegatedAt: 10, VotePower: 3}})

	require.True(t, reg.IsAuthorized("bob", "alice"))
	require.ErrorIs(t, reg.DelegateVote("alice", "carol"), ErrAlreadyDelegated)
}
