package weight

import (
	"testing"

	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/membership"
	"github.com/stake-plus/dao-govern/src/engine/tokenvote"
	"github.com/stake-plus/dao-govern/src/engine/types"
	"github.com/stretchr/testify/require"
)

const admin = "admin"

func newTestResolver(t *testing.T) (*Resolver, *membership.Registry, *host.MemLedger) {
	t.Helper()
	owner := types.NewOwnership(admin)
	clock := host.NewManualClock(100)
	members := membership.NewRegistry(owner, clock, types.NopStore{})
	require.NoError(t, members.CreateTier(admin, "gold", 9, true))
	require.NoError(t, members.RegisterMember(admin, "alice", "gold"))

	ledger := host.NewMemLedger()
	ledger.RegisterToken("gov-token", "Governance Token")
	tokens := tokenvote.NewSubsystem(owner, clock, ledger, types.NopStore{}, "custody", 144)
	require.NoError(t, tokens.AddSupportedToken(admin, "gov-token", 10))
	require.NoError(t, tokens.ConfigureVotingPowerModel(admin, "gov-token", types.PowerModelLinear, false))

	return NewResolver(members, tokens), members, ledger
}

func TestResolveStandard(t *testing.T) {
	res, members, _ := newTestResolver(t)

	require.Equal(t, uint64(9), res.Resolve("alice", types.VotingModeStandard))
	// Non-members vote with weight 1.
	require.Equal(t, uint64(1), res.Resolve("bob", types.VotingModeStandard))

	// Registered but suspended members resolve to 0, not the non-member default.
	require.NoError(t, members.SetMemberStatus(admin, "alice", false))
	require.Equal(t, uint64(0), res.Resolve("alice", types.VotingModeStandard))
}

func TestResolveQuadratic(t *testing.T) {
	res, members, _ := newTestResolver(t)

	require.Equal(t, uint64(3), res.Resolve("alice", types.VotingModeQuadratic))
	require.Equal(t, uint64(1), res.Resolve("bob", types.VotingModeQuadratic))

	require.NoError(t, members.SetCustomWeight("alice", 100))
	require.Equal(t, uint64(10), res.Resolve("alice", types.VotingModeQuadratic))
}

func TestResolveCustomWeightPrecedence(t *testing.T) {
	res, members, _ := newTestResolver(t)

	require.NoError(t, members.SetCustomWeight("alice", 42))
	require.Equal(t, uint64(42), res.Resolve("alice", types.VotingModeStandard))
	require.NoError(t, members.SetCustomWeight("alice", 0))
	require.Equal(t, uint64(9), res.Resolve("alice", types.VotingModeStandard))
}

func TestResolveTokenPower(t *testing.T) {
	res, _, ledger := newTestResolver(t)
	ledger.Mint("gov-token", "alice", 400)

	power, err := res.ResolveTokenPower("gov-token", "alice", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(400), power)

	require.True(t, res.TokenSupported("gov-token"))
	require.False(t, res.TokenSupported("mystery-token"))
}
