package membership

import (
	"testing"

	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/types"
	"github.com/stretchr/testify/require"
)

const admin = "admin"

func newTestRegistry(t *testing.T) (*Registry, *host.ManualClock) {
	t.Helper()
	clock := host.NewManualClock(100)
	reg := NewRegistry(types.NewOwnership(admin), clock, types.NopStore{})
	require.NoError(t, reg.CreateTier(admin, "bronze", 1, true))
	require.NoError(t, reg.CreateTier(admin, "gold", 3, true))
	return reg, clock
}

func TestCreateTier(t *testing.T) {
	reg, _ := newTestRegistry(t)

	require.ErrorIs(t, reg.CreateTier("mallory", "silver", 2, true), ErrNotAuthorized)
	require.ErrorIs(t, reg.CreateTier(admin, "", 2, true), ErrInvalidTierName)
	require.ErrorIs(t, reg.CreateTier(admin, "silver", 0, true), ErrInvalidMultiplier)
	require.ErrorIs(t, reg.CreateTier(admin, "bronze", 2, true), ErrTierExists)

	require.NoError(t, reg.CreateTier(admin, "silver", 2, true))
	tier, ok := reg.Tier("silver")
	require.True(t, ok)
	require.Equal(t, uint64(2), tier.Multiplier)
}

func TestUpdateTier(t *testing.T) {
	reg, _ := newTestRegistry(t)

	require.ErrorIs(t, reg.UpdateTier("mallory", "gold", 5, true), ErrNotAuthorized)
	require.ErrorIs(t, reg.UpdateTier(admin, "platinum", 5, true), ErrTierNotFound)
	require.ErrorIs(t, reg.UpdateTier(admin, "gold", 0, true), ErrInvalidMultiplier)

	require.NoError(t, reg.UpdateTier(admin, "gold", 5, false))
	tier, _ := reg.Tier("gold")
	require.Equal(t, uint64(5), tier.Multiplier)
	require.False(t, tier.Active)
}

func TestRegisterMember(t *testing.T) {
	reg, clock := newTestRegistry(t)

	require.ErrorIs(t, reg.RegisterMember("mallory", "alice", "gold"), ErrNotAuthorized)
	require.ErrorIs(t, reg.RegisterMember(admin, "alice", "platinum"), ErrTierNotFound)

	require.NoError(t, reg.RegisterMember(admin, "alice", "gold"))
	require.ErrorIs(t, reg.RegisterMember(admin, "alice", "bronze"), ErrMemberExists)

	member, ok := reg.Member("alice")
	require.True(t, ok)
	require.Equal(t, "gold", member.TierName)
	require.Equal(t, clock.Height(), member.JoinedAt)
	require.True(t, member.Active)

	tier, _ := reg.Tier("gold")
	require.Equal(t, uint64(1), tier.MemberCount)
	require.Equal(t, uint64(1), reg.TotalMembers())

	history := reg.History("alice")
	require.Len(t, history, 1)
	require.Equal(t, types.HistoryJoin, history[0].Action)
}

func TestChangeMemberTier(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.RegisterMember(admin, "alice", "bronze"))

	require.ErrorIs(t, reg.ChangeMemberTier("mallory", "alice", "gold"), ErrNotAuthorized)
	require.ErrorIs(t, reg.ChangeMemberTier(admin, "bob", "gold"), ErrMemberNotFound)
	require.ErrorIs(t, reg.ChangeMemberTier(admin, "alice", "platinum"), ErrTierNotFound)

	// Same tier is a no-op: no counts move, no history appended.
	require.NoError(t, reg.ChangeMemberTier(admin, "alice", "bronze"))
	require.Len(t, reg.History("alice"), 1)

	// gold multiplier 3 exceeds alice's resolved power 1: promote.
	require.NoError(t, reg.ChangeMemberTier(admin, "alice", "gold"))
	history := reg.History("alice")
	require.Len(t, history, 2)
	require.Equal(t, types.HistoryPromote, history[1].Action)

	bronze, _ := reg.Tier("bronze")
	gold, _ := reg.Tier("gold")
	require.Equal(t, uint64(0), bronze.MemberCount)
	require.Equal(t, uint64(1), gold.MemberCount)

	// Moving back down classifies as demote.
	require.NoError(t, reg.ChangeMemberTier(admin, "alice", "bronze"))
	history = reg.History("alice")
	require.Equal(t, types.HistoryDemote, history[2].Action)
}

func TestChangeMemberTierWhileSuspended(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.RegisterMember(admin, "alice", "bronze"))
	require.NoError(t, reg.SetMemberStatus(admin, "alice", false))

	// A suspended member is in no tier's count, so the move touches neither.
	require.NoError(t, reg.ChangeMemberTier(admin, "alice", "gold"))
	bronze, _ := reg.Tier("bronze")
	gold, _ := reg.Tier("gold")
	require.Equal(t, uint64(0), bronze.MemberCount)
	require.Equal(t, uint64(0), gold.MemberCount)

	member, _ := reg.Member("alice")
	require.Equal(t, "gold", member.TierName)

	// Reinstating counts the member exactly once, in the new tier.
	require.NoError(t, reg.SetMemberStatus(admin, "alice", true))
	bronze, _ = reg.Tier("bronze")
	gold, _ = reg.Tier("gold")
	require.Equal(t, uint64(0), bronze.MemberCount)
	require.Equal(t, uint64(1), gold.MemberCount)
	require.Equal(t, uint64(1), reg.TotalMembers())
}

func TestSetMemberStatus(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.RegisterMember(admin, "alice", "gold"))

	require.ErrorIs(t, reg.SetMemberStatus("mallory", "alice", false), ErrNotAuthorized)
	require.ErrorIs(t, reg.SetMemberStatus(admin, "bob", false), ErrMemberNotFound)

	// Setting the current status is a no-op.
	require.NoError(t, reg.SetMemberStatus(admin, "alice", true))
	require.Len(t, reg.History("alice"), 1)
	require.Equal(t, uint64(1), reg.TotalMembers())

	require.NoError(t, reg.SetMemberStatus(admin, "alice", false))
	require.Equal(t, uint64(0), reg.TotalMembers())
	gold, _ := reg.Tier("gold")
	require.Equal(t, uint64(0), gold.MemberCount)
	history := reg.History("alice")
	require.Equal(t, types.HistorySuspend, history[1].Action)

	require.NoError(t, reg.SetMemberStatus(admin, "alice", true))
	require.Equal(t, uint64(1), reg.TotalMembers())
	history = reg.History("alice")
	require.Equal(t, types.HistoryReinstate, history[2].Action)
}

func TestGetVotingPower(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.RegisterMember(admin, "alice", "gold"))

	require.Equal(t, uint64(0), reg.GetVotingPower("stranger"))
	require.Equal(t, uint64(3), reg.GetVotingPower("alice"))

	// Custom weight overrides the tier multiplier.
	require.NoError(t, reg.SetCustomWeight("alice", 10))
	require.Equal(t, uint64(10), reg.GetVotingPower("alice"))
	require.NoError(t, reg.SetCustomWeight("alice", 0))
	require.Equal(t, uint64(3), reg.GetVotingPower("alice"))

	// Suspended members resolve to zero.
	require.NoError(t, reg.SetMemberStatus(admin, "alice", false))
	require.Equal(t, uint64(0), reg.GetVotingPower("alice"))
	require.NoError(t, reg.SetMemberStatus(admin, "alice", true))

	// As do members of a deactivated tier.
	require.NoError(t, reg.UpdateTier(admin, "gold", 3, false))
	require.Equal(t, uint64(0), reg.GetVotingPower("alice"))
}

func TestSetCustomWeightUnknownMember(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.ErrorIs(t, reg.SetCustomWeight("stranger", 5), ErrMemberNotFound)
}

func TestRestore(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.RegisterMember(admin, "alice", "gold"))

	clock := host.NewManualClock(200)
	restored := NewRegistry(types.NewOwnership(admin), clock, types.NopStore{})
	restored.Restore(
		[]types.Tier{{Name: "gold", Multiplier: 3, Active: true, MemberCount: 1}},
		[]types.Member{{Address: "alice", TierName: "gold", Active: true}},
		reg.History("alice"),
	)

	require.Equal(t, uint64(3), restored.GetVotingPower("alice"))
	require.Equal(t, uint64(1), restored.TotalMembers())
	require.Len(t, restored.History("alice"), 1)
}
