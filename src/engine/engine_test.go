package engine

import (
	"testing"

	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/membership"
	"github.com/stake-plus/dao-govern/src/engine/proposal"
	"github.com/stake-plus/dao-govern/src/engine/types"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *host.ManualClock) {
	t.Helper()
	clock := host.NewManualClock(1)
	ledger := host.NewMemLedger()
	ledger.RegisterToken("gov-token", "Governance Token")
	ledger.Mint("gov-token", "alice", 10000)
	eng := New(Config{
		Owner:          "admin",
		Custody:        "custody",
		PassThreshold:  3,
		TimelockPeriod: 10,
		BlocksPerDay:   144,
	}, clock, ledger, host.NewMemExecutor(), nil, nil)
	return eng, clock
}

func TestTransferOwnership(t *testing.T) {
	eng, _ := newTestEngine(t)
	require.Equal(t, "admin", eng.Owner())

	require.ErrorIs(t, eng.TransferOwnership("mallory", "mallory"), proposal.ErrNotAuthorized)

	require.NoError(t, eng.TransferOwnership("admin", "successor"))
	require.Equal(t, "successor", eng.Owner())

	// The previous owner loses admin rights everywhere at once.
	require.ErrorIs(t, eng.CreateTier("admin", "gold", 3, true), membership.ErrNotAuthorized)
	require.NoError(t, eng.CreateTier("successor", "gold", 3, true))
}

func TestFullLifecycle(t *testing.T) {
	eng, clock := newTestEngine(t)

	require.NoError(t, eng.CreateTier("admin", "gold", 3, true))
	require.NoError(t, eng.RegisterMember("admin", "alice", "gold"))
	require.NoError(t, eng.RegisterMember("admin", "bob", "gold"))
	require.NoError(t, eng.DelegateVote("bob", "alice"))

	id, err := eng.CreateProposal("admin", proposal.CreateParams{
		Title:           "Adopt the new charter",
		ExpirationDelta: 100,
		VotingMode:      types.VotingModeStandard,
		Target:          "registry",
		Function:        "adopt",
	})
	require.NoError(t, err)

	_, err = eng.Vote("alice", id, true)
	require.NoError(t, err)
	_, err = eng.VoteFor("alice", "bob", id, true)
	require.NoError(t, err)

	prop, ok := eng.Proposal(id)
	require.True(t, ok)
	require.Equal(t, uint64(6), prop.VotesFor)

	clock.Advance(20)
	// Target "registry" is not wired in the executor, so dispatch fails and
	// the proposal stays executable.
	_, err = eng.ExecuteProposal("admin", id)
	require.ErrorIs(t, err, proposal.ErrExecutionFailed)
	prop, _ = eng.Proposal(id)
	require.False(t, prop.Executed)
}

func TestMetaRoundTrip(t *testing.T) {
	eng, clock := newTestEngine(t)
	require.NoError(t, eng.TransferOwnership("admin", "successor"))
	clock.Advance(9)

	meta := eng.Meta()
	require.Equal(t, uint8(1), meta.ID)
	require.Equal(t, "successor", meta.Owner)
	require.Equal(t, uint64(10), meta.Height)

	restored, _ := newTestEngine(t)
	restored.RestoreMeta(meta)
	require.Equal(t, "successor", restored.Owner())
}
