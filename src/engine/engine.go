// Package engine wires the governance components behind a single serialized
// surface. The surrounding process is the engine's host: every public call
// completes fully before the next begins, which the facade guarantees with
// one mutex across all operations.
package engine

import (
	"sync"

	"github.com/stake-plus/dao-govern/src/engine/delegation"
	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/membership"
	"github.com/stake-plus/dao-govern/src/engine/proposal"
	"github.com/stake-plus/dao-govern/src/engine/tokenvote"
	"github.com/stake-plus/dao-govern/src/engine/types"
	"github.com/stake-plus/dao-govern/src/engine/weight"
)

type Config struct {
	Owner          string
	Custody        string // account holding lockup custody
	PassThreshold  uint64
	TimelockPeriod uint64
	BlocksPerDay   uint64
}

type Engine struct {
	mu sync.Mutex

	ownership   *types.Ownership
	clock       host.Clock
	store       types.Store
	Members     *membership.Registry
	Tokens      *tokenvote.Subsystem
	Weights     *weight.Resolver
	Delegations *delegation.Registry
	Proposals   *proposal.Engine
}

func New(cfg Config, clock host.Clock, ledger host.TokenLedger, executor host.Executor, store types.Store, events proposal.EventSink) *Engine {
	if store == nil {
		store = types.NopStore{}
	}
	ownership := types.NewOwnership(cfg.Owner)
	members := membership.NewRegistry(ownership, clock, store)
	tokens := tokenvote.NewSubsystem(ownership, clock, ledger, store, cfg.Custody, cfg.BlocksPerDay)
	weights := weight.NewResolver(members, tokens)
	delegations := delegation.NewRegistry(clock, store, func(addr string) uint64 {
		return weights.Resolve(addr, types.VotingModeStandard)
	})
	proposals := proposal.NewEngine(ownership, clock, store, weights, members, delegations, executor, events, proposal.EngineConfig{
		PassThreshold:  cfg.PassThreshold,
		TimelockPeriod: cfg.TimelockPeriod,
	})
	return &Engine{
		ownership:   ownership,
		clock:       clock,
		store:       store,
		Members:     members,
		Tokens:      tokens,
		Weights:     weights,
		Delegations: delegations,
		Proposals:   proposals,
	}
}

func (e *Engine) Owner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ownership.Owner()
}

func (e *Engine) Height() uint64 { return e.clock.Height() }

// TransferOwnership hands the administrator role to next.
func (e *Engine) TransferOwnership(caller, next string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ownership.Transfer(caller, next) {
		return proposal.ErrNotAuthorized
	}
	return nil
}

// Membership tier registry

func (e *Engine) CreateTier(caller, name string, multiplier uint64, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.CreateTier(caller, name, multiplier, active)
}

func (e *Engine) UpdateTier(caller, name string, multiplier uint64, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.UpdateTier(caller, name, multiplier, active)
}

func (e *Engine) RegisterMember(caller, address, tier string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.RegisterMember(caller, address, tier)
}

func (e *Engine) ChangeMemberTier(caller, address, tier string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.ChangeMemberTier(caller, address, tier)
}

func (e *Engine) SetMemberStatus(caller, address string, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.SetMemberStatus(caller, address, active)
}

func (e *Engine) GetVotingPower(address string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.GetVotingPower(address)
}

func (e *Engine) Member(address string) (types.Member, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.Member(address)
}

func (e *Engine) MemberHistory(address string) []types.MemberHistory {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.History(address)
}

func (e *Engine) Tier(name string) (types.Tier, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Members.Tier(name)
}

// Token snapshot & lockup subsystem

func (e *Engine) AddSupportedToken(caller, token string, decimals uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.AddSupportedToken(caller, token, decimals)
}

func (e *Engine) ConfigureVotingPowerModel(caller, token, model string, lockMultiplier bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.ConfigureVotingPowerModel(caller, token, model, lockMultiplier)
}

func (e *Engine) CreateSnapshot(caller, token string, proposalID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.CreateSnapshot(caller, token, proposalID)
}

func (e *Engine) AddToSnapshot(caller, token string, proposalID uint64, holder string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.AddToSnapshot(caller, token, proposalID, holder)
}

func (e *Engine) LockTokens(caller, token string, amount, lockPeriodDays, multiplierBps uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.LockTokens(caller, token, amount, lockPeriodDays, multiplierBps)
}

func (e *Engine) UnlockTokens(caller, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.UnlockTokens(caller, token)
}

func (e *Engine) TokenVotingPower(token, holder string, proposalID *uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.VotingPower(token, holder, proposalID)
}

func (e *Engine) Lockup(token, holder string) (types.TokenLockup, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Tokens.Lockup(token, holder)
}

// Delegation registry

func (e *Engine) DelegateVote(caller, delegate string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Delegations.DelegateVote(caller, delegate)
}

func (e *Engine) RevokeDelegation(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Delegations.RevokeDelegation(caller)
}

func (e *Engine) Delegation(voter string) (types.Delegation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Delegations.Delegation(voter)
}

// Proposal lifecycle

func (e *Engine) CreateProposal(caller string, params proposal.CreateParams) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.CreateProposal(caller, params)
}

func (e *Engine) Vote(caller string, proposalID uint64, voteFor bool) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.Vote(caller, proposalID, voteFor)
}

func (e *Engine) VoteFor(caller, voter string, proposalID uint64, voteFor bool) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.VoteFor(caller, voter, proposalID, voteFor)
}

func (e *Engine) ExecuteProposal(caller string, proposalID uint64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.ExecuteProposal(caller, proposalID)
}

func (e *Engine) SetCustomWeight(caller, address string, wt uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.SetCustomWeight(caller, address, wt)
}

func (e *Engine) Proposal(proposalID uint64) (types.Proposal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.Proposal(proposalID)
}

func (e *Engine) ListProposals() []types.Proposal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.Proposals()
}

func (e *Engine) VotingRecord(proposalID uint64, voter string) (types.VotingRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Proposals.VotingRecord(proposalID, voter)
}

// Meta returns the persistable engine-wide row.
func (e *Engine) Meta() types.EngineMeta {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.EngineMeta{
		ID:             1,
		Owner:          e.ownership.Owner(),
		Height:         e.clock.Height(),
		NextProposalID: e.Proposals.NextProposalID(),
	}
}

// RestoreMeta reinstates ownership from a persisted meta row.
func (e *Engine) RestoreMeta(meta types.EngineMeta) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if meta.Owner != "" {
		e.ownership.Transfer(e.ownership.Owner(), meta.Owner)
	}
}
