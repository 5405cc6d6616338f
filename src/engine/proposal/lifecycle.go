// Package proposal owns the proposal lifecycle: creation, the open voting
// window, duplicate-vote prevention, tallying, and timelocked execution of
// passed proposals.
package proposal

import (
	"fmt"
	"sort"

	"github.com/stake-plus/dao-govern/src/engine/delegation"
	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/membership"
	"github.com/stake-plus/dao-govern/src/engine/types"
	"github.com/stake-plus/dao-govern/src/engine/weight"
)

var (
	ErrNotAuthorized         = types.NewError(100, "not authorized")
	ErrInvalidProposal       = types.NewError(103, "invalid proposal")
	ErrProposalExpired       = types.NewError(104, "proposal expired")
	ErrDuplicateVote         = types.NewError(106, "duplicate vote")
	ErrInvalidMembershipTier = types.NewError(107, "invalid membership tier")
	ErrInvalidVotingWeight   = types.NewError(108, "invalid voting weight")
	ErrInvalidTokenContract  = types.NewError(109, "invalid token contract")
	ErrExecutionFailed       = types.NewError(110, "execution failed")
	ErrProposalNotPassed     = types.NewError(111, "proposal not passed")
	ErrTimelockActive        = types.NewError(112, "timelock active")
)

const (
	maxTitleLen    = 50
	maxCategoryLen = 20
	maxTags        = 5
	maxTagLen      = 15
)

// VoteEvent is published after every recorded vote.
type VoteEvent struct {
	ProposalID uint64
	Voter      string
	CastBy     string
	VotedFor   bool
	Power      uint64
	Height     uint64
}

// EventSink receives voting-record events. The service publishes them to a
// redis stream; tests use a nop or capturing sink.
type EventSink interface {
	VoteRecorded(event VoteEvent)
}

type NopSink struct{}

func (NopSink) VoteRecorded(VoteEvent) {}

// CreateParams carries the caller-supplied proposal fields.
type CreateParams struct {
	Title           string
	ExpirationDelta uint64
	Category        string
	Tags            []string
	VotingMode      string
	Token           string // optional: token-weighted voting
	MaxVotePower    uint64 // informational cap, recorded but not enforced
	Target          string // optional: executable target
	Function        string
}

type recordKey struct {
	proposalID uint64
	voter      string
}

type Engine struct {
	admin       *types.Ownership
	clock       host.Clock
	store       types.Store
	weights     *weight.Resolver
	members     *membership.Registry
	delegations *delegation.Registry
	executor    host.Executor
	events      EventSink

	passThreshold  uint64
	timelockPeriod uint64

	nextID    uint64
	proposals map[uint64]*types.Proposal
	records   map[recordKey]*types.VotingRecord
}

type EngineConfig struct {
	PassThreshold  uint64
	TimelockPeriod uint64
}

func NewEngine(admin *types.Ownership, clock host.Clock, store types.Store, weights *weight.Resolver, members *membership.Registry, delegations *delegation.Registry, executor host.Executor, events EventSink, cfg EngineConfig) *Engine {
	if events == nil {
		events = NopSink{}
	}
	return &Engine{
		admin:          admin,
		clock:          clock,
		store:          store,
		weights:        weights,
		members:        members,
		delegations:    delegations,
		executor:       executor,
		events:         events,
		passThreshold:  cfg.PassThreshold,
		timelockPeriod: cfg.TimelockPeriod,
		nextID:         1,
		proposals:      make(map[uint64]*types.Proposal),
		records:        make(map[recordKey]*types.VotingRecord),
	}
}

// Restore reloads persisted state. Called once before the engine serves.
func (e *Engine) Restore(nextID uint64, proposals []types.Proposal, records []types.VotingRecord) {
	if nextID > 0 {
		e.nextID = nextID
	}
	for i := range proposals {
		p := proposals[i]
		e.proposals[p.ID] = &p
		if p.ID >= e.nextID {
			e.nextID = p.ID + 1
		}
	}
	for i := range records {
		rec := records[i]
		e.records[recordKey{rec.ProposalID, rec.Voter}] = &rec
	}
}

func (e *Engine) NextProposalID() uint64 { return e.nextID }

// CreateProposal validates and registers a new proposal, returning its id.
// An executable target arms the timelock; a token reference switches the
// proposal to token-weighted voting.
func (e *Engine) CreateProposal(caller string, params CreateParams) (uint64, error) {
	if !e.admin.Is(caller) {
		return 0, ErrNotAuthorized
	}
	if params.Title == "" || len(params.Title) > maxTitleLen {
		return 0, ErrInvalidProposal
	}
	if params.ExpirationDelta == 0 {
		return 0, ErrInvalidProposal
	}
	if len(params.Category) > maxCategoryLen {
		return 0, ErrInvalidProposal
	}
	if len(params.Tags) > maxTags {
		return 0, ErrInvalidProposal
	}
	for _, tag := range params.Tags {
		if tag == "" || len(tag) > maxTagLen {
			return 0, ErrInvalidProposal
		}
	}
	if params.VotingMode != types.VotingModeStandard && params.VotingMode != types.VotingModeQuadratic {
		return 0, ErrInvalidProposal
	}
	if params.Target != "" && params.Function == "" {
		return 0, ErrInvalidProposal
	}
	if params.Token != "" && !e.weights.TokenSupported(params.Token) {
		return 0, ErrInvalidTokenContract
	}

	now := e.clock.Height()
	var timelockUntil uint64
	if params.Target != "" {
		timelockUntil = now + e.timelockPeriod
	}
	prop := &types.Proposal{
		ID:            e.nextID,
		Title:         params.Title,
		Creator:       caller,
		CreatedAt:     now,
		Active:        true,
		ExpiresAt:     now + params.ExpirationDelta,
		Category:      params.Category,
		Tags:          params.Tags,
		VotingMode:    params.VotingMode,
		Token:         params.Token,
		MaxVotePower:  params.MaxVotePower,
		Target:        params.Target,
		Function:      params.Function,
		TimelockUntil: timelockUntil,
	}
	e.nextID++
	e.proposals[prop.ID] = prop
	if err := e.store.Save(prop); err != nil {
		return 0, err
	}
	return prop.ID, nil
}

// Vote casts the caller's own vote.
func (e *Engine) Vote(caller string, proposalID uint64, voteFor bool) (uint64, error) {
	return e.VoteFor(caller, caller, proposalID, voteFor)
}

// VoteFor casts a vote for voter, who is either the caller or a voter that
// delegated to the caller. The record is keyed by the voter, so a voter and
// its delegate can never both be counted.
func (e *Engine) VoteFor(caller, voter string, proposalID uint64, voteFor bool) (uint64, error) {
	prop, ok := e.proposals[proposalID]
	if !ok {
		return 0, ErrInvalidProposal
	}
	now := e.clock.Height()
	if !prop.Active || now >= prop.ExpiresAt {
		return 0, ErrProposalExpired
	}
	if !e.delegations.IsAuthorized(caller, voter) {
		return 0, ErrNotAuthorized
	}
	key := recordKey{proposalID, voter}
	if _, ok := e.records[key]; ok {
		return 0, ErrDuplicateVote
	}

	var power uint64
	if prop.Token != "" {
		id := proposalID
		tokenPower, err := e.weights.ResolveTokenPower(prop.Token, voter, &id)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTokenContract, err)
		}
		power = tokenPower
	} else {
		power = e.weights.Resolve(voter, prop.VotingMode)
	}

	if voteFor {
		prop.VotesFor += power
	} else {
		prop.VotesAgainst += power
	}
	prop.TotalVotePower += power
	rec := &types.VotingRecord{
		ProposalID: proposalID,
		Voter:      voter,
		VotedFor:   voteFor,
		PowerUsed:  power,
		CastBy:     caller,
		Height:     now,
	}
	e.records[key] = rec
	if err := e.store.Save(prop, rec); err != nil {
		return 0, err
	}
	e.events.VoteRecorded(VoteEvent{
		ProposalID: proposalID,
		Voter:      voter,
		CastBy:     caller,
		VotedFor:   voteFor,
		Power:      power,
		Height:     now,
	})
	return power, nil
}

// ExecuteProposal dispatches a passed proposal to its executable target once
// the timelock has elapsed. The executed flag is set only after the external
// call confirms success, so a failed dispatch stays retryable.
func (e *Engine) ExecuteProposal(caller string, proposalID uint64) (bool, error) {
	prop, ok := e.proposals[proposalID]
	if !ok {
		return false, ErrInvalidProposal
	}
	if !e.admin.Is(caller) {
		return false, ErrNotAuthorized
	}
	if prop.VotesFor < e.passThreshold {
		return false, ErrProposalNotPassed
	}
	if prop.Target == "" || prop.Function == "" || prop.Executed {
		return false, ErrInvalidProposal
	}
	if e.clock.Height() < prop.TimelockUntil {
		return false, ErrTimelockActive
	}
	result, err := e.executor.Execute(prop.Target, prop.Function, proposalID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}
	prop.Executed = true
	if err := e.store.Save(prop); err != nil {
		return result, err
	}
	return result, nil
}

// SetCustomWeight overrides a member's voting weight. Zero clears the
// override.
func (e *Engine) SetCustomWeight(caller, address string, wt uint64) error {
	if !e.admin.Is(caller) {
		return ErrNotAuthorized
	}
	if !e.members.IsMember(address) {
		return ErrInvalidMembershipTier
	}
	if err := e.members.SetCustomWeight(address, wt); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVotingWeight, err)
	}
	return nil
}

func (e *Engine) Proposal(proposalID uint64) (types.Proposal, bool) {
	prop, ok := e.proposals[proposalID]
	if !ok {
		return types.Proposal{}, false
	}
	return *prop, true
}

// Proposals lists all proposals in id order.
func (e *Engine) Proposals() []types.Proposal {
	out := make([]types.Proposal, 0, len(e.proposals))
	for _, prop := range e.proposals {
		out = append(out, *prop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (e *Engine) VotingRecord(proposalID uint64, voter string) (types.VotingRecord, bool) {
	rec, ok := e.records[recordKey{proposalID, voter}]
	if !ok {
		return types.VotingRecord{}, false
	}
	return *rec, true
}

// Passed reports whether the proposal has reached the pass threshold.
func (e *Engine) Passed(proposalID uint64) bool {
	prop, ok := e.proposals[proposalID]
	return ok && prop.VotesFor >= e.passThreshold
}
