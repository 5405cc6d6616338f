// Package membership implements the tier registry: named tiers with voting
// power multipliers, per-member tier assignment, and the member history log.
package membership

import (
	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/types"
)

var (
	ErrNotAuthorized     = types.NewError(100, "not authorized")
	ErrMemberExists      = types.NewError(101, "member exists")
	ErrMemberNotFound    = types.NewError(102, "member not found")
	ErrTierExists        = types.NewError(103, "tier exists")
	ErrTierNotFound      = types.NewError(104, "tier not found")
	ErrInvalidMultiplier = types.NewError(105, "invalid multiplier")
	ErrInvalidTierName   = types.NewError(106, "invalid tier name")
)

const maxTierNameLen = 32

type Registry struct {
	admin *types.Ownership
	clock host.Clock
	store types.Store

	tiers        map[string]*types.Tier
	members      map[string]*types.Member
	history      map[string][]types.MemberHistory
	totalMembers uint64
	nextHistID   uint64
}

func NewRegistry(admin *types.Ownership, clock host.Clock, store types.Store) *Registry {
	return &Registry{
		admin:      admin,
		clock:      clock,
		store:      store,
		tiers:      make(map[string]*types.Tier),
		members:    make(map[string]*types.Member),
		history:    make(map[string][]types.MemberHistory),
		nextHistID: 1,
	}
}

// Restore reloads persisted state. Called once before the registry serves.
func (r *Registry) Restore(tiers []types.Tier, members []types.Member, history []types.MemberHistory) {
	for i := range tiers {
		t := tiers[i]
		r.tiers[t.Name] = &t
	}
	for i := range members {
		m := members[i]
		r.members[m.Address] = &m
		if m.Active {
			r.totalMembers++
		}
	}
	for _, h := range history {
		r.history[h.Address] = append(r.history[h.Address], h)
		if h.ID >= r.nextHistID {
			r.nextHistID = h.ID + 1
		}
	}
}

func (r *Registry) CreateTier(caller, name string, multiplier uint64, active bool) error {
	if !r.admin.Is(caller) {
		return ErrNotAuthorized
	}
	if name == "" || len(name) > maxTierNameLen {
		return ErrInvalidTierName
	}
	if multiplier == 0 {
		return ErrInvalidMultiplier
	}
	if _, ok := r.tiers[name]; ok {
		return ErrTierExists
	}
	tier := &types.Tier{Name: name, Multiplier: multiplier, Active: active}
	r.tiers[name] = tier
	return r.store.Save(tier)
}

func (r *Registry) UpdateTier(caller, name string, multiplier uint64, active bool) error {
	if !r.admin.Is(caller) {
		return ErrNotAuthorized
	}
	if multiplier == 0 {
		return ErrInvalidMultiplier
	}
	tier, ok := r.tiers[name]
	if !ok {
		return ErrTierNotFound
	}
	tier.Multiplier = multiplier
	tier.Active = active
	return r.store.Save(tier)
}

func (r *Registry) RegisterMember(caller, address, tierName string) error {
	if !r.admin.Is(caller) {
		return ErrNotAuthorized
	}
	if _, ok := r.members[address]; ok {
		return ErrMemberExists
	}
	tier, ok := r.tiers[tierName]
	if !ok {
		return ErrTierNotFound
	}
	now := r.clock.Height()
	member := &types.Member{
		Address:       address,
		TierName:      tierName,
		JoinedAt:      now,
		TierChangedAt: now,
		Active:        true,
	}
	r.members[address] = member
	tier.MemberCount++
	r.totalMembers++
	hist := r.appendHistory(address, types.HistoryJoin, tierName, now)
	return r.store.Save(member, tier, hist)
}

// ChangeMemberTier moves a member between tiers. A same-tier call is a no-op.
// The history entry is "promote" when the new tier's multiplier exceeds the
// member's current resolved power, "demote" otherwise.
func (r *Registry) ChangeMemberTier(caller, address, newTier string) error {
	if !r.admin.Is(caller) {
		return ErrNotAuthorized
	}
	member, ok := r.members[address]
	if !ok {
		return ErrMemberNotFound
	}
	if member.TierName == newTier {
		return nil
	}
	next, ok := r.tiers[newTier]
	if !ok {
		return ErrTierNotFound
	}
	action := types.HistoryDemote
	if next.Multiplier > r.GetVotingPower(address) {
		action = types.HistoryPromote
	}
	prev := r.tiers[member.TierName]
	now := r.clock.Height()
	// Suspended members are not in any tier's count; only active ones move.
	if member.Active {
		if prev.MemberCount > 0 {
			prev.MemberCount--
		}
		next.MemberCount++
	}
	member.TierName = newTier
	member.TierChangedAt = now
	hist := r.appendHistory(address, action, newTier, now)
	return r.store.Save(member, prev, next, hist)
}

// SetMemberStatus toggles a member's active flag, adjusting counts only on an
// actual transition.
func (r *Registry) SetMemberStatus(caller, address string, active bool) error {
	if !r.admin.Is(caller) {
		return ErrNotAuthorized
	}
	member, ok := r.members[address]
	if !ok {
		return ErrMemberNotFound
	}
	if member.Active == active {
		return nil
	}
	member.Active = active
	tier := r.tiers[member.TierName]
	action := types.HistorySuspend
	if active {
		action = types.HistoryReinstate
		tier.MemberCount++
		r.totalMembers++
	} else {
		if tier.MemberCount > 0 {
			tier.MemberCount--
		}
		if r.totalMembers > 0 {
			r.totalMembers--
		}
	}
	hist := r.appendHistory(address, action, member.TierName, r.clock.Height())
	return r.store.Save(member, tier, hist)
}

// SetCustomWeight overrides the member's tier-derived voting power. A zero
// weight clears the override. Validation and admin gating happen in the
// lifecycle engine, which owns the custom-weight operation.
func (r *Registry) SetCustomWeight(address string, weight uint64) error {
	member, ok := r.members[address]
	if !ok {
		return ErrMemberNotFound
	}
	if weight == 0 {
		member.CustomWeight = nil
	} else {
		w := weight
		member.CustomWeight = &w
	}
	return r.store.Save(member)
}

// GetVotingPower resolves a member's base power: the custom override when
// set, else the tier multiplier. Unknown or inactive members and inactive
// tiers resolve to 0.
func (r *Registry) GetVotingPower(address string) uint64 {
	member, ok := r.members[address]
	if !ok || !member.Active {
		return 0
	}
	tier, ok := r.tiers[member.TierName]
	if !ok || !tier.Active {
		return 0
	}
	if member.CustomWeight != nil {
		return *member.CustomWeight
	}
	return tier.Multiplier
}

func (r *Registry) IsMember(address string) bool {
	_, ok := r.members[address]
	return ok
}

func (r *Registry) Member(address string) (types.Member, bool) {
	member, ok := r.members[address]
	if !ok {
		return types.Member{}, false
	}
	return *member, true
}

func (r *Registry) Tier(name string) (types.Tier, bool) {
	tier, ok := r.tiers[name]
	if !ok {
		return types.Tier{}, false
	}
	return *tier, true
}

func (r *Registry) TotalMembers() uint64 { return r.totalMembers }

func (r *Registry) History(address string) []types.MemberHistory {
	entries := r.history[address]
	out := make([]types.MemberHistory, len(entries))
	copy(out, entries)
	return out
}

func (r *Registry) appendHistory(address, action, tierName string, height uint64) *types.MemberHistory {
	entry := types.MemberHistory{
		ID:       r.nextHistID,
		Address:  address,
		Action:   action,
		TierName: tierName,
		Height:   height,
	}
	r.nextHistID++
	r.history[address] = append(r.history[address], entry)
	return &entry
}
