// Package weight turns an identity into a voting-power integer. Pure reads,
// no mutation: membership supplies the base weight, tokenvote supplies
// balance-derived power and the shared square-root transform.
package weight

import (
	"github.com/stake-plus/dao-govern/src/engine/membership"
	"github.com/stake-plus/dao-govern/src/engine/tokenvote"
	"github.com/stake-plus/dao-govern/src/engine/types"
)

type Resolver struct {
	members *membership.Registry
	tokens  *tokenvote.Subsystem
}

func NewResolver(members *membership.Registry, tokens *tokenvote.Subsystem) *Resolver {
	return &Resolver{members: members, tokens: tokens}
}

// Resolve computes a member-based voting power. Members resolve through the
// tier registry (custom weight first, then tier multiplier, 0 when inactive);
// non-members default to 1. Quadratic mode dampens the base through the
// integer square root.
func (r *Resolver) Resolve(address, votingMode string) uint64 {
	base := uint64(1)
	if r.members.IsMember(address) {
		base = r.members.GetVotingPower(address)
	}
	if votingMode == types.VotingModeQuadratic {
		return tokenvote.Isqrt(base)
	}
	return base
}

// ResolveTokenPower computes a token-balance-based voting power, frozen to
// the proposal's snapshot when one was taken.
func (r *Resolver) ResolveTokenPower(token, holder string, proposalID *uint64) (uint64, error) {
	return r.tokens.VotingPower(token, holder, proposalID)
}

// TokenSupported reports whether token is approved for token-weighted voting.
func (r *Resolver) TokenSupported(token string) bool {
	return r.tokens.IsSupported(token)
}
