// Package tokenvote implements token-weighted voting power: supported-token
// approval, per-proposal balance snapshots, and time-locked stakes that boost
// power. Snapshots freeze balances so votes cannot be bought after a proposal
// opens; lockups trade custody of tokens for a multiplier.
package tokenvote

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/OneOfOne/xxhash"
	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/types"
)

// The numbered table matches the on-chain error constants one for one.
// ErrNotTokenOwner and ErrLockExpired hold their slots for callers that branch
// on codes; no operation in this subsystem currently returns them.
var (
	ErrUnauthorized        = types.NewError(100, "unauthorized")
	ErrNotTokenOwner       = types.NewError(101, "not token owner")
	ErrInvalidToken        = types.NewError(102, "invalid token")
	ErrSnapshotExists      = types.NewError(103, "snapshot exists")
	ErrNoSnapshot          = types.NewError(104, "no snapshot")
	ErrAlreadyLocked       = types.NewError(105, "already locked")
	ErrLockExpired         = types.NewError(106, "lock expired")
	ErrLockNotExpired      = types.NewError(107, "lock not expired")
	ErrInvalidLockPeriod   = types.NewError(108, "invalid lock period")
	ErrZeroAmount          = types.NewError(109, "zero amount")
	ErrInsufficientBalance = types.NewError(110, "insufficient balance")
)

const (
	minLockDays = 7
	maxLockDays = 365
	minLockBps  = 100
	maxLockBps  = 300
)

type lockKey struct {
	token  string
	holder string
}

type snapKey struct {
	token      string
	proposalID uint64
}

type Subsystem struct {
	admin   *types.Ownership
	clock   host.Clock
	ledger  host.TokenLedger
	store   types.Store
	custody string // account holding locked tokens
	bpd     uint64 // blocks per day, for lock period conversion

	tokens   map[string]*types.SupportedToken
	configs  map[string]*types.TokenVotingConfig
	lockups  map[lockKey]*types.TokenLockup
	headers  map[snapKey]*types.SnapshotHeader
	balances map[snapKey]map[string]uint64
}

func NewSubsystem(admin *types.Ownership, clock host.Clock, ledger host.TokenLedger, store types.Store, custody string, blocksPerDay uint64) *Subsystem {
	if blocksPerDay == 0 {
		blocksPerDay = 144
	}
	return &Subsystem{
		admin:    admin,
		clock:    clock,
		ledger:   ledger,
		store:    store,
		custody:  custody,
		bpd:      blocksPerDay,
		tokens:   make(map[string]*types.SupportedToken),
		configs:  make(map[string]*types.TokenVotingConfig),
		lockups:  make(map[lockKey]*types.TokenLockup),
		headers:  make(map[snapKey]*types.SnapshotHeader),
		balances: make(map[snapKey]map[string]uint64),
	}
}

// Restore reloads persisted state. Called once before the subsystem serves.
func (s *Subsystem) Restore(tokens []types.SupportedToken, configs []types.TokenVotingConfig, lockups []types.TokenLockup, headers []types.SnapshotHeader, balances []types.SnapshotBalance) {
	for i := range tokens {
		t := tokens[i]
		s.tokens[t.Token] = &t
	}
	for i := range configs {
		c := configs[i]
		s.configs[c.Token] = &c
	}
	for i := range lockups {
		l := lockups[i]
		s.lockups[lockKey{l.Token, l.Holder}] = &l
	}
	for i := range headers {
		h := headers[i]
		key := snapKey{h.Token, h.ProposalID}
		s.headers[key] = &h
		// A header may be persisted before any holder was added.
		if s.balances[key] == nil {
			s.balances[key] = make(map[string]uint64)
		}
	}
	for _, b := range balances {
		key := snapKey{b.Token, b.ProposalID}
		if s.balances[key] == nil {
			s.balances[key] = make(map[string]uint64)
		}
		s.balances[key][b.Holder] = b.Balance
	}
}

// AddSupportedToken approves a token for voting after probing its identity
// query on the external ledger.
func (s *Subsystem) AddSupportedToken(caller, token string, decimals uint8) error {
	if !s.admin.Is(caller) {
		return ErrUnauthorized
	}
	if _, err := s.ledger.Name(token); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	rec := &types.SupportedToken{Token: token, Decimals: decimals, Approved: true}
	s.tokens[token] = rec
	return s.store.Save(rec)
}

func (s *Subsystem) ConfigureVotingPowerModel(caller, token, model string, lockMultiplier bool) error {
	if !s.admin.Is(caller) {
		return ErrUnauthorized
	}
	if model != types.PowerModelLinear && model != types.PowerModelSquareRoot {
		return ErrInvalidToken
	}
	tok, ok := s.tokens[token]
	if !ok || !tok.Approved {
		return ErrInvalidToken
	}
	cfg := s.configs[token]
	if cfg == nil {
		cfg = &types.TokenVotingConfig{Token: token, Enabled: true, WeightMultiplier: 1}
		s.configs[token] = cfg
	}
	cfg.PowerModel = model
	cfg.LockMultiplier = lockMultiplier
	return s.store.Save(cfg)
}

// CreateSnapshot opens a snapshot for (token, proposal) at the current
// height. One-shot: a second call fails, the header is never rewritten.
func (s *Subsystem) CreateSnapshot(caller, token string, proposalID uint64) error {
	if !s.admin.Is(caller) {
		return ErrUnauthorized
	}
	tok, ok := s.tokens[token]
	if !ok || !tok.Approved {
		return ErrInvalidToken
	}
	key := snapKey{token, proposalID}
	if _, ok := s.headers[key]; ok {
		return ErrSnapshotExists
	}
	header := &types.SnapshotHeader{
		Token:      token,
		ProposalID: proposalID,
		Height:     s.clock.Height(),
		Taken:      true,
	}
	s.headers[key] = header
	s.balances[key] = make(map[string]uint64)
	return s.store.Save(header)
}

// AddToSnapshot freezes a holder's live balance under an existing snapshot.
// Re-invocation overwrites with the then-current balance; a trusted
// administrator drives this before voting opens.
func (s *Subsystem) AddToSnapshot(caller, token string, proposalID uint64, holder string) error {
	if !s.admin.Is(caller) {
		return ErrUnauthorized
	}
	key := snapKey{token, proposalID}
	header, ok := s.headers[key]
	if !ok {
		return ErrNoSnapshot
	}
	balance, err := s.ledger.BalanceOf(token, holder)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	s.balances[key][holder] = balance
	header.Digest = s.digest(key)
	rec := &types.SnapshotBalance{Token: token, ProposalID: proposalID, Holder: holder, Balance: balance}
	return s.store.Save(rec, header)
}

// LockTokens takes custody of amount for lockPeriodDays in exchange for a
// voting power multiplier in basis points.
func (s *Subsystem) LockTokens(caller, token string, amount, lockPeriodDays, multiplierBps uint64) error {
	tok, ok := s.tokens[token]
	if !ok || !tok.Approved {
		return ErrInvalidToken
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if lockPeriodDays < minLockDays || lockPeriodDays > maxLockDays {
		return ErrInvalidLockPeriod
	}
	if multiplierBps < minLockBps || multiplierBps > maxLockBps {
		return ErrInvalidLockPeriod
	}
	key := lockKey{token, caller}
	if _, ok := s.lockups[key]; ok {
		return ErrAlreadyLocked
	}
	balance, err := s.ledger.BalanceOf(token, caller)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	if err := s.ledger.Transfer(token, amount, caller, s.custody, "lockup"); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientBalance, err)
	}
	now := s.clock.Height()
	lockup := &types.TokenLockup{
		Token:         token,
		Holder:        caller,
		Amount:        amount,
		LockUntil:     now + lockPeriodDays*s.bpd,
		MultiplierBps: multiplierBps,
		LockedAt:      now,
	}
	s.lockups[key] = lockup
	return s.store.Save(lockup)
}

// UnlockTokens returns an expired lockup to its holder. The lockup record is
// deleted before the return transfer is issued, so a reentrant call made by
// the token contract during the transfer observes no lockup.
func (s *Subsystem) UnlockTokens(caller, token string) error {
	key := lockKey{token, caller}
	lockup, ok := s.lockups[key]
	if !ok {
		return ErrNoSnapshot
	}
	if s.clock.Height() < lockup.LockUntil {
		return ErrLockNotExpired
	}
	amount := lockup.Amount
	delete(s.lockups, key)
	if err := s.store.Delete(&types.TokenLockup{Token: token, Holder: caller}); err != nil {
		return err
	}
	if err := s.ledger.Transfer(token, amount, s.custody, caller, "unlock"); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientBalance, err)
	}
	return nil
}

// VotingPower resolves a holder's token-derived power. With a proposal id and
// a taken snapshot the frozen balance is used; a header whose taken flag is
// unset fails; otherwise the live balance feeds the configured curve. The
// lockup multiplier applies last.
func (s *Subsystem) VotingPower(token, holder string, proposalID *uint64) (uint64, error) {
	tok, ok := s.tokens[token]
	if !ok || !tok.Approved {
		return 0, ErrInvalidToken
	}
	cfg, ok := s.configs[token]
	if !ok || !cfg.Enabled {
		return 0, ErrInvalidToken
	}
	var balance uint64
	if proposalID != nil {
		key := snapKey{token, *proposalID}
		if header, ok := s.headers[key]; ok {
			if !header.Taken {
				return 0, ErrNoSnapshot
			}
			balance = s.balances[key][holder]
		} else {
			live, err := s.ledger.BalanceOf(token, holder)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
			}
			balance = live
		}
	} else {
		live, err := s.ledger.BalanceOf(token, holder)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		balance = live
	}
	power := ApplyCurve(cfg.PowerModel, balance)
	if cfg.WeightMultiplier > 1 {
		power *= cfg.WeightMultiplier
	}
	if cfg.LockMultiplier {
		if lockup, ok := s.lockups[lockKey{token, holder}]; ok && s.clock.Height() < lockup.LockUntil {
			power = power * lockup.MultiplierBps / 100
		}
	}
	return power, nil
}

func (s *Subsystem) Lockup(token, holder string) (types.TokenLockup, bool) {
	lockup, ok := s.lockups[lockKey{token, holder}]
	if !ok {
		return types.TokenLockup{}, false
	}
	return *lockup, true
}

func (s *Subsystem) Snapshot(token string, proposalID uint64) (types.SnapshotHeader, bool) {
	header, ok := s.headers[snapKey{token, proposalID}]
	if !ok {
		return types.SnapshotHeader{}, false
	}
	return *header, true
}

func (s *Subsystem) IsSupported(token string) bool {
	tok, ok := s.tokens[token]
	return ok && tok.Approved
}

// digest checksums the frozen balance map so snapshot drift is detectable.
func (s *Subsystem) digest(key snapKey) uint64 {
	holders := make([]string, 0, len(s.balances[key]))
	for holder := range s.balances[key] {
		holders = append(holders, holder)
	}
	sort.Strings(holders)
	h := xxhash.New64()
	for _, holder := range holders {
		h.WriteString(holder)
		h.WriteString(":")
		h.WriteString(strconv.FormatUint(s.balances[key][holder], 10))
		h.WriteString(";")
	}
	return h.Sum64()
}
