package types

// Voting modes
const (
	VotingModeStandard  = "standard"
	VotingModeQuadratic = "quadratic"
)

// Token power models
const (
	PowerModelLinear     = "linear"
	PowerModelSquareRoot = "square-root"
)

// Member history actions
const (
	HistoryJoin      = "join"
	HistoryPromote   = "promote"
	HistoryDemote    = "demote"
	HistorySuspend   = "suspend"
	HistoryReinstate = "reinstate"
)

// Membership tiers
type Tier struct {
	Name        string `gorm:"primaryKey;size:32"`
	Multiplier  uint64 `gorm:"not null"`
	Active      bool   `gorm:"default:true"`
	MemberCount uint64 `gorm:"default:0"`
}

// Members
type Member struct {
	Address       string  `gorm:"primaryKey;size:128"`
	TierName      string  `gorm:"size:32;index;not null"`
	JoinedAt      uint64  `gorm:"default:0"`
	TierChangedAt uint64  `gorm:"default:0"`
	Active        bool    `gorm:"default:true"`
	CustomWeight  *uint64 // overrides the tier multiplier when set
}

// Member tier/status history
type MemberHistory struct {
	ID       uint64 `gorm:"primaryKey"`
	Address  string `gorm:"size:128;index;not null"`
	Action   string `gorm:"size:16;not null"`
	TierName string `gorm:"size:32"`
	Height   uint64 `gorm:"default:0"`
}

// One-hop vote delegations, at most one per voter
type Delegation struct {
	Voter       string `gorm:"primaryKey;size:128"`
	Delegate    string `gorm:"size:128;index;not null"`
	DelegatedAt uint64 `gorm:"default:0"`
	VotePower   uint64 `gorm:"default:0"`
}

// External tokens approved for token-weighted voting
type SupportedToken struct {
	Token    string `gorm:"primaryKey;size:128"`
	Decimals uint8  `gorm:"default:0"`
	Approved bool   `gorm:"default:false"`
}

// Per-token voting power configuration
type TokenVotingConfig struct {
	Token            string `gorm:"primaryKey;size:128"`
	Enabled          bool   `gorm:"default:true"`
	WeightMultiplier uint64 `gorm:"default:1"`
	PowerModel       string `gorm:"size:16;not null"`
	LockMultiplier   bool   `gorm:"default:false"`
}

// Token lockups, at most one active per (token, holder)
type TokenLockup struct {
	Token         string `gorm:"primaryKey;size:128"`
	Holder        string `gorm:"primaryKey;size:128"`
	Amount        uint64 `gorm:"not null"`
	LockUntil     uint64 `gorm:"not null"`
	MultiplierBps uint64 `gorm:"not null"`
	LockedAt      uint64 `gorm:"default:0"`
}

// Snapshot header per (token, proposal); write-once
type SnapshotHeader struct {
	Token      string `gorm:"primaryKey;size:128"`
	ProposalID uint64 `gorm:"primaryKey"`
	Height     uint64 `gorm:"not null"`
	Taken      bool   `gorm:"default:false"`
	Digest     uint64 `gorm:"default:0"`
}

// Frozen per-holder balance under a snapshot
type SnapshotBalance struct {
	Token      string `gorm:"primaryKey;size:128"`
	ProposalID uint64 `gorm:"primaryKey"`
	Holder     string `gorm:"primaryKey;size:128"`
	Balance    uint64 `gorm:"not null"`
}

// Proposals
type Proposal struct {
	ID             uint64   `gorm:"primaryKey"`
	Title          string   `gorm:"size:50;not null"`
	Creator        string   `gorm:"size:128;not null"`
	VotesFor       uint64   `gorm:"default:0"`
	VotesAgainst   uint64   `gorm:"default:0"`
	TotalVotePower uint64   `gorm:"default:0"`
	MaxVotePower   uint64   `gorm:"default:0"`
	CreatedAt      uint64   `gorm:"default:0"`
	Active         bool     `gorm:"default:true"`
	ExpiresAt      uint64   `gorm:"not null"`
	Category       string   `gorm:"size:20"`
	Tags           []string `gorm:"serializer:json"`
	VotingMode     string   `gorm:"size:16;not null"`
	Token          string   `gorm:"size:128"` // when set, votes are token-weighted
	Target         string   `gorm:"size:128"` // executable target, empty = not executable
	Function       string   `gorm:"size:64"`
	TimelockUntil  uint64   `gorm:"default:0"`
	Executed       bool     `gorm:"default:false"`
}

// Voting records, one per (proposal, voter)
type VotingRecord struct {
	ProposalID uint64 `gorm:"primaryKey"`
	Voter      string `gorm:"primaryKey;size:128"`
	VotedFor   bool   `gorm:"not null"`
	PowerUsed  uint64 `gorm:"not null"`
	CastBy     string `gorm:"size:128"` // voter itself or its delegate
	Height     uint64 `gorm:"default:0"`
}

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:32;not null"`
	Value string `gorm:"size:256;not null"`
}

// Engine-wide singleton row: ownership, clock height, proposal counter
type EngineMeta struct {
	ID             uint8  `gorm:"primaryKey"`
	Owner          string `gorm:"size:128;not null"`
	Height         uint64 `gorm:"default:0"`
	NextProposalID uint64 `gorm:"default:1"`
}
