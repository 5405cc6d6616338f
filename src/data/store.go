package data

import (
	"log"
	"sync"

	"github.com/stake-plus/dao-govern/src/engine/types"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&types.Tier{}, &types.Member{}, &types.MemberHistory{},
	&types.Delegation{},
	&types.SupportedToken{}, &types.TokenVotingConfig{}, &types.TokenLockup{},
	&types.SnapshotHeader{}, &types.SnapshotBalance{},
	&types.Proposal{}, &types.VotingRecord{},
	&types.Setting{}, &types.EngineMeta{},
}

func Migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

// GormStore mirrors engine mutations into MySQL. The engine's memory stays
// authoritative; rows exist so state survives restarts.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(records ...any) error {
	for _, rec := range records {
		if err := s.db.Save(rec).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) Delete(records ...any) error {
	for _, rec := range records {
		if err := s.db.Delete(rec).Error; err != nil {
			return err
		}
	}
	return nil
}

// State is the full persisted engine state.
type State struct {
	Meta             types.EngineMeta
	Tiers            []types.Tier
	Members          []types.Member
	History          []types.MemberHistory
	Delegations      []types.Delegation
	Tokens           []types.SupportedToken
	Configs          []types.TokenVotingConfig
	Lockups          []types.TokenLockup
	SnapshotHeaders  []types.SnapshotHeader
	SnapshotBalances []types.SnapshotBalance
	Proposals        []types.Proposal
	Records          []types.VotingRecord
}

// LoadState reads everything the engine needs to restore itself.
func LoadState(db *gorm.DB) (*State, error) {
	state := &State{}
	if err := db.FirstOrCreate(&state.Meta, types.EngineMeta{ID: 1}).Error; err != nil {
		return nil, err
	}
	loads := []struct {
		dest any
	}{
		{&state.Tiers}, {&state.Members}, {&state.History},
		{&state.Delegations},
		{&state.Tokens}, {&state.Configs}, {&state.Lockups},
		{&state.SnapshotHeaders}, {&state.SnapshotBalances},
		{&state.Proposals}, {&state.Records},
	}
	for _, l := range loads {
		if err := db.Find(l.dest).Error; err != nil {
			return nil, err
		}
	}
	return state, nil
}

// HeightClock is the host clock backed by the engine meta row. The service
// advances it; the engine only reads.
type HeightClock struct {
	db     *gorm.DB
	mu     sync.RWMutex
	height uint64
}

func NewHeightClock(db *gorm.DB, height uint64) *HeightClock {
	return &HeightClock{db: db, height: height}
}

func (c *HeightClock) Height() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// Advance moves the clock forward and persists the new height.
func (c *HeightClock) Advance(blocks uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height += blocks
	if err := c.db.Model(&types.EngineMeta{}).Where("id = ?", 1).Update("height", c.height).Error; err != nil {
		log.Printf("height persist failed: %v", err)
	}
	return c.height
}
