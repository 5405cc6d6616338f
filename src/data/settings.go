package data

import (
	"sync"

	"github.com/stake-plus/dao-govern/src/engine/types"
	"gorm.io/gorm"
)

// SettingCache holds the settings table in memory. Loaded once at boot;
// env fallbacks in the config layer cover anything missing.
type SettingCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func (c *SettingCache) Load(db *gorm.DB) error {
	var rows []types.Setting
	if err := db.Find(&rows).Error; err != nil {
		return err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}
	c.mu.Lock()
	c.values = values
	c.mu.Unlock()
	return nil
}

func (c *SettingCache) Get(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[name]
}

var settings SettingCache

// LoadSettings fills the process-wide cache from the settings table.
func LoadSettings(db *gorm.DB) error { return settings.Load(db) }

func GetSetting(name string) string { return settings.Get(name) }
