package config

import (
	"log"
	"os"
	"strconv"

	"github.com/stake-plus/dao-govern/src/data"
	"gorm.io/gorm"
)

type Config struct {
	Port           string
	MySQLDSN       string
	RedisURL       string
	JWTSecret      string
	Owner          string
	Custody        string
	PassThreshold  uint64
	TimelockPeriod uint64
	BlocksPerDay   uint64
	BlockSeconds   uint64 // 0 disables the built-in height ticker
}

func Load(db *gorm.DB) Config {
	// Load settings from database
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	owner := data.GetSetting("owner")
	if owner == "" {
		owner = os.Getenv("DAO_OWNER")
	}

	custody := data.GetSetting("custody_account")
	if custody == "" {
		custody = getenv("DAO_CUSTODY", "daogov-custody")
	}

	return Config{
		Port:           getenv("PORT", "9380"),
		MySQLDSN:       getenv("MYSQL_DSN", "daogov:daogov@tcp(127.0.0.1:3306)/daogov"),
		RedisURL:       getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		Owner:          owner,
		Custody:        custody,
		PassThreshold:  settingUint("pass_threshold", "PASS_THRESHOLD", 100),
		TimelockPeriod: settingUint("timelock_period", "TIMELOCK_PERIOD", 144),
		BlocksPerDay:   settingUint("blocks_per_day", "BLOCKS_PER_DAY", 144),
		BlockSeconds:   settingUint("block_seconds", "BLOCK_SECONDS", 0),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func settingUint(name, envKey string, def uint64) uint64 {
	raw := data.GetSetting(name)
	if raw == "" {
		raw = os.Getenv(envKey)
	}
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Printf("bad %s value %q, using %d", name, raw, def)
		return def
	}
	return v
}
