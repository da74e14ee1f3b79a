package config

import (
	"os"
	"strconv"
)

// FromEnv applies environment overrides on top of a loaded config.
// Unset or unparsable variables leave the config untouched.
func FromEnv(cfg Config) Config {
	if v := os.Getenv("TASKGLANCE_TIME_ZONE"); v != "" {
		cfg.TimeZone = v
	}
	if v := getEnvInt("TASKGLANCE_TOP_N"); v > 0 {
		cfg.Glance.TopN = v
	}
	if v := os.Getenv("TASKGLANCE_PRIVACY"); v != "" {
		cfg.Glance.Privacy = v
	}
	if v := os.Getenv("TASKGLANCE_PINNED_PROJECT"); v != "" {
		cfg.Glance.PinnedProject = v
	}
	if v := os.Getenv("TASKGLANCE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TASKGLANCE_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("TASKGLANCE_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
