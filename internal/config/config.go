package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"warhex/internal/battle"
)

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	Database *struct {
		Path string `json:"path"`
	} `json:"database"`
	// Idle battle sessions are expired after this many seconds.
	SessionTTLSeconds int `json:"session_ttl_seconds"`
	// Battle rule knobs, applied to every battle the server creates
	// unless the request overrides them.
	Rules *battle.Options `json:"rules"`
}

// LoadedConfig contains the server address, database path, session TTL and
// default battle rules.
type LoadedConfig struct {
	ServerAddress string
	DatabasePath  string
	SessionTTL    time.Duration
	Rules         battle.Options
}

// LoadConfig reads the configuration file at path. Every key is optional;
// a missing file is an error so a typoed path never silently runs on
// defaults.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if rc.SessionTTLSeconds < 0 {
		return nil, fmt.Errorf("config file %s: session_ttl_seconds must not be negative", path)
	}

	out := &LoadedConfig{
		ServerAddress: ":8080",
		DatabasePath:  "./data/warhex.db",
		SessionTTL:    30 * time.Minute,
		Rules:         battle.DefaultOptions(),
	}
	if rc.Server != nil && rc.Server.Address != "" {
		out.ServerAddress = rc.Server.Address
	}
	if rc.Database != nil && rc.Database.Path != "" {
		out.DatabasePath = rc.Database.Path
	}
	if rc.SessionTTLSeconds > 0 {
		out.SessionTTL = time.Duration(rc.SessionTTLSeconds) * time.Second
	}
	if rc.Rules != nil {
		out.Rules = *rc.Rules
	}
	return out, nil
}

// Default returns the configuration used when no config file is given.
func Default() *LoadedConfig {
	return &LoadedConfig{
		ServerAddress: ":8080",
		DatabasePath:  "./data/warhex.db",
		SessionTTL:    30 * time.Minute,
		Rules:         battle.DefaultOptions(),
	}
}
