package config

import (
	"fmt"
	"time"
)

// SessionConfig selects where per-session fare caches live.
type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend   string      `json:"backend"`
	Redis     RedisConfig `json:"redis"`
	KeyPrefix string      `json:"key_prefix"`
	// TTLSeconds expires idle sessions; 0 keeps them until the store is reset.
	TTLSeconds int `json:"ttl_seconds"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (c *SessionConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "taxifare:session:"
	}
	if c.Backend == "redis" && c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

func (c SessionConfig) Validate() error {
	if c.Backend != "memory" && c.Backend != "redis" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.TTLSeconds < 0 {
		return fmt.Errorf("ttl_seconds must not be negative")
	}
	return nil
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
