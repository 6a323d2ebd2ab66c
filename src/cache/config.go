package cache

import (
	"os"
	"strconv"
)

const (
	DefaultStoreCapacity = 1 << 16
	DefaultIndexCapacity = 2048
	DefaultMaxSlot       = 1<<24 - 1
)

// Config sizes the cache up front. MaxSlot bounds the slot an order id may
// map to; zero means unbounded.
type Config struct {
	StoreCapacity int
	IndexCapacity int
	MaxSlot       uint64
}

func DefaultConfig() Config {
	return Config{
		StoreCapacity: DefaultStoreCapacity,
		IndexCapacity: DefaultIndexCapacity,
		MaxSlot:       DefaultMaxSlot,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies ORDER_STORE_CAPACITY,
// ORDER_INDEX_CAPACITY and ORDER_MAX_SLOT when they parse.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if env := os.Getenv("ORDER_STORE_CAPACITY"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed >= 0 {
			cfg.StoreCapacity = parsed
		}
	}

	if env := os.Getenv("ORDER_INDEX_CAPACITY"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed >= 0 {
			cfg.IndexCapacity = parsed
		}
	}

	if env := os.Getenv("ORDER_MAX_SLOT"); env != "" {
		if parsed, err := strconv.ParseUint(env, 10, 64); err == nil {
			cfg.MaxSlot = parsed
		}
	}

	return cfg
}
