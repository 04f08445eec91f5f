package ratelimit

import (
	"fmt"
	"time"

	"gate/modules/clock"
)

// PresetName identifies a pre-configured limiter policy.
type PresetName string

const (
	// PresetAPI is the general-purpose policy: a larger cap over a short window.
	PresetAPI PresetName = "api"
	// PresetAuth protects authentication endpoints: small cap, long window.
	PresetAuth PresetName = "auth"
	// PresetStrict is for abuse-prone endpoints: small cap, very long window.
	PresetStrict PresetName = "strict"
)

// PresetConfig overrides one preset from the environment. Zero-valued
// fields keep the preset's built-in default.
type PresetConfig struct {
	Window  time.Duration `env:"WINDOW"`
	Limit   int64         `env:"LIMIT"`
	Message string        `env:"MESSAGE"`
}

// PresetsConfig aggregates the per-preset overrides.
type PresetsConfig struct {
	API    PresetConfig `envPrefix:"API_"`
	Auth   PresetConfig `envPrefix:"AUTH_"`
	Strict PresetConfig `envPrefix:"STRICT_"`
}

var presetDefaults = map[PresetName]FixedWindowConfig{
	PresetAPI:    {Window: time.Minute, Limit: 100},
	PresetAuth:   {Window: 15 * time.Minute, Limit: 5},
	PresetStrict: {Window: time.Hour, Limit: 10},
}

func (c PresetConfig) apply(def FixedWindowConfig) FixedWindowConfig {
	if c.Window > 0 {
		def.Window = c.Window
	}
	if c.Limit > 0 {
		def.Limit = c.Limit
	}
	if c.Message != "" {
		def.Message = c.Message
	}
	return def
}

// StoreFactory builds the counter store backing one preset. Each preset gets
// its own store (or its own key namespace on a shared backend) so policies
// never share counters even when client keys collide.
type StoreFactory func(name PresetName) CounterStore

// MemoryStoreFactory backs every preset with an independent in-process counter.
func MemoryStoreFactory(name PresetName) CounterStore {
	return NewMemoryCounter()
}

// Registry holds the named, pre-configured limiters.
type Registry struct {
	limiters map[PresetName]*FixedWindowLimiter
}

// NewRegistry constructs one independent limiter per preset.
func NewRegistry(clk clock.Clock, newStore StoreFactory, cfg PresetsConfig) (*Registry, error) {
	if newStore == nil {
		newStore = MemoryStoreFactory
	}

	overrides := map[PresetName]PresetConfig{
		PresetAPI:    cfg.API,
		PresetAuth:   cfg.Auth,
		PresetStrict: cfg.Strict,
	}

	limiters := make(map[PresetName]*FixedWindowLimiter, len(presetDefaults))
	for name, def := range presetDefaults {
		lim, err := NewFixedWindow(clk, newStore(name), overrides[name].apply(def))
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		limiters[name] = lim
	}

	return &Registry{limiters: limiters}, nil
}

// Get returns the limiter registered under name.
func (r *Registry) Get(name PresetName) (*FixedWindowLimiter, bool) {
	lim, ok := r.limiters[name]
	return lim, ok
}
