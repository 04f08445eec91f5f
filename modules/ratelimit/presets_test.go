package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNewRegistry_Defaults(t *testing.T) {
	reg, err := NewRegistry(newFakeClock(), nil, PresetsConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name   PresetName
		limit  int64
		window time.Duration
	}{
		{PresetAPI, 100, time.Minute},
		{PresetAuth, 5, 15 * time.Minute},
		{PresetStrict, 10, time.Hour},
	}
	for _, c := range cases {
		lim, ok := reg.Get(c.name)
		if !ok {
			t.Fatalf("preset %q not registered", c.name)
		}
		if lim.Limit() != c.limit {
			t.Fatalf("preset %q: limit = %d, want %d", c.name, lim.Limit(), c.limit)
		}
		if lim.Window() != c.window {
			t.Fatalf("preset %q: window = %s, want %s", c.name, lim.Window(), c.window)
		}
		if lim.Message() != DefaultMessage {
			t.Fatalf("preset %q: message = %q, want default", c.name, lim.Message())
		}
	}
}

func TestNewRegistry_Overrides(t *testing.T) {
	reg, err := NewRegistry(newFakeClock(), nil, PresetsConfig{
		Auth: PresetConfig{Window: time.Minute, Limit: 2, Message: "slow down"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lim, _ := reg.Get(PresetAuth)
	if lim.Limit() != 2 || lim.Window() != time.Minute || lim.Message() != "slow down" {
		t.Fatalf("override not applied: %+v", lim)
	}

	// untouched presets keep their defaults
	api, _ := reg.Get(PresetAPI)
	if api.Limit() != 100 {
		t.Fatalf("api preset changed unexpectedly: limit = %d", api.Limit())
	}
}

func TestNewRegistry_OverrideAndStoreEdgeCases(t *testing.T) {
	_, err := NewRegistry(newFakeClock(), nil, PresetsConfig{
		API: PresetConfig{Limit: -1},
	})
	if err != nil {
		t.Fatalf("negative override should fall back to the default, got %v", err)
	}

	// a factory returning nil stores is a construction error
	if _, err := NewRegistry(newFakeClock(), func(PresetName) CounterStore { return nil }, PresetsConfig{}); err == nil {
		t.Fatal("expected error when the store factory returns nil")
	}
}

func TestRegistry_PresetsNeverShareCounters(t *testing.T) {
	clk := newFakeClock()
	reg, err := NewRegistry(clk, nil, PresetsConfig{
		Auth: PresetConfig{Window: time.Minute, Limit: 1},
		API:  PresetConfig{Window: time.Minute, Limit: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	auth, _ := reg.Get(PresetAuth)
	api, _ := reg.Get(PresetAPI)

	auth.Allow(ctx, "1.2.3.4")
	if res := auth.Allow(ctx, "1.2.3.4"); res.Allowed {
		t.Fatal("expected auth preset to be exhausted")
	}

	// same client key under a different policy starts from zero
	if res := api.Allow(ctx, "1.2.3.4"); !res.Allowed {
		t.Fatal("expected api preset to be unaffected by auth preset")
	}
}

func TestRegistry_GetUnknownPreset(t *testing.T) {
	reg, err := NewRegistry(newFakeClock(), nil, PresetsConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reg.Get("nope"); ok {
		t.Fatal("expected unknown preset to be absent")
	}
}
