// Package prefs reads per-repository defaults from git config.
package prefs

import (
	"context"
	"strconv"
	"strings"

	"github.com/interpretive-systems/hunkslice/internal/config"
)

// Getter reads a git config key. ok is false when the key is unset.
type Getter interface {
	ConfigGet(ctx context.Context, key string) (string, bool)
}

// Prefs represents repository preferences. The *Set fields record which
// keys were present so unset keys leave lower-precedence values alone.
type Prefs struct {
	Base     string
	BaseSet  bool
	Count    int
	CountSet bool
	KeepTemp bool
	KeepSet  bool
	Color    string
	ColorSet bool
}

const (
	keyBase     = "hunkslice.base"
	keyCount    = "hunkslice.count"
	keyKeepTemp = "hunkslice.keepTemp"
	keyColor    = "hunkslice.color"
)

// Load reads preferences from git config.
func Load(ctx context.Context, g Getter) Prefs {
	var p Prefs
	if s, ok := g.ConfigGet(ctx, keyBase); ok && s != "" {
		p.BaseSet = true
		p.Base = s
	}
	if s, ok := g.ConfigGet(ctx, keyCount); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			p.CountSet = true
			p.Count = n
		}
	}
	if s, ok := g.ConfigGet(ctx, keyKeepTemp); ok {
		p.KeepSet = true
		p.KeepTemp = parseBool(s)
	}
	if s, ok := g.ConfigGet(ctx, keyColor); ok && s != "" {
		p.ColorSet = true
		p.Color = strings.ToLower(strings.TrimSpace(s))
	}
	return p
}

// Apply overlays the keys that were set onto cfg.
func (p Prefs) Apply(cfg *config.Config) {
	if p.BaseSet {
		cfg.Base = p.Base
	}
	if p.CountSet {
		cfg.Count = p.Count
	}
	if p.KeepSet {
		cfg.KeepTemp = p.KeepTemp
	}
	if p.ColorSet {
		cfg.Color = p.Color
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
