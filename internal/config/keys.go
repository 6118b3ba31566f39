package config

import (
	"fmt"
	"sort"
	"strings"
)

// KeySlot is one validated key binding with a normalized key name.
type KeySlot struct {
	Key string
	Off string
	On  string
}

// keyAliases maps browser-style key codes to SDL key names, so configs
// written for the web build keep working.
var keyAliases = map[string]string{
	"ArrowUp":    "Up",
	"ArrowDown":  "Down",
	"ArrowLeft":  "Left",
	"ArrowRight": "Right",
	"Enter":      "Return",
	"Spacebar":   "Space",
}

// NormalizeKey translates browser-style key codes (Digit1, KeyL, ArrowUp)
// to SDL key names. Names that match no alias pass through unchanged.
func NormalizeKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty key name")
	}
	if strings.HasPrefix(name, "Digit") && len(name) == len("Digit")+1 {
		if d := name[len("Digit")]; d >= '0' && d <= '9' {
			return string(d), nil
		}
	}
	if strings.HasPrefix(name, "Key") && len(name) == len("Key")+1 {
		if c := name[len("Key")]; c >= 'A' && c <= 'Z' {
			return string(c), nil
		}
	}
	if alias, ok := keyAliases[name]; ok {
		return alias, nil
	}
	return name, nil
}

// Slots returns the configured key bindings with normalized key names,
// sorted by key so load order is deterministic.
func (c *Config) Slots() ([]KeySlot, error) {
	slots := make([]KeySlot, 0, len(c.Scene.KeyModels))
	seen := make(map[string]string)

	for name, km := range c.Scene.KeyModels {
		key, err := NormalizeKey(name)
		if err != nil {
			return nil, fmt.Errorf("key_models[%q]: %w", name, err)
		}
		if km.Off == "" || km.On == "" {
			return nil, fmt.Errorf("key_models[%q]: both off and on paths are required", name)
		}
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("key_models: %q and %q resolve to the same key %q", prev, name, key)
		}
		seen[key] = name
		slots = append(slots, KeySlot{Key: key, Off: km.Off, On: km.On})
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Key < slots[j].Key })
	return slots, nil
}
