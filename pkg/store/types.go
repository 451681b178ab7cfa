// SPDX-License-Identifier: BSD-3-Clause

package store

// ControlConfig is the on-disk shape of a Control node.
type ControlConfig struct {
	Name       string `toml:"name"`
	HardwareID string `toml:"id,omitempty"`
	Input      string `toml:"input,omitempty"`
	Active     bool   `toml:"active"`
}

// FanConfig is the on-disk shape of a Fan node.
type FanConfig struct {
	Name       string `toml:"name"`
	HardwareID string `toml:"id,omitempty"`
}

// TempConfig is the on-disk shape of a Temp node.
type TempConfig struct {
	Name       string `toml:"name"`
	HardwareID string `toml:"id,omitempty"`
}

// CustomTempConfig is the on-disk shape of a CustomTemp node.
type CustomTempConfig struct {
	Name  string   `toml:"name"`
	Kind  string   `toml:"kind"` // "Min", "Max", or "Average"
	Input []string `toml:"input"`
}

// Coord is one point of a Graph node's piecewise curve.
type Coord struct {
	Temp    int `toml:"temp"`
	Percent int `toml:"percent"`
}

// GraphConfig is the on-disk shape of a Graph node.
type GraphConfig struct {
	Name  string  `toml:"name"`
	Input string  `toml:"input,omitempty"`
	Coord []Coord `toml:"coord"`
}

// FlatConfig is the on-disk shape of a Flat node.
type FlatConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

// LinearConfig is the on-disk shape of a Linear node.
type LinearConfig struct {
	Name     string `toml:"name"`
	Input    string `toml:"input,omitempty"`
	MinTemp  int    `toml:"min_temp"`
	MinSpeed int    `toml:"min_speed"`
	MaxTemp  int    `toml:"max_temp"`
	MaxSpeed int    `toml:"max_speed"`
}

// TargetConfig is the on-disk shape of a Target node.
type TargetConfig struct {
	Name      string `toml:"name"`
	Input     string `toml:"input,omitempty"`
	IdleTemp  int    `toml:"idle_temp"`
	IdleSpeed int    `toml:"idle_speed"`
	LoadTemp  int    `toml:"load_temp"`
	LoadSpeed int    `toml:"load_speed"`
}

// Config is the complete on-disk representation of one named
// configuration: eight optional arrays, one per node kind. Node
// identity on disk is by Name; input references are by name;
// hardware references are by HardwareID.
type Config struct {
	Control    []ControlConfig    `toml:"Control,omitempty"`
	Fan        []FanConfig        `toml:"Fan,omitempty"`
	Temp       []TempConfig       `toml:"Temp,omitempty"`
	CustomTemp []CustomTempConfig `toml:"CustomTemp,omitempty"`
	Graph      []GraphConfig      `toml:"Graph,omitempty"`
	Flat       []FlatConfig       `toml:"Flat,omitempty"`
	Linear     []LinearConfig     `toml:"Linear,omitempty"`
	Target     []TargetConfig     `toml:"Target,omitempty"`
}

// Unit is the temperature display unit.
type Unit string

const (
	Celsius    Unit = "Celsius"
	Fahrenheit Unit = "Fahrenheit"
)

// DefaultUpdateDelayMs is the tick cadence used when Settings carries
// no override.
const DefaultUpdateDelayMs = 2500

// MinUpdateDelayMs is the floor enforced on UpdateDelayMs; anything
// lower would starve the scheduler that hosts the tick timer.
const MinUpdateDelayMs = 100

// Settings holds the user's persisted preferences, separate from any
// one configuration's node graph.
type Settings struct {
	Theme          string  `toml:"theme"`
	Unit           Unit    `toml:"unit"`
	UpdateDelayMs  uint64  `toml:"update_delay_ms"`
	CurrentConfig  *string `toml:"current_config,omitempty"`
	StartAtLogin   bool    `toml:"start_at_login"`
	StartMinimized bool    `toml:"start_minimized"`
	Inactive       bool    `toml:"inactive"`
}

// DefaultSettings returns the Settings used when no settings file
// exists yet, or the existing one fails to parse.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "system",
		Unit:          Celsius,
		UpdateDelayMs: DefaultUpdateDelayMs,
	}
}

// Normalize clamps UpdateDelayMs to its floor; called after every load
// and before every save.
func (s *Settings) Normalize() {
	if s.UpdateDelayMs < MinUpdateDelayMs {
		s.UpdateDelayMs = MinUpdateDelayMs
	}
}

// State holds one-shot UI flags that must persist across restarts but
// are not meaningful user configuration, so they live in a separate
// file from Settings.
type State struct {
	ShowFlatpakDialog bool `toml:"show_flatpak_dialog"`
}
