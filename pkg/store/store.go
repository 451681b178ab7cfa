// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/gofancontrol/fancore/pkg/file"
	"github.com/gofancontrol/fancore/pkg/log"
	"github.com/gofancontrol/fancore/pkg/natural"
)

const (
	settingsFileName = "settings.toml"
	hardwareFileName = "hardware.toml"
	stateFileName    = "state.toml"
)

// configKnownKeys, settingsKnownKeys, and stateKnownKeys list the
// top-level TOML keys each destination struct actually decodes. They
// back checkUndecoded's strict/tolerant split: a key outside this set
// is an unrecognized section and fails the decode, while an undecoded
// key under a recognized section is a field TOML didn't map onto the
// struct and only draws a warning.
var (
	configKnownKeys = map[string]bool{
		"Control": true, "Fan": true, "Temp": true, "CustomTemp": true,
		"Graph": true, "Flat": true, "Linear": true, "Target": true,
	}
	settingsKnownKeys = map[string]bool{
		"theme": true, "unit": true, "update_delay_ms": true, "current_config": true,
		"start_at_login": true, "start_minimized": true, "inactive": true,
	}
	stateKnownKeys = map[string]bool{
		"show_flatpak_dialog": true,
	}
)

// checkUndecoded inspects md.Undecoded() against known, the set of
// top-level keys the destination struct declares. A top-level key
// outside known means the document contains a whole section the
// struct never heard of, which is rejected as a deserialize error. A
// top-level key inside known but with undecoded content below it is a
// field that didn't map onto the struct; that is tolerated, logging a
// warning per occurrence rather than failing the decode.
func checkUndecoded(logger *slog.Logger, md toml.MetaData, known map[string]bool, op string) error {
	for _, key := range md.Undecoded() {
		if len(key) == 0 {
			continue
		}
		top := key[0]
		if !known[top] {
			return newConfigIOError(ErrDeserialize, op, "unrecognized section: "+top)
		}
		logger.Warn("unrecognized field in configuration, ignoring", "op", op, "key", key.String())
	}
	return nil
}

// Store owns the configuration directory layout: it loads Settings and
// State at construction, maintains a naturally-sorted list of
// configuration names, and serializes every mutation back to disk
// atomically.
type Store struct {
	mu sync.Mutex

	configDir string
	stateDir  string

	settings Settings
	state    State
	names    []string

	log *slog.Logger
}

// New locates or creates the configuration and state directories,
// loads Settings and State (falling back to defaults with a warning on
// parse failure), enumerates existing configuration files, and sorts
// their names with the natural-lexical comparator.
func New(opts ...Option) (*Store, error) {
	cfg := config{}
	for _, o := range opts {
		o.apply(&cfg)
	}

	if cfg.configDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, newConfigIOError(ErrIO, "new", err.Error())
		}
		cfg.configDir = filepath.Join(dir, "fancore")
	}
	if cfg.stateDir == "" {
		cfg.stateDir = cfg.configDir
	}

	logger := log.Get("store")

	if err := os.MkdirAll(cfg.configDir, 0o700); err != nil {
		return nil, newConfigIOError(ErrIO, "new", err.Error())
	}
	if err := os.MkdirAll(cfg.stateDir, 0o700); err != nil {
		return nil, newConfigIOError(ErrIO, "new", err.Error())
	}

	s := &Store{
		configDir: cfg.configDir,
		stateDir:  cfg.stateDir,
		log:       logger,
	}

	s.settings = DefaultSettings()
	if data, err := os.ReadFile(s.settingsPath()); err == nil {
		var loaded Settings
		md, err := toml.Decode(string(data), &loaded)
		if err != nil {
			logger.Warn("failed to parse settings, using defaults", "error", err)
		} else if err := checkUndecoded(logger, md, settingsKnownKeys, "load_settings"); err != nil {
			logger.Warn("failed to parse settings, using defaults", "error", err)
		} else {
			s.settings = loaded
		}
	}
	s.settings.Normalize()

	if data, err := os.ReadFile(s.statePath()); err == nil {
		var loaded State
		md, err := toml.Decode(string(data), &loaded)
		if err != nil {
			logger.Warn("failed to parse state, using defaults", "error", err)
		} else if err := checkUndecoded(logger, md, stateKnownKeys, "load_state"); err != nil {
			logger.Warn("failed to parse state, using defaults", "error", err)
		} else {
			s.state = loaded
		}
	}

	if cfg.currentConfigOverride != nil {
		s.settings.CurrentConfig = cfg.currentConfigOverride
	}

	names, err := s.scanConfigNames()
	if err != nil {
		return nil, err
	}
	s.names = names

	return s, nil
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.configDir, settingsFileName)
}

func (s *Store) statePath() string {
	return filepath.Join(s.stateDir, stateFileName)
}

func (s *Store) configPath(name string) string {
	return filepath.Join(s.configDir, name+".toml")
}

func isReserved(fileName string) bool {
	return fileName == settingsFileName || fileName == hardwareFileName
}

func (s *Store) scanConfigNames() ([]string, error) {
	entries, err := os.ReadDir(s.configDir)
	if err != nil {
		return nil, newConfigIOError(ErrIO, "new", err.Error())
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || isReserved(e.Name()) || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".toml")

		data, err := os.ReadFile(filepath.Join(s.configDir, e.Name()))
		if err != nil {
			s.log.Warn("skipping unreadable configuration file", "name", name, "error", err)
			continue
		}
		var c Config
		md, err := toml.Decode(string(data), &c)
		if err != nil {
			s.log.Warn("skipping unparseable configuration file", "name", name, "error", err)
			continue
		}
		if err := checkUndecoded(s.log, md, configKnownKeys, "scan_config"); err != nil {
			s.log.Warn("skipping configuration file with unrecognized section", "name", name, "error", err)
			continue
		}

		names = append(names, name)
	}

	natural.Sort(names)
	return names, nil
}

// ConfigNames returns the naturally-sorted list of configuration
// names currently in the store.
func (s *Store) ConfigNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// CurrentConfig returns the name of the configuration currently
// selected in Settings, or nil if none is selected.
func (s *Store) CurrentConfig() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.CurrentConfig
}

// GetSettings returns a copy of the current settings.
func (s *Store) GetSettings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// GetState returns a copy of the current one-shot UI state.
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetConfig deserializes the file named by Settings.CurrentConfig. It
// returns (nil, false) if no configuration is currently selected.
func (s *Store) GetConfig() (*Config, bool, error) {
	s.mu.Lock()
	current := s.settings.CurrentConfig
	s.mu.Unlock()

	if current == nil {
		return nil, false, nil
	}
	c, err := s.readConfig(*current)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *Store) readConfig(name string) (*Config, error) {
	data, err := os.ReadFile(s.configPath(name))
	if err != nil {
		return nil, newConfigIOError(ErrIO, "get_config", err.Error())
	}
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, newConfigIOError(ErrDeserialize, "get_config", err.Error())
	}
	if err := checkUndecoded(s.log, md, configKnownKeys, "get_config"); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) writeConfig(name string, c *Config) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return newConfigIOError(ErrSerialize, "write_config", err.Error())
	}
	if err := file.AtomicUpdateFile(s.configPath(name), []byte(sb.String()), 0o600); err != nil {
		return newConfigIOError(ErrIO, "write_config", err.Error())
	}
	return nil
}

func (s *Store) writeSettings() error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(s.settings); err != nil {
		return newConfigIOError(ErrSerialize, "write_settings", err.Error())
	}
	if err := file.AtomicUpdateFile(s.settingsPath(), []byte(sb.String()), 0o600); err != nil {
		return newConfigIOError(ErrIO, "write_settings", err.Error())
	}
	return nil
}

func (s *Store) writeState() error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(s.state); err != nil {
		return newConfigIOError(ErrSerialize, "write_state", err.Error())
	}
	if err := file.AtomicUpdateFile(s.statePath(), []byte(sb.String()), 0o600); err != nil {
		return newConfigIOError(ErrIO, "write_state", err.Error())
	}
	return nil
}

func validName(name string) bool {
	return name != "" && !isReserved(name+".toml")
}

func (s *Store) hasName(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func (s *Store) insertName(name string) {
	s.names = append(s.names, name)
	natural.Sort(s.names)
}

func (s *Store) removeName(name string) {
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return
		}
	}
}

// ChangeConfig validates that name exists (or is nil, clearing the
// selection), updates Settings.CurrentConfig, persists settings, and
// returns the newly loaded configuration.
func (s *Store) ChangeConfig(name *string) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == nil {
		s.settings.CurrentConfig = nil
		if err := s.writeSettings(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !s.hasName(*name) {
		return nil, newConfigIOError(ErrNotFound, "change_config", *name)
	}

	c, err := s.readConfig(*name)
	if err != nil {
		return nil, err
	}

	n := *name
	s.settings.CurrentConfig = &n
	if err := s.writeSettings(); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateConfig adds a brand-new named configuration. It fails if name
// is already taken or reserved.
func (s *Store) CreateConfig(name string, c *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validName(name) {
		return newConfigIOError(ErrInvalidName, "create_config", name)
	}
	if s.hasName(name) {
		return newConfigIOError(ErrAlreadyExists, "create_config", name)
	}

	if err := s.writeConfig(name, c); err != nil {
		return err
	}
	s.insertName(name)
	return nil
}

// RenameConfig renames an existing configuration file and its entry
// in the name list, updating CurrentConfig if it pointed at prev.
func (s *Store) RenameConfig(prev, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasName(prev) {
		return newConfigIOError(ErrNotFound, "rename_config", prev)
	}
	if !validName(next) {
		return newConfigIOError(ErrInvalidName, "rename_config", next)
	}
	if s.hasName(next) {
		return newConfigIOError(ErrAlreadyExists, "rename_config", next)
	}

	c, err := s.readConfig(prev)
	if err != nil {
		return err
	}
	if err := s.writeConfig(next, c); err != nil {
		return err
	}
	if err := os.Remove(s.configPath(prev)); err != nil {
		return newConfigIOError(ErrIO, "rename_config", err.Error())
	}

	s.removeName(prev)
	s.insertName(next)

	if s.settings.CurrentConfig != nil && *s.settings.CurrentConfig == prev {
		n := next
		s.settings.CurrentConfig = &n
		if err := s.writeSettings(); err != nil {
			return err
		}
	}
	return nil
}

// RemoveConfig deletes the named configuration. It reports whether the
// removed configuration was the current one.
func (s *Store) RemoveConfig(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasName(name) {
		return false, newConfigIOError(ErrNotFound, "remove_config", name)
	}

	if err := os.Remove(s.configPath(name)); err != nil {
		return false, newConfigIOError(ErrIO, "remove_config", err.Error())
	}
	s.removeName(name)

	wasCurrent := s.settings.CurrentConfig != nil && *s.settings.CurrentConfig == name
	if wasCurrent {
		s.settings.CurrentConfig = nil
		if err := s.writeSettings(); err != nil {
			return wasCurrent, err
		}
	}
	return wasCurrent, nil
}

// SaveConfig overwrites name's file with c. If name differs from the
// current selection, the previous file is removed as part of the same
// operation and the selection moves to name.
func (s *Store) SaveConfig(name string, c *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validName(name) {
		return newConfigIOError(ErrInvalidName, "save_config", name)
	}

	prevCurrent := s.settings.CurrentConfig
	if err := s.writeConfig(name, c); err != nil {
		return err
	}
	if !s.hasName(name) {
		s.insertName(name)
	}

	if prevCurrent == nil || *prevCurrent != name {
		if prevCurrent != nil && s.hasName(*prevCurrent) {
			if err := os.Remove(s.configPath(*prevCurrent)); err == nil {
				s.removeName(*prevCurrent)
			}
		}
		n := name
		s.settings.CurrentConfig = &n
		if err := s.writeSettings(); err != nil {
			return err
		}
	}
	return nil
}

// SaveCurrentConfig is a convenience wrapper for the common case of
// saving under whatever name is already current; it fails with NoName
// if nothing is selected.
func (s *Store) SaveCurrentConfig(c *Config) error {
	s.mu.Lock()
	current := s.settings.CurrentConfig
	s.mu.Unlock()

	if current == nil {
		return newConfigIOError(ErrNoName, "save_config", "")
	}
	return s.SaveConfig(*current, c)
}

// UpdateSettings applies mutate to the current settings in place,
// normalizes them, and writes them through. If the write fails, the
// in-memory settings keep the mutation.
func (s *Store) UpdateSettings(mutate func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.settings)
	s.settings.Normalize()
	return s.writeSettings()
}

// UpdateState applies mutate to the current state in place and writes
// it through. If the write fails, the in-memory state keeps the
// mutation.
func (s *Store) UpdateState(mutate func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.state)
	return s.writeState()
}

// DumpHardware writes a debug snapshot of the detected hardware to
// hardware.toml. Failures are non-fatal: the file is a convenience for
// bug reports, not load-bearing state.
func (s *Store) DumpHardware(v any) {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(v); err != nil {
		s.log.Warn("failed to encode hardware dump", "error", err)
		return
	}
	path := filepath.Join(s.configDir, hardwareFileName)
	if err := file.AtomicUpdateFile(path, []byte(sb.String()), 0o600); err != nil {
		s.log.Warn("failed to write hardware dump", "error", err)
	}
}
