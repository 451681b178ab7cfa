// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := New(WithConfigDir(dir), WithStateDir(dir))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestCreateConfigThenListNaturallySorted(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"config10", "config2", "config1"} {
		if err := s.CreateConfig(name, &Config{}); err != nil {
			t.Fatalf("CreateConfig(%q) error = %v", name, err)
		}
	}

	names := s.ConfigNames()
	want := []string{"config1", "config2", "config10"}
	if len(names) != len(want) {
		t.Fatalf("ConfigNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ConfigNames() = %v, want %v", names, want)
		}
	}
}

func TestCreateConfigDuplicateNameFails(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateConfig("dup", &Config{}); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	err := s.CreateConfig("dup", &Config{})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("CreateConfig() error = %v, want ErrAlreadyExists", err)
	}
}

func TestChangeConfigPersistsCurrentConfig(t *testing.T) {
	s := newTestStore(t)
	want := &Config{Flat: []FlatConfig{{Name: "F", Value: 42}}}
	if err := s.CreateConfig("one", want); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}

	name := "one"
	got, err := s.ChangeConfig(&name)
	if err != nil {
		t.Fatalf("ChangeConfig() error = %v", err)
	}
	if len(got.Flat) != 1 || got.Flat[0].Value != 42 {
		t.Fatalf("ChangeConfig() = %+v, want matching Flat config", got)
	}
	if current := s.CurrentConfig(); current == nil || *current != "one" {
		t.Fatalf("CurrentConfig() = %v, want \"one\"", current)
	}
}

func TestRenameConfigUpdatesCurrentSelection(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateConfig("old", &Config{}); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	name := "old"
	if _, err := s.ChangeConfig(&name); err != nil {
		t.Fatalf("ChangeConfig() error = %v", err)
	}

	if err := s.RenameConfig("old", "new"); err != nil {
		t.Fatalf("RenameConfig() error = %v", err)
	}

	if current := s.CurrentConfig(); current == nil || *current != "new" {
		t.Fatalf("CurrentConfig() = %v, want \"new\"", current)
	}
	if s.hasName("old") {
		t.Fatal("old name should no longer be listed")
	}
}

func TestRemoveConfigClearsCurrentSelectionWhenActive(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateConfig("one", &Config{}); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	name := "one"
	if _, err := s.ChangeConfig(&name); err != nil {
		t.Fatalf("ChangeConfig() error = %v", err)
	}

	wasCurrent, err := s.RemoveConfig("one")
	if err != nil {
		t.Fatalf("RemoveConfig() error = %v", err)
	}
	if !wasCurrent {
		t.Fatal("expected wasCurrent = true")
	}
	if current := s.CurrentConfig(); current != nil {
		t.Fatalf("CurrentConfig() = %v, want nil", current)
	}
}

func TestSettingsNormalizeEnforcesFloor(t *testing.T) {
	s := Settings{UpdateDelayMs: 1}
	s.Normalize()
	if s.UpdateDelayMs != MinUpdateDelayMs {
		t.Fatalf("UpdateDelayMs = %d, want %d", s.UpdateDelayMs, MinUpdateDelayMs)
	}
}

func TestReadConfigRejectsUnrecognizedSection(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.configDir, "bad.toml")
	if err := os.WriteFile(path, []byte("[[NotASection]]\nname = \"x\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := s.readConfig("bad"); !errors.Is(err, ErrDeserialize) {
		t.Fatalf("readConfig() error = %v, want ErrDeserialize", err)
	}
}

func TestScanConfigNamesSkipsUnrecognizedSection(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.configDir, "bad.toml")
	if err := os.WriteFile(path, []byte("[[NotASection]]\nname = \"x\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	for _, name := range s.ConfigNames() {
		if name == "bad" {
			t.Fatal("ConfigNames() should not list a file with an unrecognized section")
		}
	}

	names, err := s.scanConfigNames()
	if err != nil {
		t.Fatalf("scanConfigNames() error = %v", err)
	}
	for _, name := range names {
		if name == "bad" {
			t.Fatal("scanConfigNames() should not list a file with an unrecognized section")
		}
	}
}

func TestReadConfigToleratesUnrecognizedField(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.configDir, "ok.toml")
	if err := os.WriteFile(path, []byte("[[Flat]]\nname = \"F\"\nvalue = 10\nfuture_field = \"x\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c, err := s.readConfig("ok")
	if err != nil {
		t.Fatalf("readConfig() error = %v, want nil (unrecognized field should only warn)", err)
	}
	if len(c.Flat) != 1 || c.Flat[0].Name != "F" {
		t.Fatalf("readConfig() = %+v, want Flat[0].Name = F", c)
	}
}

func TestUpdateSettingsNormalizesOnWrite(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpdateSettings(func(set *Settings) {
		set.UpdateDelayMs = 1
	}); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if got := s.GetSettings().UpdateDelayMs; got != MinUpdateDelayMs {
		t.Fatalf("UpdateDelayMs = %d, want %d", got, MinUpdateDelayMs)
	}
}
