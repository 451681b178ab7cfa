// SPDX-License-Identifier: BSD-3-Clause

package store

type config struct {
	configDir             string
	stateDir              string
	currentConfigOverride *string
}

// Option configures a Store at construction time.
type Option interface {
	apply(*config)
}

type configDirOption struct {
	dir string
}

func (o *configDirOption) apply(c *config) {
	c.configDir = o.dir
}

// WithConfigDir overrides the platform-default configuration
// directory.
func WithConfigDir(dir string) Option {
	return &configDirOption{dir: dir}
}

type stateDirOption struct {
	dir string
}

func (o *stateDirOption) apply(c *config) {
	c.stateDir = o.dir
}

// WithStateDir overrides the platform-default state directory.
func WithStateDir(dir string) Option {
	return &stateDirOption{dir: dir}
}

type currentConfigOverrideOption struct {
	name string
}

func (o *currentConfigOverrideOption) apply(c *config) {
	n := o.name
	c.currentConfigOverride = &n
}

// WithCurrentConfigOverride forces the initial current configuration
// name, bypassing whatever Settings.CurrentConfig says on disk (used
// by the -c/--config CLI flag).
func WithCurrentConfigOverride(name string) Option {
	return &currentConfigOverrideOption{name: name}
}
