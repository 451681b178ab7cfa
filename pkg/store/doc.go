// SPDX-License-Identifier: BSD-3-Clause

// Package store implements the Configuration Store: the on-disk
// directory of named TOML configurations, the settings file, and the
// state file. All writes go through pkg/file's atomic create/update so
// a process killed mid-save never corrupts the store, and the list of
// configuration names is always kept in pkg/natural sorted order.
package store
