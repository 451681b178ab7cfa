// SPDX-License-Identifier: BSD-3-Clause

// Package natural implements the natural-lexical ordering used to sort
// configuration names for display: digit runs compare by numeric
// value rather than character-by-character, so "config2" sorts before
// "config10".
package natural
