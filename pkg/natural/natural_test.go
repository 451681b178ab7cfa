// SPDX-License-Identifier: BSD-3-Clause

package natural

import "testing"

func TestCompareNumericRuns(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "numeric run compares by value", a: "config2", b: "config10", want: -1},
		{name: "reverse of above", a: "config10", b: "config2", want: 1},
		{name: "equal names", a: "config1", b: "config1", want: 0},
		{name: "prefix loses tie", a: "config1", b: "config1x", want: -1},
		{name: "case-insensitive letters equal before casing tiebreak", a: "Config", b: "config", want: -1},
		{name: "plain alphabetic order", a: "abc", b: "abd", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); sign(got) != sign(tt.want) {
				t.Errorf("Compare(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortOrdersNaturally(t *testing.T) {
	names := []string{"config10", "config2", "config1", "Config20"}
	Sort(names)

	want := []string{"config1", "config2", "config10", "Config20"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Sort() = %v, want %v", names, want)
		}
	}
}

func TestLessIsStrict(t *testing.T) {
	if Less("a", "a") {
		t.Error("Less(a, a) should be false")
	}
	if !Less("a", "b") {
		t.Error("Less(a, b) should be true")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
