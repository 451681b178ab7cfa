// SPDX-License-Identifier: BSD-3-Clause

package fsm

import (
	"context"
	"testing"
)

func TestHysteresisStaysIdleUntilLoadThreshold(t *testing.T) {
	h := NewHysteresis()
	ctx := context.Background()

	if got := h.State(); got != StateIdle {
		t.Fatalf("initial state = %s, want %s", got, StateIdle)
	}

	if got := h.Advance(ctx, false, false); got != StateIdle {
		t.Fatalf("Advance(false,false) = %s, want %s", got, StateIdle)
	}

	if got := h.Advance(ctx, true, false); got != StateLoad {
		t.Fatalf("Advance(true,false) = %s, want %s", got, StateLoad)
	}
}

func TestHysteresisHoldsLoadUntilIdleThreshold(t *testing.T) {
	h := NewHysteresis()
	ctx := context.Background()
	h.Advance(ctx, true, false)

	if got := h.Advance(ctx, false, false); got != StateLoad {
		t.Fatalf("Advance(false,false) in load = %s, want %s", got, StateLoad)
	}

	if got := h.Advance(ctx, false, true); got != StateIdle {
		t.Fatalf("Advance(false,true) = %s, want %s", got, StateIdle)
	}
}
