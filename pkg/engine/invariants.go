// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"log/slog"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/graph"
)

// isValidRec is the pure (side-effect-free) recursive validity check:
// a node is valid iff it is self-valid and every one of its inputs is
// valid, recursively. visiting guards against a cycle that should be
// structurally impossible given the allowed-dependency matrix, but
// the guard costs nothing and keeps this function from ever looping.
func isValidRec(nodes map[graph.Identifier]*graph.Node, id graph.Identifier, visiting map[graph.Identifier]bool) bool {
	n, ok := nodes[id]
	if !ok {
		return false
	}
	if visiting[id] {
		return false
	}
	visiting[id] = true
	defer delete(visiting, id)

	if !n.SelfValid() {
		return false
	}
	for _, ref := range n.Inputs {
		if !isValidRec(nodes, ref.ID, visiting) {
			return false
		}
	}
	return true
}

// restoreInvariants forces any Control whose subgraph is invalid back
// to Auto, regardless of whether this tick ran a full evaluation
// pass - this is what keeps a hardware control from being stuck in
// Manual at a stale duty cycle once its upstream behavior breaks. When
// inactive is set, every Control currently in Manual is forced back to
// Auto, valid or not.
func restoreInvariants(ctx context.Context, nodes map[graph.Identifier]*graph.Node, roots []graph.Identifier, b bridge.Bridge, logger *slog.Logger, inactive bool) {
	for _, id := range roots {
		n, ok := nodes[id]
		if !ok {
			continue
		}
		d, ok := n.Data.(*graph.ControlData)
		if !ok || !d.HasHardware {
			continue
		}

		if !inactive && isValidRec(nodes, id, make(map[graph.Identifier]bool)) {
			continue
		}
		if !d.Mode.IsManual() {
			continue
		}

		if err := b.SetMode(ctx, d.InternalIndex, bridge.Mode{Kind: bridge.ModeAuto}); err != nil {
			logger.Warn("failed to restore control to auto", "node", n.NameCached, "error", err)
			continue
		}
		_ = d.Mode.GoAuto(ctx)
		d.ManualHasBeenSet = false
		n.Value = nil
	}
}
