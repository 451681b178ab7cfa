// SPDX-License-Identifier: BSD-3-Clause

package graph

import "github.com/samber/lo"

// sanitizeInputs resolves a list of input names against the current
// node set for the given node's kind: a name with no matching node, or
// whose matching node's kind is not an allowed dependency, is dropped
// silently. If more names survive than the kind's max_input allows,
// the policy is to drop ALL of them rather than pick an arbitrary
// subset. AppGraph.SanitizeInputs logs a warning when that happens;
// FromConfig drops them without logging.
func sanitizeInputs(self *Node, names []string, nodes map[Identifier]*Node) []InputRef {
	candidates := lo.Values(nodes)
	matched := lo.FilterMap(names, func(name string, _ int) (*Node, bool) {
		if name == "" {
			return nil, false
		}
		found, ok := lo.Find(candidates, func(n *Node) bool { return n.NameCached == name })
		if !ok || !isAllowedDep(self.Kind, found.Kind) {
			return nil, false
		}
		return found, true
	})
	refs := lo.Map(matched, func(n *Node, _ int) InputRef {
		return InputRef{ID: n.ID, Name: n.NameCached}
	})

	max := MaxInputs(self.Kind)
	if max != Unbounded && len(refs) > max {
		return nil
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}

// SanitizeInputs re-resolves the named inputs for an existing node,
// applying the same policy FromConfig applies at load time. It is the
// entry point UI-driven edits use to change a node's declared inputs.
func (g *AppGraph) SanitizeInputs(id Identifier, names []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return newGraphValidationError(ErrNodeNotFound, "")
	}

	refs := sanitizeInputs(n, names, g.nodes)

	max := MaxInputs(n.Kind)
	requested := 0
	for _, name := range names {
		if name != "" {
			requested++
		}
	}
	if max != Unbounded && requested > max && refs == nil {
		g.log.Warn("too many inputs, clearing all", "node", n.NameCached, "kind", n.Kind.String(), "requested", requested, "max", max)
	}

	n.Inputs = refs
	return nil
}

// sanitizeCoords sorts a Graph node's coordinate list by temperature,
// drops duplicate temperatures (keeping the first occurrence), and
// clamps percent into [0,100], restoring invariant 6 after a load from
// untrusted disk content.
func sanitizeCoords(coords []Coord) []Coord {
	sorted := make([]Coord, len(coords))
	copy(sorted, coords)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Temp > sorted[j].Temp; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	out := make([]Coord, 0, len(sorted))
	seen := make(map[int]bool, len(sorted))
	for _, c := range sorted {
		if seen[c.Temp] {
			continue
		}
		seen[c.Temp] = true
		if c.Percent < 0 {
			c.Percent = 0
		}
		if c.Percent > 100 {
			c.Percent = 100
		}
		out = append(out, c)
	}
	return out
}
