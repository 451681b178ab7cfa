// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofancontrol/fancore/pkg/log"
)

// AppGraph is the in-memory DAG of nodes. It owns node identity (via
// its Identifier generator), enforces the structural invariants on
// every mutation, and tracks the root set (every Control node, in
// insertion order).
type AppGraph struct {
	mu sync.Mutex

	gen       identifierGen
	nodes     map[Identifier]*Node
	rootOrder []Identifier

	log *slog.Logger
}

// NewEmpty returns an AppGraph with no nodes.
func NewEmpty() *AppGraph {
	return &AppGraph{
		nodes: make(map[Identifier]*Node),
		log:   log.Get("graph"),
	}
}

// Get returns the node with the given Id, or (nil, false).
func (g *AppGraph) Get(id Identifier) (*Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in the graph. The returned slice is a
// snapshot; mutating it does not affect the graph.
func (g *AppGraph) Nodes() []*Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// RootNodes returns the Control node ids, in the order they were
// inserted. Invariant 4 requires this to be exactly the set of
// Control ids at all times.
func (g *AppGraph) RootNodes() []Identifier {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Identifier, len(g.rootOrder))
	copy(out, g.rootOrder)
	return out
}

func (g *AppGraph) nameTaken(name string, except Identifier) bool {
	for id, n := range g.nodes {
		if id == except {
			continue
		}
		if n.NameCached == name {
			return true
		}
	}
	return false
}

// CreateNewNode constructs a node of the given kind with default
// fields and a freshly issued Id, but does not insert it - the caller
// (typically a UI placement flow) inserts it once a name has been
// chosen.
func (g *AppGraph) CreateNewNode(kind Kind) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := &Node{
		ID:   g.gen.Next(),
		Kind: kind,
	}
	switch kind {
	case KindControl:
		n.Data = &ControlData{}
	case KindFan, KindTemp:
		n.Data = &SensorData{}
	case KindCustomTemp:
		n.Data = &CustomTempData{}
	case KindGraph:
		n.Data = &GraphData{}
	case KindFlat:
		n.Data = &FlatData{}
	case KindLinear:
		n.Data = &LinearData{}
	case KindTarget:
		n.Data = &TargetData{}
	}
	return n
}

// InsertNode adds a node built by CreateNewNode (or otherwise carrying
// a valid Id) into the graph. It fails if the name is already taken by
// another node.
func (g *AppGraph) InsertNode(n *Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nameTaken(n.NameCached, n.ID) {
		return newGraphValidationError(ErrDuplicateName, n.NameCached)
	}

	g.nodes[n.ID] = n
	if n.Kind == KindControl {
		g.rootOrder = append(g.rootOrder, n.ID)
	}
	return nil
}

// RemovedControlInfo reports the hardware state of a just-removed
// Control node, so the caller can ask the Hardware Bridge to restore
// it to Auto. AppGraph itself never talks to the bridge.
type RemovedControlInfo struct {
	HadHardware   bool
	InternalIndex uint32
}

// RemoveNode deletes id from the graph and strips any dangling input
// reference it leaves behind in its dependents. If the removed node
// was a hardware-bound Control, info.HadHardware is true and the
// caller should restore that control to Auto.
func (g *AppGraph) RemoveNode(id Identifier) (info RemovedControlInfo, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return info, newGraphValidationError(ErrNodeNotFound, "")
	}

	if n.Kind == KindControl {
		if cd, ok := n.Data.(*ControlData); ok {
			info.HadHardware = cd.HasHardware
			info.InternalIndex = cd.InternalIndex
		}
		for i, rid := range g.rootOrder {
			if rid == id {
				g.rootOrder = append(g.rootOrder[:i], g.rootOrder[i+1:]...)
				break
			}
		}
	}

	delete(g.nodes, id)

	for _, other := range g.nodes {
		filtered := other.Inputs[:0]
		for _, ref := range other.Inputs {
			if ref.ID != id {
				filtered = append(filtered, ref)
			}
		}
		other.Inputs = filtered
	}

	return info, nil
}

// SetActive flips a Control node's active flag and reports whether the
// caller must now force that control's hardware back to Auto: true
// exactly when the control is hardware-bound, was in Manual, and is
// being deactivated. SetActive itself only updates Active and, on
// deactivation, clears Value; Mode and ManualHasBeenSet change in
// ConfirmAutoRestored once the caller has made the bridge call, since
// AppGraph never talks to the bridge.
func (g *AppGraph) SetActive(id Identifier, active bool) (needsAutoRestore bool, internalIndex uint32, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok || n.Kind != KindControl {
		return false, 0, newGraphValidationError(ErrNodeNotFound, "")
	}
	d := n.Data.(*ControlData)
	d.Active = active
	if active {
		return false, 0, nil
	}

	if d.HasHardware && d.Mode.IsManual() {
		needsAutoRestore = true
		internalIndex = d.InternalIndex
	}
	n.Value = nil
	return needsAutoRestore, internalIndex, nil
}

// ConfirmAutoRestored updates a Control node's FSM and bookkeeping
// after the caller has successfully asked the Hardware Bridge to put
// it back in Auto, following a SetActive(id, false) that returned
// needsAutoRestore.
func (g *AppGraph) ConfirmAutoRestored(ctx context.Context, id Identifier) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok || n.Kind != KindControl {
		return
	}
	d := n.Data.(*ControlData)
	_ = d.Mode.GoAuto(ctx)
	d.ManualHasBeenSet = false
}

// RenameNode changes a node's display name and propagates the new
// name into every dependent's InputRef entries, keeping the on-disk
// projection (ToConfig) consistent without a second resolution pass.
func (g *AppGraph) RenameNode(id Identifier, newName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return newGraphValidationError(ErrNodeNotFound, "")
	}
	if g.nameTaken(newName, id) {
		return newGraphValidationError(ErrDuplicateName, newName)
	}

	n.NameCached = newName
	n.IsErrorName = false

	for _, other := range g.nodes {
		for i := range other.Inputs {
			if other.Inputs[i].ID == id {
				other.Inputs[i].Name = newName
			}
		}
	}
	return nil
}
