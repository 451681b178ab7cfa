// SPDX-License-Identifier: BSD-3-Clause

package graph

import "github.com/gofancontrol/fancore/pkg/fsm"

// Identifier is a node's process-lifetime handle: monotonically
// increasing, issued by AppGraph's generator, never reused. Zero is
// reserved as "none/default" and is never issued by Next.
type Identifier uint32

// NoIdentifier is the reserved zero value meaning "no node".
const NoIdentifier Identifier = 0

type identifierGen struct {
	next uint32
}

func (g *identifierGen) Next() Identifier {
	g.next++
	return Identifier(g.next)
}

// Kind tags which of the eight node variants a Node is.
type Kind int

const (
	KindControl Kind = iota
	KindFan
	KindTemp
	KindCustomTemp
	KindGraph
	KindFlat
	KindLinear
	KindTarget
)

func (k Kind) String() string {
	switch k {
	case KindControl:
		return "Control"
	case KindFan:
		return "Fan"
	case KindTemp:
		return "Temp"
	case KindCustomTemp:
		return "CustomTemp"
	case KindGraph:
		return "Graph"
	case KindFlat:
		return "Flat"
	case KindLinear:
		return "Linear"
	case KindTarget:
		return "Target"
	default:
		return "Unknown"
	}
}

// Unbounded marks a kind with no upper limit on input count
// (CustomTemp).
const Unbounded = -1

// MaxInputs returns the maximum number of inputs a node of kind k may
// carry, or Unbounded.
func MaxInputs(k Kind) int {
	switch k {
	case KindControl, KindGraph, KindLinear, KindTarget:
		return 1
	case KindCustomTemp:
		return Unbounded
	default:
		return 0
	}
}

// AllowedDeps returns the set of kinds permitted as an input to a node
// of kind k. The returned slice forms a DAG over kinds - Control ->
// {Graph,Flat,Linear,Target} -> {Temp,CustomTemp} -> Temp - so graph
// cycles are structurally impossible regardless of node content.
func AllowedDeps(k Kind) []Kind {
	switch k {
	case KindControl:
		return []Kind{KindGraph, KindFlat, KindLinear, KindTarget}
	case KindCustomTemp:
		return []Kind{KindTemp}
	case KindGraph, KindLinear, KindTarget:
		return []Kind{KindTemp, KindCustomTemp}
	default:
		return nil
	}
}

func isAllowedDep(self, dep Kind) bool {
	for _, k := range AllowedDeps(self) {
		if k == dep {
			return true
		}
	}
	return false
}

// AggKind selects a CustomTemp node's fold operation.
type AggKind int

const (
	AggMin AggKind = iota
	AggMax
	AggAverage
)

func (a AggKind) String() string {
	switch a {
	case AggMin:
		return "Min"
	case AggMax:
		return "Max"
	case AggAverage:
		return "Average"
	default:
		return "Min"
	}
}

// ParseAggKind parses the exact enum spelling used on disk.
func ParseAggKind(s string) AggKind {
	switch s {
	case "Max":
		return AggMax
	case "Average":
		return AggAverage
	default:
		return AggMin
	}
}

// Coord is one point of a Graph node's piecewise curve, in evaluation
// units (temp in whole degrees Celsius, percent in [0,100]).
type Coord struct {
	Temp    int
	Percent int
}

// InputRef names one upstream node by both Id (resolution) and Name
// (display / serialization); the Id is authoritative, Name is kept in
// sync by RenameNode.
type InputRef struct {
	ID   Identifier
	Name string
}

// ControlData is the Control-specific payload of a Node.
type ControlData struct {
	HardwareID       string
	InternalIndex    uint32
	HasHardware      bool
	Active           bool
	Mode             *fsm.ControlMode
	ManualHasBeenSet bool
}

// SensorData is the Fan/Temp-specific payload of a Node.
type SensorData struct {
	HardwareID    string
	InternalIndex uint32
	HasHardware   bool
}

// CustomTempData is the CustomTemp-specific payload of a Node.
type CustomTempData struct {
	Agg AggKind
}

// GraphData is the Graph-specific payload of a Node.
type GraphData struct {
	Coords []Coord
}

// FlatData is the Flat-specific payload of a Node.
type FlatData struct {
	Value int
}

// LinearData is the Linear-specific payload of a Node.
type LinearData struct {
	MinTemp, MinSpeed, MaxTemp, MaxSpeed int
}

// TargetData is the Target-specific payload of a Node, including its
// own persistent hysteresis state machine.
type TargetData struct {
	IdleTemp, IdleSpeed, LoadTemp, LoadSpeed int
	Hysteresis                               *fsm.Hysteresis
}

// Node is one AppGraph vertex.
type Node struct {
	ID          Identifier
	Kind        Kind
	NameCached  string
	IsErrorName bool
	Inputs      []InputRef
	Value       *int32

	// Data holds the kind-specific payload: one of *ControlData,
	// *SensorData, *CustomTempData, *GraphData, *FlatData,
	// *LinearData, *TargetData, selected by Kind.
	Data any
}

// SelfValid reports whether this node's own fields satisfy its kind's
// structural requirements, ignoring upstream validity. Full validity
// (used by the evaluator) additionally requires every input to be
// self-valid and upstream-valid, recursively.
func (n *Node) SelfValid() bool {
	switch n.Kind {
	case KindControl:
		d, ok := n.Data.(*ControlData)
		return ok && d.HasHardware && d.Active && len(n.Inputs) == 1
	case KindFan, KindTemp:
		return n.hasHardwareBinding()
	case KindCustomTemp:
		return len(n.Inputs) >= 1
	case KindGraph, KindLinear, KindTarget:
		return len(n.Inputs) == 1
	case KindFlat:
		return true
	default:
		return false
	}
}

func (n *Node) hasHardwareBinding() bool {
	switch d := n.Data.(type) {
	case *ControlData:
		return d.HasHardware
	case *SensorData:
		return d.HasHardware
	default:
		return false
	}
}
