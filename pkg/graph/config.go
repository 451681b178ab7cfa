// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"sort"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/fsm"
	"github.com/gofancontrol/fancore/pkg/natural"
	"github.com/gofancontrol/fancore/pkg/store"
)

type hardwareIndex struct {
	controls map[string]bridge.HItem
	fans     map[string]bridge.HItem
	temps    map[string]bridge.HItem
}

func buildHardwareIndex(hw *bridge.Hardware) hardwareIndex {
	idx := hardwareIndex{
		controls: make(map[string]bridge.HItem, len(hw.Controls)),
		fans:     make(map[string]bridge.HItem, len(hw.Fans)),
		temps:    make(map[string]bridge.HItem, len(hw.Temps)),
	}
	for _, c := range hw.Controls {
		idx.controls[c.HardwareID] = c
	}
	for _, f := range hw.Fans {
		idx.fans[f.HardwareID] = f
	}
	for _, t := range hw.Temps {
		idx.temps[t.HardwareID] = t
	}
	return idx
}

// FromConfig builds a fresh AppGraph from a stored Config and the live
// Hardware description, inserting nodes in the order
// Fan -> Temp -> CustomTemp -> Graph -> Flat -> Linear -> Target ->
// Control so that every node a given node could legally reference has
// already been inserted by the time its inputs are sanitized. A nil cfg
// (no configuration selected) yields an empty graph.
func FromConfig(cfg *store.Config, hw *bridge.Hardware) *AppGraph {
	if cfg == nil {
		cfg = &store.Config{}
	}
	g := NewEmpty()
	idx := buildHardwareIndex(hw)

	for _, fc := range cfg.Fan {
		n := &Node{ID: g.gen.Next(), Kind: KindFan, NameCached: fc.Name}
		d := &SensorData{HardwareID: fc.HardwareID}
		if fc.HardwareID != "" {
			if item, ok := idx.fans[fc.HardwareID]; ok {
				d.HasHardware = true
				d.InternalIndex = item.InternalIndex
			} else {
				g.log.Warn("fan hardware id not found, dropping binding", "node", fc.Name, "hardware_id", fc.HardwareID)
				d.HardwareID = ""
			}
		}
		n.Data = d
		g.nodes[n.ID] = n
	}

	for _, tc := range cfg.Temp {
		n := &Node{ID: g.gen.Next(), Kind: KindTemp, NameCached: tc.Name}
		d := &SensorData{HardwareID: tc.HardwareID}
		if tc.HardwareID != "" {
			if item, ok := idx.temps[tc.HardwareID]; ok {
				d.HasHardware = true
				d.InternalIndex = item.InternalIndex
			} else {
				g.log.Warn("temp hardware id not found, dropping binding", "node", tc.Name, "hardware_id", tc.HardwareID)
				d.HardwareID = ""
			}
		}
		n.Data = d
		g.nodes[n.ID] = n
	}

	for _, ctc := range cfg.CustomTemp {
		n := &Node{ID: g.gen.Next(), Kind: KindCustomTemp, NameCached: ctc.Name}
		n.Data = &CustomTempData{Agg: ParseAggKind(ctc.Kind)}
		n.Inputs = sanitizeInputs(n, ctc.Input, g.nodes)
		g.nodes[n.ID] = n
	}

	for _, gc := range cfg.Graph {
		n := &Node{ID: g.gen.Next(), Kind: KindGraph, NameCached: gc.Name}
		coords := make([]Coord, len(gc.Coord))
		for i, c := range gc.Coord {
			coords[i] = Coord{Temp: c.Temp, Percent: c.Percent}
		}
		n.Data = &GraphData{Coords: sanitizeCoords(coords)}
		n.Inputs = sanitizeInputs(n, singleton(gc.Input), g.nodes)
		g.nodes[n.ID] = n
	}

	for _, fc := range cfg.Flat {
		n := &Node{ID: g.gen.Next(), Kind: KindFlat, NameCached: fc.Name}
		n.Data = &FlatData{Value: clampPercent(fc.Value)}
		g.nodes[n.ID] = n
	}

	for _, lc := range cfg.Linear {
		n := &Node{ID: g.gen.Next(), Kind: KindLinear, NameCached: lc.Name}
		n.Data = &LinearData{
			MinTemp:  lc.MinTemp,
			MinSpeed: clampPercent(lc.MinSpeed),
			MaxTemp:  lc.MaxTemp,
			MaxSpeed: clampPercent(lc.MaxSpeed),
		}
		n.Inputs = sanitizeInputs(n, singleton(lc.Input), g.nodes)
		g.nodes[n.ID] = n
	}

	for _, tc := range cfg.Target {
		n := &Node{ID: g.gen.Next(), Kind: KindTarget, NameCached: tc.Name}
		n.Data = &TargetData{
			IdleTemp:   tc.IdleTemp,
			IdleSpeed:  clampPercent(tc.IdleSpeed),
			LoadTemp:   tc.LoadTemp,
			LoadSpeed:  clampPercent(tc.LoadSpeed),
			Hysteresis: fsm.NewHysteresis(),
		}
		n.Inputs = sanitizeInputs(n, singleton(tc.Input), g.nodes)
		g.nodes[n.ID] = n
	}

	for _, cc := range cfg.Control {
		n := &Node{ID: g.gen.Next(), Kind: KindControl, NameCached: cc.Name}
		d := &ControlData{HardwareID: cc.HardwareID, Active: cc.Active, Mode: fsm.NewControlMode()}
		if cc.HardwareID != "" {
			if item, ok := idx.controls[cc.HardwareID]; ok {
				d.HasHardware = true
				d.InternalIndex = item.InternalIndex
			} else {
				g.log.Warn("control hardware id not found, dropping binding", "node", cc.Name, "hardware_id", cc.HardwareID)
				d.HardwareID = ""
			}
		}
		n.Data = d
		n.Inputs = sanitizeInputs(n, singleton(cc.Input), g.nodes)
		g.nodes[n.ID] = n
		g.rootOrder = append(g.rootOrder, n.ID)
	}

	return g
}

func singleton(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ApplyConfig rebuilds the graph's contents from cfg/hw and swaps them
// into the receiver in place, so references the Update Engine or
// front-end already hold to this *AppGraph remain valid across a
// configuration change. A Target or Control node that survives the
// rebuild under the same name keeps its existing hysteresis/mode FSM
// rather than resetting to idle/auto, so an in-progress hysteresis
// cycle or a manual-mode control isn't disturbed by an unrelated
// config edit; a node that is new under that name starts fresh.
func (g *AppGraph) ApplyConfig(cfg *store.Config, hw *bridge.Hardware) {
	fresh := FromConfig(cfg, hw)

	g.mu.Lock()
	defer g.mu.Unlock()

	previous := make(map[string]*Node, len(g.nodes))
	for _, n := range g.nodes {
		previous[n.NameCached] = n
	}
	for _, n := range fresh.nodes {
		old, ok := previous[n.NameCached]
		if !ok || old.Kind != n.Kind {
			continue
		}
		switch d := n.Data.(type) {
		case *TargetData:
			if od, ok := old.Data.(*TargetData); ok {
				d.Hysteresis = od.Hysteresis
			}
		case *ControlData:
			if od, ok := old.Data.(*ControlData); ok {
				d.Mode = od.Mode
				d.ManualHasBeenSet = od.ManualHasBeenSet
			}
		}
	}

	// Shift the rebuilt Ids past every Id this graph has already issued,
	// so no Id is reused across the reload.
	offset := Identifier(g.gen.next)
	nodes := make(map[Identifier]*Node, len(fresh.nodes))
	for _, n := range fresh.nodes {
		n.ID += offset
		for i := range n.Inputs {
			n.Inputs[i].ID += offset
		}
		nodes[n.ID] = n
	}
	for i := range fresh.rootOrder {
		fresh.rootOrder[i] += offset
	}

	g.gen.next += fresh.gen.next
	g.nodes = nodes
	g.rootOrder = fresh.rootOrder
}

func inputName(n *Node) string {
	if len(n.Inputs) == 0 {
		return ""
	}
	return n.Inputs[0].Name
}

func inputNames(n *Node) []string {
	names := make([]string, len(n.Inputs))
	for i, r := range n.Inputs {
		names[i] = r.Name
	}
	return names
}

// ToConfig projects the current graph contents back into a
// store.Config, the inverse of FromConfig. Node identity on disk is
// by name, as Identifiers are not stable across process restarts.
func (g *AppGraph) ToConfig() *store.Config {
	g.mu.Lock()
	defer g.mu.Unlock()

	ordered := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		ordered = append(ordered, n)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return natural.Less(ordered[i].NameCached, ordered[j].NameCached)
	})

	cfg := &store.Config{}
	for _, n := range ordered {
		switch n.Kind {
		case KindFan:
			d := n.Data.(*SensorData)
			cfg.Fan = append(cfg.Fan, store.FanConfig{Name: n.NameCached, HardwareID: d.HardwareID})
		case KindTemp:
			d := n.Data.(*SensorData)
			cfg.Temp = append(cfg.Temp, store.TempConfig{Name: n.NameCached, HardwareID: d.HardwareID})
		case KindCustomTemp:
			d := n.Data.(*CustomTempData)
			cfg.CustomTemp = append(cfg.CustomTemp, store.CustomTempConfig{Name: n.NameCached, Kind: d.Agg.String(), Input: inputNames(n)})
		case KindGraph:
			d := n.Data.(*GraphData)
			coords := make([]store.Coord, len(d.Coords))
			for i, c := range d.Coords {
				coords[i] = store.Coord{Temp: c.Temp, Percent: c.Percent}
			}
			cfg.Graph = append(cfg.Graph, store.GraphConfig{Name: n.NameCached, Input: inputName(n), Coord: coords})
		case KindFlat:
			d := n.Data.(*FlatData)
			cfg.Flat = append(cfg.Flat, store.FlatConfig{Name: n.NameCached, Value: d.Value})
		case KindLinear:
			d := n.Data.(*LinearData)
			cfg.Linear = append(cfg.Linear, store.LinearConfig{
				Name: n.NameCached, Input: inputName(n),
				MinTemp: d.MinTemp, MinSpeed: d.MinSpeed, MaxTemp: d.MaxTemp, MaxSpeed: d.MaxSpeed,
			})
		case KindTarget:
			d := n.Data.(*TargetData)
			cfg.Target = append(cfg.Target, store.TargetConfig{
				Name: n.NameCached, Input: inputName(n),
				IdleTemp: d.IdleTemp, IdleSpeed: d.IdleSpeed, LoadTemp: d.LoadTemp, LoadSpeed: d.LoadSpeed,
			})
		case KindControl:
			d := n.Data.(*ControlData)
			cfg.Control = append(cfg.Control, store.ControlConfig{
				Name: n.NameCached, HardwareID: d.HardwareID, Input: inputName(n), Active: d.Active,
			})
		}
	}
	return cfg
}
