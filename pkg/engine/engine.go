// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/gofancontrol/fancore/pkg/bridge"
	"github.com/gofancontrol/fancore/pkg/fsm"
	"github.com/gofancontrol/fancore/pkg/graph"
	"github.com/gofancontrol/fancore/pkg/log"
)

var tracer = otel.Tracer("github.com/gofancontrol/fancore/pkg/engine")

type evalContext struct {
	ctx     context.Context
	bridge  bridge.Bridge
	nodes   map[graph.Identifier]*graph.Node
	visited map[graph.Identifier]bool
}

func nodeMap(nodes []*graph.Node) map[graph.Identifier]*graph.Node {
	m := make(map[graph.Identifier]*graph.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

// Tick runs one full evaluation pass: refresh the bridge, walk every
// root (Control) node with memoized DFS, and restore the hardware-mode
// invariant for any Control whose subgraph came out invalid. It never
// returns an error that the caller must propagate past this tick - a
// bridge refresh failure is logged and simply skips the rest of the
// tick, preserving every node's last value.
func Tick(ctx context.Context, g *graph.AppGraph, b bridge.Bridge, inactive bool) {
	ctx, span := tracer.Start(ctx, "tick")
	defer span.End()

	logger := log.Get("engine")

	if err := b.Update(ctx); err != nil {
		span.RecordError(err)
		logger.Warn("bridge update failed, skipping tick", "error", err)
		return
	}

	nodes := nodeMap(g.Nodes())

	if !inactive {
		ec := &evalContext{ctx: ctx, bridge: b, nodes: nodes, visited: make(map[graph.Identifier]bool)}
		for _, rootID := range g.RootNodes() {
			updateRec(ec, rootID)
		}
	}

	restoreInvariants(ctx, nodes, g.RootNodes(), b, logger, inactive)
}

// updateRec is the memoized DFS described by the Update Engine's
// evaluation algorithm: each node is visited at most once per tick,
// and an invalid node (its own requirements unmet) short-circuits
// without running its per-kind evaluation.
func updateRec(ec *evalContext, id graph.Identifier) *int32 {
	n, ok := ec.nodes[id]
	if !ok {
		return nil
	}
	if ec.visited[id] {
		return n.Value
	}
	ec.visited[id] = true

	if !n.SelfValid() {
		if n.Kind != graph.KindControl {
			n.Value = nil
		}
		return nil
	}

	inputValues := make([]int32, 0, len(n.Inputs))
	for _, ref := range n.Inputs {
		v := updateRec(ec, ref.ID)
		if v == nil {
			if n.Kind != graph.KindControl {
				n.Value = nil
			}
			return nil
		}
		inputValues = append(inputValues, *v)
	}

	evalNode(ec, n, inputValues)
	return n.Value
}

func evalNode(ec *evalContext, n *graph.Node, in []int32) {
	switch n.Kind {
	case graph.KindFan, graph.KindTemp:
		d := n.Data.(*graph.SensorData)
		v, err := ec.bridge.GetValue(ec.ctx, d.InternalIndex)
		if err != nil {
			n.Value = nil
			return
		}
		vv := int32(v)
		n.Value = &vv

	case graph.KindFlat:
		d := n.Data.(*graph.FlatData)
		vv := int32(d.Value)
		n.Value = &vv

	case graph.KindCustomTemp:
		d := n.Data.(*graph.CustomTempData)
		vv := foldCustomTemp(d.Agg, in)
		n.Value = &vv

	case graph.KindGraph:
		d := n.Data.(*graph.GraphData)
		vv := int32(evalGraphCurve(d.Coords, int(in[0])))
		n.Value = &vv

	case graph.KindLinear:
		d := n.Data.(*graph.LinearData)
		vv := int32(evalLinear(d, int(in[0])))
		n.Value = &vv

	case graph.KindTarget:
		d := n.Data.(*graph.TargetData)
		t := int(in[0])
		state := d.Hysteresis.Advance(ec.ctx, t >= d.LoadTemp, t <= d.IdleTemp)
		var vv int32
		if state == fsm.StateLoad {
			vv = int32(d.LoadSpeed)
		} else {
			vv = int32(d.IdleSpeed)
		}
		n.Value = &vv

	case graph.KindControl:
		evalControl(ec, n, in[0])
	}
}

func evalControl(ec *evalContext, n *graph.Node, value int32) {
	d := n.Data.(*graph.ControlData)
	n.Value = &value

	percent := int(value)
	if !d.Mode.IsManual() {
		if err := ec.bridge.SetMode(ec.ctx, d.InternalIndex, bridge.Mode{Kind: bridge.ModeManual}); err != nil {
			d.ManualHasBeenSet = false
			return
		}
		_ = d.Mode.GoManual(ec.ctx)
		d.ManualHasBeenSet = true
	}

	if err := ec.bridge.SetValue(ec.ctx, d.InternalIndex, percent); err != nil {
		d.ManualHasBeenSet = false
	}
}

func foldCustomTemp(agg graph.AggKind, values []int32) int32 {
	if len(values) == 0 {
		return 0
	}
	switch agg {
	case graph.AggMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case graph.AggMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	default: // AggAverage
		var sum int64
		for _, v := range values {
			sum += int64(v)
		}
		return int32(sum / int64(len(values)))
	}
}

func evalGraphCurve(coords []graph.Coord, t int) int {
	if len(coords) == 0 {
		return 0
	}

	lo, hi := 0, len(coords)
	for lo < hi {
		mid := (lo + hi) / 2
		if coords[mid].Temp < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo < len(coords) && coords[lo].Temp == t {
		return coords[lo].Percent
	}
	if lo == 0 {
		return coords[0].Percent
	}
	if lo == len(coords) {
		return coords[len(coords)-1].Percent
	}

	a, b := coords[lo-1], coords[lo]
	return a.Percent + (b.Percent-a.Percent)*(t-a.Temp)/(b.Temp-a.Temp)
}

func evalLinear(d *graph.LinearData, t int) int {
	if t <= d.MinTemp {
		return d.MinSpeed
	}
	if t >= d.MaxTemp {
		return d.MaxSpeed
	}
	return d.MinSpeed + (d.MaxSpeed-d.MinSpeed)*(t-d.MinTemp)/(d.MaxTemp-d.MinTemp)
}
