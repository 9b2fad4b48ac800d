package route

import (
	"fmt"
	"strings"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
)

// buildCnetOuts builds, for every chip-net, the chip-nets reachable by
// crossing one switch that can drive from it — the maze router's
// adjacency list.
func (r *router) buildCnetOuts() {
	r.cnetOuts = make([][]int, r.chipdb.NNets)
	for cn, switches := range r.chipdb.InSwitches {
		for _, s := range switches {
			out := r.chipdb.Switches[s].Out
			r.cnetOuts[cn] = append(r.cnetOuts[cn], out)
		}
	}
}

// collectNets walks every non-boundary net of top, resolves each of its
// connected ports to a chip-net via portChipNet, and keeps the ones
// with both a driver and at least one sink as something to route.
func (r *router) collectNets() {
	boundary := r.top.BoundaryNets()

	for _, n := range r.top.Nets() {
		if boundary[n] {
			continue
		}

		source := -1
		var targets []int

		for _, p := range n.Connections() {
			inst, ok := p.Node().(*netlist.Instance)
			if !ok {
				continue
			}
			cn, ok := r.portChipNet(inst, p)
			if !ok || cn < 0 {
				continue
			}

			r.cnetNet[cn] = n

			if p.IsOutput() {
				source = cn
			} else {
				targets = append(targets, cn)
			}
		}

		if source >= 0 && len(targets) > 0 {
			r.nNets++
			r.netSource = append(r.netSource, source)
			r.netTargets = append(r.netTargets, targets)
			r.netNet = append(r.netNet, n)
		}
	}
}

// applyConfiguration flattens every net's chosen chip-net path into
// switch configuration bits, and tallies span-4/span-12 utilization for
// the summary the CLI prints after a successful route.
func (r *router) applyConfiguration() *Result {
	res := &Result{}

	isSpan4 := make([]bool, r.chipdb.NNets)
	isSpan12 := make([]bool, r.chipdb.NNets)
	for _, names := range r.chipdb.TileNets {
		for name, cn := range names {
			if isSpan4[cn] || isSpan12[cn] {
				continue
			}
			switch {
			case strings.HasPrefix(name, "span4_"), strings.HasPrefix(name, "sp4_"):
				isSpan4[cn] = true
				res.NSpan4++
			case strings.HasPrefix(name, "span12_"), strings.HasPrefix(name, "sp12_"):
				isSpan12[cn] = true
				res.NSpan12++
			}
		}
	}

	for _, edges := range r.netRoute {
		for _, e := range edges {
			if isSpan4[e.to] {
				res.NSpan4Used++
			} else if isSpan12[e.to] {
				res.NSpan12Used++
			}

			s := r.chipdb.FindSwitch(e.from, e.to)
			if s < 0 {
				continue
			}
			sw := r.chipdb.Switches[s]

			// Crossing from a global network into local fabric goes
			// through a column buffer, which has its own enable bit in
			// the tile that sources the column. On 1k devices the
			// colbuf table can name a RAMT tile whose enable actually
			// lives in the RAMB tile below it.
			if r.chipdb.IsGlobalNet(e.from) && !r.chipdb.IsGlobalNet(e.to) {
				g := e.from
				cbT := r.chipdb.TileColBufTile[sw.Tile]
				if r.chipdb.Device == "1k" && r.chipdb.Tiles[cbT] == device.TileRAMT {
					cbT = r.chipdb.Tile(r.chipdb.TileX(cbT), r.chipdb.TileY(cbT)-1)
				}
				fn := fmt.Sprintf("ColBufCtrl.glb_netwk_%d", g)
				cb := r.chipdb.NonroutingCBits[r.chipdb.Tiles[cbT]][fn][0]
				r.conf.SetCBit(device.CBit{Tile: cbT, Row: cb.Row, Col: cb.Col}, true)
			}

			bits := sw.InVal[e.from]
			for k, cbit := range sw.CBits {
				r.conf.SetCBit(cbit, bits[k])
			}
		}
	}

	return res
}
