package place

import (
	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
)

// setup indexes top's nets and gates, derives the fixed per-device
// tables (logic columns, PLL-related tile groups), and precomputes each
// gate's clock/set-reset/clock-enable net and local-net-parity set —
// everything the legality check and cost functions need but that never
// changes across the annealing run.
func (p *placer) setup() {
	p.indexNetsAndGates()
	p.buildRelatedTiles()
	p.buildColumnsAndTiles()
	p.buildGateSignals()
}

func (p *placer) indexNetsAndGates() {
	netList := p.top.Nets()
	p.nets = make([]*netlist.Net, len(netList)+1)
	p.netIdx = make(map[*netlist.Net]int, len(netList))
	for i, n := range netList {
		p.nets[i+1] = n
		p.netIdx[n] = i + 1
	}
	p.netGlobal = make([]bool, len(p.nets))

	instList := p.top.Instances()
	p.gates = make([]*netlist.Instance, len(instList)+1)
	p.gateIdx = make(map[*netlist.Instance]int, len(instList))
	for i, inst := range instList {
		p.gates[i+1] = inst
		p.gateIdx[inst] = i + 1
	}

	n := len(p.gates)
	p.gateClk = make([]int, n)
	p.gateSR = make([]int, n)
	p.gateCen = make([]int, n)
	p.gateLatch = make([]int, n) // IO gates: LATCH_INPUT_VALUE net index
	p.gateLocalNP = make([][]int, n)
	p.gateChain = make([]int, n)
	for g := range p.gateChain {
		p.gateChain[g] = -1
	}
	p.gateCell = make([]int, n)
	p.lockedGate = make([]bool, n)
	p.chained = make([]bool, n)
	p.gateNets = make([][]int, n)
	p.netGates = make([][]int, len(p.nets))
}

// buildRelatedTiles groups a PLL's site tile with the tiles hosting its
// PLLOUT_A/B sites: a move touching any one must re-validate all three,
// since the conflict rule spans them.
func (p *placer) buildRelatedTiles() {
	p.relatedTiles = make([][]int, len(p.chipdb.Tiles))
	for _, c := range p.chipdb.CellTypeCells[device.CellPLL] {
		t := p.chipdb.CellLocation(c).Tile
		related := []int{t}
		if loc, ok := p.chipdb.MFVLocation(c, "PLLOUT_A"); ok {
			related = append(related, loc.Tile)
		}
		if loc, ok := p.chipdb.MFVLocation(c, "PLLOUT_B"); ok {
			related = append(related, loc.Tile)
		}
		for _, t2 := range related {
			p.relatedTiles[t2] = related
		}
	}
}

func (p *placer) buildColumnsAndTiles() {
	for x := 0; x < p.chipdb.Width; x++ {
		t := p.chipdb.Tile(x, 1)
		if p.chipdb.Tiles[t] == device.TileLogic {
			p.logicColumns = append(p.logicColumns, x)
		}
	}
	for t, ty := range p.chipdb.Tiles {
		switch ty {
		case device.TileLogic:
			p.logicTiles = append(p.logicTiles, t)
		case device.TileRAMT:
			p.ramtTiles = append(p.ramtTiles, t)
		}
	}
}

// buildGateSignals precomputes, for every LC gate, the net indices of
// its CLK/SR/CEN ports and the set of (net, input-parity) pairs its
// data inputs use (parity = the input's mux slot mod 2, since the
// architecture shares one local-net mux across an even/odd pos pair);
// for every IO gate, its latch/clock-enable net; and marks which nets
// are already hard-wired to a global network by an SB_GB/SB_GB_IO.
func (p *placer) buildGateSignals() {
	for g := 1; g < len(p.gates); g++ {
		inst := p.gates[g]
		switch {
		case inst.IsLC():
			p.gateClk[g] = p.connNetIdx(inst, "CLK")
			p.gateSR[g] = p.connNetIdx(inst, "SR")
			p.gateCen[g] = p.connNetIdx(inst, "CEN")

			seen := make(map[int]bool)
			for j := 0; j < 4; j++ {
				port := inst.FindPort(portI[j])
				n := port.Connection()
				if n == nil || n.IsConstant() {
					continue
				}
				np := (p.netIdx[n] << 1) | (j & 1)
				if !seen[np] {
					seen[np] = true
					p.gateLocalNP[g] = append(p.gateLocalNP[g], np)
				}
			}

		case inst.IsIO():
			if n := p.connNetIdx(inst, "LATCH_INPUT_VALUE"); n != 0 {
				p.gateLatch[g] = n
			}
			if n := p.connNetIdx(inst, "CLOCK_ENABLE"); n != 0 {
				p.gateCen[g] = n
			}

		case inst.IsGB():
			if n := inst.FindPort("GLOBAL_BUFFER_OUTPUT").Connection(); n != nil {
				p.netGlobal[p.netIdx[n]] = true
			}
		}
	}
}

func (p *placer) connNetIdx(inst *netlist.Instance, port string) int {
	pt := inst.FindPort(port)
	if pt == nil {
		return 0
	}
	n := pt.Connection()
	if n == nil {
		return 0
	}
	return p.netIdx[n]
}

var portI = [4]string{"I0", "I1", "I2", "I3"}
