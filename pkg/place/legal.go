package place

import (
	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/global"
	"github.com/icepnr/icepnr/pkg/netlist"
)

// valid reports whether tile t's current occupants satisfy the
// architecture's per-tile sharing rules. It is checked after every
// proposed move, for every tile the move touched.
func (p *placer) valid(t int) bool {
	switch p.chipdb.Tiles[t] {
	case device.TileLogic:
		return p.validLogic(t)
	case device.TileIO:
		return p.validIO(t)
	default:
		return true // RAMT/RAMB/EMPTY carry no gate-sharing constraint
	}
}

// validLogic enforces that a LOGIC tile's 8 LCs share at most one
// CLK/SR/CEN net each, a uniform NEG_CLK, and at most 30 distinct
// (net, parity) local-input pairs (two input muxes are shared across
// pos pairs, architecturally capping how many distinct local nets a
// tile's LCs can read).
func (p *placer) validLogic(t int) bool {
	var globalClk, globalSR, globalCen int
	negClk := -1

	localNP := newOrderedSet()

	for q := 0; q < 8; q++ {
		cell := p.chipdb.LocCell(device.Location{Tile: t, Pos: q})
		g := p.cellGate[cell]
		if g == 0 {
			continue
		}
		inst := p.gates[g]

		if clk := p.gateClk[g]; clk != 0 {
			if globalClk == 0 {
				globalClk = clk
			} else if globalClk != clk {
				return false
			}
		}
		if sr := p.gateSR[g]; sr != 0 {
			if globalSR == 0 {
				globalSR = sr
			} else if globalSR != sr {
				return false
			}
		}
		if cen := p.gateCen[g]; cen != 0 {
			if globalCen == 0 {
				globalCen = cen
			} else if globalCen != cen {
				return false
			}
		}

		gNegClk := 0
		if inst.GetParam("NEG_CLK").AsBits().Bit(0) {
			gNegClk = 1
		}
		if negClk == -1 {
			negClk = gNegClk
		} else if negClk != gNegClk {
			return false
		}

		for _, np := range p.gateLocalNP[g] {
			localNP.insert(np ^ (q & 1))
		}
	}

	if globalClk != 0 && !p.netGlobal[globalClk] {
		localNP.insert(globalClk << 1)
	}
	if globalSR != 0 && !p.netGlobal[globalSR] {
		localNP.insert(globalSR << 1)
	}
	if globalCen != 0 && !p.netGlobal[globalCen] {
		localNP.insert(globalCen << 1)
	}

	return len(localNP.items()) <= 30
}

// validIO enforces per-bank LATCH_INPUT_VALUE uniqueness, the
// LVDS_INPUT/bank-3/paired-cell rules, matching NEG_TRIGGER between a
// pair, the GB (pos 2) global-class/site compatibility check, and the
// PLL (pos 3) input-path conflict check against its PLLOUT_A/B sites.
func (p *placer) validIO(t int) bool {
	x, y := p.chipdb.TileX(t), p.chipdb.TileY(t)
	b := p.chipdb.TileBank(t)

	var latch int
	for _, cell := range p.chipdb.BankCells[b] {
		g := p.cellGate[cell]
		if g == 0 {
			continue
		}
		n := p.gateLatch[g]
		if latch != 0 {
			if latch != n {
				return false
			}
		} else {
			latch = n
		}
	}

	loc0 := device.Location{Tile: t, Pos: 0}
	loc1 := device.Location{Tile: t, Pos: 1}
	cell0 := p.chipdb.LocCell(loc0)
	cell1 := p.chipdb.LocCell(loc1)
	g0, g1 := 0, 0
	if cell0 != 0 {
		g0 = p.cellGate[cell0]
	}
	if cell1 != 0 {
		g1 = p.cellGate[cell1]
	}

	var globalCen int
	if g0 != 0 {
		if _, ok := p.pkg.LocPin[loc0]; !ok {
			return false
		}
		inst0 := p.gates[g0]
		if inst0.GetParam("IO_STANDARD").AsString() == "SB_LVDS_INPUT" {
			if b != 3 || g1 != 0 {
				return false
			}
		}
		if cen := p.gateCen[g0]; cen != 0 {
			if globalCen == 0 {
				globalCen = cen
			} else if cen != globalCen {
				return false
			}
		}
	}
	if g1 != 0 {
		if _, ok := p.pkg.LocPin[loc1]; !ok {
			return false
		}
		inst1 := p.gates[g1]
		if inst1.GetParam("IO_STANDARD").AsString() == "SB_LVDS_INPUT" {
			return false
		}
		if cen := p.gateCen[g1]; cen != 0 {
			if globalCen == 0 {
				globalCen = cen
			} else if cen != globalCen {
				return false
			}
		}
	}
	if g0 != 0 && g1 != 0 {
		if p.gates[g0].GetParam("NEG_TRIGGER").AsBits().Bit(0) != p.gates[g1].GetParam("NEG_TRIGGER").AsBits().Bit(0) {
			return false
		}
	}

	loc2 := device.Location{Tile: t, Pos: 2}
	if cell2 := p.chipdb.LocCell(loc2); cell2 != 0 {
		if g2 := p.cellGate[cell2]; g2 != 0 {
			if (g0 != 0 && p.gates[g0].IsGBIO()) || (g1 != 0 && p.gates[g1].IsGBIO()) {
				return false
			}
			inst := p.gates[g2]
			gc := global.ClassClk
			if c, ok := p.gbClass[inst]; ok {
				gc = c
			}
			glob, ok := p.chipdb.GBufIn[[2]int{x, y}]
			if !ok || gc&(1<<uint(glob)) == 0 {
				return false
			}
		}
	}

	loc3 := device.Location{Tile: t, Pos: 3}
	if cell3 := p.chipdb.LocCell(loc3); cell3 != 0 {
		if g3 := p.cellGate[cell3]; g3 != 0 {
			inst3 := p.gates[g3]
			if p.pllOutputConflict(cell3, "PLLOUT_A") {
				return false
			}
			if isDualPLL(inst3) && p.pllOutputConflict(cell3, "PLLOUT_B") {
				return false
			}
		}
	}

	return true
}

// pllOutputConflict reports whether the IO cell a PLL's fn (PLLOUT_A or
// PLLOUT_B) site resolves to currently hosts a gate using its D_IN_0
// input, which would collide with the PLL driving that site's output.
func (p *placer) pllOutputConflict(pllCell int, fn string) bool {
	loc, ok := p.chipdb.MFVLocation(pllCell, fn)
	if !ok {
		return false
	}
	c := p.chipdb.LocCell(loc)
	if c == 0 {
		return false
	}
	g := p.cellGate[c]
	if g == 0 {
		return false
	}
	d0 := p.gates[g].FindPort("D_IN_0")
	return d0 != nil && d0.Connected()
}

// isDualPLL reports whether inst drives a second clock output
// (PLLOUT_B) alongside PLLOUT_A.
func isDualPLL(inst *netlist.Instance) bool {
	switch inst.InstanceOf().Name() {
	case "SB_PLL40_2F_CORE", "SB_PLL40_2_PAD", "SB_PLL40_2F_PAD":
		return true
	default:
		return false
	}
}
