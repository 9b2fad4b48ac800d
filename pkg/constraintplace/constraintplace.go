// Package constraintplace legalizes the physical pin constraints a PCF
// file recorded (pkg/pcf) against the chip database, producing the seed
// placement every later stage (global promotion, simulated annealing,
// routing) builds on. It runs first: no instance may already be placed
// when Place is called.
package constraintplace

import (
	"fmt"
	"sort"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/pcf"
	"github.com/icepnr/icepnr/pkg/util"
)

// Placement maps a placed top-level instance to the chip cell id it
// occupies. Every later stage extends the same map in place.
type Placement map[*netlist.Instance]int

type placer struct {
	chipdb      *device.DB
	pkg         *device.Package
	top         *netlist.Model
	constraints *pcf.Constraints

	cellGate  map[int]*netlist.Instance
	placement Placement
}

// fatal aborts constraint placement with a classed pipeline error: most
// violations here are structural (a constraint no legal configuration
// can satisfy), but a bad PCF/chipdb reference is input-class and PLL
// oversubscription is capacity-class.
func (p *placer) fatal(class error, format string, args ...interface{}) {
	panic(util.Fatalf(class, format, args...))
}

// Place legalizes constraints' pin bindings against chipdb and pkg's pin
// map, returning the resulting Placement. top must have no prior
// placement recorded anywhere else.
func Place(chipdb *device.DB, pkg *device.Package, top *netlist.Model, constraints *pcf.Constraints) (placement Placement, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if pe, ok := rec.(*util.PipelineError); ok {
				err = pe
				return
			}
			panic(rec)
		}
	}()

	p := &placer{
		chipdb:      chipdb,
		pkg:         pkg,
		top:         top,
		constraints: constraints,
		cellGate:    make(map[int]*netlist.Instance),
		placement:   make(Placement),
	}
	p.place()
	return p.placement, nil
}

// topPortIOGate resolves a top-level port to the IO or PLL instance
// sitting on the other end of its net.
func (p *placer) topPortIOGate(netName string) *netlist.Instance {
	port := p.top.FindPort(netName)
	if port == nil {
		p.fatal(util.ErrInputMalformed, "constraintplace: no port %q on top-level model %q", netName, p.top.Name())
	}
	other := port.ConnectionOtherPort()
	if other == nil {
		p.fatal(util.ErrStructural, "constraintplace: port %q is not wired to a single IO/PLL instance", netName)
	}
	inst, ok := other.Node().(*netlist.Instance)
	if !ok || !(inst.IsIO() || inst.IsPLL()) {
		p.fatal(util.ErrStructural, "constraintplace: port %q is not wired to an IO or PLL instance", netName)
	}
	return inst
}

func (p *placer) place() {
	bankLatch := make(map[device.Bank]*netlist.Net)

	names := make([]string, 0, len(p.constraints.NetPinLoc))
	for name := range p.constraints.NetPinLoc {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, netName := range names {
		loc := p.constraints.NetPinLoc[netName]
		inst := p.topPortIOGate(netName)

		t := loc.Tile
		if p.chipdb.Tiles[t] != device.TileIO {
			panic(fmt.Sprintf("constraintplace: pin location for net %q resolved off an IO tile", netName))
		}
		b := p.chipdb.TileBank(t)

		var c int
		if inst.IsIO() {
			c = p.placeIO(inst, netName, loc, t, b, bankLatch)
		} else {
			c = p.placePLLPin(inst, netName, loc, t)
		}

		p.cellGate[c] = inst
		p.placement[inst] = c
	}

	p.checkPLLConflicts()
	p.placeUnconstrained()
}

func (p *placer) placeIO(inst *netlist.Instance, netName string, loc device.Location, t int, b device.Bank, bankLatch map[device.Bank]*netlist.Net) int {
	if latchPort := inst.FindPort("LATCH_INPUT_VALUE"); latchPort != nil {
		if latch := latchPort.Connection(); latch != nil {
			if existing, ok := bankLatch[b]; ok {
				if existing != latch {
					p.fatal(util.ErrStructural, "pcf error: multiple LATCH_INPUT_VALUE drivers in bank %d", b)
				}
			} else {
				bankLatch[b] = latch
			}
		}
	}

	if inst.GetParam("IO_STANDARD").AsString() == "SB_LVDS_INPUT" && b != 3 {
		p.fatal(util.ErrStructural, "pcf error: LVDS port `%s' not in bank 3", netName)
	}

	otherPos := 1
	if loc.Pos != 0 {
		otherPos = 0
	}
	if cellOther := p.chipdb.LocCell(device.Location{Tile: t, Pos: otherPos}); cellOther != 0 {
		if instOther, ok := p.cellGate[cellOther]; ok {
			if inst.GetParam("NEG_TRIGGER").AsBits().Bit(0) != instOther.GetParam("NEG_TRIGGER").AsBits().Bit(0) {
				x, y := p.chipdb.TileX(t), p.chipdb.TileY(t)
				p.fatal(util.ErrStructural, "pcf error: incompatible NEG_TRIGGER parameters in PIO at (%d, %d)", x, y)
			}
		}
	}

	return p.chipdb.LocCell(loc)
}

func (p *placer) placePLLPin(inst *netlist.Instance, netName string, loc device.Location, t int) int {
	pllLoc := device.Location{Tile: t, Pos: 3}
	c := p.chipdb.LocCell(pllLoc)
	if c == 0 || p.chipdb.Cells[c].Type != device.CellPLL {
		p.fatal(util.ErrStructural, "bad constraint on `%s': no PLL at pin %s", netName, p.pkg.LocPin[loc])
	}
	return c
}

// checkPLLConflicts rejects a constrained PLL whose PLLOUT-associated IO
// cell, if itself placed, is wired as an input or tristate path.
func (p *placer) checkPLLConflicts() {
	for _, c := range p.chipdb.CellTypeCells[device.CellPLL] {
		pll, ok := p.cellGate[c]
		if !ok {
			continue
		}
		for _, ioCell := range p.pllOutIOCells(pll, c) {
			io, ok := p.cellGate[ioCell]
			if !ok {
				continue
			}
			if p.pinInputConflict(io) {
				pllLoc := p.chipdb.Cells[c].Location
				ioPin := p.pkg.LocPin[p.chipdb.Cells[ioCell].Location]
				p.fatal(util.ErrStructural, "PLL at `%d %d' conflicts with pin %s input path",
					p.chipdb.TileX(pllLoc.Tile), p.chipdb.TileY(pllLoc.Tile), ioPin)
			}
		}
	}
}

// placeUnconstrained handles every instance the loop above left unplaced:
// a bare GB_IO has no legal site without a physical constraint, while an
// unconstrained PLL is greedily dropped onto the first free, conflict-free
// PLL cell.
func (p *placer) placeUnconstrained() {
	nPLL, nPLLPlaced := 0, 0
	for _, inst := range p.top.Instances() {
		if _, placed := p.placement[inst]; placed {
			continue
		}

		switch {
		case inst.IsGBIO():
			p.fatal(util.ErrStructural, "physical constraint required for GB_IO")

		case inst.IsPLL():
			nPLL++
			good := false
			for _, c := range p.chipdb.CellTypeCells[device.CellPLL] {
				if _, occupied := p.cellGate[c]; occupied {
					continue
				}
				good = true
				for _, ioCell := range p.pllOutIOCells(inst, c) {
					io, ok := p.cellGate[ioCell]
					if !ok {
						continue
					}
					if p.pinInputConflict(io) {
						good = false
						break
					}
				}
				if good {
					p.cellGate[c] = inst
					p.placement[inst] = c
					nPLLPlaced++
					break
				}
			}
			if !good {
				p.fatal(util.ErrCapacityExceeded, "failed to place: placed %d PLLs of %d / %d",
					nPLLPlaced, nPLL, len(p.chipdb.CellTypeCells[device.CellPLL]))
			}
		}
	}
}

// pinInputConflict reports whether io's input path (D_IN_0/D_IN_1 wired,
// or PIN_TYPE naming anything but a pure output) would collide with a
// PLL driving that same site's clock output.
func (p *placer) pinInputConflict(io *netlist.Instance) bool {
	pinType := io.GetParam("PIN_TYPE").AsBits()
	d0 := io.FindPort("D_IN_0")
	d1 := io.FindPort("D_IN_1")
	return (d0 != nil && d0.Connected()) || (d1 != nil && d1.Connected()) || !pinType.Bit(0) || pinType.Bit(1)
}

// pllOutIOCells returns the IO cell(s) a PLL's PLLOUT_A (and, for the
// dual-output variants, PLLOUT_B) function sites, resolved through the
// chipdb's per-cell multi-function table.
func (p *placer) pllOutIOCells(pll *netlist.Instance, c int) []int {
	r := []int{p.mfvIOCell(c, "PLLOUT_A")}
	if isDualPLL(pll) {
		r = append(r, p.mfvIOCell(c, "PLLOUT_B"))
	}
	return r
}

func (p *placer) mfvIOCell(c int, fn string) int {
	loc, ok := p.chipdb.MFVLocation(c, fn)
	if !ok {
		p.fatal(util.ErrInputMalformed, "constraintplace: PLL cell %d has no %s function in chipdb", c, fn)
	}
	return p.chipdb.LocCell(loc)
}

// isDualPLL reports whether inst is one of the three PLL variants that
// drive a second clock output (PLLOUT_B) alongside PLLOUT_A.
func isDualPLL(inst *netlist.Instance) bool {
	switch inst.InstanceOf().Name() {
	case "SB_PLL40_2F_CORE", "SB_PLL40_2_PAD", "SB_PLL40_2F_PAD":
		return true
	default:
		return false
	}
}
