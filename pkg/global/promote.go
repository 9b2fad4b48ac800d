// Package global promotes high-fanout clock/enable/reset-like nets onto
// the chip's 8 dedicated global networks: pre-placed hard drivers
// (GB_IO, oscillators, PLL outputs) are registered first, then
// candidate user nets are greedily promoted through inserted SB_GB
// buffers, most-demanded first, while global capacity remains.
package global

import (
	"github.com/icepnr/icepnr/pkg/constraintplace"
	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/util"
)

// Result reports what promotion did, for logging and for the stages
// that follow (routing treats a promoted net's SB_GB specially).
type Result struct {
	GBClass   map[*netlist.Instance]Class // SB_GB/SB_GB_IO instance -> the global class it now drives
	NGlobal   int
	NPromoted int
}

type promoter struct {
	chipdb    *device.DB
	pkg       *device.Package
	models    *netlist.Models
	top       *netlist.Model
	placement constraintplace.Placement

	const0 *netlist.Net

	gcUsed   map[Class]int
	gcGlobal map[Class]int
	gbClass  map[*netlist.Instance]Class

	nGlobal   int
	nPromoted int
}

func (p *promoter) fatal(class error, format string, args ...interface{}) {
	panic(util.Fatalf(class, format, args...))
}

// Promote runs global-net promotion over top, extending placement with
// any pinned pass-through cells (PLL LOCK/SDO) it creates. When
// doPromote is false, only the pre-placed hard drivers are registered;
// no user net is promoted through an inserted SB_GB.
func Promote(chipdb *device.DB, pkg *device.Package, models *netlist.Models, top *netlist.Model, placement constraintplace.Placement, doPromote bool) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if pe, ok := rec.(*util.PipelineError); ok {
				err = pe
				return
			}
			panic(rec)
		}
	}()

	p := &promoter{
		chipdb:    chipdb,
		pkg:       pkg,
		models:    models,
		top:       top,
		placement: placement,
		gcUsed:    make(map[Class]int),
		gcGlobal:  make(map[Class]int),
		gbClass:   make(map[*netlist.Instance]Class),
	}
	for _, gc := range classes {
		p.gcUsed[gc] = 0
		p.gcGlobal[gc] = 0
	}
	p.findOrAddConst0()
	p.promote(doPromote)

	return &Result{GBClass: p.gbClass, NGlobal: p.nGlobal, NPromoted: p.nPromoted}, nil
}

func (p *promoter) findOrAddConst0() {
	for _, n := range p.top.Nets() {
		if n.IsConstant() && n.Constant() == netlist.Zero {
			p.const0 = n
			return
		}
	}
	n := p.top.AddNetNamed("$false")
	n.SetConstant(netlist.Zero)
	p.const0 = n
}

// portGC classifies one connection point by the global class(es) it can
// accept: a clock input always can, a clock-enable or set/reset input
// only for the narrower RAM/LC classes that physically wire to it.
// indirect additionally allows an LC's data inputs to carry a global
// (used when checking whether a promoted net can still feed inputs that
// were originally fed directly, e.g. after absorption into a LUT).
func (p *promoter) portGC(conn *netlist.Port, indirect bool) Class {
	inst, ok := conn.Node().(*netlist.Instance)
	if !ok {
		panic("global: port_gc on a non-instance connection")
	}
	name := conn.Name()

	switch {
	case inst.IsLC():
		switch name {
		case "CLK":
			return ClassClk
		case "CEN":
			return ClassCen
		case "SR":
			return ClassSR
		}
		if indirect {
			switch name {
			case "I0", "I1", "I2", "I3":
				return ClassClk
			}
		}
	case inst.IsIO():
		if name == "INPUT_CLK" || name == "OUTPUT_CLK" {
			return ClassClk
		}
	case inst.IsGB(), inst.IsWarmboot(), inst.IsPLL():
		// opaque: neither a class-compatible sink nor a class source here
	case inst.IsMAC16():
		switch name {
		case "CLK":
			return ClassClk
		case "CE":
			return ClassCen
		case "IRSTTOP", "IRSTBOT", "ORSTTOP", "ORSTBOT":
			return ClassSR
		}
	case inst.IsHFOSC(), inst.IsLFOSC(), inst.IsRGBADrv():
		// no promotable sink ports
	case inst.IsSPRAM():
		if name == "CLOCK" {
			return ClassClk
		}
	case inst.IsI2C(), inst.IsSPI():
		if name == "SBCLKI" {
			return ClassClk
		}
	case inst.IsLEDDAIP():
		if name == "LEDDCLK" {
			return ClassClk
		}
	default:
		if !inst.IsRAM() {
			panic("global: port_gc on an unrecognized instance " + inst.InstanceOf().Name())
		}
		switch name {
		case "WCLK", "WCLKN", "RCLK", "RCLKN":
			return ClassClk
		case "WCLKE":
			return ClassWClke
		case "WE":
			return ClassWE
		case "RCLKE":
			return ClassRClke
		case "RE":
			return ClassRE
		}
	}
	return 0
}

func (p *promoter) routable(gc Class, conn *netlist.Port) bool {
	return p.portGC(conn, true)&gc == gc
}

// makeRoutable splits off every input connection on n that can't accept
// gc directly onto a fresh pass-through net, driven through an inserted
// LC buffer, so the original net can still be promoted onto a global
// whose class doesn't cover every one of its original sinks.
func (p *promoter) makeRoutable(n *netlist.Net, gc Class) {
	var internal *netlist.Net
	for _, conn := range n.Connections() {
		if !conn.IsInput() {
			continue
		}
		if p.routable(gc, conn) {
			continue
		}
		if internal == nil {
			internal = p.top.AddNetLike(n)
			passInst := p.top.AddInstance(p.models.LC)
			passInst.FindPort("I0").Connect(n)
			passInst.FindPort("I1").Connect(p.const0)
			passInst.FindPort("I2").Connect(p.const0)
			passInst.FindPort("I3").Connect(p.const0)
			passInst.SetParam("LUT_INIT", netlist.BitsConst(netlist.NewBitVector(2, 2)))
			passInst.FindPort("O").Connect(internal)
		}
		conn.Connect(internal)
	}
}

// pllPassThrough pins inst's LOCK/SDO output through a dedicated LC
// buffer placed at the PLL's own mfv site, since those two outputs must
// stay routable regardless of what gets promoted onto the globals.
func (p *promoter) pllPassThrough(inst *netlist.Instance, cell int, portName string) {
	port := inst.FindPort(portName)
	n := port.Connection()
	if n == nil {
		return
	}

	t := p.top.AddNetLike(n)
	port.Connect(t)

	passInst := p.top.AddInstance(p.models.LC)
	passInst.FindPort("I0").Connect(t)
	passInst.FindPort("I1").Connect(p.const0)
	passInst.FindPort("I2").Connect(p.const0)
	passInst.FindPort("I3").Connect(p.const0)
	passInst.SetParam("LUT_INIT", netlist.BitsConst(netlist.NewBitVector(2, 2)))
	passInst.FindPort("O").Connect(n)

	loc, ok := p.chipdb.MFVLocation(cell, portName)
	if !ok {
		p.fatal(util.ErrInputMalformed, "global: PLL cell %d has no %s function in chipdb", cell, portName)
	}
	passCell := p.chipdb.LocCell(device.Location{Tile: loc.Tile, Pos: 0})
	p.placement[passInst] = passCell
}
