// Package pack absorbs pre-pack LUT4/CARRY/SB_DFF* primitives into the
// chip's native eight-input logic cell (ICESTORM_LC), and splits long
// carry chains at the tile-column boundary the device imposes.
package pack

import (
	"fmt"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/util"
)

// errCarryChainLoop is returned when a CARRY instance's CI is (perhaps
// transitively) driven by its own CO with no external entry point, so
// packCarries can never reach it from a ready start.
var errCarryChainLoop = util.CarryChainLoopError()

// CarryChains collects the carry chains packing discovered, each a
// creation-ordered run of ICESTORM_LC instances linked COUT->CIN.
type CarryChains struct {
	Chains [][]*netlist.Instance
}

// Packer runs the three packing passes over one top-level Model.
type Packer struct {
	chipdb *device.DB
	models *netlist.Models
	top    *netlist.Model
	chains *CarryChains

	nDFFPassThrough   int
	nCarryPassThrough int

	const0, const1 *netlist.Net

	ready *instanceSet
}

// NewPacker prepares a Packer for top, reusing top's existing constant
// nets if the netlist already has $false/$true-equivalent driven nets,
// creating them (to be pruned later if unused) otherwise.
func NewPacker(chipdb *device.DB, top *netlist.Model, models *netlist.Models) *Packer {
	p := &Packer{chipdb: chipdb, models: models, top: top, chains: &CarryChains{}, ready: newInstanceSet()}

	for _, n := range top.Nets() {
		if !n.IsConstant() {
			continue
		}
		if n.Constant() == netlist.One && p.const1 == nil {
			p.const1 = n
		}
		if n.Constant() == netlist.Zero && p.const0 == nil {
			p.const0 = n
		}
		if p.const0 != nil && p.const1 != nil {
			break
		}
	}
	if p.const0 == nil {
		p.const0 = top.AddNetNamed("$false")
		p.const0.SetConstant(netlist.Zero)
	}
	if p.const1 == nil {
		p.const1 = top.AddNetNamed("$true")
		p.const1.SetConstant(netlist.One)
	}
	return p
}

// Pack runs pack_dffs, pack_luts, and pack_carries in sequence and prunes
// the resulting netlist.
func (p *Packer) Pack() (*CarryChains, error) {
	p.packDFFs()
	p.packLUTs()
	if err := p.packCarries(); err != nil {
		return nil, err
	}
	p.top.Prune()
	p.logSummary()
	return p.chains, nil
}

// lcFromDFF wires lc_inst's clock/enable/set-reset ports from dff_inst,
// decoding the DFF's variant suffix (everything after the "SB_DFF"
// prefix of its model name, e.g. "NESR" in SB_DFFNESR) into the LC's
// parameter bits.
func (p *Packer) lcFromDFF(lcInst, dffInst *netlist.Instance) {
	suffix := dffInst.InstanceOf().Name()[6:]

	negClk := false
	if len(suffix) > 0 && suffix[0] == 'N' {
		negClk = true
		suffix = suffix[1:]
	}
	cen := false
	if len(suffix) > 0 && suffix[0] == 'E' {
		cen = true
		suffix = suffix[1:]
	}

	asyncSR, setNoreset, sr := false, false, false
	switch suffix {
	case "":
	case "S":
		setNoreset, asyncSR, sr = true, true, true
	case "SS":
		setNoreset, sr = true, true
	case "R":
		asyncSR, sr = true, true
	case "SR":
		sr = true
	default:
		panic(fmt.Sprintf("pack: unrecognized DFF suffix %q", suffix))
	}

	lcInst.FindPort("O").Connect(dffInst.FindPort("Q").Connection())
	lcInst.FindPort("CLK").Connect(dffInst.FindPort("C").Connection())

	if negClk {
		lcInst.SetParam("NEG_CLK", netlist.BitsConst(netlist.NewBitVector(1, 1)))
	}

	if cen {
		lcInst.FindPort("CEN").Connect(dffInst.FindPort("E").Connection())
	} else {
		lcInst.FindPort("CEN").Connect(p.const1)
	}

	if sr {
		if setNoreset {
			lcInst.FindPort("SR").Connect(dffInst.FindPort("S").Connection())
			lcInst.SetParam("SET_NORESET", netlist.BitsConst(netlist.NewBitVector(1, 1)))
		} else {
			lcInst.FindPort("SR").Connect(dffInst.FindPort("R").Connection())
		}
		if asyncSR {
			lcInst.SetParam("ASYNC_SR", netlist.BitsConst(netlist.NewBitVector(1, 1)))
		}
	} else {
		lcInst.FindPort("SR").Connect(p.const0)
	}

	lcInst.SetParam("DFF_ENABLE", netlist.BitsConst(netlist.NewBitVector(1, 1)))
	lcInst.MergeAttrs(dffInst)
}

func (p *Packer) lcFromLUT(lcInst, lutInst *netlist.Instance) {
	lcInst.FindPort("I0").Connect(lutInst.FindPort("I0").Connection())
	lcInst.FindPort("I1").Connect(lutInst.FindPort("I1").Connection())
	lcInst.FindPort("I2").Connect(lutInst.FindPort("I2").Connection())
	lcInst.FindPort("I3").Connect(lutInst.FindPort("I3").Connection())

	if lutInst.SelfHasParam("LUT_INIT") {
		lcInst.SetParam("LUT_INIT", lutInst.SelfGetParam("LUT_INIT"))
	}
	lcInst.MergeAttrs(lutInst)
}

// passThroughLC turns lc_inst into a wire: O = I0, everything else tied
// low. Used when an SB_DFF's D input has no packable LUT4 driver.
func (p *Packer) passThroughLC(lcInst *netlist.Instance, in *netlist.Port) {
	lcInst.FindPort("I0").Connect(in.Connection())
	lcInst.FindPort("I1").Connect(p.const0)
	lcInst.FindPort("I2").Connect(p.const0)
	lcInst.FindPort("I3").Connect(p.const0)
	lcInst.SetParam("LUT_INIT", netlist.BitsConst(netlist.NewBitVector(2, 2)))
	p.nDFFPassThrough++
}

// carryPassThroughLC inserts a pure carry-passthrough LC between a carry
// chain's COUT and whatever it used to drive directly, needed whenever a
// chain crosses a tile-column boundary or its COUT otherwise can't reach
// its consumer without an intervening LC.
func (p *Packer) carryPassThroughLC(lcInst *netlist.Instance, cout *netlist.Port) {
	n := cout.Connection()
	t := p.top.AddNetLike(n)

	cout.Connect(t)

	lcInst.FindPort("I3").Connect(t)
	lcInst.FindPort("O").Connect(n)
	lcInst.SetParam("LUT_INIT", netlist.BitsConst(netlist.NewBitVector(16, 0xff00)))

	p.nCarryPassThrough++
}

func (p *Packer) lcFromCarry(lcInst, carryInst *netlist.Instance) {
	if lcInst.FindPort("I1").Connection() != carryInst.FindPort("I0").Connection() ||
		lcInst.FindPort("I2").Connection() != carryInst.FindPort("I1").Connection() {
		panic("pack: carry LC I1/I2 do not match carry instance I0/I1")
	}
	lcInst.FindPort("CIN").Connect(carryInst.FindPort("CI").Connection())
	lcInst.FindPort("COUT").Connect(carryInst.FindPort("CO").Connection())
	lcInst.SetParam("CARRY_ENABLE", netlist.BitsConst(netlist.NewBitVector(1, 1)))
}

// packDFFs absorbs every SB_DFF* instance into a new ICESTORM_LC,
// along with its D-input driver when that driver is a packable LUT4.
func (p *Packer) packDFFs() {
	removed := make(map[*netlist.Instance]bool)
	for _, inst := range p.top.Instances() {
		if removed[inst] || !inst.IsDFF() {
			continue
		}

		lcInst := p.top.AddInstance(p.models.LC)
		dPort := inst.FindPort("D")
		dDriver := dPort.ConnectionOtherPort()

		var lutInst *netlist.Instance
		if dDriver != nil {
			if driverInst, ok := dDriver.Node().(*netlist.Instance); ok &&
				driverInst.IsLUT4() && dDriver.Name() == "O" {
				lutInst = driverInst
			}
		}

		p.lcFromDFF(lcInst, inst)

		if lutInst != nil {
			p.lcFromLUT(lcInst, lutInst)
		} else {
			p.passThroughLC(lcInst, dPort)
		}

		removed[inst] = true
		inst.Remove()

		if lutInst != nil {
			removed[lutInst] = true
			lutInst.Remove()
		}
	}
}

// packLUTs absorbs every remaining SB_LUT4 instance (one whose output
// never reached a packable SB_DFF) into its own ICESTORM_LC.
func (p *Packer) packLUTs() {
	for _, inst := range p.top.Instances() {
		if !inst.IsLUT4() {
			continue
		}
		lcInst := p.top.AddInstance(p.models.LC)
		p.lcFromLUT(lcInst, inst)
		lcInst.FindPort("O").Connect(inst.FindPort("O").Connection())
		inst.Remove()
	}
}

func driver(n *netlist.Net) *netlist.Port {
	if n == nil {
		return nil
	}
	for _, p := range n.Connections() {
		if p.IsOutput() || p.IsBidir() {
			return p
		}
	}
	return nil
}

func (p *Packer) logSummary() {
	nLC, nDFF, nCarry, nCarryDFF, nIO, nGB := 0, 0, 0, 0, 0, 0
	for _, inst := range p.top.Instances() {
		switch {
		case inst.IsLC():
			nLC++
			dffEnabled := inst.GetParam("DFF_ENABLE").GetBit(0)
			carryEnabled := inst.GetParam("CARRY_ENABLE").GetBit(0)
			switch {
			case dffEnabled && carryEnabled:
				nCarryDFF++
			case dffEnabled:
				nDFF++
			case carryEnabled:
				nCarry++
			}
		case inst.IsIO(), inst.IsGBIO():
			nIO++
		case inst.IsGB():
			nGB++
		}
	}
	util.WithStage("pack").Infof(
		"packed: %d LCs (%d dff, %d carry, %d carry+dff), %d IOs, %d GBs, "+
			"%d dff pass-through, %d carry pass-through",
		nLC, nDFF, nCarry, nCarryDFF, nIO, nGB, p.nDFFPassThrough, p.nCarryPassThrough)
}
