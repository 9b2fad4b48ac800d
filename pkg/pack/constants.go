package pack

import (
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/util"
)

// RealizeConstants drives every constant sink in the top model from one
// of two synthesized constant LCs: "$false" (LUT_INIT=0) and "$true"
// (LUT_INIT=1). Cells that accept an implicit undriven default keep it:
// an IO-family PACKAGE_PIN, an LC CIN (the first chain position reads
// constant one through the carry-in mux), and any port whose connected
// constant already matches its undriven value. Runs between global
// promotion and placement; after it, the only constant nets left are
// the ones no placed cell needs realized in fabric.
func RealizeConstants(d *netlist.Design) {
	top := d.Top()
	lcModel := d.FindModel("ICESTORM_LC")

	var const0 *netlist.Net
	for _, n := range top.Nets() {
		if n.IsConstant() && n.Constant() == netlist.Zero {
			const0 = n
			break
		}
	}

	var actualConst0, actualConst1 *netlist.Net

	for _, inst := range top.Instances() {
		for _, p := range inst.Ports() {
			if (inst.IsIO() && p.Name() == "PACKAGE_PIN") ||
				(inst.IsLC() && p.Name() == "CIN") {
				continue
			}

			n := p.Connection()
			if n == nil || !n.IsConstant() || n.Constant() == p.Undriven() {
				continue
			}

			var newNet *netlist.Net
			switch n.Constant() {
			case netlist.Zero:
				if actualConst0 == nil {
					actualConst0 = top.AddNetNamed("$false")

					lc := top.AddInstance(lcModel)
					lc.FindPort("I0").Connect(const0)
					lc.FindPort("I1").Connect(const0)
					lc.FindPort("I2").Connect(const0)
					lc.FindPort("I3").Connect(const0)
					lc.FindPort("O").Connect(actualConst0)
					lc.SetParam("LUT_INIT", netlist.BitsConst(netlist.NewBitVector(1, 0)))
				}
				newNet = actualConst0

			case netlist.One:
				if actualConst1 == nil {
					actualConst1 = top.AddNetNamed("$true")

					if const0 == nil {
						const0 = top.AddNetNamed("$false")
						const0.SetConstant(netlist.Zero)
					}

					lc := top.AddInstance(lcModel)
					lc.FindPort("I0").Connect(const0)
					lc.FindPort("I1").Connect(const0)
					lc.FindPort("I2").Connect(const0)
					lc.FindPort("I3").Connect(const0)
					lc.FindPort("O").Connect(actualConst1)
					lc.SetParam("LUT_INIT", netlist.BitsConst(netlist.NewBitVector(16, 1)))
				}
				newNet = actualConst1

			default:
				continue
			}

			p.Connect(newNet)

			if len(n.Connections()) == 0 {
				top.RemoveNet(n)
			}
		}
	}

	log := util.WithStage("realize_constants")
	switch {
	case actualConst0 != nil && actualConst1 != nil:
		log.Infof("realized 0, 1")
	case actualConst0 != nil:
		log.Infof("realized 0")
	case actualConst1 != nil:
		log.Infof("realized 1")
	}
}
