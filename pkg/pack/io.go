package pack

import (
	"fmt"

	"github.com/icepnr/icepnr/pkg/netlist"
)

// InstantiateIO wraps every top-level port not already bound to an
// SB_IO(_*)/PLL PACKAGEPIN with a fresh SB_IO cell, folding in a driving
// $_TBUF_ as the IO's tri-state output enable. It runs once, before
// Pack, and mirrors the original tool's instantiate_io pass: after it,
// every top port's net terminates on a real IO primitive and no bare
// $_TBUF_ instances remain.
func InstantiateIO(d *netlist.Design) error {
	top := d.Top()
	ioModel := d.FindModel("SB_IO")
	tbufModel := d.FindModel("$_TBUF_")

	for _, inst := range top.Instances() {
		if inst.InstanceOf() != tbufModel {
			continue
		}
		q := inst.FindPort("Y").ConnectionOtherPort()
		if q == nil {
			return fmt.Errorf("$_TBUF_ gate must drive top-level output or inout port")
		}
		if _, isTop := q.Node().(*netlist.Model); !isTop {
			return fmt.Errorf("$_TBUF_ gate must drive top-level output or inout port")
		}
		if !q.IsOutput() && !q.IsBidir() {
			return fmt.Errorf("$_TBUF_ gate must drive top-level output or inout port")
		}
	}

	for _, port := range top.Ports() {
		if alreadyBound(port) {
			continue
		}

		n := port.Connection()
		tbuf, hasTBuf := driverTBuf(port, tbufModel)
		t := top.AddNetNamed(port.Name())
		port.Disconnect()
		port.Connect(t)

		ioInst := top.AddInstance(ioModel)
		ioInst.FindPort("PACKAGE_PIN").Connect(t)

		switch port.Direction() {
		case netlist.In:
			ioInst.FindPort("D_IN_0").Connect(n)
			ioInst.SetParam("PIN_TYPE", netlist.BitsConst(netlist.NewBitVector(6, 1))) // 000001

		case netlist.Out, netlist.Inout:
			if hasTBuf {
				ioInst.FindPort("D_OUT_0").Connect(tbuf.FindPort("A").Connection())
				ioInst.FindPort("D_IN_0").Connect(tbuf.FindPort("Y").Connection())
				ioInst.FindPort("OUTPUT_ENABLE").Connect(tbuf.FindPort("E").Connection())
				ioInst.SetParam("PIN_TYPE", netlist.BitsConst(netlist.NewBitVector(6, 0x29))) // 101001

				tbuf.FindPort("A").Disconnect()
				tbuf.FindPort("E").Disconnect()
				tbuf.FindPort("Y").Disconnect()
				tbuf.Remove()
			} else {
				if port.Direction() == netlist.Inout {
					return fmt.Errorf("bidirectional port `%s' must be driven by tri-state buffer", port.Name())
				}
				ioInst.FindPort("D_OUT_0").Connect(n)
				ioInst.SetParam("PIN_TYPE", netlist.BitsConst(netlist.NewBitVector(6, 0x19))) // 011001
			}
		}
	}

	top.Prune()
	return nil
}

// alreadyBound reports whether port is already connected to a real IO
// or PLL package pin, in which case instantiate_io leaves it untouched.
func alreadyBound(port *netlist.Port) bool {
	q := port.ConnectionOtherPort()
	if q == nil {
		return false
	}
	inst, ok := q.Node().(*netlist.Instance)
	if !ok {
		return false
	}
	if inst.IsIO() && q.Name() == "PACKAGE_PIN" {
		return true
	}
	if inst.IsPLL() && q.Name() == "PACKAGEPIN" {
		return true
	}
	return false
}

// driverTBuf returns the $_TBUF_ instance driving port's net, if any.
func driverTBuf(port *netlist.Port, tbufModel *netlist.Model) (*netlist.Instance, bool) {
	q := port.ConnectionOtherPort()
	if q == nil || q.Name() != "Y" {
		return nil, false
	}
	inst, ok := q.Node().(*netlist.Instance)
	if !ok || inst.InstanceOf() != tbufModel {
		return nil, false
	}
	return inst, true
}
