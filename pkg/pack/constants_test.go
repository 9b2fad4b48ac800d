package pack

import (
	"testing"

	"github.com/icepnr/icepnr/pkg/netlist"
)

func TestRealizeConstantsMatchingUndrivenLeftAlone(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	lc := top.AddInstance(models.LC)
	zero := top.FindOrAddNet("zero")
	zero.SetConstant(netlist.Zero)
	lc.FindPort("SR").Connect(zero) // SR's undriven default is already 0

	RealizeConstants(d)

	if lc.FindPort("SR").Connection() != zero {
		t.Fatal("a constant matching the port's undriven default must not be rewired")
	}
	for _, inst := range top.Instances() {
		if inst != lc {
			t.Fatalf("no constant LC should be synthesized, found %s", inst.InstanceOf().Name())
		}
	}
}

func TestRealizeConstantsDrivesMismatchedSink(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	lc := top.AddInstance(models.LC)
	zero := top.FindOrAddNet("zero")
	zero.SetConstant(netlist.Zero)
	lc.FindPort("CEN").Connect(zero) // CEN's undriven default is 1

	RealizeConstants(d)

	n := lc.FindPort("CEN").Connection()
	if n == nil || n.Name() != "$false" {
		t.Fatalf("CEN should move onto $false, got %v", n)
	}
	drv := n.Driver()
	if drv == nil {
		t.Fatal("$false must be driven")
	}
	constLC, ok := drv.Node().(*netlist.Instance)
	if !ok || !constLC.IsLC() {
		t.Fatal("$false must be driven by a synthesized LC")
	}
	if constLC.GetParam("LUT_INIT").AsBits().Bit(0) {
		t.Fatal("the $false LC's LUT_INIT must be all zeros")
	}
	// The constant-zero net lives on as the synthesized LC's input source.
	if constLC.FindPort("I0").Connection() != zero {
		t.Fatal("the $false LC's inputs must ride the original constant-zero net")
	}
}

func TestRealizeConstantsOne(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	lc := top.AddInstance(models.LC)
	one := top.FindOrAddNet("one")
	one.SetConstant(netlist.One)
	lc.FindPort("I2").Connect(one) // inputs default to 0

	RealizeConstants(d)

	n := lc.FindPort("I2").Connection()
	if n == nil || n.Name() != "$true" {
		t.Fatalf("I2 should move onto $true, got %v", n)
	}
	constLC := n.Driver().Node().(*netlist.Instance)
	init := constLC.GetParam("LUT_INIT").AsBits()
	if !init.Bit(0) || init.Bit(15) {
		t.Fatalf("the $true LC's LUT_INIT must be 16'b1, got %s", init.String())
	}

	// The synthesized LC's own inputs ride a fresh constant-zero net.
	i0 := constLC.FindPort("I0").Connection()
	if i0 == nil || !i0.IsConstant() || i0.Constant() != netlist.Zero {
		t.Fatal("the $true LC's inputs must sit on a constant-zero net")
	}
}

func TestRealizeConstantsSkipsPackagePinAndCIN(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	io := top.AddInstance(models.IO)
	pin := top.FindOrAddNet("pin")
	pin.SetConstant(netlist.One)
	io.FindPort("PACKAGE_PIN").Connect(pin)

	lc := top.AddInstance(models.LC)
	cin := top.FindOrAddNet("cin")
	cin.SetConstant(netlist.One)
	lc.FindPort("CIN").Connect(cin)

	RealizeConstants(d)

	if io.FindPort("PACKAGE_PIN").Connection() != pin {
		t.Fatal("PACKAGE_PIN keeps its implicit constant")
	}
	if lc.FindPort("CIN").Connection() != cin {
		t.Fatal("LC CIN keeps its implicit constant")
	}
	for _, inst := range top.Instances() {
		if inst != io && inst != lc {
			t.Fatal("no constant LC should be synthesized for skipped ports")
		}
	}
}
