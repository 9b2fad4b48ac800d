package pack

import (
	"testing"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
)

func smallChipDB() *device.DB {
	db := device.New()
	db.Width = 4
	db.Height = 4
	return db
}

func TestPackLUTOnly(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	lut := top.AddInstance(models.LUT4)
	lut.SetParam("LUT_INIT", netlist.BitsConst(netlist.NewBitVector(16, 0xcafe)))

	i0 := top.FindOrAddNet("i0")
	o := top.FindOrAddNet("o")
	lut.FindPort("I0").Connect(i0)
	lut.FindPort("O").Connect(o)
	top.AddPort("i0", netlist.In).Connect(i0)
	top.AddPort("o", netlist.Out).Connect(o)

	p := NewPacker(smallChipDB(), top, models)
	if _, err := p.Pack(); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	var lc *netlist.Instance
	for _, inst := range top.Instances() {
		if inst.IsLC() {
			lc = inst
		}
	}
	if lc == nil {
		t.Fatal("expected one ICESTORM_LC after packing a lone LUT4")
	}
	if lc.FindPort("I0").Connection() != i0 {
		t.Fatal("LC.I0 must carry over the LUT4's I0 connection")
	}
	if lc.FindPort("O").Connection() != o {
		t.Fatal("LC.O must carry over the LUT4's O connection")
	}
	got := lc.GetParam("LUT_INIT").AsBits()
	want := netlist.NewBitVector(16, 0xcafe)
	if got.String() != want.String() {
		t.Fatalf("LUT_INIT = %s, want %s", got.String(), want.String())
	}
}

func TestPackDFFWithoutLUT(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	dff := top.AddInstance(d.FindModel("SB_DFFE"))
	q := top.FindOrAddNet("q")
	c := top.FindOrAddNet("clk")
	dIn := top.FindOrAddNet("din")
	e := top.FindOrAddNet("cen")

	dff.FindPort("Q").Connect(q)
	dff.FindPort("C").Connect(c)
	dff.FindPort("D").Connect(dIn)
	dff.FindPort("E").Connect(e)
	top.AddPort("q", netlist.Out).Connect(q)
	top.AddPort("clk", netlist.In).Connect(c)
	top.AddPort("din", netlist.In).Connect(dIn)
	top.AddPort("cen", netlist.In).Connect(e)

	p := NewPacker(smallChipDB(), top, models)
	if _, err := p.Pack(); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	var lc *netlist.Instance
	for _, inst := range top.Instances() {
		if inst.IsLC() {
			lc = inst
		}
	}
	if lc == nil {
		t.Fatal("expected one ICESTORM_LC after packing a lone SB_DFFE")
	}
	if !lc.GetParam("DFF_ENABLE").GetBit(0) {
		t.Fatal("DFF_ENABLE must be set")
	}
	if lc.FindPort("O").Connection() != q {
		t.Fatal("LC.O must carry over the DFF's Q connection")
	}
	if lc.FindPort("CLK").Connection() != c {
		t.Fatal("LC.CLK must carry over the DFF's C connection")
	}
	if lc.FindPort("CEN").Connection() != e {
		t.Fatal("LC.CEN must carry over the DFF's E connection")
	}
	// Pass-through: I0 should carry the D net, I1-I3 tied to const0.
	if lc.FindPort("I0").Connection() != dIn {
		t.Fatal("pass-through LC.I0 must carry the DFF's D connection")
	}
}

func TestPackDFFWithLUT(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	lut := top.AddInstance(models.LUT4)
	dff := top.AddInstance(d.FindModel("SB_DFF"))

	mid := top.FindOrAddNet("mid")
	lut.FindPort("O").Connect(mid)
	dff.FindPort("D").Connect(mid)

	q := top.FindOrAddNet("q")
	clk := top.FindOrAddNet("clk")
	dff.FindPort("Q").Connect(q)
	dff.FindPort("C").Connect(clk)
	top.AddPort("q", netlist.Out).Connect(q)

	p := NewPacker(smallChipDB(), top, models)
	if _, err := p.Pack(); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	var lc *netlist.Instance
	count := 0
	for _, inst := range top.Instances() {
		if inst.IsLC() {
			lc = inst
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 LC (LUT absorbed into the DFF's LC), got %d", count)
	}
	if !lc.GetParam("DFF_ENABLE").GetBit(0) {
		t.Fatal("DFF_ENABLE must be set")
	}
	if lc.FindPort("O").Connection() != q {
		t.Fatal("LC.O must be the DFF's Q, not the LUT's O")
	}
}

func TestPackCarryChain(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	carry1 := top.AddInstance(models.Carry)
	carry2 := top.AddInstance(models.Carry)

	cin := top.FindOrAddNet("cin")
	mid := top.FindOrAddNet("carry_mid")
	cout := top.FindOrAddNet("cout")

	carry1.FindPort("CI").Connect(cin)
	carry1.FindPort("CO").Connect(mid)
	carry2.FindPort("CI").Connect(mid)
	carry2.FindPort("CO").Connect(cout)

	p := NewPacker(smallChipDB(), top, models)
	chains, err := p.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	total := 0
	for _, ch := range chains.Chains {
		total += len(ch)
	}
	if total == 0 {
		t.Fatal("expected at least one carry chain entry")
	}

	for _, inst := range top.Instances() {
		if inst.IsCarry() {
			t.Fatal("no SB_CARRY instance should survive packing")
		}
	}
}
