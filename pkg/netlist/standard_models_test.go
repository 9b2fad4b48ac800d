package netlist

import "testing"

func TestStandardModelsRegistered(t *testing.T) {
	d := NewDesign()
	for _, name := range []string{
		"ICESTORM_LC", "SB_IO", "SB_GB", "SB_GB_IO", "SB_IO_I3C",
		"SB_IO_OD", "SB_IO_OD_A", "SB_LUT4", "SB_CARRY",
		"SB_DFF", "SB_DFFN", "SB_DFFE", "SB_DFFNE",
		"SB_DFFSR", "SB_DFFNESS",
		"SB_RAM40_4K", "SB_RAM40_4KNR", "SB_RAM40_4KNW", "SB_RAM40_4KNRNW",
		"SB_PLL40_CORE", "SB_PLL40_PAD", "SB_PLL40_2_PAD",
		"SB_PLL40_2F_CORE", "SB_PLL40_2F_PAD",
		"SB_WARMBOOT", "$_TBUF_", "SB_MAC16", "SB_HFOSC", "SB_HFOSC_TRIM",
		"SB_LFOSC", "SB_SPRAM256KA", "SB_RGBA_DRV", "SB_I2C", "SB_SPI",
		"SB_LEDDA_IP",
	} {
		if d.FindModel(name) == nil {
			t.Errorf("missing standard model %q", name)
		}
	}
}

func TestDFFFamilyCount(t *testing.T) {
	d := NewDesign()
	count := 0
	for _, m := range d.Models() {
		inst := newInstance(d.Top(), m)
		if inst.IsDFF() {
			count++
		}
	}
	if count != 20 {
		t.Fatalf("expected 20 SB_DFF* variants, got %d", count)
	}
}

func TestDFFPortShapes(t *testing.T) {
	d := NewDesign()

	plain := d.FindModel("SB_DFF")
	if plain.FindPort("E") != nil || plain.FindPort("R") != nil || plain.FindPort("S") != nil {
		t.Fatal("SB_DFF must have no E/R/S ports")
	}
	if plain.FindPort("D") == nil || plain.FindPort("Q") == nil || plain.FindPort("C") == nil {
		t.Fatal("SB_DFF must have D, Q, C")
	}

	withAll := d.FindModel("SB_DFFNESR")
	for _, p := range []string{"E", "R", "D", "Q", "C"} {
		if withAll.FindPort(p) == nil {
			t.Fatalf("SB_DFFNESR missing port %s", p)
		}
	}
	if withAll.FindPort("S") != nil {
		t.Fatal("SB_DFFNESR (sr=1, SR) must use R, not S")
	}

	withS := d.FindModel("SB_DFFNES")
	if withS.FindPort("S") == nil {
		t.Fatal("SB_DFFNES must have an S port")
	}
	if withS.FindPort("R") != nil {
		t.Fatal("SB_DFFNES must not have an R port")
	}
}

func TestLCModelParams(t *testing.T) {
	d := NewDesign()
	lc := d.FindModel("ICESTORM_LC")
	for _, p := range []string{"LUT_INIT", "NEG_CLK", "CARRY_ENABLE", "DFF_ENABLE", "SET_NORESET", "ASYNC_SR"} {
		if !lc.HasParam(p) {
			t.Errorf("ICESTORM_LC missing default param %s", p)
		}
	}
}

func TestModelsRegistry(t *testing.T) {
	d := NewDesign()
	m := NewModels(d)
	if m.LC == nil || m.LUT4 == nil || m.Carry == nil || m.IO == nil || m.GB == nil {
		t.Fatal("NewModels failed to resolve one or more core standard models")
	}
}

func TestInstancePredicates(t *testing.T) {
	d := NewDesign()
	top := d.Top()
	models := NewModels(d)

	lut := top.AddInstance(models.LUT4)
	if !lut.IsLUT4() || lut.IsCarry() || lut.IsLC() || lut.IsIO() {
		t.Fatal("LUT4 instance predicates wrong")
	}

	io := top.AddInstance(models.IO)
	if !io.IsIO() || io.IsGB() {
		t.Fatal("SB_IO instance predicates wrong")
	}

	gb := top.AddInstance(models.GB)
	if !gb.IsGB() {
		t.Fatal("SB_GB instance must report IsGB")
	}
}
