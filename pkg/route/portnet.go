package route

import (
	"strings"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
)

// buildRamGateChip fills in the fixed port-name -> (tile-net name,
// private-to-tile-above) table for BRAM gates. The MASK bit ordering
// flips between the 1k device and the 8k/5k devices.
func (r *router) buildRamGateChip() {
	m := make(map[string]ramNetName)
	for i := 0; i <= 7; i++ {
		m[idxName("RDATA", i)] = ramNetName{name: "ram/RDATA_" + itoa(i), private: true}
	}
	for i := 8; i <= 15; i++ {
		m[idxName("RDATA", i)] = ramNetName{name: "ram/RDATA_" + itoa(i), private: false}
	}
	for i := 0; i <= 10; i++ {
		m[idxName("RADDR", i)] = ramNetName{name: "ram/RADDR_" + itoa(i), private: false}
	}
	for i := 0; i <= 10; i++ {
		m[idxName("WADDR", i)] = ramNetName{name: "ram/WADDR_" + itoa(i), private: true}
	}

	lowPrivate := r.chipdb.Device == "1k"
	for i := 0; i <= 7; i++ {
		m[idxName("MASK", i)] = ramNetName{name: "ram/MASK_" + itoa(i), private: lowPrivate}
	}
	for i := 8; i <= 15; i++ {
		m[idxName("MASK", i)] = ramNetName{name: "ram/MASK_" + itoa(i), private: !lowPrivate}
	}

	for i := 0; i <= 7; i++ {
		m[idxName("WDATA", i)] = ramNetName{name: "ram/WDATA_" + itoa(i), private: true}
	}
	for i := 8; i <= 15; i++ {
		m[idxName("WDATA", i)] = ramNetName{name: "ram/WDATA_" + itoa(i), private: false}
	}

	m["RCLKE"] = ramNetName{name: "ram/RCLKE"}
	m["RCLK"] = ramNetName{name: "ram/RCLK"}
	m["RCLKN"] = ramNetName{name: "ram/RCLK"}
	m["RE"] = ramNetName{name: "ram/RE"}
	m["WCLKE"] = ramNetName{name: "ram/WCLKE", private: true}
	m["WCLK"] = ramNetName{name: "ram/WCLK", private: true}
	m["WCLKN"] = ramNetName{name: "ram/WCLK", private: true}
	m["WE"] = ramNetName{name: "ram/WE", private: true}

	r.ramGateChip = m
}

func (r *router) buildPLLGateChip() {
	m := make(map[string]string)
	for i := 0; i < 8; i++ {
		m[idxName("DYNAMICDELAY", i)] = "DYNAMICDELAY_" + itoa(i)
	}
	m["PLLOUTCORE"] = "PLLOUT_A"
	m["PLLOUTCOREA"] = "PLLOUT_A"
	m["PLLOUTCOREB"] = "PLLOUT_B"
	r.pllGateChip = m
}

func idxName(base string, i int) string { return base + "[" + itoa(i) + "]" }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// mfvNet reads a raw (tile, chip-tile-net-name) extra_cell entry.
func mfvNet(chipdb *device.DB, cell int, fn string) (tile int, name string, ok bool) {
	fns, ok := chipdb.ExtraCellMFVs[cell]
	if !ok {
		return 0, "", false
	}
	v, ok := fns[fn]
	if !ok {
		return 0, "", false
	}
	t, ok1 := v[0].(int)
	s, ok2 := v[1].(string)
	if !ok1 || !ok2 {
		return 0, "", false
	}
	return t, s, true
}

// dbPortName converts a netlist bus-element port name ("RDATA[3]") into
// the underscore form extra_cell tables key on ("RDATA_3").
func dbPortName(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch c {
		case '[':
			b.WriteByte('_')
		case ']':
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// portChipNet maps one instance port to the chip-net it connects to, or
// (-1, false) for ports the architecture wires outside the general
// switch fabric (e.g. an LC's CIN above pos 0, a MAC16's ACCUMCI/
// SIGNEXTIN), or (0, false) if the port genuinely cannot be resolved.
func (r *router) portChipNet(inst *netlist.Instance, p *netlist.Port) (int, bool) {
	name := p.Name()
	cell := r.placement[inst]
	loc := r.chipdb.CellLocation(cell)
	t := loc.Tile

	var tileNetName string

	switch {
	case inst.IsLC():
		switch name {
		case "CLK":
			tileNetName = "lutff_global/clk"
		case "CEN":
			tileNetName = "lutff_global/cen"
		case "SR":
			tileNetName = "lutff_global/s_r"
		case "I0":
			tileNetName = "lutff_" + itoa(loc.Pos) + "/in_0"
		case "I1":
			tileNetName = "lutff_" + itoa(loc.Pos) + "/in_1"
		case "I2":
			tileNetName = "lutff_" + itoa(loc.Pos) + "/in_2"
		case "I3":
			tileNetName = "lutff_" + itoa(loc.Pos) + "/in_3"
		case "CIN":
			if loc.Pos != 0 {
				return -1, false
			}
			tileNetName = "carry_in_mux"
		case "COUT":
			tileNetName = "lutff_" + itoa(loc.Pos) + "/cout"
		case "LO":
			tileNetName = "lutff_" + itoa(loc.Pos) + "/lout"
		default:
			tileNetName = "lutff_" + itoa(loc.Pos) + "/out"
		}

	case inst.IsGBIO():
		if name == "GLOBAL_BUFFER_OUTPUT" {
			g, ok := r.chipdb.LocPinGlbNum[loc]
			if !ok {
				return 0, false
			}
			tileNetName = "glb_netwk_" + itoa(g)
		} else {
			var ok bool
			t, tileNetName, ok = r.ioPortNet(loc, name)
			if !ok {
				return 0, false
			}
		}

	case inst.IsIOI3C() && (name == "PU_ENB" || name == "WEAK_PU_ENB"):
		nt, nn, ok := mfvNet(r.chipdb, cell, name)
		if !ok {
			return 0, false
		}
		t, tileNetName = nt, nn

	case inst.IsIO():
		var ok bool
		t, tileNetName, ok = r.ioPortNet(loc, name)
		if !ok {
			return 0, false
		}

	case inst.IsGB():
		if name == "USER_SIGNAL_TO_GLOBAL_BUFFER" {
			tileNetName = "fabout"
		} else {
			x, y := r.chipdb.TileX(t), r.chipdb.TileY(t)
			g, ok := r.chipdb.GBufIn[[2]int{x, y}]
			if !ok {
				return 0, false
			}
			tileNetName = "glb_netwk_" + itoa(g)
		}

	case inst.IsWarmboot():
		nt, nn, ok := mfvNet(r.chipdb, cell, name)
		if !ok {
			return 0, false
		}
		t, tileNetName = nt, nn

	case inst.IsRAM():
		rn, ok := r.ramGateChip[name]
		if !ok {
			return 0, false
		}
		tileNetName = rn.name
		if rn.private {
			if _, ok := r.chipdb.TranslateTileNet(t, tileNetName); !ok {
				t = r.chipdb.Tile(r.chipdb.TileX(t), r.chipdb.TileY(t)-1)
			}
		}

	case inst.IsPLL():
		alias, ok := r.pllGateChip[name]
		if !ok {
			alias = name
		}
		switch alias {
		case "PLLOUTGLOBAL", "PLLOUTGLOBALA":
			gloc, ok := r.chipdb.MFVLocation(cell, "PLLOUT_A")
			if !ok {
				return 0, false
			}
			g, ok := r.chipdb.LocPinGlbNum[gloc]
			if !ok {
				return 0, false
			}
			tileNetName = "glb_netwk_" + itoa(g)
		case "PLLOUTGLOBALB":
			gloc, ok := r.chipdb.MFVLocation(cell, "PLLOUT_B")
			if !ok {
				return 0, false
			}
			g, ok := r.chipdb.LocPinGlbNum[gloc]
			if !ok {
				return 0, false
			}
			tileNetName = "glb_netwk_" + itoa(g)
		case "PLLOUT_A", "PLLOUT_B":
			gloc, ok := r.chipdb.MFVLocation(cell, alias)
			if !ok {
				return 0, false
			}
			t = gloc.Tile
			tileNetName = "io_" + itoa(gloc.Pos) + "/D_IN_0"
		default:
			nt, nn, ok := mfvNet(r.chipdb, cell, alias)
			if !ok {
				return 0, false
			}
			t, tileNetName = nt, nn
		}

	default:
		// MAC16, SPRAM, HFOSC, LFOSC, RGBA_DRV, LEDD_IP, SPI, I2C:
		// all route through a per-cell extra_cell table keyed by a
		// bracket-stripped port name.
		dbName := dbPortName(name)
		if (inst.IsHFOSC() || inst.IsLFOSC()) && inst.HasAttr("ROUTE_THROUGH_FABRIC") {
			if name == "CLKHF" || name == "CLKLF" {
				dbName = name + "_FABRIC"
			}
		}
		if inst.IsMAC16() && (name == "ACCUMCI" || name == "SIGNEXTIN") {
			return -1, false
		}
		nt, nn, ok := mfvNet(r.chipdb, cell, dbName)
		if !ok {
			return 0, false
		}
		t, tileNetName = nt, nn
	}

	return r.chipdb.TranslateTileNet(t, tileNetName)
}

// ioPortNet resolves the fixed IO-cell port names that don't need a
// per-cell extra_cell table (everything but GB_IO's global output and
// the I3C pins, which IsIOI3C instances resolve via the generic
// extra_cell fallback in portChipNet's default case).
func (r *router) ioPortNet(loc device.Location, name string) (int, string, bool) {
	switch name {
	case "LATCH_INPUT_VALUE":
		return loc.Tile, "io_global/latch", true
	case "CLOCK_ENABLE":
		return loc.Tile, "io_global/cen", true
	case "INPUT_CLK":
		return loc.Tile, "io_global/inclk", true
	case "OUTPUT_CLK":
		return loc.Tile, "io_global/outclk", true
	case "OUTPUT_ENABLE":
		return loc.Tile, "io_" + itoa(loc.Pos) + "/OUT_ENB", true
	case "D_OUT_0":
		return loc.Tile, "io_" + itoa(loc.Pos) + "/D_OUT_0", true
	case "D_OUT_1":
		return loc.Tile, "io_" + itoa(loc.Pos) + "/D_OUT_1", true
	case "D_IN_0":
		return loc.Tile, "io_" + itoa(loc.Pos) + "/D_IN_0", true
	case "D_IN_1":
		return loc.Tile, "io_" + itoa(loc.Pos) + "/D_IN_1", true
	default:
		return 0, "", false
	}
}
