// Package bitstream accumulates the configuration-bit settings the router
// and global-net promoter produce and emits the iCE40 ASCII bitstream
// ("configuration") text format the upstream icepack/icetime tools consume.
package bitstream

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
)

// version is reported in the .comment header of every file this package
// writes.
const version = "icepnr 0.1"

// ExtraBit is a chip-specific configuration bit outside the regular
// per-tile block (e.g. warm-boot image select bits).
type ExtraBit struct{ A, B, C int }

// Configuration accumulates the cbit/extra-bit settings discovered while
// routing and promoting globals, to be flattened into text by WriteText.
// A later SetCBit for a coordinate already set must agree with the
// earlier value: this mirrors the original tool's fail-fast invariant
// that no two stages ever disagree about the same physical bit.
type Configuration struct {
	cbits     map[device.CBit]bool
	extraBits map[ExtraBit]bool
}

func New() *Configuration {
	return &Configuration{
		cbits:     make(map[device.CBit]bool),
		extraBits: make(map[ExtraBit]bool),
	}
}

func (c *Configuration) SetCBit(cbit device.CBit, value bool) {
	if existing, ok := c.cbits[cbit]; ok && existing != value {
		panic(fmt.Sprintf("bitstream: conflicting setting for %v: %v then %v", cbit, existing, value))
	}
	c.cbits[cbit] = value
}

// SetCBits sets a little-endian field of bits, cbits[0] holding the LSB.
func (c *Configuration) SetCBits(cbits []device.CBit, value uint) {
	for i, cbit := range cbits {
		c.SetCBit(cbit, value&(1<<uint(i)) != 0)
	}
}

func (c *Configuration) SetExtraBit(b ExtraBit) { c.extraBits[b] = true }

var hexDigits = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// WriteText renders the full configuration: device header, one block per
// non-empty tile, BRAM initial-contents blocks, extra bits, and a
// .sym line per chip-net that carries a named netlist Net (for
// icebox_diff / icetime cross-referencing).
func WriteText(w io.Writer, chipdb *device.DB, top *netlist.Model, conf *Configuration,
	placement map[*netlist.Instance]int, cnetNet []*netlist.Net) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, ".comment %s\n", version)
	fmt.Fprintf(bw, ".device %s\n", chipdb.Device)

	for t, ty := range chipdb.Tiles {
		if ty == device.TileEmpty {
			continue
		}
		x, y := chipdb.TileX(t), chipdb.TileY(t)
		fmt.Fprintf(bw, ".%s %d %d\n", tileBlockName(ty), x, y)

		block := chipdb.TileCBitsBlockSize[ty]
		bwid, bhei := block[0], block[1]
		for r := 0; r < bhei; r++ {
			for col := 0; col < bwid; col++ {
				if conf.cbits[device.CBit{Tile: t, Row: r, Col: col}] {
					bw.WriteByte('1')
				} else {
					bw.WriteByte('0')
				}
			}
			bw.WriteByte('\n')
		}
	}

	extras := make([]ExtraBit, 0, len(conf.extraBits))
	for b := range conf.extraBits {
		extras = append(extras, b)
	}
	sort.Slice(extras, func(i, j int) bool {
		if extras[i].A != extras[j].A {
			return extras[i].A < extras[j].A
		}
		if extras[i].B != extras[j].B {
			return extras[i].B < extras[j].B
		}
		return extras[i].C < extras[j].C
	})
	for _, b := range extras {
		fmt.Fprintf(bw, ".extra_bit %d %d %d\n", b.A, b.B, b.C)
	}

	if err := writeRAMData(bw, chipdb, placement); err != nil {
		return err
	}

	for i, n := range cnetNet {
		if n != nil {
			fmt.Fprintf(bw, ".sym %d %s\n", i, n.Name())
		}
	}

	return bw.Flush()
}

func tileBlockName(ty device.TileType) string {
	switch ty {
	case device.TileIO:
		return "io_tile"
	case device.TileLogic:
		return "logic_tile"
	case device.TileRAMB:
		return "ramb_tile"
	case device.TileRAMT:
		return "ramt_tile"
	default:
		return "unknown_tile"
	}
}

// writeRAMData emits the 16 INIT_x 256-bit initial-contents rows, each
// packed 4 bits/hex-digit, for every placed BRAM instance.
func writeRAMData(bw *bufio.Writer, chipdb *device.DB, placement map[*netlist.Instance]int) error {
	insts := make([]*netlist.Instance, 0, len(placement))
	for inst := range placement {
		if inst.IsRAM() {
			insts = append(insts, inst)
		}
	}
	sort.Slice(insts, func(i, j int) bool { return placement[insts[i]] < placement[insts[j]] })

	for _, inst := range insts {
		cell := placement[inst]
		loc := chipdb.CellLocation(cell)
		x, y := chipdb.TileX(loc.Tile), chipdb.TileY(loc.Tile)
		fmt.Fprintf(bw, ".ram_data %d %d\n", x, y-1)

		for i := 0; i < 16; i++ {
			initI := inst.GetParam(fmt.Sprintf("INIT_%c", hexDigits[i])).AsBits()
			initI = initI.Resize(256)
			for j := 63; j >= 0; j-- {
				v := 0
				if initI.Bit(j*4 + 3) {
					v |= 8
				}
				if initI.Bit(j*4 + 2) {
					v |= 4
				}
				if initI.Bit(j*4 + 1) {
					v |= 2
				}
				if initI.Bit(j * 4) {
					v |= 1
				}
				bw.WriteByte(hexDigits[v])
			}
			bw.WriteByte('\n')
		}
	}
	return nil
}
