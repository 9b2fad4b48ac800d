// Package device models the immutable, read-only database describing one
// iCE40-class chip: its tile grid, cell inventory, switch graph, and the
// configuration-bit coordinates that the router and bitstream writer target.
package device

import "fmt"

// Location names a physical cell: a tile index plus a small "pos" within
// that tile (0-7 for LOGIC cells, 0-1 for an IO pair, and a handful of
// auxiliary positions for GB/PLL sub-cells packed into an IO tile).
type Location struct {
	Tile int
	Pos  int
}

func (l Location) String() string {
	return fmt.Sprintf("(tile %d, pos %d)", l.Tile, l.Pos)
}

// TileType is the architectural type of one grid tile.
type TileType int

const (
	TileEmpty TileType = iota
	TileIO
	TileLogic
	TileRAMB
	TileRAMT
)

func (t TileType) String() string {
	switch t {
	case TileEmpty:
		return "empty_tile"
	case TileIO:
		return "io_tile"
	case TileLogic:
		return "logic_tile"
	case TileRAMB:
		return "ramb_tile"
	case TileRAMT:
		return "ramt_tile"
	default:
		return "unknown_tile"
	}
}

// CellType is the hardware primitive family a Cell can host.
type CellType int

const (
	CellLogic CellType = iota
	CellIO
	CellGB
	CellWarmBoot
	CellPLL
	CellRAM
)

func (c CellType) String() string {
	switch c {
	case CellLogic:
		return "LOGIC"
	case CellIO:
		return "IO"
	case CellGB:
		return "GB"
	case CellWarmBoot:
		return "WARMBOOT"
	case CellPLL:
		return "PLL"
	case CellRAM:
		return "RAM"
	default:
		return "UNKNOWN"
	}
}

// Cell is one physical site, 1-based within the database's Cells slice so
// index 0 is reserved and never a valid cell id (mirrors the original's
// nullable-driver convention for chip-nets).
type Cell struct {
	ID       int
	Type     CellType
	Location Location
}

// CBit identifies one configuration bit by tile and its local row/column
// within that tile's bit matrix.
type CBit struct {
	Tile int
	Row  int
	Col  int
}

func (c CBit) String() string {
	return fmt.Sprintf("B%d[%d]@%d", c.Row, c.Col, c.Tile)
}

// Switch is a configurable junction in the device's switch graph: it
// drives chip-net Out from chip-net In under the bit pattern In Val[in],
// or (when Bidir) can be configured in either direction.
type Switch struct {
	ID    int
	Bidir bool
	Tile  int
	Out   int
	InVal map[int][]bool
	CBits []CBit
}

// Ins returns the switch's candidate input chip-nets in a stable order.
func (s *Switch) Ins() []int {
	ins := make([]int, 0, len(s.InVal))
	for in := range s.InVal {
		ins = append(ins, in)
	}
	// Sorted for determinism; a Switch's in-set is small (typically <16)
	// so an insertion sort-equivalent is fine and keeps this file stdlib-only.
	for i := 1; i < len(ins); i++ {
		for j := i; j > 0 && ins[j-1] > ins[j]; j-- {
			ins[j-1], ins[j] = ins[j], ins[j-1]
		}
	}
	return ins
}

// Package describes one package's pin↔location map for a chip family member.
type Package struct {
	Name    string
	PinLoc  map[string]Location
	LocPin  map[Location]string
}

// NonroutingFunction is one entry in a tile type's per-function
// configuration-bit table (LUT contents, flip-flop flavor, PIO pin type,
// column-buffer enable, ...).
type NonroutingFunction struct {
	Name  string
	CBits []CBit
}
