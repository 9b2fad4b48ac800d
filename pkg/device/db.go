package device

import (
	"fmt"
	"strconv"
)

// Bank names an IO edge: 0=top, 1=right, 2=bottom, 3=left, matching the
// original tool's tile_bank convention (§9 Open Question 2: the (0,0)
// corner resolves to bank 3 because x==0 is checked before y==0).
type Bank int

// DB is the immutable, read-only chip database. It is built once by a
// loader (text or binary) and never mutated by any pipeline stage.
type DB struct {
	Device string
	Width  int
	Height int

	NNets       int
	NGlobalNets int

	Tiles []TileType // len == Width*Height, row-major: tile = x + Width*y

	Cells         []Cell // 1-based; Cells[0] is a sentinel, never a real cell
	CellTypeCells map[CellType][]int
	BankCells     map[Bank][]int
	CellAt        map[Location]int // Location -> cell id, built by PopulateCells

	Switches    []Switch
	OutSwitches [][]int // chip-net -> switch ids whose Out == that net
	InSwitches  [][]int // chip-net -> switch ids that may drive from that net

	TileNets []map[string]int // per tile, local net name -> chip-net

	NonroutingCBits map[TileType]map[string][]CBit

	Packages map[string]*Package

	GBufIn        map[[2]int]int // (x,y) -> global index, for IO tiles hosting a GB
	LocPinGlbNum  map[Location]int

	TileColBufTile map[int]int // tile -> tile supplying its column-buffer source

	ExtraCellTile int
	ExtraCellMFVs map[int]map[string][2]interface{} // cell -> function -> (tile, tile-net-name)

	TileCBitsBlockSize map[TileType][2]int // (cols, rows)
}

// New returns an empty database with the fixed 8-global convention.
func New() *DB {
	return &DB{
		NGlobalNets:    8,
		CellTypeCells:  make(map[CellType][]int),
		BankCells:      make(map[Bank][]int),
		CellAt:         make(map[Location]int),
		NonroutingCBits: make(map[TileType]map[string][]CBit),
		Packages:       make(map[string]*Package),
		GBufIn:         make(map[[2]int]int),
		LocPinGlbNum:   make(map[Location]int),
		TileColBufTile: make(map[int]int),
		ExtraCellMFVs:  make(map[int]map[string][2]interface{}),
		TileCBitsBlockSize: make(map[TileType][2]int),
	}
}

// Tile returns the tile index for grid coordinate (x, y).
func (d *DB) Tile(x, y int) int {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		panic(fmt.Sprintf("device: coordinate (%d,%d) outside %dx%d grid", x, y, d.Width, d.Height))
	}
	return x + d.Width*y
}

// TileX returns the column of tile t.
func (d *DB) TileX(t int) int { return t % d.Width }

// TileY returns the row of tile t.
func (d *DB) TileY(t int) int { return t / d.Width }

// TileBank returns the IO edge bank of an IO tile. The (0,0) corner
// resolves to bank 3: x==0 is checked before y==0 (Open Question 2).
func (d *DB) TileBank(t int) Bank {
	if d.Tiles[t] != TileIO {
		panic(fmt.Sprintf("device: TileBank called on non-IO tile %d", t))
	}
	x, y := d.TileX(t), d.TileY(t)
	switch {
	case x == 0:
		return 3
	case y == 0:
		return 2
	case x == d.Width-1:
		return 1
	default:
		return 0
	}
}

// IsGlobalNet reports whether chip-net i is one of the fixed globals.
// Chip-nets 0..NGlobalNets-1 are always the globals.
func (d *DB) IsGlobalNet(i int) bool { return i < d.NGlobalNets }

// ErrMultipleSwitch is a defect, not a user-facing error: the database
// promised a unique switch between any ordered (in, out) chip-net pair.
type ErrMultipleSwitch struct {
	In, Out int
	Count   int
}

func (e *ErrMultipleSwitch) Error() string {
	return fmt.Sprintf("device: %d switches connect chip-net %d -> %d, expected exactly one", e.Count, e.In, e.Out)
}

// FindSwitch returns the unique switch id connecting in -> out, or -1 if
// none exists. More than one match is a database defect (Open Question 1)
// and panics rather than silently picking one.
func (d *DB) FindSwitch(in, out int) int {
	found := -1
	count := 0
	for _, sw := range d.OutSwitches[out] {
		if _, ok := d.Switches[sw].InVal[in]; ok {
			found = sw
			count++
		}
	}
	if count > 1 {
		panic((&ErrMultipleSwitch{In: in, Out: out, Count: count}).Error())
	}
	return found
}

// TranslateTileNet resolves a tile-local net name to a chip-net, or false
// if the tile has no net of that name.
func (d *DB) TranslateTileNet(tile int, name string) (int, bool) {
	n, ok := d.TileNets[tile][name]
	return n, ok
}

// CellLocation returns the placement location of cell id c.
func (d *DB) CellLocation(c int) Location { return d.Cells[c].Location }

// LocCell returns the cell id occupying loc, or 0 (the sentinel) if
// nothing sits there.
func (d *DB) LocCell(loc Location) int { return d.CellAt[loc] }

// MFVLocation resolves one entry of a cell's multi-function value table
// (PLLOUT_A/B, oscillator CLKHF/CLKLF, and the other hard-macro
// function-to-site bindings held in ExtraCellMFVs) to the Location it
// names. false if the cell has no such function. ParseText and
// ReadBinary leave ExtraCellMFVs empty, so for a loaded DB this always
// reports false.
func (d *DB) MFVLocation(cell int, fn string) (Location, bool) {
	mfv, ok := d.ExtraCellMFVs[cell][fn]
	if !ok {
		return Location{}, false
	}
	tile, ok := mfv[0].(int)
	if !ok {
		return Location{}, false
	}
	posStr, ok := mfv[1].(string)
	if !ok {
		return Location{}, false
	}
	pos, err := strconv.Atoi(posStr)
	if err != nil {
		return Location{}, false
	}
	return Location{Tile: tile, Pos: pos}, true
}
