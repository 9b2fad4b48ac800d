package device

import (
	"bytes"
	"strings"
	"testing"
)

func tinyChipDBText() string {
	return `
.device tiny 2 2 3

.pins tq4
A 0 0 0
B 0 0 1

.colbuf
0 0 1 0

.logic_tile 0 0

.io_tile 1 0

.logic_tile_bits 1 1
NegClk B0[0]

.io_tile_bits 2 2
pintype B1[0] B1[1]

.net 0
0 0 lutff_global/clk

.net 1
0 0 lutff_0/out

.net 2
1 0 io_0/D_IN_0

.buffer 1 0 2 B2[0]
0 1
1 0
`
}

func TestParseTextBasic(t *testing.T) {
	db, err := ParseText(strings.NewReader(tinyChipDBText()))
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if db.Device != "tiny" || db.Width != 2 || db.Height != 2 || db.NNets != 3 {
		t.Fatalf("bad header: %+v", db)
	}
	if db.Tiles[db.Tile(0, 0)] != TileLogic {
		t.Fatalf("expected logic tile at (0,0)")
	}
	if db.Tiles[db.Tile(1, 0)] != TileIO {
		t.Fatalf("expected io tile at (1,0)")
	}
	if len(db.Switches) != 1 {
		t.Fatalf("expected 1 switch, got %d", len(db.Switches))
	}
	if db.Switches[0].Out != 2 {
		t.Fatalf("switch out = %d, want 2", db.Switches[0].Out)
	}
	pkg := db.Packages["tq4"]
	if pkg == nil || pkg.PinLoc["A"].Pos != 0 {
		t.Fatalf("bad package: %+v", pkg)
	}
}

func TestFindSwitch(t *testing.T) {
	db, err := ParseText(strings.NewReader(tinyChipDBText()))
	if err != nil {
		t.Fatal(err)
	}
	if s := db.FindSwitch(0, 2); s != 0 {
		t.Fatalf("FindSwitch(0,2) = %d, want 0", s)
	}
	if s := db.FindSwitch(5, 2); s != -1 {
		t.Fatalf("FindSwitch(5,2) = %d, want -1", s)
	}
}

func TestTileBankCornerPrecedence(t *testing.T) {
	db := New()
	db.Width, db.Height = 3, 3
	db.Tiles = make([]TileType, 9)
	db.Tiles[db.Tile(0, 0)] = TileIO
	if got := db.TileBank(db.Tile(0, 0)); got != 3 {
		t.Fatalf("TileBank(0,0) = %d, want 3 (x==0 takes precedence)", got)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	db, err := ParseText(strings.NewReader(tinyChipDBText()))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := db.WriteBinary(&buf); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	db2, err := ReadBinary(&buf)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if db2.Device != db.Device || db2.Width != db.Width || db2.Height != db.Height || db2.NNets != db.NNets {
		t.Fatalf("header mismatch after round trip: %+v vs %+v", db2, db)
	}
	if len(db2.Switches) != len(db.Switches) {
		t.Fatalf("switch count mismatch: %d vs %d", len(db2.Switches), len(db.Switches))
	}
	if db2.Switches[0].Out != db.Switches[0].Out || db2.Switches[0].Tile != db.Switches[0].Tile {
		t.Fatalf("switch mismatch after round trip")
	}
	for i := 0; i < db.NNets; i++ {
		if len(db2.OutSwitches[i]) != len(db.OutSwitches[i]) {
			t.Fatalf("out_switches[%d] length mismatch", i)
		}
	}
}

func TestPopulateCells(t *testing.T) {
	db, err := ParseText(strings.NewReader(tinyChipDBText()))
	if err != nil {
		t.Fatal(err)
	}
	db.PopulateCells()
	if len(db.CellTypeCells[CellLogic]) != 8 {
		t.Fatalf("expected 8 logic cells, got %d", len(db.CellTypeCells[CellLogic]))
	}
	if len(db.CellTypeCells[CellIO]) != 2 {
		t.Fatalf("expected 2 io cells, got %d", len(db.CellTypeCells[CellIO]))
	}
	if db.Cells[0].ID != 0 {
		t.Fatalf("cell 0 should be sentinel")
	}
}
