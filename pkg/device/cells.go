package device

// PopulateCells derives the fixed per-tile cell inventory from the tile
// grid: eight LCs per LOGIC tile, one IO pair (plus an auxiliary GB site
// where gbufin names the tile) per IO tile, and one RAM cell per RAMT tile
// (the RAMB half of the pair contributes only configuration bits, never
// its own cell). No PLL or WARMBOOT cells are created.
// Call once after loading a DB, before any pipeline stage runs.
func (d *DB) PopulateCells() {
	d.Cells = []Cell{{ID: 0}} // sentinel; cell ids are 1-based
	d.CellTypeCells = make(map[CellType][]int)
	d.BankCells = make(map[Bank][]int)
	d.CellAt = make(map[Location]int)

	add := func(ty CellType, loc Location) int {
		id := len(d.Cells)
		d.Cells = append(d.Cells, Cell{ID: id, Type: ty, Location: loc})
		d.CellTypeCells[ty] = append(d.CellTypeCells[ty], id)
		d.CellAt[loc] = id
		return id
	}

	for t, ty := range d.Tiles {
		switch ty {
		case TileLogic:
			for pos := 0; pos < 8; pos++ {
				add(CellLogic, Location{Tile: t, Pos: pos})
			}
		case TileIO:
			bank := d.TileBank(t)
			for pos := 0; pos < 2; pos++ {
				id := add(CellIO, Location{Tile: t, Pos: pos})
				d.BankCells[bank] = append(d.BankCells[bank], id)
			}
			// The auxiliary GB site (pos 2) lives in the same IO tile and
			// only exists where gbufin names this tile.
			if _, ok := d.GBufIn[[2]int{d.TileX(t), d.TileY(t)}]; ok {
				add(CellGB, Location{Tile: t, Pos: 2})
			}
		case TileRAMT:
			add(CellRAM, Location{Tile: t, Pos: 0})
		}
	}
}
