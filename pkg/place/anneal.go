package place

import (
	"math"

	"github.com/icepnr/icepnr/pkg/device"
)

func (p *placer) randInt(lo, hi int) int { // inclusive both ends
	if hi <= lo {
		return lo
	}
	return p.rng.Intn(lo, hi)
}

func (p *placer) randElement(v []int) int { return v[p.rng.Intn(0, len(v)-1)] }

// gateRandomCell proposes a random candidate cell for gate g: a logic
// gate samples uniformly within a diameter-tile square around its
// current position (clamped to the grid) with a random pos 0-7; every
// other cell type samples uniformly among all cells of its type.
func (p *placer) gateRandomCell(g int) int {
	ct := gateCellType(p.gates[g])
	if ct != device.CellLogic {
		return p.randElement(p.chipdb.CellTypeCells[ct])
	}

	cell := p.gateCell[g]
	loc := p.chipdb.CellLocation(cell)
	x, y := p.chipdb.TileX(loc.Tile), p.chipdb.TileY(loc.Tile)

	for {
		newX := p.randInt(maxInt(0, x-p.diameter), minInt(p.chipdb.Width-1, x+p.diameter))
		newY := p.randInt(maxInt(0, y-p.diameter), minInt(p.chipdb.Height-1, y+p.diameter))
		newT := p.chipdb.Tile(newX, newY)
		if p.chipdb.Tiles[newT] != device.TileLogic {
			continue
		}
		return p.chipdb.LocCell(device.Location{Tile: newT, Pos: p.randInt(0, 7)})
	}
}

// chainRandomLoc proposes a random (column, start-row) for chain c,
// rejecting any choice whose vertical span overlaps any chain
// (including c's own current span) already occupying that column.
func (p *placer) chainRandomLoc(c int) (device.Location, bool) {
	chain := p.chains.Chains[c]
	nt := (len(chain) + 7) / 8

	newX := p.randElement(p.logicColumns)
	newStart := p.randInt(1, p.chipdb.Height-2-(nt-1))
	newEnd := newStart + nt - 1

	for e := range p.chains.Chains {
		if p.chainX[e] != newX {
			continue
		}
		eNT := (len(p.chains.Chains[e]) + 7) / 8
		eStart := p.chainStart[e]
		eEnd := eStart + eNT - 1
		if (newStart > eStart && newStart <= eEnd) || (newEnd >= eStart && newEnd < eEnd) {
			return device.Location{}, false
		}
	}

	return device.Location{Tile: p.chipdb.Tile(newX, newStart), Pos: 0}, true
}

func (p *placer) moveGate(g, newCell int) {
	if p.lockedGate[g] {
		p.moveFailed = true
	}
	cell := p.gateCell[g]
	if newCell == cell {
		return
	}
	newG := p.cellGate[newCell]
	if newG != 0 && p.lockedGate[newG] {
		p.moveFailed = true
	}
	p.saveSet(newCell, g)
	p.saveSet(cell, newG)
}

func (p *placer) moveChain(c int, newBase device.Location) {
	nt := (len(p.chains.Chains[c]) + 7) / 8
	x, start := p.chainX[c], p.chainStart[c]

	newX, newStart := p.chipdb.TileX(newBase.Tile), p.chipdb.TileY(newBase.Tile)
	if newX == x && newStart == start {
		return
	}

	for i := 0; i < nt; i++ {
		for k := 0; k < 8; k++ {
			loc := device.Location{Tile: p.chipdb.Tile(x, start+i), Pos: k}
			newLoc := device.Location{Tile: p.chipdb.Tile(newX, newStart+i), Pos: k}

			cell := p.chipdb.LocCell(loc)
			newCell := p.chipdb.LocCell(newLoc)
			g := p.cellGate[cell]
			newG := p.cellGate[newCell]
			if g != 0 {
				p.moveGate(g, newCell)
			}
			if newG != 0 {
				p.moveGate(newG, cell)
			}
		}
	}
}

func (p *placer) saveSet(cell, g int) {
	loc := p.chipdb.CellLocation(cell)
	t := loc.Tile

	p.restoreCell = append(p.restoreCell, [2]int{cell, p.cellGate[cell]})
	if g != 0 {
		if p.opts.QWP {
			p.recomputeGate.insert(g)
		} else {
			for _, w := range p.gateNets[g] {
				p.recomputeNet.insert(w)
			}
		}
		p.gateCell[g] = cell

		if c := p.gateChain[g]; c != -1 {
			x, y := p.chipdb.TileX(t), p.chipdb.TileY(t)
			p.saveSetChain(c, x, y)
		}
	}
	p.cellGate[cell] = g

	p.changedTiles.insert(t)
	for _, t2 := range p.relatedTiles[t] {
		p.changedTiles.insert(t2)
	}
}

func (p *placer) saveSetChain(c, x, start int) {
	p.restoreChain = append(p.restoreChain, chainSnapshot{chain: c, x: p.chainX[c], start: p.chainStart[c]})
	p.chainX[c] = x
	p.chainStart[c] = start
}

func (p *placer) saveRecomputeQwpCost() int {
	delta := 0.0
	for _, g := range p.recomputeGate.items() {
		newCost := p.computeGateQwpCost(g)
		oldCost := p.gateQwpCost[g]
		p.restoreGateQwpCost = append(p.restoreGateQwpCost, gateCostSnapshot{gate: g, cost: oldCost})
		p.gateQwpCost[g] = newCost
		delta += newCost - oldCost
	}
	return int(delta * 1000.0)
}

func (p *placer) saveRecomputeWireLength() int {
	delta := 0
	for _, w := range p.recomputeNet.items() {
		newLength := p.computeNetLength(w)
		oldLength := p.netLength[w]
		p.restoreNetLength = append(p.restoreNetLength, netLengthSnapshot{net: w, length: oldLength})
		p.netLength[w] = newLength
		delta += newLength - oldLength
	}
	return delta
}

func (p *placer) restore() {
	p.moveFailed = false
	for _, r := range p.restoreCell {
		cell, g := r[0], r[1]
		p.cellGate[cell] = g
		if g != 0 {
			p.gateCell[g] = cell
		}
	}
	if p.opts.QWP {
		for _, r := range p.restoreGateQwpCost {
			p.gateQwpCost[r.gate] = r.cost
		}
	} else {
		for _, r := range p.restoreNetLength {
			p.netLength[r.net] = r.length
		}
	}
	for _, r := range p.restoreChain {
		p.chainX[r.chain] = r.x
		p.chainStart[r.chain] = r.start
	}
}

func (p *placer) discard() {
	p.changedTiles.clear()
	p.restoreCell = p.restoreCell[:0]
	p.restoreChain = p.restoreChain[:0]
	if p.opts.QWP {
		p.restoreGateQwpCost = p.restoreGateQwpCost[:0]
		p.recomputeGate.clear()
	} else {
		p.restoreNetLength = p.restoreNetLength[:0]
		p.recomputeNet.clear()
	}
}

// acceptOrRestore checks every tile the pending move touched, computes
// the cost delta only if still legal, and applies the Metropolis
// acceptance criterion; any rejection unwinds the move via restore.
func (p *placer) acceptOrRestore() {
	if p.moveFailed {
		p.restore()
		p.discard()
		return
	}
	for _, t := range p.changedTiles.items() {
		if !p.valid(t) {
			p.restore()
			p.discard()
			return
		}
	}

	var delta int
	if p.opts.QWP {
		delta = p.saveRecomputeQwpCost()
	} else {
		delta = p.saveRecomputeWireLength()
	}

	p.nMove++
	if delta < 0 || (!p.opts.ImproveOnly && p.temp > 1e-6 && p.rng.Float64(0, 1) <= math.Exp(-float64(delta)/p.temp)) {
		if delta < 0 {
			p.improved = true
		}
		p.nAccept++
	} else {
		p.restore()
	}
	p.discard()
}

func (p *placer) computeNetLength(w int) int {
	if p.netGlobal[w] || len(p.netGates[w]) == 0 {
		return 0
	}
	gates := p.netGates[w]
	loc0 := p.chipdb.CellLocation(p.gateCell[gates[0]])
	xMin, xMax := p.chipdb.TileX(loc0.Tile), p.chipdb.TileX(loc0.Tile)
	yMin, yMax := p.chipdb.TileY(loc0.Tile), p.chipdb.TileY(loc0.Tile)
	for _, g := range gates[1:] {
		loc := p.chipdb.CellLocation(p.gateCell[g])
		x, y := p.chipdb.TileX(loc.Tile), p.chipdb.TileY(loc.Tile)
		xMin, xMax = minInt(xMin, x), maxInt(xMax, x)
		yMin, yMax = minInt(yMin, y), maxInt(yMax, y)
	}
	return (xMax - xMin) + (yMax - yMin)
}

func (p *placer) computeGateQwpCost(g int) float64 {
	loc := p.chipdb.CellLocation(p.gateCell[g])
	ux, uy := unitCoord(p.chipdb, loc.Tile)
	return math.Abs(ux-p.gateQwpX[g]) + math.Abs(uy-p.gateQwpY[g])
}

// unitCoord maps a tile to its fractional position across the grid, the
// coordinate space qwp_position attributes are expressed in.
func unitCoord(chipdb *device.DB, t int) (float64, float64) {
	x, y := chipdb.TileX(t), chipdb.TileY(t)
	return float64(x) / float64(maxInt(1, chipdb.Width-1)), float64(y) / float64(maxInt(1, chipdb.Height-1))
}

func (p *placer) qwpCost() int {
	cost := 0.0
	for _, c := range p.gateQwpCost {
		cost += c
	}
	return int(cost * 1000.0)
}

func (p *placer) wireLength() int {
	length := 0
	for _, l := range p.netLength {
		length += l
	}
	return length
}

// anneal runs the simulated-annealing main loop: each temperature step
// proposes 15 rounds of per-gate and per-chain moves, then adjusts
// temperature/diameter from the round's acceptance ratio. Terminates
// when cold and stuck (for ImproveOnly, when stuck regardless of
// temperature). With PlaceRandom it returns at once, leaving the
// deterministic initial placement unchanged.
func (p *placer) anneal() {
	if p.opts.PlaceRandom {
		return
	}

	nNoProgress := 0
	for {
		p.nMove, p.nAccept = 0, 0
		p.improved = false

		for m := 0; m < 15; m++ {
			for _, g := range p.freeGates {
				newCell := p.gateRandomCell(g)
				if newG := p.cellGate[newCell]; newG != 0 && p.chained[newG] {
					continue
				}
				p.moveGate(g, newCell)
				p.acceptOrRestore()
			}
			for c := range p.chains.Chains {
				if newLoc, ok := p.chainRandomLoc(c); ok {
					p.moveChain(c, newLoc)
					p.acceptOrRestore()
				}
			}
		}

		if p.improved {
			nNoProgress = 0
		} else {
			nNoProgress++
		}

		if p.opts.ImproveOnly {
			if nNoProgress >= 5 {
				break
			}
			continue
		}

		if p.temp <= 1e-3 && nNoProgress >= 5 {
			break
		}

		raccept := float64(p.nAccept) / float64(p.nMove)
		M := maxInt(p.chipdb.Width, p.chipdb.Height)

		switch {
		case raccept >= 0.8:
			p.temp *= 0.5
		case raccept > 0.6:
			if p.diameter < M {
				p.diameter++
			} else {
				p.temp *= 0.9
			}
		case raccept > 0.4:
			p.temp *= 0.95
		default:
			if p.diameter > 1 {
				p.diameter--
			} else {
				p.temp *= 0.8
			}
		}
	}
}
