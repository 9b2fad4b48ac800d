package place

import (
	"fmt"
	"sort"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/global"
	"github.com/icepnr/icepnr/pkg/util"
)

// placeInitial seeds gateCell/cellGate from the incoming Placement
// (constraint-placed IO/PLL cells and global-promotion pass-through
// LCs), packs carry chains into logic columns, fills every other gate
// into its cell-type pool in a deterministic order, and builds the
// per-net gate lists the cost functions need.
func (p *placer) placeInitial() {
	for inst := range p.locked {
		if g, ok := p.gateIdx[inst]; ok {
			p.lockedGate[g] = true
		}
	}

	cellTypeNPlaced := make(map[device.CellType]int)
	for inst, c := range p.placement {
		g := p.gateIdx[inst]
		if g == 0 {
			continue
		}
		p.cellGate[c] = g
		p.gateCell[g] = c
		cellTypeNPlaced[gateCellType(inst)]++
	}

	p.placeChains()

	cellTypeEmpty := make(map[device.CellType][]int)
	for _, ct := range cellTypeOrder {
		for _, c := range p.chipdb.CellTypeCells[ct] {
			if p.cellGate[c] == 0 {
				cellTypeEmpty[ct] = append(cellTypeEmpty[ct], c)
			}
		}
	}

	cellTypeNGates := make(map[device.CellType]int)
	for g := 1; g < len(p.gates); g++ {
		cellTypeNGates[gateCellType(p.gates[g])]++
	}

	type gbCandidate struct {
		gc  global.Class
		g   int
	}
	var gbQueue []gbCandidate

	for g := 1; g < len(p.gates); g++ {
		if p.lockedGate[g] || p.chained[g] {
			continue
		}
		p.freeGates = append(p.freeGates, g)

		ct := gateCellType(p.gates[g])
		if p.gateCell[g] != 0 {
			cellTypeNPlaced[ct]++
			continue
		}

		if ct == device.CellGB {
			gc := global.ClassClk
			if c, ok := p.gbClass[p.gates[g]]; ok {
				gc = c
			}
			gbQueue = append(gbQueue, gbCandidate{gc: gc, g: g})
			continue
		}

		pool := cellTypeEmpty[ct]
		placed := false
		for j, c := range pool {
			p.cellGate[c] = g
			p.gateCell[g] = c
			if ct != device.CellWarmBoot && !p.valid(p.chipdb.CellLocation(c).Tile) {
				p.cellGate[c] = 0
				p.gateCell[g] = 0
				continue
			}
			cellTypeNPlaced[ct]++
			cellTypeEmpty[ct] = append(pool[:j], pool[j+1:]...)
			placed = true
			break
		}
		if !placed {
			p.fatal(util.ErrCapacityExceeded, "failed to place: placed %d %ss of %d / %d",
				cellTypeNPlaced[ct], ct, cellTypeNGates[ct], len(p.chipdb.CellTypeCells[ct]))
		}
	}

	sort.SliceStable(gbQueue, func(i, j int) bool {
		if gbQueue[i].gc != gbQueue[j].gc {
			return gbQueue[i].gc < gbQueue[j].gc
		}
		return gbQueue[i].g < gbQueue[j].g
	})
	for _, cand := range gbQueue {
		g := cand.g
		pool := cellTypeEmpty[device.CellGB]
		placed := false
		for j, c := range pool {
			p.cellGate[c] = g
			p.gateCell[g] = c
			if !p.valid(p.chipdb.CellLocation(c).Tile) {
				p.cellGate[c] = 0
				p.gateCell[g] = 0
				continue
			}
			cellTypeNPlaced[device.CellGB]++
			cellTypeEmpty[device.CellGB] = append(pool[:j], pool[j+1:]...)
			placed = true
			break
		}
		if !placed {
			p.fatal(util.ErrCapacityExceeded, "failed to place: placed %d GBs of %d / %d",
				cellTypeNPlaced[device.CellGB], cellTypeNGates[device.CellGB], len(p.chipdb.CellTypeCells[device.CellGB]))
		}
	}

	p.buildNetGateLists()

	if p.opts.QWP {
		p.initQWP()
	} else {
		p.netLength = make([]int, len(p.nets))
		for w := range p.nets {
			p.netLength[w] = p.computeNetLength(w)
		}
	}
}

// placeChains assigns each carry chain a logic column and vertical
// span: a chain with an already-placed head gate (from constraint
// placement) keeps its column, reserving the column's free space above
// it; an unplaced chain is greedily dropped into the first column with
// enough contiguous free rows. The two end columns of the 1k/8k devices
// reserve their bottom row(s) for the device's fixed IO-adjacent logic.
func (p *placer) placeChains() {
	if p.chains == nil {
		return
	}
	nCols := len(p.logicColumns)
	colFree := make([]int, nCols)
	colLast := make([]int, nCols)
	for i := range colFree {
		colFree[i] = 1
		colLast[i] = p.chipdb.Height - 2
	}
	for i, x := range p.logicColumns {
		switch {
		case p.chipdb.Device == "1k" && (x == 1 || x == 12):
			colFree[i] = 2
		case p.chipdb.Device == "8k" && (x == 1 || x == 32):
			colFree[i] = 2
			colLast[i] = 31
		}
	}

	p.chainX = make([]int, len(p.chains.Chains))
	p.chainStart = make([]int, len(p.chains.Chains))

	for ci, chain := range p.chains.Chains {
		nt := (len(chain) + 7) / 8

		gate0 := p.gateIdx[chain[0]]
		p.gateChain[gate0] = ci
		for _, inst := range chain {
			p.chained[p.gateIdx[inst]] = true
		}

		if cell0 := p.gateCell[gate0]; cell0 != 0 {
			loc := p.chipdb.CellLocation(cell0)
			x, y := p.chipdb.TileX(loc.Tile), p.chipdb.TileY(loc.Tile)
			k := -1
			for l, cx := range p.logicColumns {
				if cx == x {
					k = l
					break
				}
			}
			p.chainX[ci] = x
			p.chainStart[ci] = y
			if colFree[k] < y+nt {
				colFree[k] = y + nt
			}
			continue
		}

		placed := false
		for k := range p.logicColumns {
			if colFree[k]+nt-1 <= colLast[k] {
				x := p.logicColumns[k]
				y := colFree[k]
				for j, inst := range chain {
					g := p.gateIdx[inst]
					loc := device.Location{Tile: p.chipdb.Tile(x, y+j/8), Pos: j % 8}
					cell := p.chipdb.LocCell(loc)
					p.cellGate[cell] = g
					p.gateCell[g] = cell
				}
				p.chainX[ci] = x
				p.chainStart[ci] = y
				colFree[k] += nt
				placed = true
				break
			}
		}
		if !placed {
			p.fatal(util.ErrCapacityExceeded, "failed to place: placed %d of %d carry chains", ci, len(p.chains.Chains))
		}
	}
}

func (p *placer) buildNetGateLists() {
	for g := 1; g < len(p.gates); g++ {
		inst := p.gates[g]
		for _, port := range inst.Ports() {
			n := port.Connection()
			if n == nil || n.IsConstant() {
				continue
			}
			w := p.netIdx[n]
			p.netGates[w] = append(p.netGates[w], g)
			p.gateNets[g] = append(p.gateNets[g], w)
		}
	}
}

func parseQwpPosition(s string) (x, y float64, err error) {
	_, err = fmt.Sscanf(s, "%g %g", &x, &y)
	return x, y, err
}

func (p *placer) initQWP() {
	n := len(p.gates)
	p.gateQwpX = make([]float64, n)
	p.gateQwpY = make([]float64, n)
	p.gateQwpCost = make([]float64, n)
	for g := 1; g < n; g++ {
		inst := p.gates[g]
		x, y := 0.5, 0.5
		if inst.HasAttr("qwp_position") {
			var err error
			x, y, err = parseQwpPosition(inst.GetAttr("qwp_position").AsString())
			if err != nil {
				p.fatal(util.ErrInputMalformed, "parse error in qwp_position attribute: %v", err)
			}
		}
		p.gateQwpX[g] = x
		p.gateQwpY[g] = y
		p.gateQwpCost[g] = p.computeGateQwpCost(g)
	}
}
