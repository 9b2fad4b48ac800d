// Package place assigns every packed gate to a physical chip cell by
// simulated annealing, minimizing half-perimeter wire length (or, when
// requested, distance to a per-gate fractional target position) subject
// to the device's per-tile legality rules. It runs after constraint
// placement and global promotion, and extends their Placement in place.
package place

import (
	"sort"
	"strconv"

	"github.com/icepnr/icepnr/pkg/constraintplace"
	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/global"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/pack"
	"github.com/icepnr/icepnr/pkg/util"
)

// Options controls the annealing run. Zero value is not usable directly;
// start from DefaultOptions.
type Options struct {
	Seed        int64
	InitTemp    float64
	ImproveOnly bool // only accept moves that improve the cost function
	PlaceRandom bool // skip annealing and keep the initial placement (which is not randomized)
	QWP         bool // optimize per-gate qwp_position distance instead of wire length
}

func DefaultOptions() Options {
	return Options{InitTemp: 10000.0}
}

// Result summarizes what annealing did, for logging.
type Result struct {
	InitialCost int
	FinalCost   int
	NPIO, NPLB, NBRAM int
}

type placer struct {
	rng *util.RNG

	chipdb  *device.DB
	pkg     *device.Package
	top     *netlist.Model
	chains  *pack.CarryChains
	gbClass map[*netlist.Instance]global.Class
	locked  map[*netlist.Instance]bool

	placement constraintplace.Placement
	opts      Options

	logicColumns           []int
	logicTiles, ramtTiles  []int
	relatedTiles           [][]int // per tile: tiles that must be re-validated together (PLL + its PLLOUT sites)

	nets      []*netlist.Net // 1-based, nets[0] == nil
	netIdx    map[*netlist.Net]int
	netGlobal []bool // by net index

	gates   []*netlist.Instance // 1-based, gates[0] == nil
	gateIdx map[*netlist.Instance]int

	gateClk, gateSR, gateCen, gateLatch []int // by gate index: net index or 0
	gateLocalNP                        [][]int
	gateChain                          []int // by gate index: chain index or -1

	gateCell []int        // by gate index: cell id (0 = unplaced)
	cellGate map[int]int  // cell id -> gate index (0 = empty)

	lockedGate []bool // by gate index
	chained    []bool // by gate index

	netGates [][]int // by net index: gates touching it
	gateNets [][]int // by gate index: nets it touches

	freeGates []int // movable gate indices, in a fixed scan order

	chainX, chainStart []int // by chain index

	gateQwpX, gateQwpY, gateQwpCost []float64
	netLength                       []int

	diameter   int
	temp       float64
	improved   bool
	nMove      int
	nAccept    int
	moveFailed bool

	changedTiles *orderedSet
	restoreCell  [][2]int // (cell, previous gate)
	restoreChain []chainSnapshot

	recomputeGate       *orderedSet
	recomputeNet        *orderedSet
	restoreGateQwpCost  []gateCostSnapshot
	restoreNetLength    []netLengthSnapshot
}

type chainSnapshot struct{ chain, x, start int }
type gateCostSnapshot struct {
	gate int
	cost float64
}
type netLengthSnapshot struct {
	net    int
	length int
}

// fatal aborts placement; nearly every failure here is a cell-type pool
// or chain column running out of room (capacity-class), the exception
// being a malformed qwp_position attribute (input-class).
func (p *placer) fatal(class error, format string, args ...interface{}) {
	panic(util.Fatalf(class, format, args...))
}

// Place runs simulated annealing over top, extending placement with a
// cell for every instance (including those already placed by
// constraint placement and global promotion, which are honored as
// fixed).
func Place(chipdb *device.DB, pkg *device.Package, top *netlist.Model, chains *pack.CarryChains,
	gbClass map[*netlist.Instance]global.Class, lockedInsts map[*netlist.Instance]bool,
	placement constraintplace.Placement, opts Options) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if pe, ok := rec.(*util.PipelineError); ok {
				err = pe
				return
			}
			panic(rec)
		}
	}()

	p := &placer{
		rng:       util.NewRNG(uint64(opts.Seed)),
		chipdb:    chipdb,
		pkg:       pkg,
		top:       top,
		chains:    chains,
		gbClass:   gbClass,
		locked:    lockedInsts,
		placement: placement,
		opts:      opts,
		cellGate:  make(map[int]int),
		diameter:  maxInt(chipdb.Width, chipdb.Height),
		temp:      opts.InitTemp,
	}
	p.changedTiles = newOrderedSet()
	p.recomputeGate = newOrderedSet()
	p.recomputeNet = newOrderedSet()

	p.setup()
	p.placeInitial()

	log := util.WithStage("place")
	initial := p.cost()
	log.Infof("initial %s = %d", p.costName(), initial)

	p.anneal()

	final := p.cost()
	log.Infof("final %s = %d", p.costName(), final)

	for g := 1; g <= len(p.gates)-1; g++ {
		p.placement[p.gates[g]] = p.gateCell[g]
	}

	// Stamp every placed instance with its cell id, the form
	// --route-only re-reads on a later run of the same dump.
	for inst, cell := range p.placement {
		inst.SetAttr("loc", netlist.StringConst(strconv.Itoa(cell)))
	}

	res = &Result{InitialCost: initial, FinalCost: final}
	p.countOccupancy(res)
	log.Infof("PIOs  %d / %d", res.NPIO, len(p.pkg.PinLoc))
	log.Infof("PLBs  %d / %d", res.NPLB, len(p.logicTiles))
	log.Infof("BRAMs %d / %d", res.NBRAM, len(p.ramtTiles))

	return res, nil
}

func (p *placer) costName() string {
	if p.opts.QWP {
		return "qwp cost"
	}
	return "wire length"
}

func (p *placer) cost() int {
	if p.opts.QWP {
		return p.qwpCost()
	}
	return p.wireLength()
}

func (p *placer) countOccupancy(res *Result) {
	seen := make(map[int]bool)
	for g := 1; g <= len(p.gates)-1; g++ {
		t := p.chipdb.CellLocation(p.gateCell[g]).Tile
		seen[t] = true
	}
	for t := range seen {
		switch p.chipdb.Tiles[t] {
		case device.TileLogic:
			res.NPLB++
		case device.TileIO:
			res.NPIO++
		case device.TileRAMT:
			res.NBRAM++
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// orderedSet is an insertion-ordered set of ints, mirroring the
// original's UllmanSet: iteration order must be deterministic because
// it affects which legality violations are found first and how many
// random numbers later moves consume.
type orderedSet struct {
	present map[int]bool
	order   []int
}

func newOrderedSet() *orderedSet { return &orderedSet{present: make(map[int]bool)} }

func (s *orderedSet) insert(v int) {
	if s.present[v] {
		return
	}
	s.present[v] = true
	s.order = append(s.order, v)
}

func (s *orderedSet) items() []int { return s.order }

func (s *orderedSet) clear() {
	for _, v := range s.order {
		delete(s.present, v)
	}
	s.order = s.order[:0]
}

// gateCellType classifies a gate for cell-pool purposes. SB_GB_IO is
// checked before the broader IsGB()/IsIO() predicates: it occupies an
// ordinary IO pos-0/1 cell, not the tile's standalone GB (pos-2) site.
func gateCellType(inst *netlist.Instance) device.CellType {
	switch {
	case inst.IsLC():
		return device.CellLogic
	case inst.IsGBIO():
		return device.CellIO
	case inst.IsGB():
		return device.CellGB
	case inst.IsIO():
		return device.CellIO
	case inst.IsWarmboot():
		return device.CellWarmBoot
	case inst.IsPLL():
		return device.CellPLL
	default:
		if !inst.IsRAM() {
			panic("place: gateCellType on an unrecognized instance " + inst.InstanceOf().Name())
		}
		return device.CellRAM
	}
}

var cellTypeOrder = []device.CellType{
	device.CellLogic, device.CellIO, device.CellGB, device.CellWarmBoot, device.CellPLL, device.CellRAM,
}

func sortInstancesByID(insts []*netlist.Instance) {
	sort.Slice(insts, func(i, j int) bool { return insts[i].ID() < insts[j].ID() })
}
