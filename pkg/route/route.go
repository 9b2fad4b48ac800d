// Package route assigns every net a path through the chip's switch
// fabric by negotiated-congestion maze routing: repeated rip-up/reroute
// passes where a shared routing resource's cost grows with how many
// nets currently use it, until no resource is shared or a pass budget
// is exhausted. It runs after placement and writes its switch settings
// directly into a bitstream.Configuration.
package route

import (
	"container/heap"

	"github.com/icepnr/icepnr/pkg/bitstream"
	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/util"
)

// Options controls the rip-up/reroute schedule.
type Options struct {
	MaxPasses int
}

func DefaultOptions() Options { return Options{MaxPasses: 200} }

// Result reports span-4/span-12 routing-resource utilization, the
// headline numbers the original tool prints after a successful route.
type Result struct {
	Passes                               int
	NSpan4, NSpan4Used, NSpan12, NSpan12Used int
}

type edge struct{ from, to int }

type router struct {
	chipdb    *device.DB
	top       *netlist.Model
	placement map[*netlist.Instance]int
	conf      *bitstream.Configuration
	opts      Options

	ramGateChip map[string]ramNetName
	pllGateChip map[string]string

	cnetOuts [][]int
	cnetNet  []*netlist.Net

	nNets      int
	netSource  []int
	netTargets [][]int
	netNet     []*netlist.Net
	netRoute   [][]edge

	passes    int
	nShared   int
	demand    []int
	histDemand []int

	unrouted map[int]bool
	visited  map[int]bool
	frontier map[int]bool
	pq       *costHeap
	backptr  []int
	cost     []int
}

type ramNetName struct {
	name    string
	private bool
}

// fatal aborts routing: either the pass budget ran out with chip-nets
// still shared, or a net has no path to one of its targets.
func (r *router) fatal(format string, args ...interface{}) {
	panic(util.RouteErrorf(format, args...))
}

// Route routes every net of top given placement (instance -> cell id),
// setting switch and column-buffer configuration bits into conf as it
// goes. cnetNet, indexed by chip-net, is filled in with the Net that
// chip-net ended up carrying (nil if unused) for the bitstream writer's
// .sym lines.
func Route(chipdb *device.DB, top *netlist.Model, placement map[*netlist.Instance]int,
	conf *bitstream.Configuration, opts Options) (res *Result, cnetNet []*netlist.Net, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if pe, ok := rec.(*util.PipelineError); ok {
				err = pe
				return
			}
			panic(rec)
		}
	}()

	r := &router{
		chipdb:     chipdb,
		top:        top,
		placement:  placement,
		conf:       conf,
		opts:       opts,
		cnetNet:    make([]*netlist.Net, chipdb.NNets),
		demand:     make([]int, chipdb.NNets),
		histDemand: make([]int, chipdb.NNets),
		unrouted:   make(map[int]bool),
		visited:    make(map[int]bool),
		frontier:   make(map[int]bool),
		backptr:    make([]int, chipdb.NNets),
		cost:       make([]int, chipdb.NNets),
	}
	r.buildRamGateChip()
	r.buildPLLGateChip()
	r.buildCnetOuts()
	r.collectNets()

	r.netRoute = make([][]edge, r.nNets)

	log := util.WithStage("route")

	for r.passes = 1; r.passes <= opts.MaxPasses; r.passes++ {
		for n := 0; n < r.nNets; n++ {
			if r.passes > 1 {
				shared := false
				for _, e := range r.netRoute[n] {
					if r.demand[e.to] > 1 {
						shared = true
						break
					}
				}
				if !shared {
					continue
				}
			}
			r.routeNet(n)
		}

		log.Infof("pass %d, %d shared", r.passes, r.nShared)
		if r.nShared == 0 {
			break
		}
		if r.passes > 1 {
			for i := 0; i < chipdb.NNets; i++ {
				if r.demand[i] > 1 {
					r.histDemand[i] += r.demand[i]
				}
			}
		}
	}

	if r.nShared != 0 {
		r.fatal("failed to route")
	}

	res = r.applyConfiguration()
	res.Passes = r.passes
	return res, r.cnetNet, nil
}

// routeNet rips up net n's current route (if any) and finds a fresh
// Steiner-ish tree from its source to every target, negotiating with
// whatever else currently occupies each chip-net.
func (r *router) routeNet(n int) {
	targets := r.netTargets[n]

	r.unrouted = make(map[int]bool, len(targets))
	for _, t := range targets {
		r.unrouted[t] = true
	}

	r.ripup(n)

	for {
		r.start(n)
		done := false
		for len(r.frontier) > 0 {
			cn := r.pop()
			if r.unrouted[cn] {
				delete(r.unrouted, cn)
				r.traceback(n, cn)
				done = len(r.unrouted) == 0
				break
			}
			r.visit(cn)
		}
		if done || len(r.unrouted) == 0 {
			break
		}
		if len(r.frontier) == 0 {
			r.fatal("failed to route net %d: no path to remaining targets", n)
		}
	}
}

func (r *router) ripup(n int) {
	for _, e := range r.netRoute[n] {
		r.demand[e.to]--
		if r.demand[e.to] == 1 {
			r.nShared--
		}
	}
	r.netRoute[n] = nil
}

func (r *router) traceback(n, target int) {
	cn := target
	for cn >= 0 {
		prev := r.backptr[cn]
		if prev >= 0 {
			if r.demand[cn] == 1 {
				r.nShared++
			}
			r.demand[cn]++
			r.netRoute[n] = append(r.netRoute[n], edge{from: prev, to: cn})
		}
		cn = prev
	}
}

func (r *router) start(n int) {
	r.visited = make(map[int]bool)
	r.frontier = make(map[int]bool)
	r.pq = newCostHeap()

	source := r.netSource[n]
	r.cost[source] = 0
	r.backptr[source] = -1
	r.visit(source)

	for _, e := range r.netRoute[n] {
		delete(r.frontier, e.to)
		r.cost[e.to] = 0
		r.backptr[e.to] = -1
		r.visit(e.to)
	}
}

func (r *router) visit(cn int) {
	r.visited[cn] = true

	for _, cn2 := range r.cnetOuts[cn] {
		if r.visited[cn2] {
			continue
		}

		cn2Cost := 1
		if r.passes == r.opts.MaxPasses {
			if r.demand[cn2] != 0 {
				cn2Cost = 1000000
			}
		} else {
			cn2Cost += r.histDemand[cn2]
			cn2Cost *= 1 + 3*r.demand[cn2]
		}

		newCost := r.cost[cn] + cn2Cost

		if r.frontier[cn2] {
			if newCost < r.cost[cn2] {
				r.cost[cn2] = newCost
				r.backptr[cn2] = cn
				heap.Push(r.pq, qitem{cn: cn2, cost: newCost})
			}
		} else {
			r.cost[cn2] = newCost
			r.backptr[cn2] = cn
			r.frontier[cn2] = true
			heap.Push(r.pq, qitem{cn: cn2, cost: newCost})
		}
	}
}

func (r *router) pop() int {
	for {
		item := heap.Pop(r.pq).(qitem)
		if !r.frontier[item.cn] {
			continue
		}
		delete(r.frontier, item.cn)
		return item.cn
	}
}

type qitem struct{ cn, cost int }
type costHeap []qitem

func newCostHeap() *costHeap { h := costHeap{}; return &h }

func (h costHeap) Len() int { return len(h) }
func (h costHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].cn < h[j].cn
}
func (h costHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *costHeap) Push(x interface{}) { *h = append(*h, x.(qitem)) }
func (h *costHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
