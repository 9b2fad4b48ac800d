package global

import (
	"sort"

	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/util"
)

// promote is the whole pass: register pre-placed hard drivers, pin PLL
// LOCK/SDO pass-throughs, then greedily promote the most-demanded
// eligible user nets until global capacity runs out.
func (p *promoter) promote(doPromote bool) {
	p.registerHardDrivers()
	p.promoteUserNets(doPromote)
	p.logSummary()
	p.top.Prune()
}

// registerHardDrivers walks every placed instance once, recording the
// global class already-hard-wired drivers (GB_IO, HFOSC/LFOSC unless
// routed through fabric, PLL clock outputs) occupy, and collects placed
// PLLs so their LOCK/SDO outputs can be pinned afterward.
func (p *promoter) registerHardDrivers() {
	type pllSite struct {
		inst *netlist.Instance
		cell int
	}
	var plls []pllSite

	insts := make([]*netlist.Instance, 0, len(p.placement))
	for inst := range p.placement {
		insts = append(insts, inst)
	}
	sort.Slice(insts, func(i, j int) bool { return insts[i].ID() < insts[j].ID() })

	for _, inst := range insts {
		c := p.placement[inst]

		switch {
		case inst.IsGBIO():
			out := inst.FindPort("GLOBAL_BUFFER_OUTPUT")
			if !out.Connected() {
				continue
			}
			loc := p.chipdb.CellLocation(c)
			g, ok := p.chipdb.LocPinGlbNum[loc]
			if !ok {
				p.fatal(util.ErrStructural, "Not able to use pin %s for global buffer output", p.pkg.LocPin[loc])
			}
			p.markUsed(g)
			p.makeRoutable(out.Connection(), 1<<uint(g))

		case inst.IsHFOSC():
			out := inst.FindPort("CLKHF")
			if !out.Connected() || inst.IsAttrSet("ROUTE_THROUGH_FABRIC", false) {
				continue
			}
			loc, ok := p.chipdb.MFVLocation(c, "CLKHF")
			if !ok {
				continue
			}
			g, ok := p.chipdb.LocPinGlbNum[loc]
			if !ok {
				continue
			}
			p.markUsed(g)
			p.makeRoutable(out.Connection(), 1<<uint(g))

		case inst.IsLFOSC():
			out := inst.FindPort("CLKLF")
			if !out.Connected() || inst.IsAttrSet("ROUTE_THROUGH_FABRIC", false) {
				continue
			}
			loc, ok := p.chipdb.MFVLocation(c, "CLKLF")
			if !ok {
				continue
			}
			g, ok := p.chipdb.LocPinGlbNum[loc]
			if !ok {
				continue
			}
			p.markUsed(g)
			p.makeRoutable(out.Connection(), 1<<uint(g))

		case inst.IsPLL():
			plls = append(plls, pllSite{inst, c})

			a := inst.FindPort("PLLOUTGLOBAL")
			if a == nil {
				a = inst.FindPort("PLLOUTGLOBALA")
			}
			if a != nil && a.Connected() {
				loc, ok := p.chipdb.MFVLocation(c, "PLLOUT_A")
				if ok {
					if g, ok := p.chipdb.LocPinGlbNum[loc]; ok {
						p.markUsed(g)
						p.makeRoutable(a.Connection(), 1<<uint(g))
					}
				}
			}

			if b := inst.FindPort("PLLOUTGLOBALB"); b != nil && b.Connected() {
				loc, ok := p.chipdb.MFVLocation(c, "PLLOUT_B")
				if ok {
					if g, ok := p.chipdb.LocPinGlbNum[loc]; ok {
						p.markUsed(g)
						p.makeRoutable(b.Connection(), 1<<uint(g))
					}
				}
			}
		}
	}

	for _, s := range plls {
		p.pllPassThrough(s.inst, s.cell, "LOCK")
		p.pllPassThrough(s.inst, s.cell, "SDO")
	}
}

// markUsed increments gc_used for every class containing global g,
// mirroring a hard driver's effect on remaining global capacity.
func (p *promoter) markUsed(g int) {
	for _, gc := range classes {
		if gc&(1<<uint(g)) != 0 {
			p.gcUsed[gc]++
		}
	}
}

type promoteCandidate struct {
	net    *netlist.Net
	driver *netlist.Port
	gc     Class
	count  int
}

// promoteUserNets classifies every non-boundary, non-constant net by its
// strongest sink demand. A net already driven by a hard global source is
// registered outright; everything else above the fan-out threshold is a
// promotion candidate, greedily granted most-demanded first while
// capacity remains in every global class that would be affected.
func (p *promoter) promoteUserNets(doPromote bool) {
	boundary := p.top.BoundaryNets()

	var candidates []promoteCandidate

	for _, n := range p.top.Nets() {
		if boundary[n] || n.IsConstant() {
			continue
		}

		counts := make(map[Class]int)
		var driver *netlist.Port
		for _, conn := range n.Connections() {
			if conn.IsBidir() {
				panic("global: bidir connection on a promotable net")
			}
			if conn.IsOutput() {
				driver = conn
			}
			if gc := p.portGC(conn, false); gc != 0 {
				counts[gc]++
			}
		}

		maxGC, maxN := Class(0), 0
		for _, gc := range classes {
			if cnt := counts[gc]; cnt > maxN {
				maxGC, maxN = gc, cnt
			}
		}

		if driver != nil && p.isHardGlobalDriver(driver) {
			gc := maxGC
			if gc == 0 {
				gc = ClassClk
			}
			p.nGlobal++
			p.gcGlobal[gc]++

			driverInst := driver.Node().(*netlist.Instance)
			if driverInst.IsGB() || driverInst.IsHFOSC() || driverInst.IsLFOSC() {
				if driver.Connected() {
					p.makeRoutable(driver.Connection(), gc)
				}
				p.gbClass[driverInst] = gc
			}
			for _, gc2 := range classes {
				if gc2&gc == gc {
					p.gcUsed[gc2]++
				}
			}
			continue
		}

		if doPromote && driver != nil && maxGC != 0 && maxN > 4 {
			candidates = append(candidates, promoteCandidate{net: n, driver: driver, gc: maxGC, count: maxN})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].net.ID() > candidates[j].net.ID()
	})

	for _, cand := range candidates {
		if !p.globalCapacityFree(cand.gc) {
			continue
		}
		p.promoteNet(cand.net, cand.gc)
	}
}

// isHardGlobalDriver reports whether conn is one of the port/model
// combinations wired directly to a global network: an SB_GB/SB_GB_IO
// buffer output, a PLL global clock output, or an oscillator output not
// forced through fabric routing.
func (p *promoter) isHardGlobalDriver(conn *netlist.Port) bool {
	inst, ok := conn.Node().(*netlist.Instance)
	if !ok {
		return false
	}
	name := conn.Name()
	switch {
	case inst.IsGB():
		return name == "GLOBAL_BUFFER_OUTPUT"
	case inst.IsPLL():
		return name == "PLLOUTGLOBAL" || name == "PLLOUTGLOBALA" || name == "PLLOUTGLOBALB"
	case inst.IsHFOSC():
		return name == "CLKHF" && !inst.IsAttrSet("ROUTE_THROUGH_FABRIC", false)
	case inst.IsLFOSC():
		return name == "CLKLF" && !inst.IsAttrSet("ROUTE_THROUGH_FABRIC", false)
	default:
		return false
	}
}

// globalCapacityFree reports whether every class that is a superset of
// gc (i.e. whose globals gc's promotion would also occupy) still has at
// least one free global site.
func (p *promoter) globalCapacityFree(gc Class) bool {
	for _, gc2 := range classes {
		if gc2&gc == gc && p.gcUsed[gc2] >= popcount(gc2) {
			return false
		}
	}
	return true
}

// promoteNet inserts an SB_GB driven by n, rewiring only the sinks whose
// class is compatible with gc onto the buffer's output; incompatible
// sinks stay on the original net for ordinary fabric routing.
func (p *promoter) promoteNet(n *netlist.Net, gc Class) {
	gbInst := p.top.AddInstance(p.models.GB)
	t := p.top.AddNetLike(n)

	nConn, nConnPromoted := 0, 0
	for _, conn := range n.Connections() {
		if conn.IsOutput() || conn.IsBidir() {
			continue
		}
		nConn++
		if p.portGC(conn, true)&gc == gc {
			nConnPromoted++
			conn.Connect(t)
		}
	}

	gbInst.FindPort("USER_SIGNAL_TO_GLOBAL_BUFFER").Connect(n)
	gbInst.FindPort("GLOBAL_BUFFER_OUTPUT").Connect(t)

	p.nGlobal++
	p.gcGlobal[gc]++
	p.gbClass[gbInst] = gc
	for _, gc2 := range classes {
		if gc2&gc == gc {
			p.gcUsed[gc2]++
		}
	}

	p.nPromoted++
	util.WithStage("global").Infof("promoted %s, %d / %d", n.Name(), nConnPromoted, nConn)
}

func (p *promoter) logSummary() {
	log := util.WithStage("global")
	log.Infof("promoted %d nets", p.nPromoted)
	for _, gc := range classes {
		if n := p.gcGlobal[gc]; n > 0 {
			log.Infof("  %d %s", n, gc)
		}
	}
	log.Infof("%d globals", p.nGlobal)
}
