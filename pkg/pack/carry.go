package pack

import "github.com/icepnr/icepnr/pkg/netlist"

// instanceSet is an insertion-agnostic set of instances visited in ID
// order, standing in for the original's std::set<Instance*, IdLess>: Go
// maps don't provide a stable iteration order, so front() scans for the
// minimum id explicitly.
type instanceSet struct {
	m map[*netlist.Instance]bool
}

func newInstanceSet() *instanceSet { return &instanceSet{m: make(map[*netlist.Instance]bool)} }

func (s *instanceSet) add(inst *netlist.Instance) { s.m[inst] = true }
func (s *instanceSet) remove(inst *netlist.Instance) { delete(s.m, inst) }
func (s *instanceSet) empty() bool { return len(s.m) == 0 }

// front returns the lowest-id member of the set.
func (s *instanceSet) front() *netlist.Instance {
	var best *netlist.Instance
	for inst := range s.m {
		if best == nil || inst.ID() < best.ID() {
			best = inst
		}
	}
	return best
}

// findCarryLC returns the LC already packed with the SB_CARRY instance
// immediately upstream of c on its CI net, provided that LC's I1/I2 match
// c's I0/I1 (the carry chain's "shared" input pair) and CI has exactly
// the three expected connections (the previous CO, this CI, and the I3
// of the LC being matched).
func (p *Packer) findCarryLC(c *netlist.Instance) *netlist.Instance {
	ciConn := c.FindPort("CI").Connection()
	if ciConn == nil || ciConn.IsConstant() || len(ciConn.Connections()) != 3 {
		return nil
	}

	i0Conn := c.FindPort("I0").Connection()
	i1Conn := c.FindPort("I1").Connection()

	for _, port := range ciConn.Connections() {
		inst, ok := port.Node().(*netlist.Instance)
		if !ok || !inst.IsLC() || port.Name() != "I3" {
			continue
		}
		if i0Conn == inst.FindPort("I1").Connection() && i1Conn == inst.FindPort("I2").Connection() {
			return inst
		}
	}
	return nil
}

// packCarriesFrom walks one carry chain starting at f, packing each
// SB_CARRY into an LC (reusing whatever LC findCarryLC identifies as
// already sharing its I0/I1 pair) and splitting the chain with a
// pass-through LC whenever it would exceed the device's tile-column
// height, or whenever the clock/enable/set-reset triple driving the
// chain's LCs would otherwise change mid-chain.
func (p *Packer) packCarriesFrom(f *netlist.Instance) {
	maxChainLength := (p.chipdb.Height - 2) * 8

	var chain []*netlist.Instance
	var globalClk, globalCen, globalSR *netlist.Net

	c := f
	for c != nil {
		out := c.FindPort("CO")
		outConn := out.Connection()
		if outConn != nil && len(chain) == maxChainLength-1 {
			outLCInst := p.top.AddInstance(p.models.LC)
			p.carryPassThroughLC(outLCInst, chain[len(chain)-1].FindPort("COUT"))
			chain = append(chain, outLCInst)
			p.chains.Chains = append(p.chains.Chains, chain)
			chain = nil
		}

		in := c.FindPort("CI")
		inConn := in.Connection()

		if len(chain)%8 == 0 {
			globalClk, globalCen, globalSR = nil, nil, nil
		}

		if len(chain) == 0 && inConn != nil && !inConn.IsConstant() {
			inLCInst := p.top.AddInstance(p.models.LC)
			t := p.top.AddNetLike(inConn)

			inLCInst.FindPort("COUT").Connect(t)
			inLCInst.FindPort("I0").Connect(p.const0)
			inLCInst.FindPort("I1").Connect(inConn)
			inLCInst.FindPort("I2").Connect(p.const0)
			inLCInst.FindPort("I3").Connect(p.const0)
			inLCInst.FindPort("CIN").Connect(p.const1)
			inLCInst.SetParam("CARRY_ENABLE", netlist.BitsConst(netlist.NewBitVector(1, 1)))

			chain = append(chain, inLCInst)

			in.Connect(t)
			inConn = t
			p.nCarryPassThrough++
		}

		lcInst := p.findCarryLC(c)
		if lcInst != nil {
			clk := lcInst.FindPort("CLK").Connection()
			cen := lcInst.FindPort("CEN").Connection()
			sr := lcInst.FindPort("SR").Connection()

			if (globalClk != nil && globalClk != clk) ||
				(globalCen != nil && globalCen != cen) ||
				(globalSR != nil && globalSR != sr) {
				lcInst = nil
			} else {
				if globalClk == nil {
					globalClk = clk
				}
				if globalCen == nil {
					globalCen = cen
				}
				if globalSR == nil {
					globalSR = sr
				}
			}
		}

		if lcInst == nil {
			lcInst = p.top.AddInstance(p.models.LC)

			lcInst.FindPort("I1").Connect(c.FindPort("I0").Connection())
			lcInst.FindPort("I2").Connect(c.FindPort("I1").Connection())

			if inConn == nil || inConn.IsConstant() || len(inConn.Connections()) == 2 {
				// a LUT could be packed into this LC's I0 here; left unpacked.
			} else {
				prevCOUT := chain[len(chain)-1].FindPort("COUT")
				if prevCOUT.Connection() != inConn {
					panic("pack: carry chain CI does not match previous COUT")
				}
				p.carryPassThroughLC(lcInst, prevCOUT)
				c.FindPort("CI").Connect(prevCOUT.Connection())
			}
		}

		p.lcFromCarry(lcInst, c)
		chain = append(chain, lcInst)

		var nextC *netlist.Instance
		if outConn != nil {
			for _, port := range outConn.Connections() {
				inst, ok := port.Node().(*netlist.Instance)
				if !ok || !inst.IsCarry() || port.Name() != "CI" {
					continue
				}
				if nextC != nil {
					p.ready.add(inst)
				} else {
					nextC = inst
				}
			}
		}

		c.Remove()

		if nextC == nil && outConn != nil {
			prevCOUT := chain[len(chain)-1].FindPort("COUT")
			if prevCOUT.Connection() != outConn {
				panic("pack: carry chain COUT does not match chain tail")
			}

			var lc2Inst *netlist.Instance
			if len(outConn.Connections()) == 2 {
				consumer := prevCOUT.ConnectionOtherPort()
				if consumer != nil && consumer.Name() == "I3" {
					if inst, ok := consumer.Node().(*netlist.Instance); ok && inst.IsLC() {
						lc2Inst = inst
					}
				}
			}

			breakChain := false
			if lc2Inst != nil {
				clk := lc2Inst.FindPort("CLK").Connection()
				cen := lc2Inst.FindPort("CEN").Connection()
				sr := lc2Inst.FindPort("SR").Connection()

				if (globalClk != nil && globalClk != clk) ||
					(globalCen != nil && globalCen != cen) ||
					(globalSR != nil && globalSR != sr) {
					breakChain = true
				}
				if globalClk == nil {
					globalClk = clk
				}
				if globalCen == nil {
					globalCen = cen
				}
				if globalSR == nil {
					globalSR = sr
				}
			} else {
				lc2Inst = p.top.AddInstance(p.models.LC)
				p.carryPassThroughLC(lc2Inst, prevCOUT)
			}

			if breakChain {
				outLCInst := p.top.AddInstance(p.models.LC)
				p.carryPassThroughLC(outLCInst, chain[len(chain)-1].FindPort("COUT"))
				chain = append(chain, outLCInst)

				p.chains.Chains = append(p.chains.Chains, chain)
				chain = []*netlist.Instance{lc2Inst}
			} else {
				chain = append(chain, lc2Inst)
			}
		}

		c = nextC
	}

	p.chains.Chains = append(p.chains.Chains, chain)
}

// packCarries packs every SB_CARRY instance reachable in the netlist,
// starting each chain at a CARRY instance whose CI is unconnected,
// constant, or driven by something other than another CARRY.
func (p *Packer) packCarries() error {
	instances := p.top.Instances()

	for _, inst := range instances {
		if !inst.IsCarry() {
			continue
		}
		inConn := inst.FindPort("CI").Connection()
		d := driver(inConn)
		isCarryDriven := false
		if d != nil {
			if driverInst, ok := d.Node().(*netlist.Instance); ok && driverInst.IsCarry() {
				isCarryDriven = true
			}
		}
		if !isCarryDriven {
			p.ready.add(inst)
		}
	}

	for !p.ready.empty() {
		inst := p.ready.front()
		p.ready.remove(inst)
		p.packCarriesFrom(inst)
	}

	done := make(map[*netlist.Instance]bool)
	for _, chain := range p.chains.Chains {
		for _, inst := range chain {
			done[inst] = true
		}
	}

	for _, inst := range p.top.Instances() {
		if inst.IsCarry() && !done[inst] {
			return errCarryChainLoop
		}
	}
	return nil
}
