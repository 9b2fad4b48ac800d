package netlist

import "strings"

// Instance is one instantiation of a Model within a parent Model's body.
// Its ports mirror the instantiated Model's ports exactly: same names,
// same direction. An SB_CARRY's CO is Out on the model and stays Out on
// every instance, so Port.IsOutput() always means "drives its net",
// regardless of whether the port belongs to a Model or an Instance.
type Instance struct {
	Identified
	portSet
	parent     *Model
	instanceOf *Model
	params     map[string]Const
	attrs      map[string]Const
}

func newInstance(parent, instanceOf *Model) *Instance {
	inst := &Instance{
		Identified: newIdentified(),
		portSet:    newPortSet(),
		parent:     parent,
		instanceOf: instanceOf,
		params:     make(map[string]Const),
		attrs:      make(map[string]Const),
	}
	for _, tp := range instanceOf.Ports() {
		inst.addPort(newPort(inst, tp.Name(), tp.Direction(), tp.Undriven()))
	}
	return inst
}

func (i *Instance) Parent() *Model     { return i.parent }
func (i *Instance) InstanceOf() *Model { return i.instanceOf }

func (i *Instance) SetParam(name string, val Const) { i.params[name] = val }
func (i *Instance) HasParam(name string) bool {
	if _, ok := i.params[name]; ok {
		return true
	}
	_, ok := i.instanceOf.defaultParam(name)
	return ok
}
func (i *Instance) GetParam(name string) Const {
	if v, ok := i.params[name]; ok {
		return v
	}
	if v, ok := i.instanceOf.defaultParam(name); ok {
		return v
	}
	panic("netlist: GetParam: no such parameter " + name)
}
func (i *Instance) SelfHasParam(name string) bool {
	_, ok := i.params[name]
	return ok
}
func (i *Instance) SelfGetParam(name string) Const { return i.params[name] }

// SelfParams returns a copy of the parameters set directly on this
// instance (not inherited defaults), for the BLIF/Verilog writers.
func (i *Instance) SelfParams() map[string]Const {
	out := make(map[string]Const, len(i.params))
	for k, v := range i.params {
		out[k] = v
	}
	return out
}

// Attrs returns a copy of this instance's attributes, for the
// BLIF/Verilog writers.
func (i *Instance) Attrs() map[string]Const {
	out := make(map[string]Const, len(i.attrs))
	for k, v := range i.attrs {
		out[k] = v
	}
	return out
}

func (i *Instance) SetAttr(name string, val Const) { i.attrs[name] = val }
func (i *Instance) HasAttr(name string) bool {
	_, ok := i.attrs[name]
	return ok
}
func (i *Instance) GetAttr(name string) Const { return i.attrs[name] }

// IsAttrSet reports whether a binary attribute (one whose first bit is
// the flag, e.g. ROUTE_THROUGH_FABRIC) exists and is set; defval
// otherwise.
func (i *Instance) IsAttrSet(name string, defval bool) bool {
	if !i.HasAttr(name) {
		return defval
	}
	return i.GetAttr(name).GetBit(0)
}

// MergeAttrs concatenates other's "src" attribute into this instance's
// (joined by "|", matching the original's provenance-tracking behavior
// when one instance absorbs another during packing) and leaves every
// other attribute alone.
func (i *Instance) MergeAttrs(other *Instance) {
	if !other.HasAttr("src") {
		return
	}
	otherSrc := other.GetAttr("src").AsString()
	if otherSrc == "" {
		return
	}
	if i.HasAttr("src") {
		mine := i.GetAttr("src").AsString()
		i.SetAttr("src", StringConst(strings.Join([]string{mine, otherSrc}, "|")))
	} else {
		i.SetAttr("src", StringConst(otherSrc))
	}
}

// Remove disconnects every port on this instance and removes it from its
// parent Model. The caller is responsible for discarding the Instance
// afterward; there is no further use for it.
func (i *Instance) Remove() {
	for _, p := range i.ordered {
		p.Disconnect()
	}
	i.parent.removeInstance(i)
}
