package netlist

import "fmt"

// Model is a cell type: either the design's top module or a standard
// primitive (LC, IO, GB, LUT4, CARRY, SB_DFF*, ...). It owns an ordered
// list of named Ports (its own interface) plus, when it has a body, a
// named set of Nets and an ordered set of Instances.
type Model struct {
	Identified
	portSet
	design    *Design
	name      string
	nets      map[string]*Net
	netOrder  []*Net
	instances []*Instance // creation order
	instSet   map[*Instance]int
	params    map[string]Const
}

func newModel(d *Design, name string) *Model {
	return &Model{
		Identified: newIdentified(),
		portSet:    newPortSet(),
		design:     d,
		name:       name,
		nets:       make(map[string]*Net),
		instSet:    make(map[*Instance]int),
		params:     make(map[string]Const),
	}
}

func (m *Model) Name() string { return m.name }

// AddPort appends a new named port to this Model's interface.
func (m *Model) AddPort(name string, dir Direction) *Port {
	return m.AddPortDefault(name, dir, X)
}

func (m *Model) AddPortDefault(name string, dir Direction, undriven Value) *Port {
	return m.addPort(newPort(m, name, dir, undriven))
}

// Instances returns this Model's instances in creation order.
func (m *Model) Instances() []*Instance {
	out := make([]*Instance, len(m.instances))
	copy(out, m.instances)
	return out
}

// Nets returns this Model's nets in creation order.
func (m *Model) Nets() []*Net {
	out := make([]*Net, len(m.netOrder))
	copy(out, m.netOrder)
	return out
}

func (m *Model) FindNet(name string) *Net { return m.nets[name] }

// FindOrAddNet returns the existing net named name, or creates it.
func (m *Model) FindOrAddNet(name string) *Net {
	if n, ok := m.nets[name]; ok {
		return n
	}
	return m.AddNetNamed(name)
}

// AddNet creates a net with an auto-generated "$n<id>" name.
func (m *Model) AddNet() *Net {
	return m.AddNetNamed(fmt.Sprintf("$n%d", nextID()))
}

// AddNetNamed creates a net named hint, or hint$k for the smallest k>=2
// not already in use, matching rename_net's collision-avoidance scheme
// exactly so cross-stage name stability holds.
func (m *Model) AddNetNamed(hint string) *Net {
	name := hint
	if _, exists := m.nets[name]; exists {
		for k := 2; ; k++ {
			candidate := fmt.Sprintf("%s$%d", hint, k)
			if _, exists := m.nets[candidate]; !exists {
				name = candidate
				break
			}
		}
	}
	n := newNet(name)
	m.nets[name] = n
	m.netOrder = append(m.netOrder, n)
	return n
}

// AddNetLike creates a new net using orig's name as the naming hint
// (the add_net(Net*) overload in the original).
func (m *Model) AddNetLike(orig *Net) *Net { return m.AddNetNamed(orig.Name()) }

// RemoveNet discards a net with no remaining connections.
func (m *Model) RemoveNet(n *Net) {
	if len(n.connections) != 0 {
		panic("netlist: RemoveNet on a net with live connections")
	}
	delete(m.nets, n.name)
	for i, x := range m.netOrder {
		if x == n {
			m.netOrder = append(m.netOrder[:i], m.netOrder[i+1:]...)
			break
		}
	}
}

// RenameNet changes n's lookup key, applying the same $k collision
// search as AddNetNamed.
func (m *Model) RenameNet(n *Net, newName string) {
	delete(m.nets, n.name)
	name := newName
	if _, exists := m.nets[name]; exists {
		for k := 2; ; k++ {
			candidate := fmt.Sprintf("%s$%d", newName, k)
			if _, exists := m.nets[candidate]; !exists {
				name = candidate
				break
			}
		}
	}
	n.name = name
	m.nets[name] = n
}

// AddInstance creates a new Instance of instanceOf within this Model.
func (m *Model) AddInstance(instanceOf *Model) *Instance {
	inst := newInstance(m, instanceOf)
	m.instSet[inst] = len(m.instances)
	m.instances = append(m.instances, inst)
	return inst
}

func (m *Model) removeInstance(inst *Instance) {
	idx, ok := m.instSet[inst]
	if !ok {
		return
	}
	delete(m.instSet, inst)
	m.instances = append(m.instances[:idx], m.instances[idx+1:]...)
	for i := idx; i < len(m.instances); i++ {
		m.instSet[m.instances[i]] = i
	}
}

func (m *Model) SetParam(name string, val Const) { m.params[name] = val }
func (m *Model) HasParam(name string) bool {
	_, ok := m.params[name]
	return ok
}
func (m *Model) GetParam(name string) Const { return m.params[name] }
func (m *Model) defaultParam(name string) (Const, bool) {
	v, ok := m.params[name]
	return v, ok
}

// BoundaryNets returns the set of nets connected to this Model's own
// top-level ports (as opposed to purely-internal nets created by its
// instances). Relevant only for the top (design) model.
func (m *Model) BoundaryNets() map[*Net]bool {
	out := make(map[*Net]bool)
	for _, p := range m.ordered {
		if p.Connected() {
			out[p.Connection()] = true
		}
	}
	return out
}

// Prune removes nets with fewer than two distinct endpoints, or that
// have neither a driver nor a consumer. A constant net counts as driven;
// participation as one of the Model's own top-level ports counts as
// consumption (it may be read from outside).
func (m *Model) Prune() {
	boundary := m.BoundaryNets()
	for _, n := range m.Nets() {
		if len(n.connections) >= 2 {
			continue
		}
		hasDriver := n.IsConstant() || n.Driver() != nil
		hasConsumer := boundary[n]
		if len(n.connections) == 1 {
			p := n.connections[0]
			if p.IsInput() || p.IsBidir() {
				hasConsumer = true
			}
			if p.IsOutput() || p.IsBidir() {
				hasDriver = true
			}
		}
		if hasDriver && hasConsumer {
			continue
		}
		for _, p := range n.Connections() {
			p.Disconnect()
		}
		m.RemoveNet(n)
	}
}

// SharedNames assigns an output name to every net reachable from this
// Model, giving a net backed by one of the Model's own ports priority
// over an internally-generated name, and deduplicating via the same $k
// suffix scheme as AddNetNamed. Used by the BLIF/Verilog writers.
func (m *Model) SharedNames() map[*Net]string {
	result := make(map[*Net]string)
	used := make(map[string]bool)

	assign := func(n *Net, hint string) {
		if _, done := result[n]; done {
			return
		}
		name := hint
		if used[name] {
			for k := 2; ; k++ {
				candidate := fmt.Sprintf("%s$%d", hint, k)
				if !used[candidate] {
					name = candidate
					break
				}
			}
		}
		result[n] = name
		used[name] = true
	}

	for _, p := range m.ordered {
		if p.Connected() {
			assign(p.Connection(), p.Name())
		}
	}
	for _, n := range m.netOrder {
		assign(n, n.Name())
	}
	return result
}
