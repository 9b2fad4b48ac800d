package netlist

// Net is a hyperedge over Ports: a named wire within one Model, optionally
// carrying a constant value. Connections are kept in creation order so
// that iterating a net's fanout is deterministic.
type Net struct {
	Identified
	name        string
	isConstant  bool
	constant    Value
	connections []*Port // creation-ordered; no duplicates
}

func newNet(name string) *Net {
	return &Net{Identified: newIdentified(), name: name, constant: X}
}

func (n *Net) Name() string { return n.name }

func (n *Net) IsConstant() bool   { return n.isConstant }
func (n *Net) SetConstant(v Value) {
	n.isConstant = true
	n.constant = v
}
func (n *Net) Constant() Value { return n.constant }
func (n *Net) ClearConstant()  { n.isConstant = false }

// Connections returns the ports attached to this net, in creation order.
func (n *Net) Connections() []*Port {
	out := make([]*Port, len(n.connections))
	copy(out, n.connections)
	return out
}

func (n *Net) addConnection(p *Port) {
	n.connections = append(n.connections, p)
}

func (n *Net) removeConnection(p *Port) {
	for i, q := range n.connections {
		if q == p {
			n.connections = append(n.connections[:i], n.connections[i+1:]...)
			return
		}
	}
}

// Replace rewires every port currently connected to n onto other instead.
func (n *Net) Replace(other *Net) {
	for _, p := range n.Connections() {
		p.Connect(other)
	}
}

// Driver returns the connected port that drives this net (an Output or
// Inout port as seen from inside the owning Model's body), or nil if the
// net has no driver yet.
func (n *Net) Driver() *Port {
	for _, p := range n.connections {
		if p.IsOutput() || p.IsBidir() {
			return p
		}
	}
	return nil
}
