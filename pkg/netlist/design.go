package netlist

// Design is the whole netlist under transformation: a top Model plus the
// full set of Models it (transitively) instantiates, indexed by name.
// Models are created in a fixed order (standard models first, then the
// parsed top module and any user black boxes), so iterating d.models in
// creation order is deterministic across runs.
type Design struct {
	top        *Model
	models     map[string]*Model
	modelOrder []*Model
}

// NewDesign creates an empty Design, pre-populated with every standard
// model (LC, IO, GB, LUT4, CARRY, the SB_DFF* family, BRAM, PLL, ...).
// A fresh top Model is created and returned as part of the Design.
func NewDesign() *Design {
	d := &Design{models: make(map[string]*Model)}
	registerStandardModels(d)
	d.top = d.newModel("top")
	return d
}

func (d *Design) newModel(name string) *Model {
	m := newModel(d, name)
	d.models[name] = m
	d.modelOrder = append(d.modelOrder, m)
	return m
}

// AddBlackBox registers a user-defined model (a BLIF .subckt with no
// .gate body of its own) for which the design only knows the port list.
func (d *Design) AddBlackBox(name string) *Model {
	if m, ok := d.models[name]; ok {
		return m
	}
	return d.newModel(name)
}

func (d *Design) Top() *Model { return d.top }

// SetTop replaces the design's top Model; used once the BLIF parser has
// built the real top-level model and wants to swap it in for the
// placeholder NewDesign created.
func (d *Design) SetTop(m *Model) { d.top = m }

func (d *Design) FindModel(name string) *Model { return d.models[name] }

// Models returns every Model known to the design in creation order.
func (d *Design) Models() []*Model {
	out := make([]*Model, len(d.modelOrder))
	copy(out, d.modelOrder)
	return out
}

// Prune prunes every Model's net list in creation order; standard models
// have no internal nets of their own, so pruning leaves them unchanged.
func (d *Design) Prune() {
	for _, m := range d.modelOrder {
		m.Prune()
	}
}
