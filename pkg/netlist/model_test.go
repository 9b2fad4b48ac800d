package netlist

import "testing"

func TestAddNetNamedCollision(t *testing.T) {
	d := NewDesign()
	top := d.Top()
	n1 := top.AddNetNamed("clk")
	n2 := top.AddNetNamed("clk")
	if n1.Name() != "clk" {
		t.Fatalf("first net name = %q, want clk", n1.Name())
	}
	if n2.Name() != "clk$2" {
		t.Fatalf("second net name = %q, want clk$2", n2.Name())
	}
	n3 := top.AddNetNamed("clk")
	if n3.Name() != "clk$3" {
		t.Fatalf("third net name = %q, want clk$3", n3.Name())
	}
}

func TestFindOrAddNet(t *testing.T) {
	d := NewDesign()
	top := d.Top()
	a := top.FindOrAddNet("a")
	b := top.FindOrAddNet("a")
	if a != b {
		t.Fatal("FindOrAddNet should return the same net for the same name")
	}
}

func TestModelPrune(t *testing.T) {
	d := NewDesign()
	top := d.Top()
	models := NewModels(d)

	lut := top.AddInstance(models.LUT4)
	o := lut.FindPort("O")
	i0 := lut.FindPort("I0")

	keep := top.FindOrAddNet("keep")
	o.Connect(keep)
	i0.Connect(keep)

	dangling := top.AddNetNamed("dangling")
	_ = dangling

	top.Prune()

	if top.FindNet("keep") == nil {
		t.Fatal("net with driver and consumer must survive prune")
	}
	if top.FindNet("dangling") != nil {
		t.Fatal("net with no connections must be pruned")
	}
}

func TestInstancePortsMatchModelDirection(t *testing.T) {
	d := NewDesign()
	top := d.Top()
	models := NewModels(d)
	lut := top.AddInstance(models.LUT4)
	modelPort := models.LUT4.FindPort("O")
	instPort := lut.FindPort("O")
	if instPort.Direction() != modelPort.Direction() {
		t.Fatal("instance port direction must match the model's")
	}
	if !instPort.IsOutput() {
		t.Fatal("LUT4 instance's O port must be an output")
	}
}

func TestRemoveInstance(t *testing.T) {
	d := NewDesign()
	top := d.Top()
	models := NewModels(d)
	lut := top.AddInstance(models.LUT4)
	if len(top.Instances()) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(top.Instances()))
	}
	lut.Remove()
	if len(top.Instances()) != 0 {
		t.Fatalf("expected 0 instances after Remove, got %d", len(top.Instances()))
	}
}

func TestNetReplace(t *testing.T) {
	d := NewDesign()
	top := d.Top()
	models := NewModels(d)
	lut := top.AddInstance(models.LUT4)

	oldNet := top.FindOrAddNet("old")
	newNet := top.FindOrAddNet("new")
	lut.FindPort("I0").Connect(oldNet)

	oldNet.Replace(newNet)

	if lut.FindPort("I0").Connection() != newNet {
		t.Fatal("Replace must rewire all connections onto the new net")
	}
	if len(oldNet.Connections()) != 0 {
		t.Fatal("old net should have no connections left after Replace")
	}
}
