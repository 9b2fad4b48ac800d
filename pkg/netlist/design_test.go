package netlist

import "testing"

func TestNewDesignHasTop(t *testing.T) {
	d := NewDesign()
	if d.Top() == nil {
		t.Fatal("NewDesign must create a top model")
	}
	if d.Top().Name() != "top" {
		t.Fatalf("top model name = %q, want top", d.Top().Name())
	}
}

func TestAddBlackBoxIdempotent(t *testing.T) {
	d := NewDesign()
	a := d.AddBlackBox("MY_BOX")
	b := d.AddBlackBox("MY_BOX")
	if a != b {
		t.Fatal("AddBlackBox must return the same Model for a repeated name")
	}
	if d.FindModel("MY_BOX") != a {
		t.Fatal("FindModel must resolve a registered black box")
	}
}

func TestDesignModelsOrderStable(t *testing.T) {
	d := NewDesign()
	first := d.Models()
	second := d.Models()
	if len(first) != len(second) {
		t.Fatal("Models() length must be stable across calls")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Models() order differs at index %d", i)
		}
	}
}
