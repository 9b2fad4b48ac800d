package pack

import (
	"testing"

	"github.com/icepnr/icepnr/pkg/netlist"
)

func TestInstantiateIO_WrapsPlainOutput(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()

	port := top.AddPort("led", netlist.Out)
	n := top.FindOrAddNet("led$driver")
	port.Connect(n)
	drv := top.AddInstance(netlist.NewModels(d).LUT4)
	drv.FindPort("O").Connect(n)

	if err := InstantiateIO(d); err != nil {
		t.Fatalf("InstantiateIO: %v", err)
	}

	q := port.ConnectionOtherPort()
	if q == nil {
		t.Fatal("port must be reconnected through a fresh net to an SB_IO instance")
	}
	io, ok := q.Node().(*netlist.Instance)
	if !ok || !io.IsIO() {
		t.Fatalf("expected port to terminate on an SB_IO instance, got %T", q.Node())
	}
	if io.FindPort("D_OUT_0").Connection() != n {
		t.Fatal("D_OUT_0 must carry the port's original driving net")
	}
}

func TestInstantiateIO_WrapsPlainInput(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()

	port := top.AddPort("clk", netlist.In)
	n := top.FindOrAddNet("clk$net")
	port.Connect(n)
	sink := top.AddInstance(netlist.NewModels(d).LUT4)
	sink.FindPort("I0").Connect(n)

	if err := InstantiateIO(d); err != nil {
		t.Fatalf("InstantiateIO: %v", err)
	}

	q := port.ConnectionOtherPort()
	io := q.Node().(*netlist.Instance)
	if !io.IsIO() {
		t.Fatal("expected an SB_IO instance")
	}
	if io.FindPort("D_IN_0").Connection() != n {
		t.Fatal("D_IN_0 must carry the port's original net")
	}
}

func TestInstantiateIO_FoldsTriStateBuffer(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	port := top.AddPort("bus", netlist.Inout)
	a := top.FindOrAddNet("a")
	e := top.FindOrAddNet("e")
	y := top.FindOrAddNet("y")
	port.Connect(y)

	tbuf := top.AddInstance(models.TBuf)
	tbuf.FindPort("A").Connect(a)
	tbuf.FindPort("E").Connect(e)
	tbuf.FindPort("Y").Connect(y)

	drvA := top.AddInstance(models.LUT4)
	drvA.FindPort("O").Connect(a)
	drvE := top.AddInstance(models.LUT4)
	drvE.FindPort("O").Connect(e)

	if err := InstantiateIO(d); err != nil {
		t.Fatalf("InstantiateIO: %v", err)
	}

	for _, inst := range top.Instances() {
		if inst.InstanceOf() == models.TBuf {
			t.Fatal("the folded $_TBUF_ instance must be removed")
		}
	}

	q := port.ConnectionOtherPort()
	io := q.Node().(*netlist.Instance)
	if io.FindPort("D_OUT_0").Connection() != a {
		t.Fatal("D_OUT_0 must carry the tbuf's A connection")
	}
	if io.FindPort("D_IN_0").Connection() != nil {
		t.Fatal("D_IN_0 must end up unconnected: the tbuf's Y net is left with D_IN_0 as its only endpoint and is pruned")
	}
	if io.FindPort("OUTPUT_ENABLE").Connection() != e {
		t.Fatal("OUTPUT_ENABLE must carry the tbuf's E connection")
	}
}

func TestInstantiateIO_InoutWithoutTBufFails(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()

	port := top.AddPort("bidir", netlist.Inout)
	n := top.FindOrAddNet("n")
	port.Connect(n)

	if err := InstantiateIO(d); err == nil {
		t.Fatal("expected an error for an inout port with no driving tri-state buffer")
	}
}

func TestInstantiateIO_LeavesBoundPortsAlone(t *testing.T) {
	d := netlist.NewDesign()
	top := d.Top()
	models := netlist.NewModels(d)

	port := top.AddPort("pin", netlist.Inout)
	t1 := top.FindOrAddNet("t1")
	port.Connect(t1)

	io := top.AddInstance(models.IO)
	io.FindPort("PACKAGE_PIN").Connect(t1)

	if err := InstantiateIO(d); err != nil {
		t.Fatalf("InstantiateIO: %v", err)
	}

	if port.Connection() != t1 {
		t.Fatal("a port already bound to an SB_IO's PACKAGE_PIN must be left untouched")
	}
	count := 0
	for _, inst := range top.Instances() {
		if inst.IsIO() {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one SB_IO instance, got %d", count)
	}
}
