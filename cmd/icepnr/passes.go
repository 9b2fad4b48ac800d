package main

import (
	"fmt"

	"github.com/icepnr/icepnr/pkg/cli"
)

// pass describes one named stage of the icepnr pipeline, for -t/--list-passes.
type pass struct {
	name string
	desc string
}

// passes lists every stage the pipeline can run, in pipeline order. Some
// only run under specific flags (read_pcf needs -p, write_blif/write_verilog
// need -B/-V/--post-place-blif, write_pcf needs -w); route-only skips
// straight from read_blif to route.
var passes = []pass{
	{"read_blif", "parse the input netlist"},
	{"read_pcf", "parse physical constraints (-p)"},
	{"instantiate_io", "wrap unbound top-level ports with SB_IO cells"},
	{"pack", "group primitives into logic cells and carry chains"},
	{"place_constraints", "seed the placement with PCF-pinned locations"},
	{"promote_globals", "promote high-fanout nets onto global buffers"},
	{"realize_constants", "drive remaining constant sinks from synthesized constant LCs"},
	{"place", "simulated-annealing placement"},
	{"route", "route the placed netlist"},
	{"write_conf", "emit the bitstream configuration"},
	{"write_blif", "write the netlist as BLIF (-B, --post-place-blif)"},
	{"write_verilog", "write the netlist as Verilog (-V)"},
	{"write_pcf", "write resolved IO constraints (-w)"},
	{"write_binary_chipdb", "re-encode the chip database in binary form (--write-binary-chipdb)"},
}

func printPasses() {
	fmt.Println(cli.Bold("Supported passes:"))
	fmt.Println()
	t := cli.NewTable("PASS", "DESCRIPTION").WithPrefix("  ")
	for _, p := range passes {
		t.Row(cli.DotPad(p.name, 24), p.desc)
	}
	t.Flush()
}
