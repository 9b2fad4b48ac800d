package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/icepnr/icepnr/pkg/bitstream"
	"github.com/icepnr/icepnr/pkg/blif"
	"github.com/icepnr/icepnr/pkg/constraintplace"
	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/global"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/pack"
	"github.com/icepnr/icepnr/pkg/pcf"
	"github.com/icepnr/icepnr/pkg/place"
	"github.com/icepnr/icepnr/pkg/route"
	"github.com/icepnr/icepnr/pkg/util"
)

// pipelineState threads the data a passlist's named passes read and
// produce, since (unlike the standard workflow) a passlist chooses its
// own order and subset of passes.
type pipelineState struct {
	chipdb *device.DB
	pkg    *device.Package

	design *netlist.Design
	top    *netlist.Model
	models *netlist.Models
	chains *pack.CarryChains

	placement   constraintplace.Placement
	gbClass     map[*netlist.Instance]global.Class
	lockedInsts map[*netlist.Instance]bool

	conf    *bitstream.Configuration
	cnetNet []*netlist.Net
}

// runPasslist reads passlistFile, a plain-text list of pass names (one
// per line, optionally followed by whitespace-separated arguments; a line
// whose first non-blank character is '#' is a comment) and executes them in file order instead of the
// standard workflow. It mirrors the original tool's -e/--passlist-file
// flag.
func runPasslist(passlistFile, inputFile string, chipdb *device.DB, pkgName string) error {
	pkg, ok := chipdb.Packages[pkgName]
	if !ok {
		return fmt.Errorf("unknown package `%s'", pkgName)
	}

	data, err := os.ReadFile(passlistFile)
	if err != nil {
		return fmt.Errorf("passlist: %w", err)
	}

	st := &pipelineState{chipdb: chipdb, pkg: pkg}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		name, passArgs := fields[0], fields[1:]
		util.Infof("%s", name)
		if err := st.exec(name, passArgs, inputFile); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return scanner.Err()
}

func (st *pipelineState) exec(name string, args []string, defaultInput string) error {
	switch name {
	case "read_blif":
		path := defaultInput
		if len(args) > 0 {
			path = args[0]
		}
		in, err := openInput(path)
		if err != nil {
			return err
		}
		defer in.Close()
		data, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		design, err := blif.Parse(path, bytes.NewReader(data))
		if err != nil {
			return err
		}
		st.design = design
		st.top = design.Top()
		st.models = netlist.NewModels(design)
		return nil

	case "read_pcf":
		if len(args) == 0 {
			return fmt.Errorf("requires a pcf file argument")
		}
		in, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = pcf.Parse(args[0], in, st.top, st.pkg)
		return err

	case "instantiate_io":
		return pack.InstantiateIO(st.design)

	case "pack":
		chains, err := pack.NewPacker(st.chipdb, st.top, st.models).Pack()
		if err != nil {
			return err
		}
		st.chains = chains
		return nil

	case "write_blif":
		if len(args) == 0 {
			return fmt.Errorf("requires an output path argument")
		}
		return writeModelBLIF(st.top, args[0])

	case "write_verilog":
		if len(args) == 0 {
			return fmt.Errorf("requires an output path argument")
		}
		return writeModelVerilog(st.top, args[0])

	case "place_constraints":
		constraints := &pcf.Constraints{NetPinLoc: map[string]device.Location{}}
		placement, err := constraintplace.Place(st.chipdb, st.pkg, st.top, constraints)
		if err != nil {
			return err
		}
		st.placement = placement
		return nil

	case "promote_globals":
		doPromote := true
		if len(args) > 0 && (args[0] == "false" || args[0] == "0") {
			doPromote = false
		}
		res, err := global.Promote(st.chipdb, st.pkg, st.models, st.top, st.placement, doPromote)
		if err != nil {
			return err
		}
		st.gbClass = res.GBClass
		st.lockedInsts = make(map[*netlist.Instance]bool, len(st.gbClass))
		for inst := range st.gbClass {
			st.lockedInsts[inst] = true
		}
		return nil

	case "realize_constants":
		pack.RealizeConstants(st.design)
		return nil

	case "place":
		opts := place.DefaultOptions()
		opts.Seed = app.seed
		res, err := place.Place(st.chipdb, st.pkg, st.top, st.chains, st.gbClass, st.lockedInsts, st.placement, opts)
		if err != nil {
			return err
		}
		util.Infof("place: initial cost %d, final cost %d (PIO=%d PLB=%d BRAM=%d)",
			res.InitialCost, res.FinalCost, res.NPIO, res.NPLB, res.NBRAM)
		return nil

	case "write_pcf":
		if len(args) == 0 {
			return fmt.Errorf("requires an output path argument")
		}
		app.writePCF = args[0] // writePCFFile reads its destination off app
		return writePCFFile(st.chipdb, st.pkg, st.top, st.placement)

	case "route":
		conf := bitstream.New()
		res, cnetNet, err := route.Route(st.chipdb, st.top, st.placement, conf, route.DefaultOptions())
		if err != nil {
			return err
		}
		util.Infof("route: %d passes, span4 %d/%d, span12 %d/%d",
			res.Passes, res.NSpan4Used, res.NSpan4, res.NSpan12Used, res.NSpan12)
		st.conf = conf
		st.cnetNet = cnetNet
		return nil

	case "write_conf":
		if len(args) == 0 {
			return fmt.Errorf("requires an output path argument")
		}
		var buf bytes.Buffer
		if err := bitstream.WriteText(&buf, st.chipdb, st.top, st.conf, st.placement, st.cnetNet); err != nil {
			return err
		}
		out, err := createOutput(args[0])
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = out.Write(buf.Bytes())
		return err

	case "write_binary_chipdb":
		if len(args) == 0 {
			return fmt.Errorf("requires an output path argument")
		}
		out, err := createOutput(args[0])
		if err != nil {
			return err
		}
		defer out.Close()
		return st.chipdb.WriteBinary(out)

	default:
		return fmt.Errorf("unknown pass `%s'", name)
	}
}
