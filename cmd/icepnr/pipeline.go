package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/icepnr/icepnr/pkg/bitstream"
	"github.com/icepnr/icepnr/pkg/blif"
	"github.com/icepnr/icepnr/pkg/buildcache"
	"github.com/icepnr/icepnr/pkg/cli"
	"github.com/icepnr/icepnr/pkg/constraintplace"
	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/global"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/pack"
	"github.com/icepnr/icepnr/pkg/pcf"
	"github.com/icepnr/icepnr/pkg/place"
	"github.com/icepnr/icepnr/pkg/route"
	"github.com/icepnr/icepnr/pkg/runlog"
	"github.com/icepnr/icepnr/pkg/util"
)

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func createOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// loadChipdb accepts either the text or the binary chipdb encoding,
// trying text first since it is the format icepnr's own chipdb sources
// are normally authored in.
func loadChipdb(path string) (*device.DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read_chipdb: %w", err)
	}
	if db, err := device.ParseText(bytes.NewReader(data)); err == nil {
		db.PopulateCells()
		return db, nil
	}
	db, err := device.ReadBinary(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read_chipdb: %w", err)
	}
	db.PopulateCells()
	return db, nil
}

func writeBinaryChipdb(chipdbPath, outPath string) error {
	util.Infof("read_chipdb %s", chipdbPath)
	db, err := loadChipdb(chipdbPath)
	if err != nil {
		return err
	}

	util.Infof("write_binary_chipdb %s", outPath)
	out, err := createOutput(outPath)
	if err != nil {
		return fmt.Errorf("write_binary_chipdb: %w", err)
	}
	defer out.Close()
	return db.WriteBinary(out)
}

// run executes the standard icepnr pipeline: read_blif -> [read_pcf] ->
// instantiate_io -> pack -> place_constraints -> promote_globals ->
// realize_constants -> place -> route -> write_conf, or, with
// --route-only, skips straight
// from a netlist whose instances already carry an integer "loc"
// attribute to routing.
func run(inputFile, chipdbPath string) (err error) {
	start := time.Now()
	ev := runlog.NewEvent(app.device, app.pkgName, app.seed).
		WithInput(inputFile).WithRouteOnly(app.routeOnly)
	logPath := app.runLogPath
	if logPath == "" {
		logPath = os.Getenv("ICEPNR_RUN_LOG")
	}
	if logPath != "" {
		logger, ferr := runlog.NewFileLogger(logPath, runlog.RotationConfig{
			MaxSize:    int64(app.settings.GetRunLogMaxSizeMB()) * 1024 * 1024,
			MaxBackups: app.settings.GetRunLogMaxBackups(),
		})
		if ferr != nil {
			util.Warnf("could not open run log: %v", ferr)
		} else {
			runlog.SetDefaultLogger(logger)
			defer logger.Close()
		}
	}
	defer func() {
		ev.WithDuration(time.Since(start))
		if err != nil {
			ev.WithError(err)
		} else {
			ev.WithSuccess()
		}
		if lerr := runlog.Log(ev); lerr != nil {
			util.Warnf("could not write run log: %v", lerr)
		}
	}()

	util.Infof("seed: %d", app.seed)
	util.Infof("device: %s", app.device)
	util.Infof("read_chipdb %s", chipdbPath)
	chipdb, err := loadChipdb(chipdbPath)
	if err != nil {
		return err
	}

	pkg, ok := chipdb.Packages[app.pkgName]
	if !ok {
		return fmt.Errorf("unknown package `%s'", app.pkgName)
	}

	cache := buildcache.Open(os.Getenv("ICEPNR_CACHE_ADDR"))
	if cache != nil {
		defer cache.Close()
	}

	netIn, err := openInput(inputFile)
	if err != nil {
		return fmt.Errorf("read_blif: %w", err)
	}
	netlistBytes, err := io.ReadAll(netIn)
	netIn.Close()
	if err != nil {
		return fmt.Errorf("read_blif: %w", err)
	}

	util.Infof("read_blif %s", inputFile)
	design, err := blif.Parse(inputFile, bytes.NewReader(netlistBytes))
	if err != nil {
		return err
	}
	top := design.Top()
	models := netlist.NewModels(design)

	cacheKey := buildcache.Key{
		Chipdb: chipdbPath, Package: app.pkgName, Seed: app.seed,
		RouteOnly: app.routeOnly, NoPromote: app.noPromote, NetlistSrc: netlistBytes,
	}
	if cached, hit := cache.Get(context.Background(), cacheKey); hit {
		util.Infof("build cache hit, skipping pipeline")
		out, werr := createOutput(app.outputFile)
		if werr != nil {
			return fmt.Errorf("write_conf: %w", werr)
		}
		defer out.Close()
		_, werr = io.WriteString(out, cached)
		return werr
	}

	var placement constraintplace.Placement
	var gbClass map[*netlist.Instance]global.Class
	var lockedInsts map[*netlist.Instance]bool

	if app.routeOnly {
		placement = make(constraintplace.Placement)
		for _, inst := range top.Instances() {
			loc := inst.GetAttr("loc").AsString()
			cell, perr := strconv.Atoi(loc)
			if perr != nil {
				return fmt.Errorf("parse error in loc attribute")
			}
			placement[inst] = cell
		}
	} else {
		var constraints *pcf.Constraints
		if app.pcfFile != "" {
			util.Infof("read_pcf %s", app.pcfFile)
			pcfIn, perr := openInput(app.pcfFile)
			if perr != nil {
				return fmt.Errorf("read_pcf: %w", perr)
			}
			constraints, perr = pcf.Parse(app.pcfFile, pcfIn, top, pkg)
			pcfIn.Close()
			if perr != nil {
				return perr
			}
		} else {
			constraints = &pcf.Constraints{NetPinLoc: map[string]device.Location{}}
		}

		util.Infof("instantiate_io")
		if ierr := pack.InstantiateIO(design); ierr != nil {
			return ierr
		}

		util.Infof("pack")
		packer := pack.NewPacker(chipdb, top, models)
		chains, perr := packer.Pack()
		if perr != nil {
			return perr
		}

		if app.postPackBlif != "" {
			if werr := writeModelBLIF(top, app.postPackBlif); werr != nil {
				return werr
			}
		}
		if app.postPackVerilog != "" {
			if werr := writeModelVerilog(top, app.postPackVerilog); werr != nil {
				return werr
			}
		}

		util.Infof("place_constraints")
		placement, err = constraintplace.Place(chipdb, pkg, top, constraints)
		if err != nil {
			return err
		}

		util.Infof("promote_globals")
		gres, perr2 := global.Promote(chipdb, pkg, models, top, placement, !app.noPromote)
		if perr2 != nil {
			return perr2
		}
		gbClass = gres.GBClass
		lockedInsts = make(map[*netlist.Instance]bool, len(gbClass))
		for inst := range gbClass {
			lockedInsts[inst] = true
		}

		util.Infof("realize_constants")
		pack.RealizeConstants(design)

		util.Infof("place")
		opts := place.DefaultOptions()
		opts.Seed = app.seed
		pres, perr3 := place.Place(chipdb, pkg, top, chains, gbClass, lockedInsts, placement, opts)
		if perr3 != nil {
			return perr3
		}
		util.Infof("place: initial cost %d, final cost %d (PIO=%d PLB=%d BRAM=%d)",
			pres.InitialCost, pres.FinalCost, pres.NPIO, pres.NPLB, pres.NBRAM)

		if app.writePCF != "" {
			if werr := writePCFFile(chipdb, pkg, top, placement); werr != nil {
				return werr
			}
		}

		if app.postPlaceBlif != "" {
			for inst, cell := range placement {
				loc := chipdb.CellLocation(cell)
				x, y := chipdb.TileX(loc.Tile), chipdb.TileY(loc.Tile)
				inst.SetAttr("loc", netlist.StringConst(fmt.Sprintf("%d,%d/%d", x, y, loc.Pos)))
			}
			if werr := writeModelBLIF(top, app.postPlaceBlif); werr != nil {
				return werr
			}
		}
	}

	util.Infof("route")
	conf := bitstream.New()
	rres, cnetNet, err := route.Route(chipdb, top, placement, conf, route.DefaultOptions())
	if err != nil {
		return err
	}
	util.Infof("route: %d passes, span4 %d/%d, span12 %d/%d",
		rres.Passes, rres.NSpan4Used, rres.NSpan4, rres.NSpan12Used, rres.NSpan12)

	var buf bytes.Buffer
	if err := bitstream.WriteText(&buf, chipdb, top, conf, placement, cnetNet); err != nil {
		return fmt.Errorf("write_conf: %w", err)
	}
	cache.Put(context.Background(), cacheKey, buf.String())

	nLC, nIO := 0, 0
	for inst := range placement {
		switch {
		case inst.IsLC():
			nLC++
		case inst.IsIO():
			nIO++
		}
	}
	ev.WithCounts(nLC, nIO, len(gbClass), rres.Passes)
	if h, herr := blake2b.New256(nil); herr == nil {
		h.Write(buf.Bytes())
		ev.WithOutputHash(fmt.Sprintf("%x", h.Sum(nil)))
	}

	util.Infof("write_conf %s", app.outputFile)
	out, err := createOutput(app.outputFile)
	if err != nil {
		return fmt.Errorf("write_conf: %w", err)
	}
	defer out.Close()
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write_conf: %w", err)
	}

	if !app.quiet {
		sum := cli.NewTable("RESOURCE", "USED").WithPrefix("  ").WithWriter(os.Stderr)
		sum.Row("logic cells", strconv.Itoa(nLC))
		sum.Row("IOs", strconv.Itoa(nIO))
		sum.Row("global buffers", strconv.Itoa(len(gbClass)))
		sum.Row("routing passes", strconv.Itoa(rres.Passes))
		sum.Flush()
	}
	fmt.Fprintln(os.Stderr, cli.Green("done."))
	return nil
}

func writeModelBLIF(m *netlist.Model, path string) error {
	out, err := createOutput(path)
	if err != nil {
		return fmt.Errorf("write_blif: %w", err)
	}
	defer out.Close()
	return m.WriteBLIF(out)
}

func writeModelVerilog(m *netlist.Model, path string) error {
	out, err := createOutput(path)
	if err != nil {
		return fmt.Errorf("write_verilog: %w", err)
	}
	defer out.Close()
	return m.WriteVerilog(out)
}

func writePCFFile(chipdb *device.DB, pkg *device.Package, top *netlist.Model, placement map[*netlist.Instance]int) error {
	out, err := createOutput(app.writePCF)
	if err != nil {
		return fmt.Errorf("write_pcf: %w", err)
	}
	defer out.Close()
	return pcf.Write(out, chipdb, pkg, top, placement)
}
