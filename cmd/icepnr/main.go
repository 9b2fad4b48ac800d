// icepnr places and routes an iCE40-class BLIF netlist onto a chip
// database, emitting an ASCII bitstream configuration.
//
//	icepnr [-d device] [-P package] [-c chipdb] [-p pcf] [-o out] netlist.blif
//
// Pipeline (standard run): read_blif -> [read_pcf] -> instantiate_io ->
// pack -> place_constraints -> promote_globals -> realize_constants ->
// place -> route -> write_conf.
// --route-only skips straight from a netlist whose instances already
// carry a placed cell id (a "loc" attribute) to routing.
package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/icepnr/icepnr/pkg/cli"
	"github.com/icepnr/icepnr/pkg/settings"
	"github.com/icepnr/icepnr/pkg/util"
	"github.com/icepnr/icepnr/pkg/version"
)

// App holds CLI state shared across the root command's flags.
type App struct {
	device         string
	pkgName        string
	chipdbPath     string
	writeBinChipdb string

	pcfFile   string
	writePCF  string
	routeOnly bool
	noPromote bool

	postPackBlif    string
	postPackVerilog string
	postPlaceBlif   string

	outputFile string
	seed       int64
	seedSet    bool
	randomize  bool
	passlist   string

	quiet      bool
	listPasses bool
	showVer    bool
	runLogPath string

	settings *settings.Settings
}

var app = &App{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Red(fmt.Sprintf("fatal error: %s", err)))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "icepnr [flags] [input-file]",
	Short:         "Place and route an iCE40 BLIF netlist",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			util.Warnf("could not load settings: %v", err)
			s = &settings.Settings{}
		}
		app.settings = s

		if app.quiet {
			util.SetLogLevel("warn")
		} else {
			util.SetLogLevel("info")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.showVer {
			printVersion()
			return nil
		}
		if app.listPasses {
			printPasses()
			return nil
		}

		input := "-"
		if len(args) == 1 {
			input = args[0]
		}

		if app.device != "1k" && app.device != "8k" {
			return fmt.Errorf("unknown device: %s", app.device)
		}
		if app.pkgName == "" {
			app.pkgName = app.settings.DefaultPackage
		}
		if app.pkgName == "" {
			app.pkgName = defaultPackage(app.device)
		}

		switch {
		case app.randomize:
			app.seed = randomSeed()
		case app.seedSet:
			// keep the explicitly given -s value, including 0 (fatal below)
		default:
			app.seed = app.settings.GetSeed()
		}
		if app.seed == 0 {
			return fmt.Errorf("zero seed")
		}

		chipdbPath := app.chipdbPath
		if chipdbPath == "" {
			if p, ok := app.settings.FindChipdb(app.device); ok {
				chipdbPath = p
			} else {
				chipdbPath = defaultChipdbPath(app.device)
			}
		}
		if app.writeBinChipdb != "" {
			return writeBinaryChipdb(chipdbPath, app.writeBinChipdb)
		}

		if app.passlist != "" {
			util.Infof("read_chipdb %s", chipdbPath)
			chipdb, err := loadChipdb(chipdbPath)
			if err != nil {
				return err
			}
			return runPasslist(app.passlist, input, chipdb, app.pkgName)
		}

		return run(input, chipdbPath)
	},
}

func defaultPackage(device string) string {
	if device == "8k" {
		return "ct256"
	}
	return "tq144"
}

// defaultChipdbPath mirrors the original tool's "+/share/arachne-pnr/
// chipdb-<device>.bin" convention, expanding '+' to the parent of the
// executable's directory.
func defaultChipdbPath(device string) string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	dir := filepath.Dir(exe)
	return filepath.Join(dir, "..", "share", "arachne-pnr", "chipdb-"+device+".bin")
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&app.quiet, "quiet", "q", false, "suppress info-level logging")
	f.BoolVarP(&app.showVer, "version", "v", false, "print version and exit")
	f.BoolVarP(&app.listPasses, "list-passes", "t", false, "list supported passes and exit")

	f.StringVarP(&app.device, "device", "d", settings.DefaultDevice, "target device (1k|8k)")
	f.StringVarP(&app.pkgName, "package", "P", "", "target package (default: device-specific)")
	f.StringVarP(&app.chipdbPath, "chipdb", "c", "", "chip database file")
	f.StringVar(&app.writeBinChipdb, "write-binary-chipdb", "", "read the chipdb and write it back in binary form, then exit")

	f.StringVarP(&app.pcfFile, "pcf-file", "p", "", "physical constraints file")
	f.StringVarP(&app.writePCF, "write-pcf", "w", "", "write resolved IO constraints")
	f.BoolVar(&app.routeOnly, "route-only", false, "skip straight to routing a pre-placed netlist")
	f.BoolVarP(&app.noPromote, "no-promote-globals", "l", false, "do not promote user nets onto global networks")

	f.StringVarP(&app.postPackBlif, "post-pack-blif", "B", "", "write packed netlist as BLIF")
	f.StringVarP(&app.postPackVerilog, "post-pack-verilog", "V", "", "write packed netlist as Verilog")
	f.StringVar(&app.postPlaceBlif, "post-place-blif", "", "write placed netlist as BLIF")

	f.StringVarP(&app.outputFile, "output-file", "o", "-", "output bitstream file")
	f.Int64VarP(&app.seed, "seed", "s", 0, "annealing/placement seed")
	f.BoolVarP(&app.randomize, "randomize-seed", "r", false, "draw a random nonzero seed, overriding -s")
	f.StringVarP(&app.passlist, "passlist", "e", "", "run a custom pass list file instead of the standard pipeline")

	f.StringVar(&app.runLogPath, "run-log", "", "append a run-log event to this file (default: $ICEPNR_RUN_LOG)")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		app.seedSet = cmd.Flags().Changed("seed")
		return nil
	}
}

func printVersion() {
	if version.Version == "dev" {
		fmt.Println("icepnr dev build")
	} else {
		fmt.Printf("icepnr %s (%s)\n", version.Version, version.GitCommit)
	}
}

// randomSeed draws a nonzero seed from a CSPRNG, matching the original
// tool's std::random_device retry-until-nonzero behavior for -r.
func randomSeed() int64 {
	for {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return 1
		}
		var v int64
		for _, c := range b {
			v = v<<8 | int64(c)
		}
		if v < 0 {
			v = -v
		}
		if v != 0 {
			return v
		}
	}
}
