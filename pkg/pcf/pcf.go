// Package pcf parses physical constraint files: whitespace-tokenized
// "set_io [--warn-no-port] <net> <pin>" lines binding top-level netlist
// ports to package pins.
package pcf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/icepnr/icepnr/pkg/device"
	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/util"
)

// ParseError reports a malformed PCF line.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return util.ErrInputMalformed }

// Constraints holds the resolved net -> package-pin-location bindings a
// PCF file produced, keyed by top-level net name.
type Constraints struct {
	NetPinLoc map[string]device.Location
}

type parser struct {
	sc    *bufio.Scanner
	file  string
	line  int
	words []string
	top   *netlist.Model
	pkg   *device.Package

	netPinLoc map[string]device.Location
	pinLocNet map[device.Location]string
}

func (p *parser) fatal(format string, args ...interface{}) {
	panic(&ParseError{File: p.file, Line: p.line, Msg: fmt.Sprintf(format, args...)})
}

// Parse reads a PCF file from r against top's port set and pkg's pin
// map, returning the resolved constraints.
func Parse(filename string, r io.Reader, top *netlist.Model, pkg *device.Package) (c *Constraints, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if pe, ok := rec.(*ParseError); ok {
				err = pe
				return
			}
			panic(rec)
		}
	}()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	p := &parser{
		sc: sc, file: filename, top: top, pkg: pkg,
		netPinLoc: make(map[string]device.Location),
		pinLocNet: make(map[device.Location]string),
	}
	p.run()
	return &Constraints{NetPinLoc: p.netPinLoc}, nil
}

func (p *parser) run() {
	for p.readLine() {
		switch p.words[0] {
		case "set_io":
			p.setIO(p.words)
		default:
			p.fatal("unknown command `%s'", p.words[0])
		}
	}
}

func (p *parser) readLine() bool {
	for p.sc.Scan() {
		p.line++
		text := p.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}
		p.words = words
		return true
	}
	return false
}

func (p *parser) setIO(words []string) {
	warnNoPort := false
	var netName, pinName string
	for _, w := range words[1:] {
		if strings.HasPrefix(w, "-") {
			if w == "--warn-no-port" {
				warnNoPort = true
			} else {
				p.fatal("unknown option `%s'", w)
			}
			continue
		}
		switch {
		case netName == "":
			netName = w
		case pinName == "":
			pinName = w
		default:
			p.fatal("set_io: too many arguments")
		}
	}
	if netName == "" || pinName == "" {
		p.fatal("set_io: too few arguments")
	}

	port := p.top.FindPort(netName)
	if port == nil {
		if warnNoPort {
			return
		}
		p.fatal("no port `%s' in top-level module `%s'", netName, p.top.Name())
	}

	loc, ok := p.pkg.PinLoc[pinName]
	if !ok {
		p.fatal("unknown pin `%s' on package `%s'", pinName, p.pkg.Name)
	}

	if _, dup := p.netPinLoc[netName]; dup {
		p.fatal("duplicate pin constraints for net `%s'", netName)
	}
	if _, dup := p.pinLocNet[loc]; dup {
		p.fatal("duplicate pin constraints for pin `%s'", pinName)
	}

	p.netPinLoc[netName] = loc
	p.pinLocNet[loc] = netName
}

// Write emits one "set_io <port> <pin>" line per top-level bidir port
// bound to an SB_IO(_I3C/_OD_A) instance, resolving each instance's final
// cell via placement and chipdb. Ports with no SB_IO binding (an
// internal boundary net pruned before IO instantiation, which shouldn't
// happen in a well-formed design) are silently skipped.
func Write(w io.Writer, chipdb *device.DB, pkg *device.Package, top *netlist.Model, placement map[*netlist.Instance]int) error {
	for _, port := range top.Ports() {
		if !port.IsBidir() || !port.Connected() {
			continue
		}
		q := port.ConnectionOtherPort()
		if q == nil {
			continue
		}
		inst, ok := q.Node().(*netlist.Instance)
		if !ok || q.Name() != "PACKAGE_PIN" {
			continue
		}
		cell, ok := placement[inst]
		if !ok {
			continue
		}
		loc := chipdb.CellLocation(cell)
		pin, ok := pkg.LocPin[loc]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "set_io %s %s\n", port.Name(), pin); err != nil {
			return err
		}
	}
	return nil
}
