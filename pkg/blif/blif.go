// Package blif parses the Berkeley Logic Interchange Format netlist that
// feeds the pipeline: .model/.inputs/.outputs/.names/.gate/.attr/.param/.end
// directives, building a netlist.Design against the standard cell library.
package blif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/icepnr/icepnr/pkg/netlist"
	"github.com/icepnr/icepnr/pkg/util"
)

// ParseError reports a malformed BLIF line.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return util.ErrInputMalformed }

type parser struct {
	sc       *bufio.Scanner
	file     string
	line     int
	words    []string
	d        *netlist.Design
	top      *netlist.Model
	unify    [][2]*netlist.Net
	curInst  *netlist.Instance
}

func (p *parser) fatal(format string, args ...interface{}) {
	panic(&ParseError{File: p.file, Line: p.line, Msg: fmt.Sprintf(format, args...)})
}

func splitWords(line string) []string {
	var words []string
	var t strings.Builder
	inStr, quote := false, false
	for _, ch := range line {
		switch {
		case inStr:
			t.WriteRune(ch)
			if quote {
				quote = false
			} else if ch == '\\' {
				quote = true
			} else if ch == '"' {
				words = append(words, t.String())
				t.Reset()
				inStr = false
			}
		case ch == ' ' || ch == '\t' || ch == '\r':
			if t.Len() > 0 {
				words = append(words, t.String())
				t.Reset()
			}
		default:
			t.WriteRune(ch)
			if ch == '"' {
				inStr = true
			}
		}
	}
	if t.Len() > 0 {
		words = append(words, t.String())
	}
	return words
}

// readLine advances to the next non-blank logical line (honoring trailing
// backslash continuation and "#" end-of-line comments), splitting it into
// words. Returns false at EOF.
func (p *parser) readLine() bool {
	for {
		if !p.sc.Scan() {
			p.words = nil
			return false
		}
		p.line++
		text := p.sc.Text()
		for strings.HasSuffix(text, "\\") {
			if !p.sc.Scan() {
				p.fatal("unexpected backslash before eof")
			}
			p.line++
			text = text[:len(text)-1] + p.sc.Text()
		}
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		p.words = splitWords(text)
		if len(p.words) == 0 {
			continue
		}
		return true
	}
}

func (p *parser) constFromWord(w string) netlist.Const {
	if len(w) >= 2 && w[0] == '"' && w[len(w)-1] == '"' {
		return netlist.StringConst(w[1 : len(w)-1])
	}
	bv, err := netlist.BitsFromString(w)
	if err != nil {
		p.fatal("invalid character in integer constant")
	}
	return netlist.BitsConst(bv)
}

// Parse reads a BLIF netlist from r, returning a fully populated Design.
// filename is used only for diagnostics.
func Parse(filename string, r io.Reader) (d *netlist.Design, err error) {
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

	p := &parser{sc: sc, file: filename, d: netlist.NewDesign()}
	p.run()
	return p.d, nil
}

func (p *parser) run() {
	for p.readLine() {
		p.dispatch()
	}

	if p.top == nil {
		p.fatal("no top model has been defined")
	}

	p.applyUnify()
	p.checkBoundary()
}

// dispatch handles one directive line and (for .names) its PLA body.
func (p *parser) dispatch() {
	d := p.d
	cmd := p.words[0]
	if !strings.HasPrefix(cmd, ".") {
		p.fatal("expected directive")
	}

	switch cmd {
	case ".model":
		if len(p.words) != 2 {
			p.fatal("invalid .model directive: expected exactly 1 argument, got %d", len(p.words)-1)
		}
		if p.top != nil {
			p.fatal("definition of multiple models is not supported")
		}
		p.top = d.AddBlackBox(p.words[1])
		d.SetTop(p.top)

	case ".inputs":
		p.requireTop(".inputs")
		for _, w := range p.words[1:] {
			port := p.top.FindPort(w)
			if port != nil {
				if port.IsOutput() {
					port.SetDirection(netlist.Inout)
				}
			} else {
				port = p.top.AddPort(w, netlist.In)
			}
			port.Connect(p.top.FindOrAddNet(w))
		}

	case ".outputs":
		p.requireTop(".outputs")
		for _, w := range p.words[1:] {
			port := p.top.FindPort(w)
			if port != nil {
				if port.IsInput() {
					port.SetDirection(netlist.Inout)
				}
			} else {
				port = p.top.AddPort(w, netlist.Out)
			}
			port.Connect(p.top.FindOrAddNet(w))
		}

	case ".names":
		p.requireTop(".names")
		p.parseNames()

	case ".gate":
		p.requireTop(".gate")
		if len(p.words) < 2 {
			p.fatal("invalid .gate directive: missing name")
		}
		modelName := p.words[1]
		instOf := d.FindModel(modelName)
		if instOf == nil {
			p.fatal("unknown model `%s'", modelName)
		}
		p.curInst = p.top.AddInstance(instOf)
		for _, w := range p.words[2:] {
			eq := strings.IndexByte(w, '=')
			if eq < 0 {
				p.fatal("invalid formal-actual")
			}
			formal, actual := w[:eq], w[eq+1:]
			if actual == "" {
				continue
			}
			port := p.curInst.FindPort(formal)
			if port == nil {
				p.fatal("unknown formal `%s'", formal)
			}
			port.Connect(p.top.FindOrAddNet(actual))
		}

	case ".attr":
		if len(p.words) != 3 {
			p.fatal("invalid .attr directive: expected exactly 2 arguments, got %d", len(p.words)-1)
		}
		if p.curInst == nil {
			p.fatal("no gate for .attr directive")
		}
		p.curInst.SetAttr(p.words[1], p.constFromWord(p.words[2]))

	case ".param":
		if len(p.words) != 3 {
			p.fatal("invalid .param directive: expected exactly 2 arguments, got %d", len(p.words)-1)
		}
		if p.curInst == nil {
			p.fatal("no gate for .param directive")
		}
		p.curInst.SetParam(p.words[1], p.constFromWord(p.words[2]))

	case ".end":
		p.requireTop(".end")

	default:
		p.fatal("unknown directive '%s'", cmd)
	}
}

func (p *parser) requireTop(directive string) {
	if p.top == nil {
		p.fatal("%s directive outside of model definition", directive)
	}
}

// parseNames consumes a .names directive's PLA-style body: a 1-net form
// sets a constant, a 2-net "1 1" form unifies the two nets (a buffer).
func (p *parser) parseNames() {
	n := len(p.words)
	var namesNet *netlist.Net
	switch n {
	case 2:
		namesNet = p.top.FindOrAddNet(p.words[1])
		namesNet.SetConstant(netlist.Zero)
	case 3:
		p.unify = append(p.unify, [2]*netlist.Net{p.top.FindOrAddNet(p.words[1]), p.top.FindOrAddNet(p.words[2])})
	default:
		p.fatal("invalid .names directive: expected 1 or 2 arguments, got %d", n-1)
	}

	saw11 := false
	for {
		if !p.readLine() {
			if n == 3 && !saw11 {
				p.fatal("invalid .names directive: unexpected end of file")
			}
			return
		}
		if strings.HasPrefix(p.words[0], ".") {
			if n == 3 && !saw11 {
				p.fatal("invalid .names directive: .names entry expected")
			}
			p.dispatch()
			return
		}
		if len(p.words) != n-1 {
			p.fatal("invalid .names entry: number of gates does not match specified number of nets")
		}
		if n == 2 {
			switch p.words[0] {
			case "1":
				namesNet.SetConstant(netlist.One)
			case "0":
			default:
				p.fatal("invalid .names entry: gate must be either 1 or 0")
			}
		} else {
			if p.words[0] != "1" || p.words[1] != "1" {
				p.fatal("invalid .names entry: both gates must be 1 here")
			}
			saw11 = true
		}
	}
}

// applyUnify resolves the .names buffer chains recorded during parsing:
// n1 (the driver) absorbs n2 via union-find over net identity, then every
// unified net is discarded.
func (p *parser) applyUnify() {
	replacement := make(map[*netlist.Net]*netlist.Net)
	for _, pair := range p.unify {
		n1, n2 := pair[0], pair[1]

		r := n1
		for {
			t, ok := replacement[r]
			if !ok {
				break
			}
			r = t
		}

		x := n1
		for x != r {
			t := replacement[x]
			replacement[x] = r
			x = t
		}

		if n2 == r {
			p.fatal(".names cycle")
		}
		n2.Replace(r)
		if _, exists := replacement[n2]; exists {
			p.fatal("conflicting .names outputs")
		}
		replacement[n2] = r
	}
	for n := range replacement {
		p.top.RemoveNet(n)
	}
}

// checkBoundary enforces the same-as-original invariants on the finished
// top model: every bidir top port must land on an IO PACKAGE_PIN, and no
// internal net may have more than one driver.
func (p *parser) checkBoundary() {
	top := p.top

	ioModel := p.d.FindModel("SB_IO")
	ioI3CModel := p.d.FindModel("SB_IO_I3C")
	ioODAModel := p.d.FindModel("SB_IO_OD_A")

	for _, port := range top.Ports() {
		if !port.IsBidir() {
			continue
		}
		net := port.Connection()
		if net == nil {
			continue
		}
		q := port.ConnectionOtherPort()
		ok := false
		if q != nil {
			if inst, isInst := q.Node().(*netlist.Instance); isInst {
				of := inst.InstanceOf()
				if (of == ioModel || of == ioI3CModel || of == ioODAModel) && q.Name() == "PACKAGE_PIN" {
					ok = true
				}
			}
		}
		if !ok {
			panic(&ParseError{File: p.file, Msg: fmt.Sprintf("toplevel inout port '%s' not connected to SB_IO PACKAGE_PIN", port.Name())})
		}
	}

	boundaryNets := make(map[*netlist.Net]bool)
	for _, inst := range top.Instances() {
		if inst.InstanceOf() != ioModel {
			continue
		}
		pin := inst.FindPort("PACKAGE_PIN")
		net := pin.Connection()
		q := pin.ConnectionOtherPort()
		if net == nil || q == nil {
			p.fatal("SB_IO PACKAGE_PIN not connected to toplevel port")
		}
		if _, isModel := q.Node().(*netlist.Model); !isModel {
			p.fatal("SB_IO PACKAGE_PIN not connected to toplevel port")
		}
		boundaryNets[net] = true
	}

	for _, net := range top.Nets() {
		if boundaryNets[net] {
			continue
		}
		nDrivers := 0
		if net.IsConstant() {
			nDrivers++
		}
		for _, conn := range net.Connections() {
			if conn.IsOutput() {
				nDrivers++
			}
		}
		if nDrivers > 1 {
			p.fatal("net `%s' has multiple drivers", net.Name())
		}
	}
}
