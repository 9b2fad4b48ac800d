package netlist

import (
	"fmt"
	"io"
	"sort"
)

// writeEscapedString renders s as a double-quoted BLIF/Verilog string
// literal: '"' and '\\' are backslash-escaped, non-printable bytes other
// than newline/tab become three-digit octal escapes.
func writeEscapedString(w io.Writer, s string) {
	fmt.Fprint(w, `"`)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '"' || ch == '\\':
			fmt.Fprintf(w, "\\%c", ch)
		case ch == '\n':
			fmt.Fprint(w, "\n")
		case ch == '\t':
			fmt.Fprint(w, "\t")
		case ch >= 0x20 && ch < 0x7f:
			fmt.Fprintf(w, "%c", ch)
		default:
			fmt.Fprintf(w, "\\%03o", ch)
		}
	}
	fmt.Fprint(w, `"`)
}

// writeConstBLIF renders a Const the way .attr/.param lines do: a bare
// bit string for a bit-vector constant, an escaped-quoted string for a
// string constant.
func writeConstBLIF(w io.Writer, c Const) {
	if c.IsBits() {
		fmt.Fprint(w, c.AsBits().String())
		return
	}
	writeEscapedString(w, c.AsString())
}

// writeConstVerilog renders a Const the way Verilog parameter/attribute
// values do: a sized bit-vector literal (N'b...) or an escaped string.
func writeConstVerilog(w io.Writer, c Const) {
	if c.IsBits() {
		b := c.AsBits()
		fmt.Fprintf(w, "%d'b%s", b.Size(), b.String())
		return
	}
	writeEscapedString(w, c.AsString())
}

// isVerilogIdentChar reports whether ch is legal in an unescaped Verilog
// identifier.
func isVerilogIdentChar(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_' || ch == '$'
}

// writeVerilogName writes name as a Verilog identifier, backslash-escaping
// it (with a trailing space terminator) when it contains a character an
// unescaped identifier can't.
func writeVerilogName(w io.Writer, name string) {
	quote := false
	for _, ch := range name {
		if !isVerilogIdentChar(ch) {
			quote = true
			break
		}
	}
	if quote {
		fmt.Fprintf(w, "\\%s ", name)
	} else {
		fmt.Fprint(w, name)
	}
}

func sortedKeys(m map[string]Const) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeBLIF emits this instance as a .gate line plus any .attr/.param
// lines, using netName to resolve each connected port's net to its
// shared output name.
func (i *Instance) writeBLIF(w io.Writer, netName map[*Net]string) {
	fmt.Fprintf(w, ".gate %s", i.instanceOf.Name())
	for _, p := range i.Ports() {
		fmt.Fprintf(w, " %s=", p.Name())
		if p.Connected() {
			fmt.Fprint(w, netName[p.Connection()])
		}
	}
	fmt.Fprint(w, "\n")

	attrs := i.Attrs()
	for _, k := range sortedKeys(attrs) {
		fmt.Fprintf(w, ".attr %s ", k)
		writeConstBLIF(w, attrs[k])
		fmt.Fprint(w, "\n")
	}
	params := i.SelfParams()
	for _, k := range sortedKeys(params) {
		fmt.Fprintf(w, ".param %s ", k)
		writeConstBLIF(w, params[k])
		fmt.Fprint(w, "\n")
	}
}

// writeVerilog emits this instance as a module instantiation named
// instName, using netName to resolve each connected port's net.
func (i *Instance) writeVerilog(w io.Writer, netName map[*Net]string, instName string) {
	attrs := i.Attrs()
	if len(attrs) != 0 {
		fmt.Fprint(w, "  (* ")
		first := true
		for _, k := range sortedKeys(attrs) {
			if first {
				first = false
			} else {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%s=", k)
			writeConstVerilog(w, attrs[k])
		}
		fmt.Fprint(w, " *)\n")
	}

	fmt.Fprint(w, "  ")
	writeVerilogName(w, i.instanceOf.Name())

	params := i.SelfParams()
	if len(params) != 0 {
		fmt.Fprint(w, " #(")
		first := true
		for _, k := range sortedKeys(params) {
			if first {
				first = false
			} else {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprint(w, "\n    .")
			writeVerilogName(w, k)
			fmt.Fprint(w, "(")
			writeConstVerilog(w, params[k])
			fmt.Fprint(w, ")")
		}
		fmt.Fprint(w, "\n  ) ")
	}

	writeVerilogName(w, instName)
	fmt.Fprint(w, " (")
	first := true
	for _, p := range i.Ports() {
		conn := p.Connection()
		if conn == nil {
			continue
		}
		if first {
			first = false
		} else {
			fmt.Fprint(w, ",")
		}
		fmt.Fprint(w, "\n    .")
		writeVerilogName(w, p.Name())
		fmt.Fprint(w, "(")
		writeVerilogName(w, conn.Name())
		fmt.Fprint(w, ")")
	}
	fmt.Fprint(w, "\n  );\n")
}

// WriteBLIF renders this Model (expected to be the design's post-pack
// top level) as a single BLIF .model block: port declarations, constant
// nets, every instance's .gate line, and bridging .names buffers for any
// port whose connected net's shared name differs from the port's own
// name.
func (m *Model) WriteBLIF(w io.Writer) error {
	fmt.Fprintf(w, ".model %s\n", m.name)

	fmt.Fprint(w, ".inputs")
	for _, p := range m.ordered {
		if p.Direction() == In || p.Direction() == Inout {
			fmt.Fprintf(w, " %s", p.Name())
		}
	}
	fmt.Fprint(w, "\n")

	fmt.Fprint(w, ".outputs")
	for _, p := range m.ordered {
		if p.Direction() == Out || p.Direction() == Inout {
			fmt.Fprintf(w, " %s", p.Name())
		}
	}
	fmt.Fprint(w, "\n")

	netName := m.SharedNames()

	for _, n := range m.netOrder {
		if name := netName[n]; name != n.Name() {
			fmt.Fprintf(w, "# %s -> %s\n", n.Name(), name)
		}
	}

	for _, n := range m.netOrder {
		if !n.IsConstant() {
			continue
		}
		fmt.Fprintf(w, ".names %s\n", netName[n])
		if n.Constant() == One {
			fmt.Fprint(w, "1\n")
		}
	}

	for _, inst := range m.instances {
		inst.writeBLIF(w, netName)
	}

	for _, p := range m.ordered {
		n := p.Connection()
		if n == nil || n.Name() == p.Name() {
			continue
		}
		if p.IsInput() {
			fmt.Fprintf(w, ".names %s %s\n", netName[n], p.Name())
		} else {
			fmt.Fprintf(w, ".names %s %s\n", p.Name(), netName[n])
		}
		fmt.Fprint(w, "1 1\n")
	}

	fmt.Fprint(w, ".end\n")
	return nil
}

// WriteVerilog renders this Model as a single Verilog module: a port
// list, wire declarations for every non-port net (with an initializer
// for constant nets), assign statements bridging any renamed port/net
// pair, and every instance in creation order.
func (m *Model) WriteVerilog(w io.Writer) error {
	fmt.Fprint(w, "module ")
	writeVerilogName(w, m.name)
	fmt.Fprint(w, "(")
	first := true
	for _, p := range m.ordered {
		if first {
			first = false
		} else {
			fmt.Fprint(w, ", ")
		}
		switch p.Direction() {
		case In:
			fmt.Fprint(w, "input ")
		case Out:
			fmt.Fprint(w, "output ")
		case Inout:
			fmt.Fprint(w, "inout ")
		}
		writeVerilogName(w, p.Name())
	}
	fmt.Fprint(w, ");\n")

	netName := m.SharedNames()
	isPort := make(map[*Net]bool)
	for _, p := range m.ordered {
		if p.Connected() {
			isPort[p.Connection()] = true
		}
	}

	for _, n := range m.netOrder {
		if name := netName[n]; name != n.Name() {
			fmt.Fprintf(w, "  // %s -> %s\n", n.Name(), name)
		}
	}

	for _, n := range m.netOrder {
		if isPort[n] {
			continue
		}
		fmt.Fprint(w, "  wire ")
		writeVerilogName(w, netName[n])
		if n.IsConstant() {
			if n.Constant() == One {
				fmt.Fprint(w, " = 1")
			} else {
				fmt.Fprint(w, " = 0")
			}
		}
		fmt.Fprint(w, ";\n")
	}

	for _, p := range m.ordered {
		n := p.Connection()
		if n == nil || n.Name() == p.Name() {
			continue
		}
		if p.IsInput() {
			fmt.Fprint(w, "  assign ")
			writeVerilogName(w, netName[n])
			fmt.Fprintf(w, " = %s;\n", p.Name())
		} else {
			fmt.Fprintf(w, "  assign %s = ", p.Name())
			writeVerilogName(w, netName[n])
			fmt.Fprint(w, ";\n")
		}
	}

	for k, inst := range m.instances {
		inst.writeVerilog(w, netName, fmt.Sprintf("$inst%d", k))
	}

	fmt.Fprint(w, "endmodule\n")
	return nil
}
