package device

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/icepnr/icepnr/pkg/util"
)

// ParseError reports a malformed chipdb text line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("chipdb: line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return util.ErrInputMalformed }

type textParser struct {
	sc    *bufio.Scanner
	line  int
	words []string
}

func newTextParser(r io.Reader) *textParser {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &textParser{sc: sc}
}

// readLine advances to the next non-blank, non-comment line, splitting it
// into whitespace-separated words. Returns false at EOF.
func (p *textParser) readLine() bool {
	for p.sc.Scan() {
		p.line++
		text := p.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		p.words = fields
		return true
	}
	return false
}

// readBody calls handle for every body line belonging to the current
// directive, stopping (without consuming) at the next directive line or
// at EOF. Returns true if a following directive line is pending in p.words.
func (p *textParser) readBody(handle func(words []string)) bool {
	for p.readLine() {
		if strings.HasPrefix(p.words[0], ".") {
			return true
		}
		handle(p.words)
	}
	return false
}

func (p *textParser) fatal(format string, args ...interface{}) {
	panic(&ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)})
}

func (p *textParser) atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		p.fatal("expected integer, got %q", s)
	}
	return n
}

func parseCBit(s string) (row, col int) {
	if _, err := fmt.Sscanf(s, "B%d[%d]", &row, &col); err != nil {
		panic(&ParseError{Msg: fmt.Sprintf("invalid cbit %q: %v", s, err)})
	}
	return row, col
}

// ParseText reads a textual chipdb (the ".device ... .pins ... .io_tile ..."
// grammar emitted by icebox/arachne-pnr) into a DB.
func ParseText(r io.Reader) (db *DB, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if pe, ok := rec.(*ParseError); ok {
				err = pe
				return
			}
			panic(rec)
		}
	}()

	p := newTextParser(r)
	db = New()

	havePending := false
	for {
		if !havePending {
			if !p.readLine() {
				return db, nil
			}
		}
		havePending = false

		w := p.words
		cmd := w[0]
		if !strings.HasPrefix(cmd, ".") {
			p.fatal("expected directive, got %q", cmd)
		}

		switch cmd {
		case ".device":
			if len(w) != 5 {
				p.fatal("wrong number of arguments to .device")
			}
			db.Device = w[1]
			db.Width = p.atoi(w[2])
			db.Height = p.atoi(w[3])
			db.NNets = p.atoi(w[4])
			db.Tiles = make([]TileType, db.Width*db.Height)
			db.TileNets = make([]map[string]int, db.Width*db.Height)
			for i := range db.TileNets {
				db.TileNets[i] = make(map[string]int)
			}
			db.OutSwitches = make([][]int, db.NNets)
			db.InSwitches = make([][]int, db.NNets)

		case ".pins":
			if len(w) != 2 {
				p.fatal("wrong number of arguments to .pins")
			}
			pkgName := w[1]
			pkg := &Package{Name: pkgName, PinLoc: make(map[string]Location), LocPin: make(map[Location]string)}
			db.Packages[pkgName] = pkg
			havePending = p.readBody(func(words []string) {
				if len(words) != 4 {
					p.fatal("invalid .pins entry")
				}
				loc := Location{Tile: db.Tile(p.atoi(words[1]), p.atoi(words[2])), Pos: p.atoi(words[3])}
				pkg.PinLoc[words[0]] = loc
				pkg.LocPin[loc] = words[0]
			})

		case ".gbufpin":
			havePending = p.readBody(func(words []string) {
				if len(words) != 4 {
					p.fatal("invalid .gbufpin entry")
				}
				loc := Location{Tile: db.Tile(p.atoi(words[0]), p.atoi(words[1])), Pos: p.atoi(words[2])}
				db.LocPinGlbNum[loc] = p.atoi(words[3])
			})

		case ".io_tile", ".logic_tile", ".ramb_tile", ".ramt_tile":
			if len(w) != 3 {
				p.fatal("wrong number of arguments to %s", cmd)
			}
			x, y := p.atoi(w[1]), p.atoi(w[2])
			t := db.Tile(x, y)
			switch cmd {
			case ".io_tile":
				db.Tiles[t] = TileIO
			case ".logic_tile":
				db.Tiles[t] = TileLogic
			case ".ramb_tile":
				db.Tiles[t] = TileRAMB
			case ".ramt_tile":
				db.Tiles[t] = TileRAMT
			}

		case ".io_tile_bits", ".logic_tile_bits", ".ramb_tile_bits", ".ramt_tile_bits":
			if len(w) != 3 {
				p.fatal("wrong number of arguments to %s", cmd)
			}
			var ty TileType
			switch cmd {
			case ".io_tile_bits":
				ty = TileIO
			case ".logic_tile_bits":
				ty = TileLogic
			case ".ramb_tile_bits":
				ty = TileRAMB
			case ".ramt_tile_bits":
				ty = TileRAMT
			}
			cols, rows := p.atoi(w[1]), p.atoi(w[2])
			db.TileCBitsBlockSize[ty] = [2]int{cols, rows}
			if db.NonroutingCBits[ty] == nil {
				db.NonroutingCBits[ty] = make(map[string][]CBit)
			}
			havePending = p.readBody(func(words []string) {
				if len(words) < 2 {
					p.fatal("invalid tile entry")
				}
				fn := words[0]
				cbits := make([]CBit, len(words)-1)
				for i := 1; i < len(words); i++ {
					row, col := parseCBit(words[i])
					cbits[i-1] = CBit{Tile: 0, Row: row, Col: col}
				}
				db.NonroutingCBits[ty][fn] = cbits
			})

		case ".net":
			if len(w) != 2 {
				p.fatal("wrong number of arguments to .net")
			}
			n := p.atoi(w[1])
			if n < 0 || n >= db.NNets {
				p.fatal("invalid net index %d", n)
			}
			havePending = p.readBody(func(words []string) {
				if len(words) != 3 {
					p.fatal("invalid .net entry")
				}
				x, y := p.atoi(words[0]), p.atoi(words[1])
				t := db.Tile(x, y)
				db.TileNets[t][words[2]] = n
			})

		case ".buffer", ".routing":
			if len(w) < 5 {
				p.fatal("too few arguments to %s", cmd)
			}
			x, y := p.atoi(w[1]), p.atoi(w[2])
			t := db.Tile(x, y)
			n := p.atoi(w[3])
			cbits := make([]CBit, len(w)-4)
			for i := 4; i < len(w); i++ {
				row, col := parseCBit(w[i])
				cbits[i-4] = CBit{Tile: t, Row: row, Col: col}
			}
			inVal := make(map[int][]bool)
			havePending = p.readBody(func(words []string) {
				if len(words) != 2 || len(words[0]) != len(cbits) {
					p.fatal("invalid %s entry", cmd)
				}
				val := make([]bool, len(words[0]))
				for i, c := range words[0] {
					switch c {
					case '1':
						val[i] = true
					case '0':
						val[i] = false
					default:
						p.fatal("invalid binary string %q", words[0])
					}
				}
				inVal[p.atoi(words[1])] = val
			})
			sw := Switch{ID: len(db.Switches), Bidir: cmd == ".routing", Tile: t, Out: n, InVal: inVal, CBits: cbits}
			db.Switches = append(db.Switches, sw)
			db.OutSwitches[n] = append(db.OutSwitches[n], sw.ID)
			for in := range inVal {
				db.InSwitches[in] = append(db.InSwitches[in], sw.ID)
			}

		case ".colbuf":
			havePending = p.readBody(func(words []string) {
				if len(words) != 4 {
					p.fatal("invalid .colbuf entry")
				}
				srcX, srcY := p.atoi(words[0]), p.atoi(words[1])
				dstX, dstY := p.atoi(words[2]), p.atoi(words[3])
				db.TileColBufTile[db.Tile(dstX, dstY)] = db.Tile(srcX, srcY)
			})

		case ".gbufin":
			havePending = p.readBody(func(words []string) {
				if len(words) != 3 {
					p.fatal("invalid .gbufin entry")
				}
				x, y := p.atoi(words[0]), p.atoi(words[1])
				g := p.atoi(words[2])
				if g >= db.NGlobalNets {
					p.fatal("global index %d out of range", g)
				}
				db.GBufIn[[2]int{x, y}] = g
			})

		case ".iolatch", ".ieren", ".extra_bits":
			// Consumed but not load-bearing for the core pipeline stages;
			// their bodies are skipped without interpretation.
			havePending = p.readBody(func(words []string) {})

		case ".extra_cell":
			if len(w) != 4 {
				p.fatal("wrong number of arguments to .extra_cell")
			}
			// The body is skipped: ExtraCellMFVs is not filled from it.
			havePending = p.readBody(func(words []string) {})

		default:
			p.fatal("unknown directive %q", cmd)
		}
	}
}
