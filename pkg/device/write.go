package device

import (
	"fmt"
	"io"
	"sort"
)

// WriteText serializes a DB back into the textual chipdb grammar.
func (d *DB) WriteText(w io.Writer) error {
	bw := &bufErrWriter{w: w}

	bw.printf(".device %s %d %d %d\n\n", d.Device, d.Width, d.Height, d.NNets)

	for _, name := range sortedPackageNames(d.Packages) {
		pkg := d.Packages[name]
		bw.printf(".pins %s\n", name)
		for _, pin := range sortedStrings(pkg.PinLoc) {
			loc := pkg.PinLoc[pin]
			bw.printf("%s %d %d %d\n", pin, d.TileX(loc.Tile), d.TileY(loc.Tile), loc.Pos)
		}
		bw.printf("\n")
	}

	bw.printf(".colbuf\n")
	for _, dst := range sortedIntKeys(d.TileColBufTile) {
		src := d.TileColBufTile[dst]
		bw.printf("%d %d %d %d\n", d.TileX(src), d.TileY(src), d.TileX(dst), d.TileY(dst))
	}
	bw.printf("\n")

	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			t := d.Tile(x, y)
			ty := d.Tiles[t]
			if ty == TileEmpty {
				continue
			}
			bw.printf(".%s %d %d\n", ty, x, y)
			fns := d.NonroutingCBits[ty]
			for _, fn := range sortedStrings(fns) {
				bw.printf("%s", fn)
				for _, cb := range fns[fn] {
					bw.printf(" B%d[%d]", cb.Row, cb.Col)
				}
				bw.printf("\n")
			}
			bw.printf("\n")
		}
	}

	netTileNames := make([][][2]string, d.NNets)
	for t, nets := range d.TileNets {
		for name, n := range nets {
			netTileNames[n] = append(netTileNames[n], [2]string{fmt.Sprintf("%d %d", d.TileX(t), d.TileY(t)), name})
		}
	}
	for i := 0; i < d.NNets; i++ {
		bw.printf(".net %d\n", i)
		entries := netTileNames[i]
		sort.Slice(entries, func(a, b int) bool { return entries[a][0]+entries[a][1] < entries[b][0]+entries[b][1] })
		for _, e := range entries {
			bw.printf("%s %s\n", e[0], e[1])
		}
		bw.printf("\n")
	}

	for _, sw := range d.Switches {
		dir := ".buffer"
		if sw.Bidir {
			dir = ".routing"
		}
		bw.printf("%s %d %d %d", dir, d.TileX(sw.Tile), d.TileY(sw.Tile), sw.Out)
		for _, cb := range sw.CBits {
			bw.printf(" B%d[%d]", cb.Row, cb.Col)
		}
		bw.printf("\n")
		for _, in := range sw.Ins() {
			val := sw.InVal[in]
			s := make([]byte, len(val))
			for i, b := range val {
				if b {
					s[i] = '1'
				} else {
					s[i] = '0'
				}
			}
			bw.printf("%s %d\n", string(s), in)
		}
		bw.printf("\n")
	}

	return bw.err
}

type bufErrWriter struct {
	w   io.Writer
	err error
}

func (b *bufErrWriter) printf(format string, args ...interface{}) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}

func sortedPackageNames(m map[string]*Package) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedStrings[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedIntKeys(m map[int]int) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
