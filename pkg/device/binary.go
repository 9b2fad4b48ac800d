package device

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Binary chipdb encoding: every integer is a LEB128-style varint (unsigned
// fields via binary.Uvarint, signed fields sign-extended via binary.Varint);
// every vector/map is length-prefixed. This is a closed, from-scratch
// format (not wire-compatible with the original tool's binary chipdb) but
// follows the same "length-prefixed varint" shape the text grammar implies,
// and it round-trips a *DB exactly, which is what §8's property requires.
type binWriter struct {
	w   *bufio.Writer
	err error
}

func newBinWriter(w io.Writer) *binWriter { return &binWriter{w: bufio.NewWriter(w)} }

func (b *binWriter) uvarint(v uint64) {
	if b.err != nil {
		return
	}
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, b.err = b.w.Write(buf[:n])
}

func (b *binWriter) varint(v int64) {
	if b.err != nil {
		return
	}
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutVarint(buf[:], v)
	_, b.err = b.w.Write(buf[:n])
}

func (b *binWriter) int_(v int)   { b.varint(int64(v)) }
func (b *binWriter) uint_(v int)  { b.uvarint(uint64(v)) }
func (b *binWriter) bool_(v bool) { if v { b.uvarint(1) } else { b.uvarint(0) } }

func (b *binWriter) str(s string) {
	b.uint_(len(s))
	if b.err != nil {
		return
	}
	_, b.err = b.w.WriteString(s)
}

func (b *binWriter) flush() error {
	if b.err != nil {
		return b.err
	}
	return b.w.Flush()
}

type binReader struct {
	r   *bufio.Reader
	err error
}

func newBinReader(r io.Reader) *binReader { return &binReader{r: bufio.NewReader(r)} }

func (b *binReader) uvarint() uint64 {
	if b.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(b.r)
	if err != nil {
		b.err = err
	}
	return v
}

func (b *binReader) varint() int64 {
	if b.err != nil {
		return 0
	}
	v, err := binary.ReadVarint(b.r)
	if err != nil {
		b.err = err
	}
	return v
}

func (b *binReader) int_() int  { return int(b.varint()) }
func (b *binReader) uint_() int { return int(b.uvarint()) }
func (b *binReader) bool_() bool { return b.uvarint() != 0 }

func (b *binReader) str() string {
	n := b.uint_()
	if b.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		b.err = err
		return ""
	}
	return string(buf)
}

// WriteBinary serializes a DB to the binary chipdb encoding.
func (d *DB) WriteBinary(w io.Writer) error {
	bw := newBinWriter(w)

	bw.str(d.Device)
	bw.int_(d.Width)
	bw.int_(d.Height)
	bw.int_(d.NNets)
	bw.int_(d.NGlobalNets)

	bw.uint_(len(d.Tiles))
	for _, t := range d.Tiles {
		bw.int_(int(t))
	}

	bw.uint_(len(d.Packages))
	for _, name := range sortedPackageNames(d.Packages) {
		pkg := d.Packages[name]
		bw.str(name)
		bw.uint_(len(pkg.PinLoc))
		for _, pin := range sortedStrings(pkg.PinLoc) {
			loc := pkg.PinLoc[pin]
			bw.str(pin)
			bw.int_(loc.Tile)
			bw.int_(loc.Pos)
		}
	}

	bw.uint_(len(d.GBufIn))
	for k, g := range d.GBufIn {
		bw.int_(k[0])
		bw.int_(k[1])
		bw.int_(g)
	}

	bw.uint_(len(d.TileColBufTile))
	for _, dst := range sortedIntKeys(d.TileColBufTile) {
		bw.int_(dst)
		bw.int_(d.TileColBufTile[dst])
	}

	bw.uint_(len(d.TileNets))
	for _, nets := range d.TileNets {
		bw.uint_(len(nets))
		for _, name := range sortedStrings(nets) {
			bw.str(name)
			bw.int_(nets[name])
		}
	}

	bw.uint_(len(d.NonroutingCBits))
	for _, ty := range []TileType{TileIO, TileLogic, TileRAMB, TileRAMT} {
		fns, ok := d.NonroutingCBits[ty]
		if !ok {
			continue
		}
		bw.int_(int(ty))
		bw.uint_(len(fns))
		for _, fn := range sortedStrings(fns) {
			bw.str(fn)
			cbits := fns[fn]
			bw.uint_(len(cbits))
			for _, cb := range cbits {
				bw.int_(cb.Row)
				bw.int_(cb.Col)
			}
		}
	}

	bw.uint_(len(d.Switches))
	for _, sw := range d.Switches {
		bw.bool_(sw.Bidir)
		bw.int_(sw.Tile)
		bw.int_(sw.Out)
		bw.uint_(len(sw.CBits))
		for _, cb := range sw.CBits {
			bw.int_(cb.Tile)
			bw.int_(cb.Row)
			bw.int_(cb.Col)
		}
		bw.uint_(len(sw.InVal))
		for _, in := range sw.Ins() {
			val := sw.InVal[in]
			bw.int_(in)
			bw.uint_(len(val))
			for _, bit := range val {
				bw.bool_(bit)
			}
		}
	}

	return bw.flush()
}

// ReadBinary deserializes a DB from the binary chipdb encoding.
func ReadBinary(r io.Reader) (*DB, error) {
	br := newBinReader(r)
	d := New()

	d.Device = br.str()
	d.Width = br.int_()
	d.Height = br.int_()
	d.NNets = br.int_()
	d.NGlobalNets = br.int_()

	nTiles := br.uint_()
	d.Tiles = make([]TileType, nTiles)
	for i := range d.Tiles {
		d.Tiles[i] = TileType(br.int_())
	}

	nPkgs := br.uint_()
	for i := 0; i < nPkgs; i++ {
		name := br.str()
		pkg := &Package{Name: name, PinLoc: make(map[string]Location), LocPin: make(map[Location]string)}
		nPins := br.uint_()
		for j := 0; j < nPins; j++ {
			pin := br.str()
			loc := Location{Tile: br.int_(), Pos: br.int_()}
			pkg.PinLoc[pin] = loc
			pkg.LocPin[loc] = pin
		}
		d.Packages[name] = pkg
	}

	nGBufIn := br.uint_()
	for i := 0; i < nGBufIn; i++ {
		x, y, g := br.int_(), br.int_(), br.int_()
		d.GBufIn[[2]int{x, y}] = g
	}

	nColBuf := br.uint_()
	for i := 0; i < nColBuf; i++ {
		dst, src := br.int_(), br.int_()
		d.TileColBufTile[dst] = src
	}

	nTileNets := br.uint_()
	d.TileNets = make([]map[string]int, nTileNets)
	for i := 0; i < nTileNets; i++ {
		n := br.uint_()
		m := make(map[string]int, n)
		for j := 0; j < n; j++ {
			name := br.str()
			m[name] = br.int_()
		}
		d.TileNets[i] = m
	}

	nNonrouting := br.uint_()
	for i := 0; i < nNonrouting; i++ {
		ty := TileType(br.int_())
		nFns := br.uint_()
		fns := make(map[string][]CBit, nFns)
		for j := 0; j < nFns; j++ {
			fn := br.str()
			nCBits := br.uint_()
			cbits := make([]CBit, nCBits)
			for k := 0; k < nCBits; k++ {
				cbits[k] = CBit{Row: br.int_(), Col: br.int_()}
			}
			fns[fn] = cbits
		}
		d.NonroutingCBits[ty] = fns
	}

	nSwitches := br.uint_()
	d.Switches = make([]Switch, nSwitches)
	d.OutSwitches = make([][]int, d.NNets)
	d.InSwitches = make([][]int, d.NNets)
	for i := 0; i < nSwitches; i++ {
		bidir := br.bool_()
		tile := br.int_()
		out := br.int_()
		nCBits := br.uint_()
		cbits := make([]CBit, nCBits)
		for j := 0; j < nCBits; j++ {
			cbits[j] = CBit{Tile: br.int_(), Row: br.int_(), Col: br.int_()}
		}
		nInVal := br.uint_()
		inVal := make(map[int][]bool, nInVal)
		for j := 0; j < nInVal; j++ {
			in := br.int_()
			nBits := br.uint_()
			bits := make([]bool, nBits)
			for k := 0; k < nBits; k++ {
				bits[k] = br.bool_()
			}
			inVal[in] = bits
		}
		sw := Switch{ID: i, Bidir: bidir, Tile: tile, Out: out, InVal: inVal, CBits: cbits}
		d.Switches[i] = sw
		d.OutSwitches[out] = append(d.OutSwitches[out], i)
		for in := range inVal {
			d.InSwitches[in] = append(d.InSwitches[in], i)
		}
	}

	if br.err != nil {
		return nil, fmt.Errorf("chipdb: binary decode: %w", br.err)
	}
	return d, nil
}
