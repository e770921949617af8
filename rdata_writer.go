package rdata

import (
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"
)

// Version of R recorded in written files (4.3.2), and the oldest R
// able to read each serialization version.
const (
	writerRVersion   = 4<<16 | 3<<8 | 2
	minReaderV2      = 2<<16 | 3<<8
	minReaderV3      = 3<<16 | 5<<8
	nativeEncodingV3 = "UTF-8"
)

// An RDataWriter writes R data files in XDR format, the format used
// by R's save().
type RDataWriter struct {

	// Compression of the output.  CompressAuto uses the compression
	// the file was read with, falling back to gzip.
	Compression Compression

	// Serialization version, 2 or 3.  Zero uses the version the file
	// was read with, falling back to 3.
	Version int

	w io.Writer
}

// NewRDataWriter returns an RDataWriter that writes to w.
func NewRDataWriter(w io.Writer) *RDataWriter {
	return &RDataWriter{w: w, Compression: CompressAuto}
}

// WriteRDataFile writes rf to the named file, creating or truncating
// it.
func WriteRDataFile(path string, rf *RDataFile, c Compression) error {

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	wr := NewRDataWriter(f)
	wr.Compression = c
	if err := wr.Write(rf); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (wr *RDataWriter) resolve(rf *RDataFile) (Compression, int, error) {

	c := wr.Compression
	if c == CompressAuto || c == "" {
		c = rf.Compression
		if c == "" || c == CompressAuto || c == CompressBzip2 {
			c = CompressGzip
		}
	}

	v := wr.Version
	if v == 0 {
		v = rf.Version
	}
	if v == 0 {
		v = 3
	}
	if v != 2 && v != 3 {
		return "", 0, fmt.Errorf("unsupported serialization version %d", v)
	}

	return c, v, nil
}

// Write serializes every object of rf.
func (wr *RDataWriter) Write(rf *RDataFile) error {

	c, version, err := wr.resolve(rf)
	if err != nil {
		return err
	}

	// Encode everything before touching the output so that an
	// unsupported column leaves nothing behind.
	objs := make([]*robj, len(rf.objects))
	for i, o := range rf.objects {
		if o.table == nil {
			objs[i] = o.obj
			continue
		}
		if objs[i], err = tableToRobj(o.table); err != nil {
			return err
		}
	}

	cw, err := compressor(wr.w, c)
	if err != nil {
		return err
	}

	sw := newSexpWriter(cw)
	sw.write([]byte(fmt.Sprintf("RDX%d\nX\n", version)))
	sw.writeInt(int32(version))
	sw.writeInt(writerRVersion)
	if version == 3 {
		sw.writeInt(minReaderV3)
		sw.writeInt(int32(len(nativeEncodingV3)))
		sw.write([]byte(nativeEncodingV3))
	} else {
		sw.writeInt(minReaderV2)
	}

	for i, o := range rf.objects {
		sw.writeInt(packFlags(listSxp, 0, false, false, true))
		sw.writeSymbol(o.name)
		sw.writeItem(objs[i])
	}
	sw.writeInt(int32(nilValueSxp))

	if err := sw.flush(); err != nil {
		return err
	}

	return cw.Close()
}

func (sw *sexpWriter) writeSymbol(name string) {
	i, isNew := sw.addRef("sym:" + name)
	if !isNew {
		sw.writeRef(i)
		return
	}
	sw.writeInt(int32(symSxp))
	sw.writeChar(rstring{s: name})
}

func (sw *sexpWriter) writeChar(s rstring) {

	if s.na {
		sw.writeInt(int32(charSxp))
		sw.writeInt(-1)
		return
	}

	levels := asciiMask
	for i := 0; i < len(s.s); i++ {
		if s.s[i] >= 0x80 {
			levels = utf8Mask
			break
		}
	}
	if levels == utf8Mask && !utf8.ValidString(s.s) {
		// Not text in any encoding we know of, keep the bytes as they are.
		levels = bytesMask
	}

	sw.writeInt(packFlags(charSxp, levels, false, false, false))
	sw.writeInt(int32(len(s.s)))
	sw.write([]byte(s.s))
}

func (sw *sexpWriter) writeAttr(attr []pairNode) {
	sw.writePairs(listSxp, attr, nil, nil)
}

// writePairs writes a pairlist.  attr, if not empty, is attached to
// the first cell.
func (sw *sexpWriter) writePairs(t sexpType, pairs []pairNode, attr []pairNode, tail *robj) {

	for i, p := range pairs {
		hasAttr := i == 0 && len(attr) > 0
		sw.writeInt(packFlags(t, 0, false, hasAttr, p.tag != ""))
		if hasAttr {
			sw.writeAttr(attr)
		}
		if p.tag != "" {
			sw.writeSymbol(p.tag)
		}
		sw.writeItem(p.value)
	}

	if tail != nil {
		sw.writeItem(tail)
		return
	}
	sw.writeInt(int32(nilValueSxp))
}

func (sw *sexpWriter) writeItem(o *robj) {

	if o == nil {
		sw.writeInt(int32(nilValueSxp))
		return
	}

	hasAttr := len(o.attr) > 0

	switch o.typ {
	case emptyEnvSxp, baseEnvSxp, globalEnvSxp, unboundValueSxp, missingArgSxp, baseNamespaceSxp:
		sw.writeInt(int32(o.typ))
		return

	case symSxp:
		sw.writeSymbol(o.sym)
		return

	case persistSxp, packageSxp, namespaceSxp:
		if i, isNew := sw.addRef(o); !isNew {
			sw.writeRef(i)
			return
		}
		sw.writeInt(int32(o.typ))
		sw.writeInt(0)
		sw.writeLength(len(o.strs))
		for _, s := range o.strs {
			sw.writeChar(s)
		}
		return

	case envSxp:
		if i, isNew := sw.addRef(o); !isNew {
			sw.writeRef(i)
			return
		}
		sw.writeInt(int32(envSxp))
		var locked int32
		if len(o.ints) > 0 {
			locked = o.ints[0]
		}
		sw.writeInt(locked)
		for k := 0; k < 4; k++ {
			var x *robj
			if k < len(o.opaque) {
				x = o.opaque[k]
			}
			sw.writeItem(x)
		}
		return

	case listSxp, langSxp, closSxp, promSxp, dotSxp:
		if len(o.pairs) == 0 {
			sw.writeInt(int32(nilValueSxp))
			return
		}
		var tail *robj
		if len(o.opaque) > 0 {
			tail = o.opaque[0]
		}
		sw.writePairs(o.typ, o.pairs, o.attr, tail)
		return

	case extptrSxp:
		if i, isNew := sw.addRef(o); !isNew {
			sw.writeRef(i)
			return
		}
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		for k := 0; k < 2; k++ {
			var x *robj
			if k < len(o.opaque) {
				x = o.opaque[k]
			}
			sw.writeItem(x)
		}

	case weakrefSxp:
		if i, isNew := sw.addRef(o); !isNew {
			sw.writeRef(i)
			return
		}
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))

	case specialSxp, builtinSxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		sw.writeInt(int32(len(o.sym)))
		sw.write([]byte(o.sym))

	case lglSxp, intSxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		sw.writeLength(len(o.ints))
		for _, v := range o.ints {
			sw.writeInt(v)
		}

	case realSxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		sw.writeLength(len(o.reals))
		for _, v := range o.reals {
			sw.writeDouble(v)
		}

	case cplxSxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		sw.writeLength(len(o.cplx))
		for _, v := range o.cplx {
			sw.writeDouble(real(v))
			sw.writeDouble(imag(v))
		}

	case strSxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		sw.writeLength(len(o.strs))
		for _, s := range o.strs {
			sw.writeChar(s)
		}

	case vecSxp, exprSxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		sw.writeLength(len(o.items))
		for _, x := range o.items {
			sw.writeItem(x)
		}

	case rawSxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))
		sw.writeLength(len(o.raw))
		sw.write(o.raw)

	case s4Sxp:
		sw.writeInt(packFlags(o.typ, 0, o.isObj, hasAttr, false))

	default:
		if sw.err == nil {
			sw.err = fmt.Errorf("cannot write R type %d: %w", o.typ, ErrUnsupportedFormat)
		}
		return
	}

	if hasAttr {
		sw.writeAttr(o.attr)
	}
}

// tableToRobj builds the data frame for t.
func tableToRobj(t *Table) (*robj, error) {

	df := &robj{typ: vecSxp, isObj: true}
	for _, c := range t.Columns {
		v, err := seriesToVector(c)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		df.items = append(df.items, v)
	}

	df.attr = append(df.attr, pairNode{tag: "names", value: newStrVec(t.ColumnNames()...)})

	hasClass := false
	for _, a := range t.attr {
		if a.tag == "names" || a.tag == "row.names" {
			continue
		}
		if a.tag == "class" {
			hasClass = true
		}
		df.attr = append(df.attr, a)
	}
	if !hasClass {
		df.attr = append(df.attr, pairNode{tag: "class", value: newStrVec("data.frame")})
	}

	var rn *robj
	switch {
	case t.RowNames != nil:
		rn = newStrVec(t.RowNames...)
	case t.NumRows() > 0:
		rn = &robj{typ: intSxp, ints: []int32{naInt, -int32(t.NumRows())}}
	default:
		rn = &robj{typ: intSxp, ints: []int32{}}
	}
	df.attr = append(df.attr, pairNode{tag: "row.names", value: rn})

	return df, nil
}

func seriesToVector(s *Series) (*robj, error) {

	v := &robj{attr: s.attr}

	switch x := s.data.(type) {
	case []float64:
		v.typ = realSxp
		v.reals = make([]float64, len(x))
		for i, d := range x {
			if s.isMissing(i) {
				v.reals[i] = naReal()
			} else {
				v.reals[i] = d
			}
		}

	case []int32:
		v.typ = intSxp
		v.ints = make([]int32, len(x))
		for i, k := range x {
			if s.isMissing(i) {
				v.ints[i] = naInt
			} else {
				v.ints[i] = k
			}
		}

	case []bool:
		v.typ = lglSxp
		v.ints = make([]int32, len(x))
		for i, b := range x {
			switch {
			case s.isMissing(i):
				v.ints[i] = naInt
			case b:
				v.ints[i] = 1
			}
		}

	case []string:
		v.typ = strSxp
		v.strs = make([]rstring, len(x))
		for i, str := range x {
			v.strs[i] = rstring{s: str, na: s.isMissing(i)}
		}

	case []time.Time:
		v.typ = realSxp
		v.reals = make([]float64, len(x))
		for i, tm := range x {
			if s.isMissing(i) {
				v.reals[i] = naReal()
			} else {
				v.reals[i] = float64(tm.UnixNano()) / 1e9
			}
		}
		if v.attr == nil {
			v.attr = []pairNode{
				{tag: "class", value: newStrVec("POSIXct", "POSIXt")},
				{tag: "tzone", value: newStrVec("UTC")},
			}
		}

	default:
		return nil, fmt.Errorf("column %s: cannot store %T: %w", s.Name, s.data, ErrUnsupportedFormat)
	}

	for _, a := range v.attr {
		if a.tag == "class" {
			v.isObj = true
		}
	}

	return v, nil
}
