package rdata

// Read R data files (.rda, .RData) with go.
//
// An RData file is the output of R's save(): an optionally compressed
// stream holding a magic line, a serialization header, and a pairlist
// that maps each saved name to its object.
//
// See "R Internals", section 1.8, and src/main/serialize.c and
// src/main/saveload.c in the R sources.

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// RDataFile holds every named object of an R data file, in the order
// they were saved.  Data frames can be retrieved as Tables; all other
// objects are carried along untouched so that the file can be written
// back without loss.
type RDataFile struct {

	// If true, factors are returned as string columns holding
	// their labels.  Otherwise the integer codes are returned and
	// the levels are kept with the Series.
	ConvertFactors bool

	// If true, Date and POSIXct columns are returned as time.Time
	// values.  Otherwise the raw day or second counts are returned.
	ConvertDates bool

	// The serialization format version, 2 or 3.
	Version int

	// The version of R that wrote the file, packed as in R_Version.
	WriterVersion int

	// The native encoding recorded in version 3 headers.
	NativeEncoding string

	// The compression the file was read with.
	Compression Compression

	objects []rdataObject
}

type rdataObject struct {
	name string
	obj  *robj

	// Set when the object was replaced through SetTable.
	table *Table
}

// ReadRDataFile reads the R data file at the given path.
func ReadRDataFile(path string) (*RDataFile, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadRData(f)
}

// ReadRData reads an R data file from r.  The whole file is decoded
// before returning.
func ReadRData(r io.Reader) (*RDataFile, error) {

	dr, comp, err := decompress(r)
	if err != nil {
		return nil, err
	}

	rf := &RDataFile{Compression: comp}
	sr := &sexpReader{r: dr}

	if err := rf.readHeader(sr); err != nil {
		return nil, err
	}

	top, err := sr.readItem()
	if err != nil {
		return nil, err
	}
	if top == nil {
		return rf, nil
	}
	if top.typ != listSxp {
		return nil, fmt.Errorf("rdata file does not hold a pairlist of objects (type %d)", top.typ)
	}
	for _, p := range top.pairs {
		rf.objects = append(rf.objects, rdataObject{name: p.tag, obj: p.value})
	}

	return rf, nil
}

func (rf *RDataFile) readHeader(sr *sexpReader) error {

	magic, err := sr.readBytes(5)
	if err != nil {
		return err
	}
	switch string(magic) {
	case "RDX2\n", "RDX3\n":
		sr.ByteOrder = binary.BigEndian
	case "RDB2\n", "RDB3\n":
		sr.ByteOrder = binary.LittleEndian
	case "RDA2\n", "RDA3\n":
		return fmt.Errorf("ascii rdata files are not supported: %w", ErrUnsupportedFormat)
	default:
		return fmt.Errorf("not an rdata file (magic %q): %w", magic, ErrUnsupportedFormat)
	}

	// The serialization stream repeats the format as "X\n" or "B\n".
	format, err := sr.readBytes(2)
	if err != nil {
		return err
	}
	if format[1] != '\n' || (format[0] != 'X' && format[0] != 'B') {
		return fmt.Errorf("unknown serialization format %q: %w", format, ErrUnsupportedFormat)
	}

	version, err := sr.readInt()
	if err != nil {
		return err
	}
	if version != 2 && version != 3 {
		return fmt.Errorf("unsupported serialization version %d: %w", version, ErrUnsupportedFormat)
	}
	rf.Version = int(version)

	wv, err := sr.readInt()
	if err != nil {
		return err
	}
	rf.WriterVersion = int(wv)

	// Minimal reader version, not needed.
	if _, err := sr.readInt(); err != nil {
		return err
	}

	if version == 3 {
		n, err := sr.readInt()
		if err != nil {
			return err
		}
		if n < 0 || n > maxEncodingLen {
			return fmt.Errorf("native encoding name of length %d", n)
		}
		enc, err := sr.readBytes(int(n))
		if err != nil {
			return err
		}
		rf.NativeEncoding = string(enc)
		sr.native = nativeEncoding(rf.NativeEncoding)
	}

	return nil
}

func (sr *sexpReader) readItem() (*robj, error) {
	flags, err := sr.readInt()
	if err != nil {
		return nil, err
	}
	return sr.readItemFlags(flags)
}

func (sr *sexpReader) addRef(o *robj) {
	sr.refs = append(sr.refs, o)
}

func (sr *sexpReader) readItemFlags(flags int32) (*robj, error) {

	t, levels, isObj, hasAttr, hasTag := unpackFlags(flags)

	var o *robj
	var err error

	switch t {
	default:
		return nil, fmt.Errorf("unknown item type %d: %w", t, ErrUnsupportedFormat)

	case nilValueSxp:
		return nil, nil

	case emptyEnvSxp, baseEnvSxp, globalEnvSxp, unboundValueSxp, missingArgSxp, baseNamespaceSxp:
		return &robj{typ: t}, nil

	case refSxp:
		i := int(flags >> 8)
		if i == 0 {
			j, err := sr.readInt()
			if err != nil {
				return nil, err
			}
			i = int(j)
		}
		if i < 1 || i > len(sr.refs) {
			return nil, fmt.Errorf("reference %d out of range", i)
		}
		return sr.refs[i-1], nil

	case persistSxp, packageSxp, namespaceSxp:
		o = &robj{typ: t}
		if o.strs, err = sr.readStringVec(); err != nil {
			return nil, err
		}
		sr.addRef(o)
		return o, nil

	case symSxp:
		pn, err := sr.readItem()
		if err != nil {
			return nil, err
		}
		if pn == nil || pn.typ != charSxp {
			return nil, fmt.Errorf("symbol without a print name")
		}
		o = &robj{typ: symSxp, sym: pn.strs[0].s}
		sr.addRef(o)
		return o, nil

	case envSxp:
		locked, err := sr.readInt()
		if err != nil {
			return nil, err
		}
		o = &robj{typ: envSxp, ints: []int32{locked}}
		sr.addRef(o)
		// enclosure, frame, hash table, attributes
		for k := 0; k < 4; k++ {
			x, err := sr.readItem()
			if err != nil {
				return nil, err
			}
			o.opaque = append(o.opaque, x)
		}
		return o, nil

	case listSxp, langSxp, closSxp, promSxp, dotSxp:
		return sr.readPairlist(t, isObj, hasAttr, hasTag)

	case attrListSxp:
		return sr.readPairlist(listSxp, isObj, true, hasTag)

	case attrLangSxp:
		return sr.readPairlist(langSxp, isObj, true, hasTag)

	case extptrSxp:
		o = &robj{typ: t}
		sr.addRef(o)
		// protected value and tag
		for k := 0; k < 2; k++ {
			x, err := sr.readItem()
			if err != nil {
				return nil, err
			}
			o.opaque = append(o.opaque, x)
		}

	case weakrefSxp:
		o = &robj{typ: t}
		sr.addRef(o)

	case specialSxp, builtinSxp:
		n, err := sr.readInt()
		if err != nil {
			return nil, err
		}
		b, err := sr.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		o = &robj{typ: t, sym: string(b)}

	case charSxp:
		if o, err = sr.readChar(levels); err != nil {
			return nil, err
		}

	case lglSxp, intSxp:
		n, err := sr.readLength()
		if err != nil {
			return nil, err
		}
		o = &robj{typ: t, ints: make([]int32, 0, initCap(n))}
		for i := 0; i < n; i++ {
			v, err := sr.readInt()
			if err != nil {
				return nil, err
			}
			o.ints = append(o.ints, v)
		}

	case realSxp:
		n, err := sr.readLength()
		if err != nil {
			return nil, err
		}
		o = &robj{typ: t, reals: make([]float64, 0, initCap(n))}
		for i := 0; i < n; i++ {
			v, err := sr.readDouble()
			if err != nil {
				return nil, err
			}
			o.reals = append(o.reals, v)
		}

	case cplxSxp:
		n, err := sr.readLength()
		if err != nil {
			return nil, err
		}
		o = &robj{typ: t, cplx: make([]complex128, 0, initCap(n))}
		for i := 0; i < n; i++ {
			re, err := sr.readDouble()
			if err != nil {
				return nil, err
			}
			im, err := sr.readDouble()
			if err != nil {
				return nil, err
			}
			o.cplx = append(o.cplx, complex(re, im))
		}

	case strSxp:
		n, err := sr.readLength()
		if err != nil {
			return nil, err
		}
		o = &robj{typ: t, strs: make([]rstring, 0, initCap(n))}
		for i := 0; i < n; i++ {
			c, err := sr.readItem()
			if err != nil {
				return nil, err
			}
			if c == nil || c.typ != charSxp {
				return nil, fmt.Errorf("character vector element is not a CHARSXP")
			}
			o.strs = append(o.strs, c.strs[0])
		}

	case vecSxp, exprSxp:
		n, err := sr.readLength()
		if err != nil {
			return nil, err
		}
		o = &robj{typ: t, items: make([]*robj, 0, initCap(n))}
		for i := 0; i < n; i++ {
			x, err := sr.readItem()
			if err != nil {
				return nil, err
			}
			o.items = append(o.items, x)
		}

	case rawSxp:
		n, err := sr.readLength()
		if err != nil {
			return nil, err
		}
		o = &robj{typ: t}
		if o.raw, err = sr.readBytes(n); err != nil {
			return nil, err
		}

	case s4Sxp:
		o = &robj{typ: t}

	case altrepSxp:
		info, err := sr.readItem()
		if err != nil {
			return nil, err
		}
		state, err := sr.readItem()
		if err != nil {
			return nil, err
		}
		attr, err := sr.readItem()
		if err != nil {
			return nil, err
		}
		if o, err = expandAltrep(info, state); err != nil {
			return nil, err
		}
		o.attr = pairsOf(attr)
		o.isObj = isObj
		return o, nil

	case bcodeSxp:
		return nil, fmt.Errorf("byte code objects are not supported: %w", ErrUnsupportedFormat)
	}

	o.isObj = isObj
	if hasAttr {
		a, err := sr.readItem()
		if err != nil {
			return nil, err
		}
		o.attr = pairsOf(a)
	}

	return o, nil
}

// readPairlist reads a pairlist iteratively; R writes the CDR of
// each cell as the next item.
func (sr *sexpReader) readPairlist(t sexpType, isObj, hasAttr, hasTag bool) (*robj, error) {

	o := &robj{typ: t, isObj: isObj}

	for {
		if hasAttr {
			a, err := sr.readItem()
			if err != nil {
				return nil, err
			}
			if len(o.pairs) == 0 {
				o.attr = pairsOf(a)
			}
		}

		var tag string
		if hasTag {
			tg, err := sr.readItem()
			if err != nil {
				return nil, err
			}
			if tg != nil && tg.typ == symSxp {
				tag = tg.sym
			}
		}

		car, err := sr.readItem()
		if err != nil {
			return nil, err
		}
		o.pairs = append(o.pairs, pairNode{tag: tag, value: car})

		flags, err := sr.readInt()
		if err != nil {
			return nil, err
		}
		var ct sexpType
		ct, _, _, hasAttr, hasTag = unpackFlags(flags)
		if ct == nilValueSxp {
			return o, nil
		}
		if ct != t {
			// An improper list; keep the tail as it is.
			tail, err := sr.readItemFlags(flags)
			if err != nil {
				return nil, err
			}
			o.opaque = append(o.opaque, tail)
			return o, nil
		}
	}
}

// readStringVec reads the string vectors that follow PERSISTSXP,
// PACKAGESXP and NAMESPACESXP.
func (sr *sexpReader) readStringVec() ([]rstring, error) {

	if _, err := sr.readInt(); err != nil {
		return nil, err
	}
	n, err := sr.readLength()
	if err != nil {
		return nil, err
	}

	strs := make([]rstring, 0, initCap(n))
	for i := 0; i < n; i++ {
		c, err := sr.readItem()
		if err != nil {
			return nil, err
		}
		if c == nil || c.typ != charSxp {
			return nil, fmt.Errorf("string vector element is not a CHARSXP")
		}
		strs = append(strs, c.strs[0])
	}
	return strs, nil
}

// readChar reads the body of a CHARSXP.  Latin-1 strings are
// converted to UTF-8; everything else is taken to be UTF-8 already.
func (sr *sexpReader) readChar(levels int) (*robj, error) {

	n, err := sr.readInt()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return &robj{typ: charSxp, strs: []rstring{{na: true}}}, nil
	}
	b, err := sr.readBytes(int(n))
	if err != nil {
		return nil, err
	}

	switch {
	case levels&latin1Mask != 0:
		if b, err = charmap.ISO8859_1.NewDecoder().Bytes(b); err != nil {
			return nil, err
		}
	case levels&(utf8Mask|bytesMask|asciiMask) == 0 && sr.native != nil && !isASCII(b):
		// A string in the native encoding of the writing session.
		if b, err = sr.native.NewDecoder().Bytes(b); err != nil {
			return nil, fmt.Errorf("decode native string: %w", err)
		}
	}

	return &robj{typ: charSxp, charEnc: levels, strs: []rstring{{s: string(b)}}}, nil
}

// Longest native encoding name accepted in a version 3 header.
const maxEncodingLen = 64

// nativeEncoding returns the decoder for strings written in the named
// encoding, or nil when they need no decoding or the name is unknown.
func nativeEncoding(name string) encoding.Encoding {

	e, err := ianaindex.IANA.Encoding(name)
	if err != nil || e == nil || e == unicode.UTF8 {
		return nil
	}
	if canon, err := ianaindex.IANA.Name(e); err == nil && canon == "US-ASCII" {
		return nil
	}

	return e
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

func pairsOf(o *robj) []pairNode {
	if o == nil || o.typ != listSxp {
		return nil
	}
	return o.pairs
}

// expandAltrep materializes the ALTREP classes that base R writes
// into files.
func expandAltrep(info, state *robj) (*robj, error) {

	if info == nil || info.typ != listSxp || len(info.pairs) == 0 || info.pairs[0].value == nil {
		return nil, fmt.Errorf("malformed ALTREP class information")
	}
	class := info.pairs[0].value.sym

	switch class {
	case "compact_intseq", "compact_realseq":
		if state == nil || state.typ != realSxp || len(state.reals) != 3 {
			return nil, fmt.Errorf("malformed %s state", class)
		}
		fn, start, incr := state.reals[0], state.reals[1], state.reals[2]
		if math.IsNaN(fn) || fn < 0 || fn > math.MaxInt32 {
			return nil, fmt.Errorf("%s length %v out of range", class, fn)
		}
		n := int(fn)
		if class == "compact_intseq" {
			o := &robj{typ: intSxp, ints: make([]int32, n)}
			for i := range o.ints {
				o.ints[i] = int32(start + float64(i)*incr)
			}
			return o, nil
		}
		o := &robj{typ: realSxp, reals: make([]float64, n)}
		for i := range o.reals {
			o.reals[i] = start + float64(i)*incr
		}
		return o, nil

	case "wrap_integer", "wrap_real", "wrap_logical", "wrap_string",
		"wrap_complex", "wrap_raw", "wrap_list":
		var x *robj
		switch {
		case state == nil:
		case state.typ == listSxp && len(state.pairs) > 0:
			x = state.pairs[0].value
		case state.typ == vecSxp && len(state.items) > 0:
			x = state.items[0]
		}
		if x == nil {
			return nil, fmt.Errorf("malformed %s state", class)
		}
		c := *x
		return &c, nil

	case "deferred_string":
		if state == nil || state.typ != listSxp || len(state.pairs) == 0 || state.pairs[0].value == nil {
			return nil, fmt.Errorf("malformed deferred_string state")
		}
		arg := state.pairs[0].value
		o := &robj{typ: strSxp}
		switch arg.typ {
		case intSxp:
			o.strs = make([]rstring, len(arg.ints))
			for i, v := range arg.ints {
				if v == naInt {
					o.strs[i] = rstring{na: true}
				} else {
					o.strs[i] = rstring{s: strconv.Itoa(int(v))}
				}
			}
		case realSxp:
			o.strs = make([]rstring, len(arg.reals))
			for i, v := range arg.reals {
				if isNAReal(v) {
					o.strs[i] = rstring{na: true}
				} else {
					o.strs[i] = rstring{s: formatReal(v)}
				}
			}
		default:
			return nil, fmt.Errorf("deferred_string over type %d", arg.typ)
		}
		return o, nil
	}

	return nil, fmt.Errorf("ALTREP class %q: %w", class, ErrUnsupportedFormat)
}

// Names returns the names of all objects in the file.
func (rf *RDataFile) Names() []string {
	var names []string
	for _, o := range rf.objects {
		names = append(names, o.name)
	}
	return names
}

// Tables returns the names of the data frames in the file.
func (rf *RDataFile) Tables() []string {
	var names []string
	for _, o := range rf.objects {
		if o.table != nil || (o.obj != nil && o.obj.typ == vecSxp && o.obj.inherits("data.frame")) {
			names = append(names, o.name)
		}
	}
	return names
}

// Table returns the named data frame as a Table.
func (rf *RDataFile) Table(name string) (*Table, error) {

	for _, o := range rf.objects {
		if o.name != name {
			continue
		}
		if o.table != nil {
			return o.table.Clone(), nil
		}
		return rf.toTable(name, o.obj)
	}

	return nil, fmt.Errorf("%q: %w", name, ErrTableNotFound)
}

// SetTable stores t under t.Name, replacing an object of that name in
// place or appending a new one.
func (rf *RDataFile) SetTable(t *Table) {

	for i := range rf.objects {
		if rf.objects[i].name == t.Name {
			rf.objects[i] = rdataObject{name: t.Name, table: t}
			return
		}
	}
	rf.objects = append(rf.objects, rdataObject{name: t.Name, table: t})
}

func (rf *RDataFile) toTable(name string, df *robj) (*Table, error) {

	if df == nil || df.typ != vecSxp || !df.inherits("data.frame") {
		return nil, fmt.Errorf("%q: %w", name, ErrNotDataFrame)
	}

	t := &Table{Name: name}

	names := stringsOf(df.getAttr("names"))
	if len(names) != len(df.items) {
		return nil, fmt.Errorf("data frame %s has %d columns but %d names", name, len(df.items), len(names))
	}

	nrow := -1
	switch rn := df.getAttr("row.names"); {
	case rn == nil:
	case rn.typ == intSxp && len(rn.ints) == 2 && rn.ints[0] == naInt:
		// Compact form c(NA, -n).
		nrow = int(rn.ints[1])
		if nrow < 0 {
			nrow = -nrow
		}
	case rn.typ == strSxp:
		t.RowNames = stringsOf(rn)
		nrow = len(t.RowNames)
	default:
		nrow = rn.length()
	}

	for _, a := range df.attr {
		if a.tag != "names" && a.tag != "row.names" {
			t.attr = append(t.attr, a)
		}
	}

	for j, v := range df.items {
		s, err := rf.vectorToSeries(names[j], v)
		if err != nil {
			return nil, fmt.Errorf("data frame %s: %w", name, err)
		}
		if nrow < 0 {
			nrow = s.Length()
		}
		if s.Length() != nrow {
			return nil, fmt.Errorf("data frame %s column %s has %d rows, expected %d: %w",
				name, s.Name, s.Length(), nrow, ErrLengthMismatch)
		}
		t.Columns = append(t.Columns, s)
	}

	if nrow < 0 {
		nrow = 0
	}
	t.nrow = nrow

	return t, nil
}

func (rf *RDataFile) vectorToSeries(name string, v *robj) (*Series, error) {

	if v == nil {
		return nil, fmt.Errorf("column %s is NULL: %w", name, ErrUnsupportedFormat)
	}

	var data interface{}
	var miss []bool
	attr := v.attr

	switch v.typ {
	case lglSxp:
		x := make([]bool, len(v.ints))
		miss = make([]bool, len(v.ints))
		for i, b := range v.ints {
			if b == naInt {
				miss[i] = true
			} else {
				x[i] = b != 0
			}
		}
		data = x

	case intSxp:
		miss = make([]bool, len(v.ints))
		for i, k := range v.ints {
			miss[i] = k == naInt
		}
		if levels := stringsOf(v.getAttr("levels")); rf.ConvertFactors && v.inherits("factor") {
			x := make([]string, len(v.ints))
			for i, k := range v.ints {
				if !miss[i] && k >= 1 && int(k) <= len(levels) {
					x[i] = levels[k-1]
				}
			}
			data = x
			attr = nil
		} else {
			x := make([]int32, len(v.ints))
			copy(x, v.ints)
			data = x
		}

	case realSxp:
		miss = make([]bool, len(v.reals))
		for i, x := range v.reals {
			miss[i] = isNAReal(x)
		}
		isDate, isTime := v.inherits("Date"), v.inherits("POSIXct")
		if rf.ConvertDates && (isDate || isTime) {
			x := make([]time.Time, len(v.reals))
			for i, d := range v.reals {
				switch {
				case math.IsNaN(d) || math.IsInf(d, 0):
					miss[i] = true
				case isDate:
					x[i] = rDate(d)
				default:
					x[i] = rDateTime(d)
				}
			}
			data = x
			attr = nil
		} else {
			x := make([]float64, len(v.reals))
			copy(x, v.reals)
			data = x
		}

	case strSxp:
		x := make([]string, len(v.strs))
		miss = make([]bool, len(v.strs))
		for i, s := range v.strs {
			x[i] = s.s
			miss[i] = s.na
		}
		data = x

	default:
		return nil, fmt.Errorf("column %s has R type %d: %w", name, v.typ, ErrUnsupportedFormat)
	}

	s, err := NewSeries(name, data, miss)
	if err != nil {
		return nil, err
	}
	s.attr = attr

	return s, nil
}

// An RDataReader reads one data frame of an R data file in chunks.
// It satisfies StatfileReader.
type RDataReader struct {

	// If true, factors are read as their labels.
	ConvertFactors bool

	// If true, Date and POSIXct columns are read as time.Time.
	ConvertDates bool

	file      *RDataFile
	tableName string
	table     *Table
	loadErr   error
	rowsRead  int
}

// NewRDataReader returns an RDataReader for the first data frame in
// the R data file read from r.
func NewRDataReader(r io.Reader) (*RDataReader, error) {

	rf, err := ReadRData(r)
	if err != nil {
		return nil, err
	}

	tables := rf.Tables()
	if len(tables) == 0 {
		return nil, fmt.Errorf("no data frame in file: %w", ErrTableNotFound)
	}

	rdr := &RDataReader{
		file:           rf,
		tableName:      tables[0],
		ConvertFactors: true,
		ConvertDates:   true,
	}

	return rdr, nil
}

// File returns the underlying R data file.
func (rdr *RDataReader) File() *RDataFile {
	return rdr.file
}

// TableName returns the name of the data frame being read.
func (rdr *RDataReader) TableName() string {
	return rdr.tableName
}

// SelectTable switches to the named data frame and rewinds.
func (rdr *RDataReader) SelectTable(name string) error {

	for _, n := range rdr.file.Tables() {
		if n == name {
			rdr.tableName = name
			rdr.table = nil
			rdr.loadErr = nil
			rdr.rowsRead = 0
			return nil
		}
	}

	return fmt.Errorf("%q: %w", name, ErrTableNotFound)
}

func (rdr *RDataReader) load() error {

	if rdr.table != nil || rdr.loadErr != nil {
		return rdr.loadErr
	}

	rdr.file.ConvertFactors = rdr.ConvertFactors
	rdr.file.ConvertDates = rdr.ConvertDates
	rdr.table, rdr.loadErr = rdr.file.Table(rdr.tableName)

	return rdr.loadErr
}

// RowCount returns the number of rows in the data frame.
func (rdr *RDataReader) RowCount() int {
	if rdr.load() != nil {
		return 0
	}
	return rdr.table.NumRows()
}

// ColumnNames returns the names of the columns in the data frame.
func (rdr *RDataReader) ColumnNames() []string {
	if rdr.load() != nil {
		return nil
	}
	return rdr.table.ColumnNames()
}

// ColumnTypes returns the R types of the columns.
func (rdr *RDataReader) ColumnTypes() []ColumnTypeT {
	if rdr.load() != nil {
		return nil
	}
	return rdr.table.ColumnTypes()
}

// Read returns up to rows rows of data as an array of Series
// objects.  If rows is negative, the remainder of the table is read.
// Once all rows have been returned, Read returns nil, io.EOF.
func (rdr *RDataReader) Read(rows int) ([]*Series, error) {

	if err := rdr.load(); err != nil {
		return nil, err
	}

	n := rdr.table.NumRows()
	if rdr.rowsRead >= n {
		return nil, io.EOF
	}

	last := n
	if rows >= 0 && rdr.rowsRead+rows < n {
		last = rdr.rowsRead + rows
	}

	chunk := make([]*Series, len(rdr.table.Columns))
	for j, c := range rdr.table.Columns {
		chunk[j] = c.Slice(rdr.rowsRead, last)
	}
	rdr.rowsRead = last

	return chunk, nil
}
