package rdata

// In-memory form of R's serialized objects (SEXPs).
//
// See "R Internals", section 1.8 (Serialization Formats), and
// src/main/serialize.c in the R sources.

import (
	"math"
)

type sexpType uint8

const (
	nilSxp     sexpType = 0
	symSxp     sexpType = 1
	listSxp    sexpType = 2
	closSxp    sexpType = 3
	envSxp     sexpType = 4
	promSxp    sexpType = 5
	langSxp    sexpType = 6
	specialSxp sexpType = 7
	builtinSxp sexpType = 8
	charSxp    sexpType = 9
	lglSxp     sexpType = 10
	intSxp     sexpType = 13
	realSxp    sexpType = 14
	cplxSxp    sexpType = 15
	strSxp     sexpType = 16
	dotSxp     sexpType = 17
	vecSxp     sexpType = 19
	exprSxp    sexpType = 20
	bcodeSxp   sexpType = 21
	extptrSxp  sexpType = 22
	weakrefSxp sexpType = 23
	rawSxp     sexpType = 24
	s4Sxp      sexpType = 25

	// Pseudo types that only occur in serialized streams.
	altrepSxp        sexpType = 238
	attrListSxp      sexpType = 239
	attrLangSxp      sexpType = 240
	baseEnvSxp       sexpType = 241
	emptyEnvSxp      sexpType = 242
	bcRepRefSxp      sexpType = 243
	bcRepDefSxp      sexpType = 244
	genericRefSxp    sexpType = 245
	classRefSxp      sexpType = 246
	persistSxp       sexpType = 247
	packageSxp       sexpType = 248
	namespaceSxp     sexpType = 249
	baseNamespaceSxp sexpType = 250
	missingArgSxp    sexpType = 251
	unboundValueSxp  sexpType = 252
	globalEnvSxp     sexpType = 253
	nilValueSxp      sexpType = 254
	refSxp           sexpType = 255
)

// Bits of the item flags word.
const (
	isObjectBit = 1 << 8
	hasAttrBit  = 1 << 9
	hasTagBit   = 1 << 10
)

// Encoding bits carried in the levels of a CHARSXP.
const (
	bytesMask  = 1 << 1
	latin1Mask = 1 << 2
	utf8Mask   = 1 << 3
	asciiMask  = 1 << 6
)

// naInt is NA_integer_ and NA (logical).
const naInt = math.MinInt32

// naRealBits is the bit pattern R uses for NA_real_, a NaN whose low
// word is 1954.
const naRealBits uint64 = 0x7FF00000000007A2

func naReal() float64 {
	return math.Float64frombits(naRealBits)
}

// isNAReal distinguishes NA_real_ from other NaN values.
func isNAReal(x float64) bool {
	return math.IsNaN(x) && uint32(math.Float64bits(x)) == 1954
}

func packFlags(t sexpType, levels int, isObj, hasAttr, hasTag bool) int32 {
	flags := int32(t) | int32(levels)<<12
	if isObj {
		flags |= isObjectBit
	}
	if hasAttr {
		flags |= hasAttrBit
	}
	if hasTag {
		flags |= hasTagBit
	}
	return flags
}

func unpackFlags(flags int32) (t sexpType, levels int, isObj, hasAttr, hasTag bool) {
	t = sexpType(flags & 0xFF)
	levels = int(flags >> 12)
	isObj = flags&isObjectBit != 0
	hasAttr = flags&hasAttrBit != 0
	hasTag = flags&hasTagBit != 0
	return
}

// rstring is one element of a character vector.
type rstring struct {
	s  string
	na bool
}

// pairNode is one cell of a pairlist.
type pairNode struct {
	tag   string
	value *robj
}

// robj is a decoded R object.  Only the fields relevant to the type
// are set.
type robj struct {
	typ   sexpType
	isObj bool

	// Attributes in order, as a pairlist.
	attr []pairNode

	ints    []int32
	reals   []float64
	cplx    []complex128
	strs    []rstring
	raw     []byte
	items   []*robj
	pairs   []pairNode
	sym     string
	charEnc int

	// Opaque payload for environments, closures and the like that
	// are carried through unchanged but never interpreted.
	opaque []*robj
}

func (o *robj) length() int {
	switch o.typ {
	case lglSxp, intSxp:
		return len(o.ints)
	case realSxp:
		return len(o.reals)
	case cplxSxp:
		return len(o.cplx)
	case strSxp:
		return len(o.strs)
	case vecSxp, exprSxp:
		return len(o.items)
	case rawSxp:
		return len(o.raw)
	case listSxp:
		return len(o.pairs)
	}
	return 0
}

// getAttr returns the named attribute, or nil.
func (o *robj) getAttr(name string) *robj {
	if o == nil {
		return nil
	}
	for _, a := range o.attr {
		if a.tag == name {
			return a.value
		}
	}
	return nil
}

// class returns the class attribute as a string slice.
func (o *robj) class() []string {
	c := o.getAttr("class")
	if c == nil || c.typ != strSxp {
		return nil
	}
	var cls []string
	for _, s := range c.strs {
		cls = append(cls, s.s)
	}
	return cls
}

func (o *robj) inherits(name string) bool {
	for _, c := range o.class() {
		if c == name {
			return true
		}
	}
	return false
}

func newStrVec(vals ...string) *robj {
	v := &robj{typ: strSxp, strs: make([]rstring, len(vals))}
	for i, s := range vals {
		v.strs[i] = rstring{s: s}
	}
	return v
}

// stringsOf returns the values of a character vector, NA as "".
func stringsOf(o *robj) []string {
	if o == nil || o.typ != strSxp {
		return nil
	}
	x := make([]string, len(o.strs))
	for i, s := range o.strs {
		x[i] = s.s
	}
	return x
}
