package rdata

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// A Series is a fixed-type one-dimensional sequence of data
// values, with an optional mask for missing values.
type Series struct {

	// A name describing what is in this series.
	Name string

	// The length of the series.
	length int

	// The data, one of []float64, []int32, []bool, []string or
	// []time.Time.
	data interface{}

	// Indicators that data values are missing.  If nil, there are
	// no missing values.
	missing []bool

	// R attributes of the column (class, levels, label, ...), kept
	// so that a column survives a read/write cycle unchanged.
	attr []pairNode
}

// ilen returns the length of a slice, held in an interface value.
// If the interface does not hold a slice of a known type, an error
// is returned.
func ilen(data interface{}) (int, error) {

	switch x := data.(type) {
	case []float64:
		return len(x), nil
	case []int32:
		return len(x), nil
	case []bool:
		return len(x), nil
	case []string:
		return len(x), nil
	case []time.Time:
		return len(x), nil
	default:
		return 0, fmt.Errorf("unknown data type %T", data)
	}
}

// NewSeries returns a new Series value with the given name and data
// contents.  The data slice parameter is not copied.
func NewSeries(name string, data interface{}, missing []bool) (*Series, error) {

	length, err := ilen(data)
	if err != nil {
		return nil, err
	}
	if missing != nil && len(missing) != length {
		return nil, fmt.Errorf("series %s: %d values but %d missing indicators", name, length, len(missing))
	}

	ser := Series{
		Name:    name,
		length:  length,
		data:    data,
		missing: missing,
	}

	return &ser, nil
}

func (ser *Series) isMissing(i int) bool {
	return ser.missing != nil && ser.missing[i]
}

// Write writes the entire Series to the given writer.
func (ser *Series) Write(w io.Writer) error {
	return ser.WriteRange(w, 0, ser.length)
}

// WriteRange writes the given subinterval of the Series to the given writer.
func (ser *Series) WriteRange(w io.Writer, first, last int) error {

	if last > ser.length {
		last = ser.length
	}

	if _, err := fmt.Fprintf(w, "Name: %s\n", ser.Name); err != nil {
		return err
	}
	ty := fmt.Sprintf("%T", ser.data)
	if _, err := fmt.Fprintf(w, "Type: %s\n", ty[2:]); err != nil {
		return err
	}

	for j := first; j < last; j++ {
		var err error
		if ser.isMissing(j) {
			_, err = fmt.Fprintf(w, "%d:\n", j)
		} else {
			_, err = fmt.Fprintf(w, "%d:  %s\n", j, ser.format(j))
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// format returns the display form of element j.
func (ser *Series) format(j int) string {
	switch x := ser.data.(type) {
	case []float64:
		return fmt.Sprintf("%f", x[j])
	case []int32:
		return fmt.Sprintf("%d", x[j])
	case []bool:
		return fmt.Sprintf("%v", x[j])
	case []string:
		return x[j]
	case []time.Time:
		return fmt.Sprintf("%v", x[j])
	}
	panic(fmt.Sprintf("unknown type %T in format", ser.data))
}

// Print prints the entire Series to the standard output.
func (ser *Series) Print() {
	ser.Write(os.Stdout)
}

// PrintRange prints a slice of the Series to the standard output.
func (ser *Series) PrintRange(first, last int) {
	ser.WriteRange(os.Stdout, first, last)
}

// Data returns the data component of the Series.
func (ser *Series) Data() interface{} {
	return ser.data
}

// Missing returns the array of missing value indicators.
func (ser *Series) Missing() []bool {
	return ser.missing
}

// Length returns the number of elements in a Series.
func (ser *Series) Length() int {
	return ser.length
}

// Type reports how R would describe the column.
func (ser *Series) Type() ColumnTypeT {
	switch ser.data.(type) {
	case []bool:
		return LogicalType
	case []int32:
		if ser.Levels() != nil {
			return FactorType
		}
		return IntegerType
	case []string:
		return CharacterType
	case []time.Time:
		return DateTimeType
	}
	switch {
	case ser.inherits("Date"):
		return DateType
	case ser.inherits("POSIXct"):
		return DateTimeType
	}
	return NumericType
}

// Levels returns the factor levels of the series, or nil if the
// series is not a factor.
func (ser *Series) Levels() []string {
	for _, a := range ser.attr {
		if a.tag == "levels" {
			return stringsOf(a.value)
		}
	}
	return nil
}

// Label returns the "label" attribute (as set by haven and Hmisc),
// or the empty string.
func (ser *Series) Label() string {
	for _, a := range ser.attr {
		if a.tag == "label" && a.value != nil && a.value.typ == strSxp && len(a.value.strs) > 0 {
			return a.value.strs[0].s
		}
	}
	return ""
}

func (ser *Series) inherits(class string) bool {
	for _, a := range ser.attr {
		if a.tag == "class" {
			for _, c := range stringsOf(a.value) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// CountMissing returns the number of missing values in the Series.
func (ser *Series) CountMissing() int {

	m := 0
	for i := 0; i < ser.length; i++ {
		if ser.isMissing(i) {
			m++
		}
	}

	return m
}

// AllClose returns true, 0 if the Series is within tol of the other
// series.  If the Series have different lengths, AllClose returns
// false, -1.  If the Series have different types, AllClose returns
// false, -2.  If the Series have the same type and the same length
// but are not equal, AllClose returns false, j, where j is the index
// of the first position where the two series differ.
func (ser *Series) AllClose(other *Series, tol float64) (bool, int) {

	if ser.length != other.length {
		return false, -1
	}
	if fmt.Sprintf("%T", ser.data) != fmt.Sprintf("%T", other.data) {
		return false, -2
	}

	for j := 0; j < ser.length; j++ {
		m1, m2 := ser.isMissing(j), other.isMissing(j)
		if m1 != m2 {
			return false, j
		}
		if m1 {
			continue
		}

		var eq bool
		switch u := ser.data.(type) {
		case []float64:
			v := other.data.([]float64)
			eq = u[j] == v[j] || math.Abs(u[j]-v[j]) <= tol || (math.IsNaN(u[j]) && math.IsNaN(v[j]))
		case []int32:
			eq = u[j] == other.data.([]int32)[j]
		case []bool:
			eq = u[j] == other.data.([]bool)[j]
		case []string:
			eq = u[j] == other.data.([]string)[j]
		case []time.Time:
			eq = u[j].Equal(other.data.([]time.Time)[j])
		default:
			panic(fmt.Sprintf("Unknown type %T in Series.AllClose", ser.data))
		}
		if !eq {
			return false, j
		}
	}

	return true, 0
}

// AllEqual is equivalent to AllClose with tol=0.
func (ser *Series) AllEqual(other *Series) (bool, int) {
	return ser.AllClose(other, 0.0)
}

func copyMissing(miss []bool) []bool {
	if miss == nil {
		return nil
	}
	c := make([]bool, len(miss))
	copy(c, miss)
	return c
}

// Slice returns the rows first through last-1 as a new Series that
// shares storage with ser.
func (ser *Series) Slice(first, last int) *Series {

	var data interface{}
	switch x := ser.data.(type) {
	case []float64:
		data = x[first:last]
	case []int32:
		data = x[first:last]
	case []bool:
		data = x[first:last]
	case []string:
		data = x[first:last]
	case []time.Time:
		data = x[first:last]
	}

	var miss []bool
	if ser.missing != nil {
		miss = ser.missing[first:last]
	}

	s, _ := NewSeries(ser.Name, data, miss)
	s.attr = ser.attr
	return s
}

// UpcastNumeric converts integer and logical data to float64 values.
// Other data is not affected.
func (ser *Series) UpcastNumeric() *Series {

	var a []float64
	switch d := ser.data.(type) {
	default:
		return ser
	case []int32:
		a = make([]float64, len(d))
		for i, v := range d {
			a[i] = float64(v)
		}
	case []bool:
		a = make([]float64, len(d))
		for i, v := range d {
			if v {
				a[i] = 1
			}
		}
	}

	s, _ := NewSeries(ser.Name, a, copyMissing(ser.missing))
	return s
}

// StringFunc applies the given function to all values in the series,
// if the series holds string values.  Otherwise calling this method has
// no effect.  Missing values are passed to f as they are stored.
func (ser *Series) StringFunc(f func(string) string) *Series {

	x, ok := ser.data.([]string)
	if !ok {
		return ser
	}

	y := make([]string, len(x))
	for i, v := range x {
		y[i] = f(v)
	}
	s, _ := NewSeries(ser.Name, y, copyMissing(ser.missing))
	return s
}

// ToString returns a Series with string values, derived from the
// given series, the way R's as.character would render them.  Factor
// codes are replaced by their labels, Date and POSIXct values are
// rendered as ISO dates.  Missing values are replaced by naText and
// the result has no missing values, so every row carries text.
func (ser *Series) ToString(naText string) *Series {

	n := ser.length
	x := make([]string, n)

	switch y := ser.data.(type) {
	case []string:
		copy(x, y)
	case []bool:
		for i, v := range y {
			if v {
				x[i] = "TRUE"
			} else {
				x[i] = "FALSE"
			}
		}
	case []int32:
		levels := ser.Levels()
		for i, v := range y {
			if levels != nil && v >= 1 && int(v) <= len(levels) {
				x[i] = levels[v-1]
			} else {
				x[i] = strconv.Itoa(int(v))
			}
		}
	case []float64:
		isDate, isTime := ser.inherits("Date"), ser.inherits("POSIXct")
		for i, v := range y {
			switch {
			case isDate && !math.IsNaN(v) && !math.IsInf(v, 0):
				x[i] = rDate(v).Format("2006-01-02")
			case isTime && !math.IsNaN(v) && !math.IsInf(v, 0):
				x[i] = rDateTime(v).Format("2006-01-02 15:04:05")
			default:
				x[i] = formatReal(v)
			}
		}
	case []time.Time:
		for i, v := range y {
			x[i] = v.UTC().Format("2006-01-02 15:04:05")
		}
	default:
		panic(fmt.Sprintf("unknown data type %T in ToString", ser.data))
	}

	for i := 0; i < n; i++ {
		if ser.isMissing(i) {
			x[i] = naText
		}
	}

	s, _ := NewSeries(ser.Name, x, nil)
	return s
}

// formatReal renders a double with up to 15 significant digits, the
// way R's as.character does: the digits are written in scientific
// notation ("1e+05", "1.5e-10") when that is narrower than fixed
// notation, and in fixed notation otherwise.
func formatReal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == 0:
		return "0"
	}

	// d.dddddddddddddde±XX, rounded to 15 significant digits.
	e := strconv.FormatFloat(v, 'e', 14, 64)
	mant, exp := e[:strings.IndexByte(e, 'e')], e[strings.IndexByte(e, 'e')+1:]
	mant = strings.TrimRight(strings.TrimRight(mant, "0"), ".")
	kpow, _ := strconv.Atoi(exp)

	digits := strings.TrimPrefix(strings.Replace(mant, ".", "", 1), "-")
	nsig := len(digits)

	// Width of the fixed form, ignoring the sign.
	rgt := nsig - kpow - 1
	if rgt < 0 {
		rgt = 0
	}
	fixed := 1
	if kpow > 0 {
		fixed = kpow + 1
	}
	if rgt > 0 {
		fixed += rgt + 1
	}

	// Width of the scientific form.
	expDigits := 2
	if kpow <= -100 || kpow >= 100 {
		expDigits = 3
	}
	sci := nsig + 2 + expDigits
	if nsig > 1 {
		sci++
	}

	if fixed <= sci {
		return strconv.FormatFloat(v, 'f', rgt, 64)
	}

	sign := "+"
	if kpow < 0 {
		sign = "-"
		kpow = -kpow
	}
	return fmt.Sprintf("%se%s%0*d", mant, sign, expDigits, kpow)
}

var rEpoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// rDate converts a count of days since 1970-01-01.
func rDate(days float64) time.Time {
	return rEpoch.AddDate(0, 0, int(math.Floor(days)))
}

// rDateTime converts a count of seconds since the epoch.
func rDateTime(secs float64) time.Time {
	whole := math.Floor(secs)
	return time.Unix(int64(whole), int64((secs-whole)*1e9)).UTC()
}

// AsFloat64Slice returns the data of the series as a float64 slice,
// and a boolean slice for the missing value indicators.
func (ser *Series) AsFloat64Slice() ([]float64, []bool, error) {

	v, ok := ser.data.([]float64)
	if !ok {
		return nil, nil, fmt.Errorf("can't convert %T to []float64", ser.data)
	}

	return v, ser.missing, nil
}

// AsStringSlice returns the series data as slices for the values,
// and the missing data indicators.
func (ser *Series) AsStringSlice() ([]string, []bool, error) {

	v, ok := ser.data.([]string)
	if !ok {
		return nil, nil, fmt.Errorf("can't convert %T to []string", ser.data)
	}

	return v, ser.missing, nil
}

// SeriesArray is an array of pointers to Series objects.  It can represent
// a dataset consisting of several variables.
type SeriesArray []*Series

// AllClose returns (true, 0, 0) if all numeric values in
// corresponding columns of the two arrays of Series objects are
// within the given tolerance.  If any corresponding columns are not
// identically equal, returns (false, j, i), where j is the index of a
// column and i is the index of a row where the two Series are not
// identical.  If the two SeriesArray objects have different numbers
// of columns, returns (false, -1, -1).  If column j of the two
// SeriesArray objects have different lengths, returns (false, j, -1).
// If column j of the two SeriesArray objects have different types,
// returns (false, j, -2)
func (ser SeriesArray) AllClose(other []*Series, tol float64) (bool, int, int) {

	if len(ser) != len(other) {
		return false, -1, -1
	}

	for j := 0; j < len(ser); j++ {
		f, i := ser[j].AllClose(other[j], tol)
		if !f {
			return false, j, i
		}
	}

	return true, 0, 0
}

// AllEqual is equivalent to AllClose with tol = 0.
func (ser SeriesArray) AllEqual(other []*Series) (bool, int, int) {
	return ser.AllClose(other, 0.0)
}
