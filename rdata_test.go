package rdata

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

var _ StatfileReader = (*RDataReader)(nil)

// stream assembles serialized R objects by hand.
type stream struct {
	bytes.Buffer
	order binary.ByteOrder
}

func newStream(magic string, order binary.ByteOrder) *stream {
	s := &stream{order: order}
	s.WriteString(magic)
	s.int(2)
	s.int(writerRVersion)
	s.int(minReaderV2)
	return s
}

// newStreamV3 starts a version 3 stream written in the native
// encoding enc.
func newStreamV3(magic string, order binary.ByteOrder, enc string) *stream {
	s := &stream{order: order}
	s.WriteString(magic)
	s.int(3)
	s.int(writerRVersion)
	s.int(minReaderV3)
	s.int(int32(len(enc)))
	s.WriteString(enc)
	return s
}

func (s *stream) int(v int32) {
	var b [4]byte
	s.order.PutUint32(b[:], uint32(v))
	s.Write(b[:])
}

func (s *stream) double(x float64) {
	var b [8]byte
	s.order.PutUint64(b[:], math.Float64bits(x))
	s.Write(b[:])
}

func (s *stream) char(str string, levels int) {
	s.int(packFlags(charSxp, levels, false, false, false))
	s.int(int32(len(str)))
	s.WriteString(str)
}

func (s *stream) sym(name string) {
	s.int(int32(symSxp))
	s.char(name, asciiMask)
}

func (s *stream) ref(i int) {
	s.int(int32(i<<8) | int32(refSxp))
}

func (s *stream) strs(vals ...string) {
	s.int(int32(strSxp))
	s.int(int32(len(vals)))
	for _, v := range vals {
		s.char(v, utf8Mask)
	}
}

// handMade holds a data frame whose first column is an ALTREP
// compact sequence and whose second column mixes Latin-1, UTF-8 and
// NA strings, followed by a factor that reuses the "class" symbol
// through a back reference.
func handMade(s *stream) {

	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("df") // ref 1
	s.int(packFlags(vecSxp, 0, true, true, false))
	s.int(2)

	// 1:3
	s.int(int32(altrepSxp))
	s.int(int32(listSxp))
	s.sym("compact_intseq") // ref 2
	s.int(int32(listSxp))
	s.sym("base") // ref 3
	s.int(int32(listSxp))
	s.int(int32(intSxp))
	s.int(1)
	s.int(int32(intSxp))
	s.int(int32(nilValueSxp))
	s.int(int32(realSxp))
	s.int(3)
	s.double(3)
	s.double(1)
	s.double(1)
	s.int(int32(nilValueSxp))

	s.int(int32(strSxp))
	s.int(3)
	s.char("caf\xe9", latin1Mask)
	s.char("地龙", utf8Mask)
	s.int(int32(charSxp))
	s.int(-1)

	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("names") // ref 4
	s.strs("id", "name")
	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("class") // ref 5
	s.strs("data.frame")
	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("row.names") // ref 6
	s.int(int32(intSxp))
	s.int(2)
	s.int(naInt)
	s.int(-3)
	s.int(int32(nilValueSxp))

	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("f") // ref 7
	s.int(packFlags(intSxp, 0, true, true, false))
	s.int(3)
	s.int(1)
	s.int(2)
	s.int(naInt)
	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("levels") // ref 8
	s.strs("a", "b")
	s.int(packFlags(listSxp, 0, false, false, true))
	s.ref(5)
	s.strs("factor")
	s.int(int32(nilValueSxp))

	s.int(int32(nilValueSxp))
}

func checkHandMade(t *testing.T, rf *RDataFile) {

	require.Equal(t, []string{"df", "f"}, rf.Names())
	require.Equal(t, []string{"df"}, rf.Tables())

	tab, err := rf.Table("df")
	require.NoError(t, err)
	require.Equal(t, 3, tab.NumRows())
	requireColumnsEqual(t, []*Series{
		mustSeries(t, "id", []int32{1, 2, 3}, nil),
		mustSeries(t, "name", []string{"café", "地龙", ""}, []bool{false, false, true}),
	}, tab.Columns)

	f := rf.objects[1].obj
	require.Equal(t, intSxp, f.typ)
	require.Equal(t, []string{"factor"}, f.class())
	require.Equal(t, []string{"a", "b"}, stringsOf(f.getAttr("levels")))

	_, err = rf.Table("f")
	require.ErrorIs(t, err, ErrNotDataFrame)
	_, err = rf.Table("g")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestReadXDR(t *testing.T) {

	s := newStream("RDX2\nX\n", binary.BigEndian)
	handMade(s)

	rf, err := ReadRData(bytes.NewReader(s.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 2, rf.Version)
	require.Equal(t, CompressNone, rf.Compression)
	checkHandMade(t, rf)
}

func TestReadNative(t *testing.T) {

	s := newStream("RDB2\nB\n", binary.LittleEndian)
	handMade(s)

	rf, err := ReadRData(bytes.NewReader(s.Bytes()))
	require.NoError(t, err)
	checkHandMade(t, rf)
}

func TestReadGzip(t *testing.T) {

	s := newStream("RDX2\nX\n", binary.BigEndian)
	handMade(s)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(s.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	rf, err := ReadRData(&buf)
	require.NoError(t, err)
	require.Equal(t, CompressGzip, rf.Compression)
	checkHandMade(t, rf)
}

func TestReadXz(t *testing.T) {

	s := newStream("RDX2\nX\n", binary.BigEndian)
	handMade(s)

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = xw.Write(s.Bytes())
	require.NoError(t, err)
	require.NoError(t, xw.Close())

	rf, err := ReadRData(&buf)
	require.NoError(t, err)
	require.Equal(t, CompressXz, rf.Compression)
	checkHandMade(t, rf)
}

func TestReadErrors(t *testing.T) {

	_, err := ReadRData(bytes.NewReader([]byte("RDA2\nA\n2\n")))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadRData(bytes.NewReader([]byte("PK\x03\x04 not rdata")))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadRData(bytes.NewReader(nil))
	require.Error(t, err)

	s := newStream("RDX2\nX\n", binary.BigEndian)
	handMade(s)
	b := s.Bytes()
	_, err = ReadRData(bytes.NewReader(b[:len(b)-10]))
	require.Error(t, err)

	v4 := &stream{order: binary.BigEndian}
	v4.WriteString("RDX3\nX\n")
	v4.int(4)
	_, err = ReadRData(bytes.NewReader(v4.Bytes()))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadRDataFile(filepath.Join(t.TempDir(), "missing.rda"))
	require.Error(t, err)

	neg := newStream("RDX2\nX\n", binary.BigEndian)
	neg.int(packFlags(listSxp, 0, false, false, true))
	neg.sym("x")
	neg.int(int32(strSxp))
	neg.int(1)
	neg.int(packFlags(charSxp, utf8Mask, false, false, false))
	neg.int(-5)
	_, err = ReadRData(bytes.NewReader(neg.Bytes()))
	require.Error(t, err)

	// Long vector length beyond what R can address.
	long := newStream("RDX2\nX\n", binary.BigEndian)
	long.int(packFlags(listSxp, 0, false, false, true))
	long.sym("x")
	long.int(int32(intSxp))
	long.int(-1)
	long.int(math.MaxInt32)
	long.int(-1)
	_, err = ReadRData(bytes.NewReader(long.Bytes()))
	require.Error(t, err)

	seq := newStream("RDX2\nX\n", binary.BigEndian)
	seq.int(packFlags(listSxp, 0, false, false, true))
	seq.sym("x")
	seq.int(int32(altrepSxp))
	seq.int(int32(listSxp))
	seq.sym("compact_intseq")
	seq.int(int32(listSxp))
	seq.sym("base")
	seq.int(int32(listSxp))
	seq.int(int32(intSxp))
	seq.int(1)
	seq.int(int32(intSxp))
	seq.int(int32(nilValueSxp))
	seq.int(int32(realSxp))
	seq.int(3)
	seq.double(-1)
	seq.double(1)
	seq.double(1)
	seq.int(int32(nilValueSxp))
	_, err = ReadRData(bytes.NewReader(seq.Bytes()))
	require.Error(t, err)
}

func TestReadNativeEncoding(t *testing.T) {

	s := newStreamV3("RDX3\nX\n", binary.BigEndian, "CP936")
	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("herbs")
	s.int(packFlags(vecSxp, 0, true, true, false))
	s.int(1)
	s.int(int32(strSxp))
	s.int(3)
	s.char("\xb5\xd8\xc1\xfa", 0) // 地龙 in GBK
	s.char("Ginseng", 0)
	s.char("人参", utf8Mask)
	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("names")
	s.strs("Herb_cn_name")
	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("class")
	s.strs("data.frame")
	s.int(packFlags(listSxp, 0, false, false, true))
	s.sym("row.names")
	s.int(int32(intSxp))
	s.int(2)
	s.int(naInt)
	s.int(-3)
	s.int(int32(nilValueSxp))
	s.int(int32(nilValueSxp))

	rf, err := ReadRData(bytes.NewReader(s.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 3, rf.Version)
	require.Equal(t, "CP936", rf.NativeEncoding)

	want := []string{"地龙", "Ginseng", "人参"}
	tab, err := rf.Table("herbs")
	require.NoError(t, err)
	require.Equal(t, want, tab.Columns[0].Data())

	// Written back as UTF-8.
	var buf bytes.Buffer
	require.NoError(t, NewRDataWriter(&buf).Write(rf))
	back, err := ReadRData(&buf)
	require.NoError(t, err)
	require.Equal(t, "UTF-8", back.NativeEncoding)
	tab, err = back.Table("herbs")
	require.NoError(t, err)
	require.Equal(t, want, tab.Columns[0].Data())
}

func TestNativeEncoding(t *testing.T) {

	require.Nil(t, nativeEncoding(""))
	require.Nil(t, nativeEncoding("UTF-8"))
	require.Nil(t, nativeEncoding("utf8"))
	require.Nil(t, nativeEncoding("no-such-encoding"))
	require.NotNil(t, nativeEncoding("CP936"))
	require.NotNil(t, nativeEncoding("latin1"))
}

func TestWriteInvalidUTF8(t *testing.T) {

	rf := &RDataFile{}
	tab, err := NewTable("raw", []*Series{mustSeries(t, "b", []string{"\xff\xfe", "ok"}, nil)})
	require.NoError(t, err)
	rf.SetTable(tab)

	var buf bytes.Buffer
	require.NoError(t, NewRDataWriter(&buf).Write(rf))
	back, err := ReadRData(&buf)
	require.NoError(t, err)
	got, err := back.Table("raw")
	require.NoError(t, err)
	require.Equal(t, []string{"\xff\xfe", "ok"}, got.Columns[0].Data())
}

func TestRewriteHandMade(t *testing.T) {

	s := newStream("RDX2\nX\n", binary.BigEndian)
	handMade(s)
	rf, err := ReadRData(bytes.NewReader(s.Bytes()))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRDataWriter(&buf).Write(rf))

	back, err := ReadRData(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, back.Version)
	require.Equal(t, CompressNone, back.Compression)
	checkHandMade(t, back)
}

func factorSeries(t *testing.T) *Series {
	s := mustSeries(t, "grade", []int32{2, 1, 0}, []bool{false, false, true})
	s.attr = []pairNode{
		{tag: "levels", value: newStrVec("low", "high")},
		{tag: "class", value: newStrVec("factor")},
	}
	return s
}

func dateSeries(t *testing.T) *Series {
	s := mustSeries(t, "day", []float64{0, 18262, 0}, []bool{false, false, true})
	s.attr = []pairNode{{tag: "class", value: newStrVec("Date")}}
	return s
}

func sampleTable(t *testing.T) *Table {

	tab, err := NewTable("herbs", []*Series{
		mustSeries(t, "name", []string{"地龙", "ascii", ""}, []bool{false, false, true}),
		mustSeries(t, "dose", []float64{1.5, math.Inf(1), 0}, []bool{false, false, true}),
		mustSeries(t, "n", []int32{1, -2, 0}, []bool{false, false, true}),
		mustSeries(t, "ok", []bool{true, false, false}, []bool{false, false, true}),
		factorSeries(t),
		dateSeries(t),
		mustSeries(t, "at", []time.Time{
			time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
			time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC),
			{},
		}, []bool{false, false, true}),
	})
	require.NoError(t, err)
	tab.RowNames = []string{"r1", "r2", "r3"}

	return tab
}

func TestWriteRoundTrip(t *testing.T) {

	for _, version := range []int{2, 3} {
		for _, c := range []Compression{CompressNone, CompressGzip, CompressXz} {

			rf := &RDataFile{}
			rf.SetTable(sampleTable(t))

			var buf bytes.Buffer
			wr := NewRDataWriter(&buf)
			wr.Compression = c
			wr.Version = version
			require.NoError(t, wr.Write(rf))

			back, err := ReadRData(&buf)
			require.NoError(t, err)
			require.Equal(t, version, back.Version)
			require.Equal(t, c, back.Compression)
			if version == 3 {
				require.Equal(t, "UTF-8", back.NativeEncoding)
			}

			tab, err := back.Table("herbs")
			require.NoError(t, err)
			require.Equal(t, []string{"r1", "r2", "r3"}, tab.RowNames)
			require.Equal(t, []ColumnTypeT{CharacterType, NumericType, IntegerType,
				LogicalType, FactorType, DateType, DateTimeType}, tab.ColumnTypes())
			ok, j, i := tab.Columns[:4].AllEqual(sampleTable(t).Columns[:4])
			require.True(t, ok, "column %d row %d", j, i)

			grade := tab.Columns[4]
			require.Equal(t, []string{"low", "high"}, grade.Levels())
			require.Equal(t, []string{"high", "low", "NA"}, grade.ToString("NA").Data())

			require.Equal(t, []string{"1970-01-01", "2020-01-01", "NA"}, tab.Columns[5].ToString("NA").Data())
			require.Equal(t, []string{"2020-01-02 03:04:05", "1969-12-31 23:59:59", "NA"},
				tab.Columns[6].ToString("NA").Data())
		}
	}
}

func TestConvert(t *testing.T) {

	rf := &RDataFile{}
	rf.SetTable(sampleTable(t))
	var buf bytes.Buffer
	require.NoError(t, NewRDataWriter(&buf).Write(rf))

	back, err := ReadRData(&buf)
	require.NoError(t, err)
	back.ConvertFactors = true
	back.ConvertDates = true

	tab, err := back.Table("herbs")
	require.NoError(t, err)

	grade := tab.Columns[4]
	require.Equal(t, CharacterType, grade.Type())
	requireColumnsEqual(t, []*Series{mustSeries(t, "grade", []string{"high", "low", ""}, []bool{false, false, true})},
		[]*Series{grade})

	day := tab.Columns[5]
	require.Equal(t, DateTimeType, day.Type())
	requireColumnsEqual(t, []*Series{mustSeries(t, "day", []time.Time{
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		{},
	}, []bool{false, false, true})}, []*Series{day})
}

func TestWriteDeterministic(t *testing.T) {

	var outputs [][]byte
	for k := 0; k < 2; k++ {
		rf := &RDataFile{}
		rf.SetTable(sampleTable(t))
		var buf bytes.Buffer
		require.NoError(t, NewRDataWriter(&buf).Write(rf))
		outputs = append(outputs, buf.Bytes())
	}
	require.Equal(t, outputs[0], outputs[1])
}

func TestWriteEmptyTable(t *testing.T) {

	tab, err := NewTable("empty", []*Series{mustSeries(t, "x", []string{}, nil)})
	require.NoError(t, err)
	rf := &RDataFile{}
	rf.SetTable(tab)

	var buf bytes.Buffer
	require.NoError(t, NewRDataWriter(&buf).Write(rf))
	back, err := ReadRData(&buf)
	require.NoError(t, err)

	tab, err = back.Table("empty")
	require.NoError(t, err)
	require.Equal(t, 0, tab.NumRows())
	require.Equal(t, []string{"x"}, tab.ColumnNames())
}

func TestWriteErrors(t *testing.T) {

	rf := &RDataFile{}
	rf.SetTable(sampleTable(t))

	var buf bytes.Buffer
	wr := NewRDataWriter(&buf)
	wr.Compression = CompressBzip2
	require.ErrorIs(t, wr.Write(rf), ErrUnsupportedFormat)

	wr = NewRDataWriter(&buf)
	wr.Version = 4
	require.Error(t, wr.Write(rf))

	// A bzip2 input is written back as gzip.
	rf.Compression = CompressBzip2
	buf.Reset()
	require.NoError(t, NewRDataWriter(&buf).Write(rf))
	back, err := ReadRData(&buf)
	require.NoError(t, err)
	require.Equal(t, CompressGzip, back.Compression)
}

func TestSetTable(t *testing.T) {

	rf := &RDataFile{}
	rf.SetTable(sampleTable(t))

	other, err := NewTable("other", []*Series{mustSeries(t, "x", []float64{1}, nil)})
	require.NoError(t, err)
	rf.SetTable(other)

	replaced, err := NewTable("herbs", []*Series{mustSeries(t, "y", []float64{2}, nil)})
	require.NoError(t, err)
	rf.SetTable(replaced)

	require.Equal(t, []string{"herbs", "other"}, rf.Names())
	tab, err := rf.Table("herbs")
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, tab.ColumnNames())

	// Table returns a copy.
	_, err = tab.SetColumn(mustSeries(t, "z", []float64{3}, nil))
	require.NoError(t, err)
	tab, err = rf.Table("herbs")
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, tab.ColumnNames())
}

func TestWriteRDataFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), "herbs.rda")
	rf := &RDataFile{}
	rf.SetTable(sampleTable(t))
	require.NoError(t, WriteRDataFile(path, rf, CompressXz))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, xzMagic))

	back, err := ReadRDataFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"herbs"}, back.Tables())
}

func TestRDataReader(t *testing.T) {

	rows := make([]int32, 5)
	for i := range rows {
		rows[i] = int32(i)
	}
	small, err := NewTable("small", []*Series{mustSeries(t, "i", rows, nil)})
	require.NoError(t, err)

	rf := &RDataFile{}
	rf.SetTable(sampleTable(t))
	rf.SetTable(small)
	var buf bytes.Buffer
	require.NoError(t, NewRDataWriter(&buf).Write(rf))

	rdr, err := NewRDataReader(&buf)
	require.NoError(t, err)
	require.Equal(t, "herbs", rdr.TableName())
	require.Equal(t, 3, rdr.RowCount())
	require.Equal(t, "grade", rdr.ColumnNames()[4])
	require.Equal(t, CharacterType, rdr.ColumnTypes()[4])
	require.Equal(t, DateTimeType, rdr.ColumnTypes()[5])

	require.NoError(t, rdr.SelectTable("small"))
	require.Equal(t, 5, rdr.RowCount())

	var got []int32
	var sizes []int
	for {
		chunk, err := rdr.Read(2)
		if err == io.EOF {
			require.Nil(t, chunk)
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, chunk[0].Length())
		got = append(got, chunk[0].Data().([]int32)...)
	}
	require.Equal(t, []int{2, 2, 1}, sizes)
	require.Equal(t, rows, got)

	require.ErrorIs(t, rdr.SelectTable("nope"), ErrTableNotFound)
}

func TestRDataReaderNoTable(t *testing.T) {

	var buf bytes.Buffer
	require.NoError(t, NewRDataWriter(&buf).Write(&RDataFile{}))

	_, err := NewRDataReader(&buf)
	require.ErrorIs(t, err, ErrTableNotFound)
}
