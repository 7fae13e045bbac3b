package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/sigann/model"
)

// DefaultBatchSize is the number of rows moved per read or write call.
const DefaultBatchSize = 10000

var (
	// ErrCorrupt is returned when a file decodes to invalid content.
	ErrCorrupt = errors.New("dataset: corrupt file")

	// ErrTooLarge is returned when a collection does not fit the uint32 header.
	ErrTooLarge = errors.New("dataset: too many rows")
)

// DimensionMismatchError is returned when a collection does not match the
// codec's dimension.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dataset: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Allocation purposes passed to Codec.Reserve.
const (
	PurposeDatabase = "database records"
	PurposeQuerySet = "query set"
)

// Codec encodes and decodes record and query files of one dimension.
//
// Readers never trust the row count of a header for allocation: rows are
// decoded batch by batch into storage that grows with the data actually
// read, so a truncated file fails before it can claim more memory than
// its own size.
type Codec struct {
	Dimension int
	BatchSize int

	// Reserve, if set, is called once after the header is read and before
	// any rows are allocated, with the encoded size the header claims.
	// An error aborts the read.
	Reserve func(purpose string, bytes int64) error
}

// NewCodec returns a codec for vectors of dim float32 fields.
func NewCodec(dim int) Codec {
	return Codec{Dimension: dim, BatchSize: DefaultBatchSize}
}

// RecordSize returns the encoded size of one record in bytes.
func (c Codec) RecordSize() int {
	return 8 + 4*c.Dimension
}

// QuerySize returns the encoded size of one query in bytes.
func (c Codec) QuerySize() int {
	return 16 + 4*c.Dimension
}

func (c Codec) batch() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// DatabaseBytes returns the encoded size of n records.
func (c Codec) DatabaseBytes(n int) int64 {
	return int64(n) * int64(c.RecordSize())
}

// QuerySetBytes returns the encoded size of n queries.
func (c Codec) QuerySetBytes(n int) int64 {
	return int64(n) * int64(c.QuerySize())
}

func (c Codec) reserve(purpose string, bytes int64) error {
	if c.Reserve == nil {
		return nil
	}
	return c.Reserve(purpose, bytes)
}

func (c Codec) check(dim, n int) error {
	if c.Dimension <= 0 {
		return fmt.Errorf("dataset: invalid dimension %d", c.Dimension)
	}
	if dim != c.Dimension {
		return &DimensionMismatchError{Expected: c.Dimension, Actual: dim}
	}
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %d", ErrTooLarge, n)
	}
	return nil
}

// WriteDatabase writes db to w.
func (c Codec) WriteDatabase(w io.Writer, db *model.Database) error {
	if err := c.check(db.Dimension, db.Len()); err != nil {
		return err
	}
	n := db.Len()
	if err := writeHeader(w, n); err != nil {
		return err
	}

	size := c.RecordSize()
	buf := make([]byte, min(c.batch(), n)*size)
	for start := 0; start < n; start += c.batch() {
		end := min(start+c.batch(), n)
		out := buf[:(end-start)*size]
		for i := start; i < end; i++ {
			c.putRecord(out[(i-start)*size:], &db.Records[i])
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("dataset: write records %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// ReadDatabase reads a record file from r.
func (c Codec) ReadDatabase(r io.Reader) (*model.Database, error) {
	if err := c.check(c.Dimension, 0); err != nil {
		return nil, err
	}
	n, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := c.reserve(PurposeDatabase, c.DatabaseBytes(n)); err != nil {
		return nil, err
	}

	dim, size := c.Dimension, c.RecordSize()
	first := min(c.batch(), n)
	records := make([]model.Record, 0, first)
	slab := make([]float32, 0, first*dim)
	buf := make([]byte, first*size)
	for start := 0; start < n; start += c.batch() {
		end := min(start+c.batch(), n)
		in := buf[:(end-start)*size]
		if err := readFull(r, in); err != nil {
			return nil, fmt.Errorf("dataset: read records %d-%d of %d: %w", start, end, n, err)
		}
		for off := 0; off < len(in); off += size {
			b := in[off : off+size]
			records = append(records, model.Record{
				Category:  binary.LittleEndian.Uint32(b[0:]),
				Timestamp: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			})
			slab = appendVector(slab, b[8:])
		}
	}
	return model.WrapDatabase(dim, records, slab), nil
}

// WriteQuerySet writes qs to w.
func (c Codec) WriteQuerySet(w io.Writer, qs *model.QuerySet) error {
	if err := c.check(qs.Dimension, qs.Len()); err != nil {
		return err
	}
	n := qs.Len()
	if err := writeHeader(w, n); err != nil {
		return err
	}

	size := c.QuerySize()
	buf := make([]byte, min(c.batch(), n)*size)
	for start := 0; start < n; start += c.batch() {
		end := min(start+c.batch(), n)
		out := buf[:(end-start)*size]
		for i := start; i < end; i++ {
			c.putQuery(out[(i-start)*size:], &qs.Queries[i])
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("dataset: write queries %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// ReadQuerySet reads a query file from r. Unknown query kinds are
// reported as ErrCorrupt.
func (c Codec) ReadQuerySet(r io.Reader) (*model.QuerySet, error) {
	if err := c.check(c.Dimension, 0); err != nil {
		return nil, err
	}
	n, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := c.reserve(PurposeQuerySet, c.QuerySetBytes(n)); err != nil {
		return nil, err
	}

	dim, size := c.Dimension, c.QuerySize()
	first := min(c.batch(), n)
	queries := make([]model.Query, 0, first)
	slab := make([]float32, 0, first*dim)
	buf := make([]byte, first*size)
	for start := 0; start < n; start += c.batch() {
		end := min(start+c.batch(), n)
		in := buf[:(end-start)*size]
		if err := readFull(r, in); err != nil {
			return nil, fmt.Errorf("dataset: read queries %d-%d of %d: %w", start, end, n, err)
		}
		for off := 0; off < len(in); off += size {
			b := in[off : off+size]
			q := model.Query{
				Kind:     model.QueryKind(binary.LittleEndian.Uint32(b[0:])),
				Category: binary.LittleEndian.Uint32(b[4:]),
				TimeLo:   math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
				TimeHi:   math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
			}
			if !q.Kind.Valid() {
				return nil, fmt.Errorf("%w: query %d has kind %d", ErrCorrupt, len(queries), uint32(q.Kind))
			}
			queries = append(queries, q)
			slab = appendVector(slab, b[16:])
		}
	}
	return model.WrapQuerySet(dim, queries, slab), nil
}

func (c Codec) putRecord(b []byte, rec *model.Record) {
	binary.LittleEndian.PutUint32(b[0:], rec.Category)
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(rec.Timestamp))
	putVector(b[8:], rec.Vector)
}

func (c Codec) putQuery(b []byte, q *model.Query) {
	binary.LittleEndian.PutUint32(b[0:], uint32(q.Kind))
	binary.LittleEndian.PutUint32(b[4:], q.Category)
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(q.TimeLo))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(q.TimeHi))
	putVector(b[16:], q.Vector)
}

func putVector(b []byte, v []float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
}

// appendVector decodes the float32 fields of b onto v.
func appendVector(v []float32, b []byte) []float32 {
	for i := 0; i+4 <= len(b); i += 4 {
		v = append(v, math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
	}
	return v
}

func writeHeader(w io.Writer, n int) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(n))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("dataset: write header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (int, error) {
	var hdr [4]byte
	if err := readFull(r, hdr[:]); err != nil {
		return 0, fmt.Errorf("dataset: read header: %w", err)
	}
	return int(binary.LittleEndian.Uint32(hdr[:])), nil
}

// readFull is io.ReadFull that reports a clean EOF as truncation too.
func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
