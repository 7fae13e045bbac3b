package dataset

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/sigann/blobstore"
	"github.com/hupe1980/sigann/internal/resource"
	"github.com/hupe1980/sigann/model"
)

type fileOptions struct {
	batchSize   int
	compression *Compression
	resources   *resource.Controller
}

// FileOption configures the Save and Load helpers.
type FileOption func(*fileOptions)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) FileOption {
	return func(o *fileOptions) {
		o.batchSize = n
	}
}

// WithCompression forces a compression instead of deriving it from the name.
func WithCompression(c Compression) FileOption {
	return func(o *fileOptions) {
		o.compression = &c
	}
}

// WithResourceController throttles file IO through rc. Loads also reserve
// the size a file's header claims against rc's memory limit before any
// rows are allocated; see LoadDatabase.
func WithResourceController(rc *resource.Controller) FileOption {
	return func(o *fileOptions) {
		o.resources = rc
	}
}

func applyFileOptions(name string, dim int, optFns []FileOption) (fileOptions, Codec, Compression) {
	var o fileOptions
	for _, fn := range optFns {
		fn(&o)
	}
	codec := NewCodec(dim)
	if o.batchSize > 0 {
		codec.BatchSize = o.batchSize
	}
	c := CompressionFor(name)
	if o.compression != nil {
		c = *o.compression
	}
	return o, codec, c
}

// SaveDatabase writes db to store under name.
func SaveDatabase(ctx context.Context, store blobstore.Store, name string, db *model.Database, optFns ...FileOption) error {
	o, codec, c := applyFileOptions(name, db.Dimension, optFns)
	return save(ctx, store, name, o, c, func(w io.Writer) error {
		return codec.WriteDatabase(w, db)
	})
}

// SaveQuerySet writes qs to store under name.
func SaveQuerySet(ctx context.Context, store blobstore.Store, name string, qs *model.QuerySet, optFns ...FileOption) error {
	o, codec, c := applyFileOptions(name, qs.Dimension, optFns)
	return save(ctx, store, name, o, c, func(w io.Writer) error {
		return codec.WriteQuerySet(w, qs)
	})
}

// LoadDatabase reads a record file of dimension dim from store.
//
// With WithResourceController the encoded size of the records stays
// reserved after a successful load; return it with
// rc.Free(NewCodec(dim).DatabaseBytes(db.Len())) once db is dropped.
// A failed load returns its reservation itself.
func LoadDatabase(ctx context.Context, store blobstore.Store, name string, dim int, optFns ...FileOption) (*model.Database, error) {
	o, codec, c := applyFileOptions(name, dim, optFns)
	reserved := o.reserveInto(&codec)
	var db *model.Database
	err := load(ctx, store, name, o, c, func(r io.Reader) (err error) {
		db, err = codec.ReadDatabase(r)
		return err
	})
	if err != nil {
		o.resources.Free(*reserved)
		return nil, err
	}
	return db, nil
}

// LoadQuerySet reads a query file of dimension dim from store. Memory is
// reserved as in LoadDatabase, sized by Codec.QuerySetBytes.
func LoadQuerySet(ctx context.Context, store blobstore.Store, name string, dim int, optFns ...FileOption) (*model.QuerySet, error) {
	o, codec, c := applyFileOptions(name, dim, optFns)
	reserved := o.reserveInto(&codec)
	var qs *model.QuerySet
	err := load(ctx, store, name, o, c, func(r io.Reader) (err error) {
		qs, err = codec.ReadQuerySet(r)
		return err
	})
	if err != nil {
		o.resources.Free(*reserved)
		return nil, err
	}
	return qs, nil
}

// reserveInto routes the codec's reservations to the resource controller
// and returns the running total it has reserved.
func (o fileOptions) reserveInto(codec *Codec) *int64 {
	var reserved int64
	if o.resources == nil {
		return &reserved
	}
	codec.Reserve = func(purpose string, bytes int64) error {
		if err := o.resources.Reserve(purpose, bytes); err != nil {
			return err
		}
		reserved += bytes
		return nil
	}
	return &reserved
}

func save(ctx context.Context, store blobstore.Store, name string, o fileOptions, c Compression, encode func(io.Writer) error) error {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", name, err)
	}

	// Store has no abort; a failed write is committed and then removed.
	abort := func() {
		_ = blob.Close()
		_ = store.Delete(ctx, name)
	}

	cw, err := compressWriter(o.resources.NewWriter(ctx, blob), c)
	if err != nil {
		abort()
		return err
	}

	if err := encode(cw); err != nil {
		_ = cw.Close()
		abort()
		return err
	}
	if err := cw.Close(); err != nil {
		abort()
		return fmt.Errorf("dataset: flush %s: %w", name, err)
	}
	if err := blob.Close(); err != nil {
		return fmt.Errorf("dataset: commit %s: %w", name, err)
	}
	return nil
}

func load(ctx context.Context, store blobstore.Store, name string, o fileOptions, c Compression, decode func(io.Reader) error) error {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer blob.Close()

	dr, err := decompressReader(o.resources.NewReader(ctx, blob), c)
	if err != nil {
		return err
	}
	defer dr.Close()

	if err := decode(dr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
