package dataset

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/hupe1980/sigann/blobstore"
	"github.com/hupe1980/sigann/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionFor(t *testing.T) {
	tests := []struct {
		name string
		want Compression
	}{
		{"records.bin", CompressionNone},
		{"records.bin.zst", CompressionZstd},
		{"runs/a/queries.zstd", CompressionZstd},
		{"records.bin.lz4", CompressionLZ4},
		{"noext", CompressionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompressionFor(tt.name))
		})
	}
	assert.Equal(t, "zstd", CompressionZstd.String())
	assert.Equal(t, "Unknown(9)", Compression(9).String())
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(6, 3)
	db := g.Database(300)
	qs := g.Queries(db, 40)

	for _, name := range []string{"records.bin", "records.bin.zst", "records.bin.lz4"} {
		t.Run(name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			require.NoError(t, SaveDatabase(ctx, store, name, db, WithBatchSize(64)))
			require.NoError(t, SaveQuerySet(ctx, store, "q-"+name, qs))

			gotDB, err := LoadDatabase(ctx, store, name, 6)
			require.NoError(t, err)
			assert.Equal(t, db.Records, gotDB.Records)

			gotQS, err := LoadQuerySet(ctx, store, "q-"+name, 6)
			require.NoError(t, err)
			assert.Equal(t, qs.Queries, gotQS.Queries)
		})
	}
}

func TestSaveLoad_CompressedIsSmaller(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	// All-zero vectors compress well.
	db := NewGenerator(32, 1).Database(500)
	for i := range db.Records {
		clear(db.Records[i].Vector)
	}

	require.NoError(t, SaveDatabase(ctx, store, "plain", db))
	require.NoError(t, SaveDatabase(ctx, store, "packed", db, WithCompression(CompressionZstd)))

	plain, _ := store.Get("plain")
	packed, _ := store.Get("packed")
	assert.Less(t, len(packed), len(plain))

	got, err := LoadDatabase(ctx, store, "packed", 32, WithCompression(CompressionZstd))
	require.NoError(t, err)
	assert.Equal(t, db.Records, got.Records)
}

func TestSaveLoad_Throttled(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})

	db := NewGenerator(4, 9).Database(100)
	require.NoError(t, SaveDatabase(ctx, store, "r.bin", db, WithResourceController(rc)))

	got, err := LoadDatabase(ctx, store, "r.bin", 4, WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, db.Records, got.Records)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := LoadDatabase(ctx, store, "missing.bin", 4)
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))

	store.Put("short.bin", []byte{5, 0, 0, 0, 1})
	_, err = LoadDatabase(ctx, store, "short.bin", 4)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "short.bin")

	// A 2-dimensional file read as 4-dimensional runs short.
	require.NoError(t, SaveDatabase(ctx, store, "dim2.bin", NewGenerator(2, 1).Database(3)))
	_, err = LoadDatabase(ctx, store, "dim2.bin", 4)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestLoad_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

	// The header claims 5,000,000 records of dimension 100; the body is empty.
	store.Put("huge.bin", binary.LittleEndian.AppendUint32(nil, 5_000_000))
	_, err := LoadDatabase(ctx, store, "huge.bin", 100, WithResourceController(rc))
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Contains(t, err.Error(), "huge.bin")
	assert.Contains(t, err.Error(), PurposeDatabase)

	_, err = LoadQuerySet(ctx, store, "huge.bin", 100, WithResourceController(rc))
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Contains(t, err.Error(), PurposeQuerySet)
	assert.Zero(t, rc.MemoryUsage())

	// A load that fits keeps its reservation until the caller frees it.
	db := NewGenerator(4, 2).Database(50)
	require.NoError(t, SaveDatabase(ctx, store, "r.bin", db))
	got, err := LoadDatabase(ctx, store, "r.bin", 4, WithResourceController(rc))
	require.NoError(t, err)
	assert.Equal(t, db.Records, got.Records)
	assert.Equal(t, NewCodec(4).DatabaseBytes(50), rc.MemoryUsage())
	rc.Free(NewCodec(4).DatabaseBytes(got.Len()))
	assert.Zero(t, rc.MemoryUsage())

	// A fitting header over a truncated body gives its reservation back.
	raw, _ := store.Get("r.bin")
	store.Put("cut.bin", raw[:len(raw)-5])
	_, err = LoadDatabase(ctx, store, "cut.bin", 4, WithResourceController(rc))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Zero(t, rc.MemoryUsage())
}

type failingStore struct {
	*blobstore.MemoryStore
}

func (s failingStore) Create(context.Context, string) (io.WriteCloser, error) {
	return failingWriter{}, nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (failingWriter) Close() error              { return nil }

func TestSave_Failure(t *testing.T) {
	ctx := context.Background()
	store := failingStore{blobstore.NewMemoryStore()}
	store.Put("r.bin", []byte("old"))

	err := SaveDatabase(ctx, store, "r.bin", NewGenerator(2, 1).Database(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// The aborted file is removed.
	_, ok := store.Get("r.bin")
	assert.False(t, ok)
}
