package storage

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/voxpal/blob"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/format"
	"github.com/arloliu/voxpal/palette"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	s, err := Open(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func sampleColumn(t *testing.T, seed int) *blob.Column {
	t.Helper()

	col, err := blob.NewEmptyColumn(-4, 24, seed%16, 6)
	require.NoError(t, err)
	for y, s := range col.All() {
		s.Blocks.FillRegion(1, palette.Region{MaxX: 16, MaxY: 8, MaxZ: 16})
		s.Blocks.Set(seed%16, 9, int(y+4)%16, 100+seed)
	}

	return col
}

func TestStore_PutGet(t *testing.T) {
	s := openStore(t)
	key := Key{World: uuid.New(), X: 3, Z: -7}

	data, err := sampleColumn(t, 1).Encode()
	require.NoError(t, err)

	ok, err := s.Has(key)
	require.NoError(t, err)
	require.False(t, ok)
	_, err = s.Get(key)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.Put(key, data))

	ok, err = s.Has(key)
	require.NoError(t, err)
	require.True(t, ok)
	got, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, data, got)

	require.NoError(t, s.Delete(key))
	_, err = s.Get(key)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, s.Delete(key))
}

func TestStore_PutRejectsInvalidBlob(t *testing.T) {
	s := openStore(t)
	key := Key{World: uuid.New()}

	require.ErrorIs(t, s.Put(key, []byte("not a column")), errs.ErrInvalidHeaderSize)

	data, err := sampleColumn(t, 1).Encode()
	require.NoError(t, err)
	require.ErrorIs(t, s.Put(key, data[:40]), errs.ErrInvalidPayloadOffset)

	ok, err := s.Has(key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_SaveLoadColumn(t *testing.T) {
	s := openStore(t, WithEncoderOptions(blob.WithCompression(format.CompressionLZ4), blob.WithBiomeDirectBits(6)))
	key := Key{World: uuid.New(), X: -2, Z: 5}
	col := sampleColumn(t, 5)

	require.NoError(t, s.SaveColumn(key, col))

	data, err := s.Get(key)
	require.NoError(t, err)
	dec, err := blob.NewColumnDecoder(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, dec.Header().Flag.Compression())

	got, err := s.LoadColumn(key)
	require.NoError(t, err)
	require.Equal(t, col.Len(), got.Len())
	for y, want := range col.All() {
		sec, ok := got.Section(y)
		require.True(t, ok)
		require.True(t, want.Blocks.Equal(sec.Blocks))
		require.True(t, want.Biomes.Equal(sec.Biomes))
	}

	_, err = s.LoadColumn(Key{World: key.World})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStore_SaveColumnEncoderError(t *testing.T) {
	// the default 4 bit biome width cannot hold biome 20
	s := openStore(t)
	col, err := blob.NewEmptyColumn(0, 1, 20, 6)
	require.NoError(t, err)

	require.ErrorIs(t, s.SaveColumn(Key{World: uuid.New()}, col), errs.ErrValueOutOfRange)
}

func TestStore_LoadCorruptColumn(t *testing.T) {
	s := openStore(t)
	key := Key{World: uuid.New()}

	data, err := sampleColumn(t, 2).Encode(blob.WithCompression(format.CompressionNone))
	require.NoError(t, err)
	data[len(data)-1] ^= 0x40
	require.NoError(t, s.Put(key, data))

	_, err = s.LoadColumn(key)
	require.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestStore_KeysAndWorlds(t *testing.T) {
	s := openStore(t)
	a, b := uuid.New(), uuid.New()

	data, err := sampleColumn(t, 0).Encode()
	require.NoError(t, err)

	want := []Key{
		{World: a, X: -3, Z: 1},
		{World: a, X: 0, Z: -2},
		{World: a, X: 0, Z: 4},
	}
	for _, k := range []Key{want[2], want[0], want[1], {World: b, X: 1, Z: 1}} {
		require.NoError(t, s.Put(k, data))
	}

	keys, err := s.Keys(a)
	require.NoError(t, err)
	require.Equal(t, want, keys)

	keys, err = s.Keys(uuid.New())
	require.NoError(t, err)
	require.Empty(t, keys)

	worlds, err := s.Worlds()
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{a, b}, worlds)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := openStore(t)
	world := uuid.New()

	data, err := sampleColumn(t, 3).Encode()
	require.NoError(t, err)

	var wg sync.WaitGroup
	errCh := make(chan error, 64)
	for i := range 8 {
		wg.Add(1)
		go func(x int32) {
			defer wg.Done()
			for z := range int32(8) {
				key := Key{World: world, X: x, Z: z}
				if err := s.Put(key, data); err != nil {
					errCh <- err
					return
				}
				if _, err := s.Get(key); err != nil {
					errCh <- err
					return
				}
			}
		}(int32(i))
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	keys, err := s.Keys(world)
	require.NoError(t, err)
	require.Len(t, keys, 64)
}

func TestStore_Closed(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	require.Equal(t, dir, s.Dir())

	key := Key{World: uuid.New()}
	data, err := sampleColumn(t, 0).Encode()
	require.NoError(t, err)
	require.NoError(t, s.Put(key, data))
	require.NoError(t, s.Close())

	require.ErrorIs(t, s.Close(), errs.ErrStoreClosed)
	require.ErrorIs(t, s.Put(key, data), errs.ErrStoreClosed)
	_, err = s.Get(key)
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	_, err = s.Has(key)
	require.ErrorIs(t, err, errs.ErrStoreClosed)
	require.ErrorIs(t, s.Delete(key), errs.ErrStoreClosed)
	_, err = s.Keys(key.World)
	require.ErrorIs(t, err, errs.ErrStoreClosed)

	// reopening sees the stored column
	ro, err := Open(dir, WithReadOnly(), WithLogger(nil))
	require.NoError(t, err)
	defer ro.Close()
	got, err := ro.Get(key)
	require.NoError(t, err)
	require.Equal(t, data, got)
}
