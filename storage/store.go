package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/util"
	"github.com/google/uuid"

	"github.com/arloliu/voxpal/blob"
	"github.com/arloliu/voxpal/errs"
	"github.com/arloliu/voxpal/internal/options"
	"github.com/arloliu/voxpal/section"
)

// Store persists encoded column blobs in a leveldb database.
//
// Values are stored as produced by blob.ColumnEncoder. The blobs carry their
// own compression, so leveldb block compression is disabled.
//
// A Store is safe for concurrent use.
type Store struct {
	conf *config
	dir  string

	mu sync.RWMutex
	db *leveldb.DB
}

// Open opens or creates the store under dir.
//
// Parameters:
//   - dir: Database directory
//   - opts: Optional configuration (logger, encoder options, read-only)
//
// Returns:
//   - *Store: The opened store
//   - error: Option or leveldb open error
func Open(dir string, opts ...Option) (*Store, error) {
	conf := defaultConfig()
	if err := options.Apply(conf, opts...); err != nil {
		return nil, err
	}
	conf.log = conf.log.With("store", dir)

	ldbOpts := &opt.Options{
		Compression: opt.NoCompression,
		ReadOnly:    conf.readOnly,
	}
	db, err := leveldb.OpenFile(dir, ldbOpts)
	if err != nil {
		if conf.readOnly {
			return nil, fmt.Errorf("open store: %w", err)
		}
		conf.log.Warn("open failed, attempting recovery", "error", err)
		db, err = leveldb.RecoverFile(dir, ldbOpts)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	conf.log.Debug("store opened", "read_only", conf.readOnly)

	return &Store{conf: conf, dir: dir, db: db}, nil
}

// Dir returns the database directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put stores a column blob under key. The blob header is validated first.
func (s *Store) Put(key Key, data []byte) error {
	header, err := section.ParseColumnHeader(data)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if len(data) < int(header.PayloadOffset) {
		return fmt.Errorf("put %s: %w", key, errs.ErrInvalidPayloadOffset)
	}

	return s.with(func(db *leveldb.DB) error {
		if err := db.Put(key.Bytes(), data, nil); err != nil {
			return fmt.Errorf("put %s: %w", key, err)
		}

		return nil
	})
}

// Get returns the blob stored under key, or errs.ErrNotFound.
func (s *Store) Get(key Key) ([]byte, error) {
	var data []byte
	err := s.with(func(db *leveldb.DB) error {
		v, err := db.Get(key.Bytes(), nil)
		if errors.Is(err, leveldb.ErrNotFound) {
			return fmt.Errorf("get %s: %w", key, errs.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		data = v

		return nil
	})

	return data, err
}

// Has reports whether a blob is stored under key.
func (s *Store) Has(key Key) (bool, error) {
	var ok bool
	err := s.with(func(db *leveldb.DB) error {
		var err error
		ok, err = db.Has(key.Bytes(), nil)

		return err
	})

	return ok, err
}

// Delete removes the blob stored under key. Deleting a missing key is not an error.
func (s *Store) Delete(key Key) error {
	return s.with(func(db *leveldb.DB) error {
		return db.Delete(key.Bytes(), nil)
	})
}

// Keys returns the keys of every column stored for world, ordered by x then z.
func (s *Store) Keys(world uuid.UUID) ([]Key, error) {
	var keys []Key
	err := s.with(func(db *leveldb.DB) error {
		it := db.NewIterator(util.BytesPrefix(worldPrefix(world)), nil)
		defer it.Release()

		for it.Next() {
			k, err := ParseKey(it.Key())
			if err != nil {
				s.conf.log.Warn("skipping malformed key", "error", err)
				continue
			}
			keys = append(keys, k)
		}

		return it.Error()
	})

	return keys, err
}

// Worlds returns the distinct world ids that have at least one stored column,
// in key order.
func (s *Store) Worlds() ([]uuid.UUID, error) {
	var worlds []uuid.UUID
	err := s.with(func(db *leveldb.DB) error {
		it := db.NewIterator(util.BytesPrefix([]byte{columnTag}), nil)
		defer it.Release()

		for it.Next() {
			k, err := ParseKey(it.Key())
			if err != nil {
				continue
			}
			if n := len(worlds); n == 0 || worlds[n-1] != k.World {
				worlds = append(worlds, k.World)
			}
		}

		return it.Error()
	})

	return worlds, err
}

// SaveColumn encodes col with the configured encoder options and stores it.
func (s *Store) SaveColumn(key Key, col *blob.Column) error {
	data, err := col.Encode(s.conf.encoderOptions...)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	return s.Put(key, data)
}

// LoadColumn loads and decodes the column stored under key.
func (s *Store) LoadColumn(key Key) (*blob.Column, error) {
	data, err := s.Get(key)
	if err != nil {
		return nil, err
	}

	col, err := blob.DecodeColumn(data, blob.WithChecksumVerification(s.conf.verifyChecksum))
	if err != nil {
		s.conf.log.Error("load column: decode failed", "key", key.String(), "error", err)
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	return col, nil
}

// Close closes the database. Further calls return errs.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return errs.ErrStoreClosed
	}
	err := s.db.Close()
	s.db = nil
	s.conf.log.Debug("store closed")

	return err
}

// with runs fn with the open database while holding the read lock.
func (s *Store) with(fn func(db *leveldb.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return errs.ErrStoreClosed
	}

	return fn(s.db)
}
