// Package storage keeps encoded chunk columns in a leveldb database.
//
// Each column is stored under a Key made of a world id and the column's x and
// z coordinates. Values are complete column blobs, see package blob; Put
// rejects data without a valid blob header.
//
//	store, err := storage.Open(dir, storage.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	key := storage.Key{World: worldID, X: 3, Z: -7}
//	if err := store.SaveColumn(key, col); err != nil {
//		return err
//	}
package storage
