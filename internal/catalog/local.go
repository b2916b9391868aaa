package catalog

import (
	"context"

	"github.com/boltdb/bolt"
)

var metadataBucket = []byte("metadata")

// localCatalog is the bolt-backed KV store the local branch of
// metadata_factory selects.
type localCatalog struct {
	db *bolt.DB
}

func openLocal(path string) (Catalog, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(metadataBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &localCatalog{db: db}, nil
}

func (c *localCatalog) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(metadataBucket).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (c *localCatalog) Put(ctx context.Context, key string, value []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metadataBucket).Put([]byte(key), value)
	})
}

func (c *localCatalog) Close() error {
	return c.db.Close()
}
