// Package catalog implements the metadata/data-catalog selection logic of
// data_catalog.py's metadata_factory: a narrow get/put KV store fronting
// cached relation metadata ($shared schema caching, per SPEC_FULL.md's
// Supplemented Features), with a local and a remote backend chosen by
// config.Config.MetadataServer.
//
// The source tries RocksDB first and falls back to a local JSON file;
// CascadeQL picks one local backend rather than probing for an optional
// native dependency at runtime (DESIGN.md Open Question: bolt, not RocksDB
// or JSON, since boltdb/bolt is the pack's only embedded-KV dependency).
package catalog

import (
	"context"
	"fmt"

	"github.com/cascadedb/cascadeql/internal/config"
)

// Catalog is the narrow get/put KV contract data_catalog.py's get()/put()
// stubs imply a real backend would fill in.
type Catalog interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open implements metadata_factory's selection: METADATA_SERVER absent or
// "LOCAL" selects the local bolt-backed catalog at path; anything else names
// a remote catalog endpoint, out of scope per spec.md's Non-goals (external
// collaborator) and represented here by a stub that reports so rather than
// silently no-op'ing.
func Open(cfg *config.Config, localPath string) (Catalog, error) {
	if cfg.IsLocalMetadata() {
		return openLocal(localPath)
	}
	return &remoteCatalog{endpoint: cfg.MetadataServer}, nil
}

// remoteCatalog represents KV_store_factory(config.METADATA_SERVER)'s
// non-local branch: a real implementation would dial the named endpoint,
// which is out of scope (spec.md Non-goals: "the catalog/metadata store's
// storage engine" is an external collaborator behind this interface).
type remoteCatalog struct {
	endpoint string
}

func (r *remoteCatalog) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, fmt.Errorf("remote metadata server %q is not implemented; configure METADATA_SERVER=LOCAL", r.endpoint)
}

func (r *remoteCatalog) Put(ctx context.Context, key string, value []byte) error {
	return fmt.Errorf("remote metadata server %q is not implemented; configure METADATA_SERVER=LOCAL", r.endpoint)
}

func (r *remoteCatalog) Close() error { return nil }
