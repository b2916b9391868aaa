// Package config loads the three environment knobs spec.md §6
// ("Environment & configuration") names: CONCURRENT_READS,
// MAX_READ_BUFFER_CAPACITY, METADATA_SERVER.
//
// Grounded on the teacher's engine.go Config struct (a plain struct the
// caller populates) plus the pack's Pieczasz-smf repo, which loads its
// config from a TOML file with github.com/BurntSushi/toml and layers
// environment-variable overrides on top before handing the struct to its
// cobra commands; CascadeQL's cmd/cascadeql follows the same shape.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the three recognized keys plus their defaults (spec.md §6:
// concurrency cap for the async scan, the memory pool's byte capacity, and
// which metadata/catalog backend to use).
type Config struct {
	ConcurrentReads       int    `toml:"CONCURRENT_READS"`
	MaxReadBufferCapacity int64  `toml:"MAX_READ_BUFFER_CAPACITY"`
	MetadataServer        string `toml:"METADATA_SERVER"`
}

// Default returns the configuration CascadeQL runs with when no file or
// environment override is present.
func Default() *Config {
	return &Config{
		ConcurrentReads:       4,
		MaxReadBufferCapacity: 256 << 20, // 256MiB
		MetadataServer:        "LOCAL",
	}
}

// Load reads path as TOML into a Config seeded with Default()'s values, then
// applies environment-variable overrides (the same three keys, read
// verbatim -- CONCURRENT_READS, MAX_READ_BUFFER_CAPACITY, METADATA_SERVER).
// An empty path skips the file and returns defaults-plus-environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("CONCURRENT_READS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ConcurrentReads = n
		}
	}
	if v, ok := os.LookupEnv("MAX_READ_BUFFER_CAPACITY"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxReadBufferCapacity = n
		}
	}
	if v, ok := os.LookupEnv("METADATA_SERVER"); ok {
		cfg.MetadataServer = v
	}
}

// IsLocalMetadata reports whether the configured metadata server selects
// the local KV-backed catalog rather than a remote endpoint (data_catalog.py
// metadata_factory: "METADATA_SERVER is None or .upper() == 'LOCAL'").
func (c *Config) IsLocalMetadata() bool {
	return c.MetadataServer == "" || strings.ToUpper(c.MetadataServer) == "LOCAL"
}
