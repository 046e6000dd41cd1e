// Package config holds the compile-time-ish tunables for the storage core:
// page size, pool sizing, and the extendible hash table's growth limit.
// Everything has a sane default; a TOML file only needs to override what it
// cares about.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the tunable surface of the storage core. Nothing in this
// package touches the network or the filesystem beyond reading its own
// config file.
type Config struct {
	// PageSize is the fixed width, in bytes, of every page the disk manager
	// reads and writes. The storage packages use the compile-time constant
	// page.PageSize (4096), and hash.BucketArraySize is a constant too;
	// neither is derived from this field.
	PageSize int `toml:"page_size"`

	// PoolSize is the frame count of a single BufferPoolInstance.
	PoolSize int `toml:"pool_size"`

	// NumInstances is the shard count of a ParallelBufferPool.
	NumInstances int `toml:"num_instances"`

	// MaxGlobalDepth bounds the extendible hash table's directory growth
	// (MAX_GD in spec terms). 2^MaxGlobalDepth directory slots is the
	// ceiling; exceeding it is DirectoryOverflow.
	MaxGlobalDepth uint32 `toml:"max_global_depth"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		PageSize:       4096,
		PoolSize:       64,
		NumInstances:   4,
		MaxGlobalDepth: 8,
	}
}

// Load reads a TOML file and overlays it on top of Default(). A missing
// file is not an error — it just means the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}
