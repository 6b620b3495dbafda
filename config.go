package fenris

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config holds the server's tunables, per §4.9: root directory, listen
// address, frame/cache limits. Loaded from a TOML file (grounded on
// moby-moby's go.mod dependency on pelletier/go-toml/v2) and overridable
// by CLI flags in cmd/fenris-server.
type Config struct {
	RootDir      string `toml:"root_dir"`
	ListenAddr   string `toml:"listen_addr"`
	MaxFrameSize int    `toml:"max_frame_size"`
	CacheEntries int    `toml:"cache_entries"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		RootDir:      DefaultRootDir,
		ListenAddr:   "localhost:4940",
		MaxFrameSize: DefaultMaxFrameSize,
		CacheEntries: DefaultCacheEntries,
	}
}

// LoadConfig reads a TOML configuration file, applying DefaultConfig's
// values for anything the file leaves unset.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config file")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config file")
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = DefaultMaxFrameSize
	}
	if cfg.CacheEntries <= 0 {
		cfg.CacheEntries = DefaultCacheEntries
	}
	return cfg, nil
}
