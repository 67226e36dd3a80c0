package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/matzehuels/svg2ico/pkg/errors"
)

// =============================================================================
// Config File
// =============================================================================

// Config holds defaults read from the TOML config file. Zero values mean
// "not set" and leave the built-in defaults in place.
type Config struct {
	Sizes      []int   `toml:"sizes"`
	Rasterizer string  `toml:"rasterizer"`
	Resampler  string  `toml:"resampler"`
	Scale      float64 `toml:"scale"`
	TempDir    string  `toml:"temp_dir"`
}

// configPath returns the default config location using the XDG standard
// (~/.config/svg2ico/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the config at path. An empty path means the default
// location, where a missing file is not an error.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// apply fills every option whose flag was not given explicitly from cfg.
func (o *convertOpts) apply(cfg Config, flags *pflag.FlagSet) {
	if !flags.Changed("sizes") && cfg.Sizes != nil {
		o.sizes = cfg.Sizes
	}
	if !flags.Changed("rasterizer") && cfg.Rasterizer != "" {
		o.rasterizer = cfg.Rasterizer
	}
	if !flags.Changed("resampler") && cfg.Resampler != "" {
		o.resampler = cfg.Resampler
	}
	if !flags.Changed("scale") && cfg.Scale != 0 {
		o.scale = cfg.Scale
	}
	if !flags.Changed("temp-dir") && cfg.TempDir != "" {
		o.tempDir = cfg.TempDir
	}
}
