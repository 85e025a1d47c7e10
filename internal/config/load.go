package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"vuecore/internal/project"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "VUECORE_"

// Config is a loaded project configuration.
type Config struct {
	// Path is the manifest that was read; empty when defaults are used.
	Path    string
	Root    string
	Options Options
	Cache   CacheConfig
}

// CacheConfig is the [cache] table. It does not take part in the fingerprint.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type manifest struct {
	Compiler Options     `toml:"compiler"`
	Cache    CacheConfig `toml:"cache"`
}

// Load finds vuecore.toml above startDir, applies .env and VUECORE_*
// overrides and validates the result. Without a manifest, the defaults
// apply with startDir as the project root.
func Load(startDir string) (*Config, error) {
	manifestPath, ok, err := project.FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Options: Defaults(), Cache: CacheConfig{Dir: ".vuecore-cache"}}
	if ok {
		cfg.Path = manifestPath
		cfg.Root = filepath.Dir(manifestPath)
		if err := cfg.decode(manifestPath); err != nil {
			return nil, err
		}
	} else {
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			return nil, fmt.Errorf("failed to resolve start directory: %w", absErr)
		}
		if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		cfg.Root = root
	}
	env, err := readEnv(cfg.Root)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, cfg.source(), err)
	}
	return cfg, nil
}

// Parse decodes manifest text on top of the defaults; used by tests and
// `vuecore init --check`.
func Parse(text string) (*Config, error) {
	cfg := &Config{Options: Defaults(), Cache: CacheConfig{Dir: ".vuecore-cache"}}
	m := manifest{Compiler: cfg.Options, Cache: cfg.Cache}
	if _, err := toml.Decode(text, &m); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.Options, cfg.Cache = m.Compiler, m.Cache
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

func (c *Config) decode(path string) error {
	m := manifest{Compiler: c.Options, Cache: c.Cache}
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	c.Options, c.Cache = m.Compiler, m.Cache
	return nil
}

func (c *Config) source() string {
	if c.Path != "" {
		return c.Path
	}
	return "defaults"
}

// CacheDir is the absolute cache directory, or "" when caching is off.
func (c *Config) CacheDir() string {
	if !c.Cache.Enabled || c.Cache.Dir == "" {
		return ""
	}
	if filepath.IsAbs(c.Cache.Dir) {
		return c.Cache.Dir
	}
	return filepath.Join(c.Root, c.Cache.Dir)
}

// readEnv merges <root>/.env under the process environment; the process wins.
func readEnv(root string) (map[string]string, error) {
	env := map[string]string{}
	dotenv := filepath.Join(root, ".env")
	if _, err := os.Stat(dotenv); err == nil {
		vals, err := godotenv.Read(dotenv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dotenv, err)
		}
		for k, v := range vals {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %q: %w", dotenv, err)
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	o := &c.Options
	for key, val := range env {
		var err error
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "TARGET":
			o.Target, err = strconv.ParseFloat(val, 64)
		case "LIB":
			o.Lib = val
		case "STRICT_TEMPLATES":
			o.StrictTemplates, err = strconv.ParseBool(val)
		case "CHECK_UNKNOWN_PROPS":
			o.CheckUnknownProps, err = strconv.ParseBool(val)
		case "CHECK_UNKNOWN_EVENTS":
			o.CheckUnknownEvents, err = strconv.ParseBool(val)
		case "CHECK_UNKNOWN_COMPONENTS":
			o.CheckUnknownComponents, err = strconv.ParseBool(val)
		case "CHECK_UNKNOWN_DIRECTIVES":
			o.CheckUnknownDirectives, err = strconv.ParseBool(val)
		case "GLOBAL_TYPES_PATH":
			o.GlobalTypesPath = val
		case "INLINE_CSS":
			o.InlineCSS, err = strconv.ParseBool(val)
		case "CACHE":
			c.Cache.Enabled, err = strconv.ParseBool(val)
		case "CACHE_DIR":
			c.Cache.Dir = val
		}
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, val, err)
		}
	}
	return nil
}
