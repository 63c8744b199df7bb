package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// PathEnv overrides the config file location.
const PathEnv = "AGENDA_CONFIG"

// GetEnv returns the ENV variable, "local" when unset.
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Load reads the config file of env (local, dev, prod), or the file named by
// AGENDA_CONFIG when set.
func Load(env string) (Config, error) {
	path := os.Getenv(PathEnv)
	if path == "" {
		path = locate(env + ".yaml")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// MustLoad is Load for callers that cannot continue without a config.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Parse expands ${VAR} and ${VAR:-default} references in data, decodes it,
// applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expandEnv(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// locate looks for name under ./config, then under the config directory of
// the source tree so tests run from any package directory.
func locate(name string) string {
	local := filepath.Join("config", name)
	if _, err := os.Stat(local); err == nil {
		return local
	}

	if _, file, _, ok := runtime.Caller(0); ok {
		root := filepath.Join(filepath.Dir(file), "..", "..")
		if p := filepath.Join(root, "config", name); fileExists(p) {
			return p
		}
	}
	return local
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		name, def, hasDef := strings.Cut(string(ref[2:len(ref)-1]), ":-")
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return []byte(v)
		}
		if hasDef {
			return []byte(def)
		}
		return nil
	})
}
