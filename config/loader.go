package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "COREMEM_"
	// Delimiter separates nested configuration keys.
	Delimiter = "."
)

// searchPaths are tried in order when no config file is given.
var searchPaths = []string{
	"coremem.yaml",
	"config.yaml",
	"config.yml",
	"config.json",
	"configs/config.yaml",
	"/etc/coremem/config.yaml",
}

// Loader layers defaults, a config file, COREMEM_* variables and flag
// overrides, later layers winning.
type Loader struct {
	k *koanf.Koanf
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{k: koanf.New(Delimiter)}
}

// Load builds and validates a Config. An empty configPath searches the
// usual locations and silently continues if none exist.
func (l *Loader) Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	defaults := flatten(DefaultConfig())
	if err := l.k.Load(confmap.Provider(defaults, Delimiter), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath == "" {
		configPath = findConfigFile()
	} else if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}
	if configPath != "" {
		if err := l.loadFile(configPath); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := l.loadEnv(defaults); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := l.k.Load(confmap.Provider(overrides, Delimiter), nil); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	// A file section such as "storage: {}" drops the defaults beneath it.
	for key, value := range defaults {
		if l.k.Exists(key) {
			continue
		}
		if err := l.k.Set(key, value); err != nil {
			return nil, fmt.Errorf("restore default %s: %w", key, err)
		}
	}

	var cfg Config
	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := ValidateWithDetails(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *Loader) loadFile(path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format %q", filepath.Ext(path))
	}
	return l.k.Load(file.Provider(path), parser)
}

func findConfigFile() string {
	for _, path := range searchPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// loadEnv resolves each COREMEM_* variable against the known keys, because
// underscores are ambiguous: COREMEM_MODEL_API_KEY is model.api_key, not
// model.api.key. Unknown variables are ignored.
func (l *Loader) loadEnv(defaults map[string]interface{}) error {
	known := envKeysFrom(defaults)
	return l.k.Load(env.Provider(EnvPrefix, Delimiter, func(name string) string {
		return known[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))]
	}), nil)
}

// envKeys maps the underscore form of every configuration key to its dotted form.
func envKeys() map[string]string {
	return envKeysFrom(flatten(DefaultConfig()))
}

func envKeysFrom(defaults map[string]interface{}) map[string]string {
	keys := make(map[string]string, len(defaults))
	for key := range defaults {
		keys[strings.ReplaceAll(key, Delimiter, "_")] = key
	}
	return keys
}

// Get returns the raw value at key.
func (l *Loader) Get(key string) interface{} { return l.k.Get(key) }

// GetString returns the string value at key.
func (l *Loader) GetString(key string) string { return l.k.String(key) }

// GetInt returns the int value at key.
func (l *Loader) GetInt(key string) int { return l.k.Int(key) }

// GetBool returns the bool value at key.
func (l *Loader) GetBool(key string) bool { return l.k.Bool(key) }

// Set overwrites the value at key.
func (l *Loader) Set(key string, value interface{}) error { return l.k.Set(key, value) }

// Print renders every loaded key, one per line.
func (l *Loader) Print() string { return l.k.Sprint() }

// flatten turns a config struct into dotted mapstructure keys. Leaf values
// keep their Go types; empty maps are left out.
func flatten(v interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	flattenInto(out, reflect.ValueOf(v), "")
	return out
}

func flattenInto(out map[string]interface{}, val reflect.Value, prefix string) {
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("mapstructure")
		if !field.IsExported() || tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + Delimiter + tag
		}

		fv := val.Field(i)
		switch fv.Kind() {
		case reflect.Struct, reflect.Ptr:
			flattenInto(out, fv, key)
		case reflect.Map:
			if fv.Len() > 0 {
				out[key] = fv.Interface()
			}
		case reflect.Slice:
			items := make([]interface{}, fv.Len())
			for j := range items {
				items[j] = fv.Index(j).Interface()
			}
			out[key] = items
		default:
			out[key] = fv.Interface()
		}
	}
}

// Load reads configuration with a fresh Loader.
func Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	return NewLoader().Load(configPath, overrides)
}

// LoadOrDie is Load for callers with no way to recover.
func LoadOrDie(configPath string, overrides map[string]interface{}) *Config {
	cfg, err := Load(configPath, overrides)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
