package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// configCache stores parsed configuration values keyed by type and prefix.
type configCache struct {
	mu     sync.RWMutex
	values map[string]any
	onces  map[string]*sync.Once
}

var (
	// globalCache is the singleton instance for caching configurations
	globalCache = newConfigCache()

	defaultEnvLoaded sync.Once
)

func newConfigCache() *configCache {
	return &configCache{
		values: make(map[string]any),
		onces:  make(map[string]*sync.Once),
	}
}

// Option adjusts how environment variables are mapped onto a struct.
type Option func(*options)

type options struct {
	prefix string
}

// WithPrefix prepends prefix to every env key of the target struct.
// Values loaded with different prefixes are cached separately, which lets
// one process configure several clients of the same type.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func loadDefaultEnv() {
	defaultEnvLoaded.Do(func() {
		// Ignore errors - the .env file might not exist and that's ok
		_ = godotenv.Load()
	})
}

// LoadEnv loads the given .env files into the process environment without
// overriding variables that are already set.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into v based on its `env` tags.
// Each unique type and prefix combination is parsed once; later calls are
// served from the cache.
//
// Example:
//
//	type SearchConfig struct {
//		Addresses []string `env:"ADDRESSES" envDefault:"http://localhost:9200"`
//	}
//
//	var primary SearchConfig
//	err := config.Load(&primary, config.WithPrefix("PRIMARY_"))
func Load[T any](v *T, opts ...Option) error {
	loadDefaultEnv()
	if v == nil {
		return ErrNilPointer
	}

	o := buildOptions(opts)
	key := getTypeName[T]() + "|" + o.prefix

	globalCache.mu.RLock()
	if cached, ok := globalCache.values[key]; ok {
		*v = cached.(T)
		globalCache.mu.RUnlock()
		return nil
	}
	globalCache.mu.RUnlock()

	globalCache.mu.Lock()
	once, exists := globalCache.onces[key]
	if !exists {
		once = new(sync.Once)
		globalCache.onces[key] = once
	}
	globalCache.mu.Unlock()

	var err error

	once.Do(func() {
		var parsed T
		if parseErr := env.ParseWithOptions(&parsed, env.Options{Prefix: o.prefix}); parseErr != nil {
			err = errors.Join(ErrParsingConfig, parseErr)
			// Allow a retry once the environment has been fixed.
			globalCache.mu.Lock()
			delete(globalCache.onces, key)
			globalCache.mu.Unlock()
			return
		}

		globalCache.mu.Lock()
		globalCache.values[key] = parsed
		globalCache.mu.Unlock()
	})

	if err != nil {
		return err
	}

	globalCache.mu.RLock()
	defer globalCache.mu.RUnlock()
	if cached, ok := globalCache.values[key]; ok {
		*v = cached.(T)
		return nil
	}
	return ErrConfigNotLoaded
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// LoadFile fills v from a YAML file and the environment. Precedence, lowest
// first: `envDefault` tags, the file, variables present in the environment.
// Results are not cached.
//
// Fields that must be present should be checked by the caller after loading;
// `required` env tags cannot be satisfied by the file.
func LoadFile[T any](path string, v *T, opts ...Option) error {
	loadDefaultEnv()
	if v == nil {
		return ErrNilPointer
	}
	o := buildOptions(opts)

	// Defaults only: an empty environment leaves nothing but envDefault tags.
	if err := env.ParseWithOptions(v, env.Options{
		Prefix:      o.prefix,
		Environment: map[string]string{},
	}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Join(ErrReadingFile, err)
		}
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.Join(ErrParsingFile, err)
		}
	}

	// Explicit variables only: defaults were applied above and must not
	// clobber values from the file.
	if err := env.ParseWithOptions(v, env.Options{
		Prefix:              o.prefix,
		DefaultValueTagName: "envDefaultSkipped",
	}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// ResetCache drops every cached configuration. Intended for tests.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[string]any)
	globalCache.onces = make(map[string]*sync.Once)
}

// getTypeName returns a string identifier for the generic type T
func getTypeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		// Handle interface types
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
