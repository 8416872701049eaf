// Package config loads application configuration from environment variables
// and, optionally, a YAML file.
//
// It wraps `github.com/joho/godotenv`, `github.com/caarlos0/env/v11` and
// `gopkg.in/yaml.v3`:
//
//   - Load parses the environment into any struct using `env` tags. Each type
//     (and prefix, see WithPrefix) is parsed once and cached for the lifetime
//     of the process.
//   - LoadFile reads a YAML file into the struct and lets variables present in
//     the environment override it. `envDefault` tags fill whatever neither
//     source sets. File-based loads are not cached.
//   - LoadEnv loads extra `.env` files; the default `.env` in the working
//     directory is loaded automatically on first use.
//
// # Usage
//
//	type SearchConfig struct {
//	    Addresses []string      `env:"ADDRESSES" yaml:"servers"`
//	    Timeout   time.Duration `env:"TIMEOUT" envDefault:"5s" yaml:"timeout"`
//	}
//
//	var cfg SearchConfig
//	if err := config.LoadFile("search.yaml", &cfg, config.WithPrefix("SEARCH_")); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// Sentinel errors can be compared with errors.Is:
//
//   - ErrParsingConfig   – env vars do not fit the struct.
//   - ErrReadingFile     – the YAML file could not be read.
//   - ErrParsingFile     – the YAML file does not fit the struct.
//   - ErrLoadingEnvFile  – an explicit .env file could not be loaded.
//   - ErrNilPointer      – nil pointer passed to a loader.
//
// ResetCache clears cached values between tests.
package config
