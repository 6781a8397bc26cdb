package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by Load when it exists and no other files are given.
const DefaultEnvFile = ".env"

// Option configures Load.
type Option func(*options)

type options struct {
	files    []string
	required bool
	prefix   string
	environ  map[string]string
}

// WithEnvFiles reads variables from the given dotenv files instead of
// DefaultEnvFile. Unlike the default file they must exist.
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.files = files
		o.required = true
	}
}

// WithPrefix prepends prefix to every variable name of the struct tags.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithEnviron replaces the process environment, mainly for tests.
func WithEnviron(vars map[string]string) Option {
	return func(o *options) {
		o.environ = vars
	}
}

// Load parses environment variables into v. Variables from dotenv files fill
// in names that are not set in the environment; the environment always wins.
//
// Example:
//
//	type Config struct {
//		Storage string `env:"STORAGE" envDefault:"local"`
//		Bucket  string `env:"S3_BUCKET"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithPrefix("IMDM_")); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &options{files: []string{DefaultEnvFile}}
	for _, opt := range opts {
		opt(o)
	}

	vars, err := readEnvFiles(o.files, o.required)
	if err != nil {
		return err
	}

	environ := o.environ
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}
	for k, val := range environ {
		vars[k] = val
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix, Environment: vars}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func readEnvFiles(files []string, required bool) (map[string]string, error) {
	vars := make(map[string]string)
	for _, f := range files {
		if !required {
			if _, err := os.Stat(f); err != nil {
				continue
			}
		}
		read, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadEnvFile, f, err)
		}
		for k, val := range read {
			vars[k] = val
		}
	}
	return vars, nil
}
