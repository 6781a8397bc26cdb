package commands

import (
	"github.com/dmitrymomot/imdm/pkg/config"
	"github.com/dmitrymomot/imdm/pkg/file"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "IMDM_"

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config is the CLI configuration.
type Config struct {
	Env       string `env:"ENV"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	// Storage selects where data files referenced by samples are read from.
	Storage string `env:"STORAGE" envDefault:"local"`
	// DataRoot is the base directory of local storage. When empty, paths are
	// resolved relative to the directory of each sample file.
	DataRoot     string `env:"DATA_ROOT"`
	MaxFileBytes int64  `env:"MAX_FILE_BYTES" envDefault:"1073741824"`

	S3 file.S3Config `envPrefix:"S3_"`
}

func loadConfig(envFile string, environ map[string]string) (Config, error) {
	opts := []config.Option{config.WithPrefix(EnvPrefix)}
	if envFile != "" {
		opts = append(opts, config.WithEnvFiles(envFile))
	}
	if environ != nil {
		opts = append(opts, config.WithEnviron(environ))
	}

	var cfg Config
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
