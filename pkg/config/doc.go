// Package config loads environment-driven configuration into tagged structs.
//
// Load reads dotenv files with github.com/joho/godotenv, merges them under
// the process environment and parses the result with
// github.com/caarlos0/env/v11, so every struct tag feature of that library
// (envDefault, required, envSeparator, prefixes) is available. The process
// environment is never modified.
//
// # Usage
//
//	type Config struct {
//		Storage  string `env:"STORAGE" envDefault:"local"`
//		DataRoot string `env:"DATA_ROOT"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithPrefix("IMDM_")); err != nil {
//		return err
//	}
//
// # Error Handling
//
// Parsing failures wrap ErrParsingConfig; unreadable dotenv files given with
// WithEnvFiles wrap ErrLoadEnvFile. A missing default .env file is ignored.
package config
