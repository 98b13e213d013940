package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the API server.
type Config struct {
	HTTP     HTTP
	Database Database
	Auth     Auth
	Redis    Redis
	Log      Log
}

// New reads configuration from environment variables and unmarshals them
// into a struct of type T.
func New[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Load reads an optional .env file and then parses T from the environment.
// Variables already set in the process environment win over the file.
func Load[T any](files ...string) (T, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var zero T
		return zero, fmt.Errorf("load dotenv: %w", err)
	}
	return New[T]()
}
