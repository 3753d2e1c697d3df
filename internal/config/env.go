package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	EnvAPIURL = "SMARTTHINGS_API_URL"
	EnvToken  = "SMARTTHINGS_PAT"

	DefaultAPIURL = "https://api.smartthings.com"
)

// Env is the process environment the generator reads.
type Env struct {
	APIURL string
	Token  string
}

// LoadEnv loads dir/.env into the process environment, without overriding
// variables already set, and returns the resolved values. A missing .env
// file is not an error.
func LoadEnv(dir string) (Env, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, err
	}
	env := Env{
		APIURL: os.Getenv(EnvAPIURL),
		Token:  os.Getenv(EnvToken),
	}
	if env.APIURL == "" {
		env.APIURL = DefaultAPIURL
	}
	return env, nil
}
