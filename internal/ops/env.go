package ops

import (
	"os"

	"marketspread/pkg/exception"

	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
)

// Environment overrides.
const (
	EnvPostgresDSN     = "MARKETSPREAD_POSTGRES_DSN"
	EnvSpreadThreshold = "MARKETSPREAD_SPREAD_THRESHOLD"
)

var envKeys = []string{EnvPostgresDSN, EnvSpreadThreshold}

// ReadEnv collects the override variables from dotenv files, then from the
// process environment, which wins. Missing files are skipped.
func ReadEnv(files ...string) (map[string]string, error) {
	env := make(map[string]string, len(envKeys))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			return nil, errors.Wrapf(err, "read env file %s", file)
		}
		for _, key := range envKeys {
			if v, ok := values[key]; ok {
				env[key] = v
			}
		}
	}
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

// ApplyEnv returns loaded with the overrides in env applied.
func ApplyEnv(loaded Loaded, env map[string]string) (Loaded, error) {
	if dsn := env[EnvPostgresDSN]; dsn != "" {
		loaded.Sink.Postgres.DSN = dsn
	}
	if raw := env[EnvSpreadThreshold]; raw != "" {
		v, err := parseDecimal(EnvSpreadThreshold, raw)
		if err != nil {
			return Loaded{}, err
		}
		if v.Sign() <= 0 {
			return Loaded{}, &FieldError{Field: EnvSpreadThreshold, Value: raw, Err: exception.ErrConfigInvalidThreshold}
		}
		loaded.Market.SpreadThreshold = v
	}
	return loaded, nil
}
