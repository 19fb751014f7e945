// Package config resolves client credentials from the process environment
// and an optional dotenv-style file. Resolution is deterministic and
// side-effect-free: environment variables win per field, the file fills the
// gaps, and no network is touched. Secret values are never echoed in logs or
// errors.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// EnvPrefix is the prefix of every credential environment variable.
const EnvPrefix = "CRIBL"

// DefaultEnvFile is the dotenv file consulted when no path is given.
const DefaultEnvFile = ".env"

// credential fields, also the suffixes of the CRIBL_* variables.
var fields = []string{"client_id", "client_secret", "org_id", "workspace", "auth_url", "api_endpoint"}

// required is the subset of fields whose absence is fatal.
var required = []string{"client_id", "client_secret", "org_id", "workspace"}

// Resolve returns a Config populated from CRIBL_* environment variables and
// the dotenv file at envFile (defaulting to ".env"; a missing file is fine).
// All missing required fields are reported together in one
// ConfigurationError, before any network activity.
func Resolve(envFile string) (*searchgoat.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for _, field := range fields {
		_ = v.BindEnv(field)
	}

	if envFile == "" {
		envFile = DefaultEnvFile
	}

	v.SetConfigFile(envFile)
	v.SetConfigType("env")

	err := v.ReadInConfig()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &searchgoat.ConfigurationError{Reason: fmt.Sprintf("reading %s: %v", envFile, err)}
		}
	}

	var missing []string

	for _, field := range required {
		if lookup(v, field) == "" {
			missing = append(missing, envName(field))
		}
	}

	if len(missing) > 0 {
		return nil, &searchgoat.ConfigurationError{Missing: missing}
	}

	return &searchgoat.Config{
		ClientID:     lookup(v, "client_id"),
		ClientSecret: lookup(v, "client_secret"),
		OrgID:        lookup(v, "org_id"),
		Workspace:    lookup(v, "workspace"),
		AuthURL:      lookup(v, "auth_url"),
		APIEndpoint:  lookup(v, "api_endpoint"),
	}, nil
}

// lookup applies the resolution order: explicit environment variable first,
// then the dotenv file, first non-empty wins.
func lookup(v *viper.Viper, field string) string {
	value := v.GetString(field)
	if value != "" {
		return value
	}

	// Keys read from the dotenv file keep their full CRIBL_ name.
	return v.GetString("cribl_" + field)
}

// envName renders the environment variable name for a field.
func envName(field string) string {
	return strings.ToUpper(EnvPrefix + "_" + field)
}
