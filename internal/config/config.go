// Package config resolves command settings from flags, environment variables
// and an optional configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/naka-gawa/repokeeper/internal/domain"
)

const (
	EnvPrefix  = "REPOKEEPER"
	configName = "repokeeper"
	configType = "yaml"

	configReadErrorTemplate      = "failed to read configuration: %w"
	configUnmarshalErrorTemplate = "failed to parse configuration: %w"
	flagBindErrorTemplate        = "failed to bind flags: %w"
)

// TokenEnvironmentVariables are consulted in order when no token was given
// through a flag, the REPOKEEPER_TOKEN variable or the configuration file.
var TokenEnvironmentVariables = []string{"GITHUB_API_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"}

// Logging holds the settings shared by every command.
type Logging struct {
	LogLevel  string `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log-format" validate:"oneof=console structured"`
	Verbose   bool   `mapstructure:"verbose"`
}

// PRStats configures the prstats command.
type PRStats struct {
	Logging       `mapstructure:",squash"`
	Token         string `mapstructure:"token" validate:"required"`
	Owner         string `mapstructure:"owner" validate:"required"`
	Repo          string `mapstructure:"repo" validate:"required"`
	Days          int    `mapstructure:"days" validate:"gte=1"`
	PageSize      int    `mapstructure:"page-size" validate:"gte=1,lte=100"`
	Concurrency   int    `mapstructure:"concurrency" validate:"gte=1,lte=16"`
	Format        string `mapstructure:"format" validate:"oneof=text json yaml"`
	Remote        string `mapstructure:"remote"`
	SkipPreflight bool   `mapstructure:"skip-preflight"`
}

// Clean configures the clean command.
type Clean struct {
	Logging `mapstructure:",squash"`
	Remote  string `mapstructure:"remote" validate:"required"`
	DryRun  bool   `mapstructure:"dry-run"`
}

// Load fills target from flags, REPOKEEPER_* environment variables and the
// configuration file, in decreasing order of precedence. Without an explicit
// path, repokeeper.yaml in the working directory is used when present.
func Load(flags *pflag.FlagSet, configPath string, target any) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
	}

	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf(flagBindErrorTemplate, err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf(configReadErrorTemplate, err)
		}
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf(configUnmarshalErrorTemplate, err)
	}
	return nil
}

// ResolveToken returns explicit when set, otherwise the first non-empty
// variable of TokenEnvironmentVariables.
func ResolveToken(explicit string) (string, error) {
	if token := strings.TrimSpace(explicit); token != "" {
		return token, nil
	}
	for _, name := range TokenEnvironmentVariables {
		if token := strings.TrimSpace(os.Getenv(name)); token != "" {
			return token, nil
		}
	}
	return "", domain.ErrTokenMissing
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks cfg against its validate tags and reports the first
// violation by its flag name.
func Validate(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return describe(fieldErrors[0])
}

func describe(fe validator.FieldError) error {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("--%s is required", name)
	case "gte":
		return fmt.Errorf("--%s must be at least %s, got %v", name, fe.Param(), fe.Value())
	case "lte":
		return fmt.Errorf("--%s must be at most %s, got %v", name, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Errorf("--%s must be one of [%s], got %q", name, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Errorf("--%s is invalid (%s)", name, fe.Tag())
	}
}
