// Package config resolves settings from flags, CP2MD_* environment
// variables, an optional cp2md.yaml file and built-in defaults, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/whee/cp2md/internal/format"
)

const appName = "cp2md"

// Setting keys. Flags of the same name are bound to them.
const (
	KeyOutput         = "output"
	KeyConcat         = "concat"
	KeyForce          = "force"
	KeyDryRun         = "dry-run"
	KeyQuiet          = "quiet"
	KeyDebug          = "debug"
	KeyHeadingOffset  = "heading-offset"
	KeyShowTools      = "show-tools"
	KeyShowTimestamps = "show-timestamps"
	KeyShowModel      = "show-model"
	KeyShowAgent      = "show-agent"
	KeyShowContext    = "show-context"
	KeyListFormat     = "list-format"
)

// Settings is the resolved configuration for one invocation.
type Settings struct {
	Render     format.Options
	Output     string
	Concat     bool
	Force      bool
	DryRun     bool
	Quiet      bool
	Debug      bool
	ListFormat string
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	defaults := format.DefaultOptions()
	v.SetDefault(KeyShowTools, defaults.ShowTools)
	v.SetDefault(KeyShowTimestamps, defaults.ShowTimestamps)
	v.SetDefault(KeyShowModel, defaults.ShowModel)
	v.SetDefault(KeyShowAgent, defaults.ShowAgent)
	v.SetDefault(KeyShowContext, defaults.ShowAttachments)
	v.SetDefault(KeyHeadingOffset, defaults.HeadingOffset)
	v.SetDefault(KeyConcat, false)
	v.SetDefault(KeyForce, false)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyListFormat, "table")
}

// LoadDotEnv loads a .env file from the working directory when one exists.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ReadFile reads the config file at path, or searches the standard
// locations for cp2md.yaml when path is empty. A missing file is not an
// error unless path was given explicitly.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Resolve reads the settings out of v.
func Resolve(v *viper.Viper) (Settings, error) {
	s := Settings{
		Render: format.Options{
			ShowTools:       v.GetBool(KeyShowTools),
			ShowTimestamps:  v.GetBool(KeyShowTimestamps),
			ShowModel:       v.GetBool(KeyShowModel),
			ShowAgent:       v.GetBool(KeyShowAgent),
			ShowAttachments: v.GetBool(KeyShowContext),
			HeadingOffset:   v.GetInt(KeyHeadingOffset),
		},
		Output:     v.GetString(KeyOutput),
		Concat:     v.GetBool(KeyConcat),
		Force:      v.GetBool(KeyForce),
		DryRun:     v.GetBool(KeyDryRun),
		Quiet:      v.GetBool(KeyQuiet),
		Debug:      v.GetBool(KeyDebug),
		ListFormat: v.GetString(KeyListFormat),
	}

	if err := s.Render.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
