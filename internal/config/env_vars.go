package config

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	keyAppName  = "app.name"
	keyAppEnv   = "app.env"
	keyLogLevel = "app.log_level"

	devEnv = "DEV"
)

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetLogLevel() zerolog.Level
}

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(keyAppName)
}

func (e EnvVars) GetEnv() string {
	env := strings.ToUpper(strings.TrimSpace(e.v.GetString(keyAppEnv)))
	if env == "" {
		return devEnv
	}
	return env
}

// IsDev reports whether console logging should be used.
func (e EnvVars) IsDev() bool {
	return e.GetEnv() == devEnv
}

// GetLogLevel falls back to info for unknown level names.
func (e EnvVars) GetLogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(e.v.GetString(keyLogLevel)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
