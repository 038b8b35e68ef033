package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "PLANORA"
	configName     = "planora"
	configType     = "yaml"
	homeConfigPath = "$HOME/.planora"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	FlowConfig
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Flow
}

// New loads configuration from the environment, from configFile when it is
// set, or else from an optional planora.yaml in the working directory or
// $HOME/.planora.
func New(configFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindShortEnv(v); err != nil {
		return nil, err
	}
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "[config.New] reading %s", configFile)
		}
		return FromViper(v), nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(".")
	v.AddConfigPath(homeConfigPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "[config.New] reading config")
		}
	}
	return FromViper(v), nil
}

// FromViper wraps an already loaded viper instance.
func FromViper(v *viper.Viper) Config {
	return mainConfig{
		EnvVars: EnvVars{v: v},
		API:     API{v: v},
		Storage: Storage{v: v},
		Flow:    Flow{v: v},
	}
}

// bindShortEnv keeps the unnested names for the settings people export most.
func bindShortEnv(v *viper.Viper) error {
	for key, env := range map[string]string{
		keyAppEnv:      envPrefix + "_ENV",
		keyLogLevel:    envPrefix + "_LOG_LEVEL",
		keyAPIBaseURL:  envPrefix + "_API_URL",
		keyStorageKind: envPrefix + "_STORAGE_KIND",
	} {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return errors.Wrapf(err, "[config.bindShortEnv] %s", key)
		}
	}
	return nil
}
