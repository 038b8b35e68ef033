package config

import (
	"time"

	"github.com/jrsteele09/planora-client/navigation"
	"github.com/spf13/viper"
)

const (
	defaultAppName    = "Planora"
	defaultBaseURL    = "http://127.0.0.1:8000/api"
	defaultAPITimeout = 10 * time.Second
	defaultRedisAddr  = "localhost:6379"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyAppName, defaultAppName)
	v.SetDefault(keyAppEnv, devEnv)
	v.SetDefault(keyLogLevel, "info")

	v.SetDefault(keyAPIBaseURL, defaultBaseURL)
	v.SetDefault(keyAPITimeout, defaultAPITimeout)

	v.SetDefault(keyStorageKind, BackendFile)
	v.SetDefault(keyStorageFile, defaultSessionFile())
	v.SetDefault(keyStorageSecret, "")
	v.SetDefault(keyStorageProfile, "")
	v.SetDefault(keyRedisAddr, defaultRedisAddr)
	v.SetDefault(keyRedisPassword, "")
	v.SetDefault(keyRedisDB, 0)

	d := navigation.DefaultDelays()
	v.SetDefault(keyDelayRegistration, d.AfterRegistration)
	v.SetDefault(keyDelayLogin, d.AfterLogin)
	v.SetDefault(keyDelayResetRequest, d.AfterResetRequest)
	v.SetDefault(keyDelayResetVerify, d.AfterResetVerify)
	v.SetDefault(keyDelayReset, d.AfterReset)
	v.SetDefault(keyDelayMissing, d.MissingContext)
}
