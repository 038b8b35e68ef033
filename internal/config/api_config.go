package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	keyAPIBaseURL = "api.base_url"
	keyAPITimeout = "api.timeout"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type API struct {
	v *viper.Viper
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the account service API root (e.g. "http://127.0.0.1:8000/api")
func (a API) GetAPIBaseURL() string {
	return a.v.GetString(keyAPIBaseURL)
}

func (a API) GetAPITimeout() time.Duration {
	if d := a.v.GetDuration(keyAPITimeout); d > 0 {
		return d
	}
	return defaultAPITimeout
}
