package config

import (
	"time"

	"github.com/jrsteele09/planora-client/navigation"
	"github.com/spf13/viper"
)

const (
	keyDelayRegistration = "flow.after_registration"
	keyDelayLogin        = "flow.after_login"
	keyDelayResetRequest = "flow.after_reset_request"
	keyDelayResetVerify  = "flow.after_reset_verify"
	keyDelayReset        = "flow.after_reset"
	keyDelayMissing      = "flow.missing_context"
)

type FlowConfig interface {
	GetDelays() navigation.Delays
}

type Flow struct {
	v *viper.Viper
}

var _ FlowConfig = Flow{}

// GetDelays returns the pauses before each navigation. Negative values are
// treated as zero.
func (f Flow) GetDelays() navigation.Delays {
	d := navigation.Delays{
		AfterRegistration: f.v.GetDuration(keyDelayRegistration),
		AfterLogin:        f.v.GetDuration(keyDelayLogin),
		AfterResetRequest: f.v.GetDuration(keyDelayResetRequest),
		AfterResetVerify:  f.v.GetDuration(keyDelayResetVerify),
		AfterReset:        f.v.GetDuration(keyDelayReset),
		MissingContext:    f.v.GetDuration(keyDelayMissing),
	}
	for _, p := range []*time.Duration{&d.AfterRegistration, &d.AfterLogin, &d.AfterResetRequest, &d.AfterResetVerify, &d.AfterReset, &d.MissingContext} {
		if *p < 0 {
			*p = 0
		}
	}
	return d
}
