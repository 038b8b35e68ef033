package account

import (
	"strings"
	"time"
)

// Purpose identifies why a one-time passcode was issued.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password_reset"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset:
		return true
	}
	return false
}

// PendingRegistration is the profile collected by the registration form.
// The account service only creates the user once the OTP is verified, so the
// whole payload has to travel with the flow until then.
type PendingRegistration struct {
	Username    string `json:"username" validate:"notblank"`  // Chosen username
	Email       string `json:"email" validate:"notblank"`     // Address the OTP is sent to
	Password    string `json:"password" validate:"notblank"`  // Plain password, hashed by the server
	FullName    string `json:"full_name" validate:"notblank"` // Display name
	DateOfBirth string `json:"dob" validate:"notblank"`       // ISO date as entered (YYYY-MM-DD)
	Phone       string `json:"phone" validate:"notblank"`     // Phone number as entered
}

// Clone returns an independent copy so a carried payload cannot be mutated
// by the screen that produced it.
func (p *PendingRegistration) Clone() *PendingRegistration {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ChallengeState is the client's view of an OTP challenge.
type ChallengeState string

const (
	ChallengeAwaiting ChallengeState = "awaiting"
	ChallengeVerified ChallengeState = "verified"
	ChallengeRejected ChallengeState = "rejected"
)

// OTPChallenge records an issued code. Expiry and attempt counting belong to
// the server.
type OTPChallenge struct {
	Email    string
	Purpose  Purpose
	IssuedAt time.Time
	State    ChallengeState
}

// PasswordResetContext is carried between the steps of password recovery.
type PasswordResetContext struct {
	Email       string `json:"email"`
	OTPVerified bool   `json:"otp_verified"`
}

// HasEmail reports whether the context can be used by a later step.
func (rc *PasswordResetContext) HasEmail() bool {
	return rc != nil && strings.TrimSpace(rc.Email) != ""
}

// Verified returns a copy of the context marked as OTP verified.
func (rc PasswordResetContext) Verified() *PasswordResetContext {
	rc.OTPVerified = true
	return &rc
}

// Credentials is the access/refresh pair returned by a login exchange.
type Credentials struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// Complete reports whether both tokens are present.
func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// Profile is the current user as returned by the profile endpoint.
type Profile struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	IsActive   bool   `json:"is_active"`
	DateJoined string `json:"date_joined,omitempty"`
}
