package gateway

// Account API paths, relative to the configured base URL.
// All endpoints used by the client are defined here to prevent typos
const (
	// Registration
	PathRegister  = "/users/register/"
	PathVerifyOTP = "/users/verify-otp/"
	PathResendOTP = "/users/resend-otp/"

	// Login
	PathLogin   = "/users/login/"
	PathProfile = "/users/profile/"

	// Password recovery
	PathRequestPasswordReset = "/users/request-password-reset/"
	PathVerifyResetOTP       = "/users/verify-reset-otp/"
	PathResetPassword        = "/users/reset-password/"

	// Dashboard
	PathTasks         = "/dashboard/tasks/"
	PathEvents        = "/scheduler/events/"
	PathRoadmaps      = "/roadmap/roadmaps/"
	PathCreateRoadmap = "/roadmap/roadmaps/create/"
)

// MessageResponse is the {message} body most account endpoints return.
type MessageResponse struct {
	Message string `json:"message"`
}
