package model

const (
	// EPS is the numerical tolerance shared by pricing, cuts and dual checks.
	EPS = 1e-5
	// MinimumCutViolation is how far a cut must be violated to count as separating.
	MinimumCutViolation = 0.01
	// OTPTimeLimit is the on-time-performance threshold in minutes.
	OTPTimeLimit = 14
	// ErrorCode is the process exit code for fatal solver errors.
	ErrorCode = 17
)
