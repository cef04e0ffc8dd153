package ports

import "context"

// PresetAppliedEvent describes a preset application for analytics.
type PresetAppliedEvent struct {
	DeviceID    string                 `json:"device_id"`
	PresetID    string                 `json:"preset_id"`
	PresetName  string                 `json:"preset_name"`
	UserID      string                 `json:"user_id"`
	UserRole    string                 `json:"user_role"`
	Profile     map[string]interface{} `json:"profile"`
	AppliedAt   string                 `json:"applied_at"`
	UsageNumber int                    `json:"usage_number,omitempty"`
}

// UserLoggedInEvent describes a successful login for analytics.
type UserLoggedInEvent struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	LoginCount int    `json:"login_count"`
	LoggedInAt string `json:"logged_in_at"`
}

// UsagePublisher emits analytics events. Publishing is strictly
// best-effort: implementations return errors for logging, and callers
// never fail a request over them.
type UsagePublisher interface {
	PresetApplied(ctx context.Context, event PresetAppliedEvent) error
	UserLoggedIn(ctx context.Context, event UserLoggedInEvent) error
}

// MetricsRecorder counts business-level operations. Best-effort, like
// UsagePublisher.
type MetricsRecorder interface {
	IncrementCounter(ctx context.Context, name string)
}
