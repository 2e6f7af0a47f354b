package sync

import (
	"github.com/go-playground/validator/v10"

	"taskbridge/backend"
)

// Preferences is the user-facing sync configuration handed to the driver.
type Preferences struct {
	// DefaultReminderSeconds, when set, is stamped onto tasks materialized
	// from remote creates. Nil means no default reminder.
	DefaultReminderSeconds *int `json:"default_reminder_seconds,omitempty" validate:"omitempty,min=0"`

	// SuppressSummaryDialog skips the end-of-run summary in background mode.
	SuppressSummaryDialog bool `json:"suppress_summary_dialog,omitempty"`

	// BackgroundMode runs without a progress surface; log lines are recorded,
	// and the summary too unless SuppressSummaryDialog is set.
	BackgroundMode bool `json:"background_mode,omitempty"`
}

// DefaultPreferences returns the zero-configuration behavior.
func DefaultPreferences() Preferences {
	return Preferences{}
}

// Validate checks the preference record.
func (p Preferences) Validate() error {
	return validator.New().Struct(p)
}

// ApplyDefaults fills a freshly materialized local task with user-preference
// defaults. This is the only place default policy appears; it is a pure
// function of (preferences, blank task).
func ApplyDefaults(prefs Preferences, task *backend.Task) {
	if prefs.DefaultReminderSeconds != nil && task.ReminderSeconds == 0 {
		task.ReminderSeconds = *prefs.DefaultReminderSeconds
	}
}
