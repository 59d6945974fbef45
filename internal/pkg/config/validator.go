package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule validates a five-field cron expression
// ("minute hour day month weekday") with the same parser the watcher uses.
// Descriptors such as "@every 5m" are accepted too.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	return nil
}

// ValidateTimezone checks that timezone is a loadable IANA name such as
// "UTC" or "America/New_York". "Local" is accepted.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}

	return nil
}

// ValidateDuration checks min <= duration <= max.
func ValidateDuration(duration, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}

	if duration < min {
		return fmt.Errorf("duration %v is below minimum %v", duration, min)
	}

	if duration > max {
		return fmt.Errorf("duration %v exceeds maximum %v", duration, max)
	}

	return nil
}

// ValidateIntRange checks min <= value <= max.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}

	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}

	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}

	return nil
}

// ValidatePositiveDuration rejects zero and negative durations.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}

	return nil
}

// ValidatePositiveFloat rejects zero, negative and NaN values.
func ValidatePositiveFloat(value float64) error {
	if !(value > 0) {
		return fmt.Errorf("value must be positive, got %v", value)
	}
	return nil
}

// ValidateHTTPURL requires an absolute http or https URL with a host.
func ValidateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL '%s': %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL '%s': scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL '%s': missing host", raw)
	}
	return nil
}

// ValidateDateLayout requires a Go reference-time layout that renders the
// day, month and year. "1/2/2006" passes; "Monday" does not.
func ValidateDateLayout(layout string) error {
	if strings.TrimSpace(layout) == "" {
		return fmt.Errorf("invalid date layout: cannot be empty")
	}

	ref := time.Date(2033, time.November, 22, 0, 0, 0, 0, time.UTC)
	out := ref.Format(layout)
	hasYear := strings.Contains(out, "2033") || strings.Contains(out, "33")
	hasMonth := strings.Contains(out, "11") || strings.Contains(out, "Nov")
	hasDay := strings.Contains(out, "22")
	if !hasYear || !hasMonth || !hasDay {
		return fmt.Errorf("invalid date layout '%s': must include day, month and year", layout)
	}
	return nil
}
