package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Test Group 1: LoadEnvString / LoadEnvStringList
// ============================================================================

func TestLoadEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "custom_value")
	assert.Equal(t, "custom_value", LoadEnvString("TEST_STRING", "default_value"))

	t.Setenv("TEST_STRING", "")
	assert.Equal(t, "default_value", LoadEnvString("TEST_STRING", "default_value"))
}

func TestLoadEnvStringList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"unset", "", []string{"fallback"}},
		{"single", "key-a", []string{"key-a"}},
		{"trims and drops blanks", " key-a , ,key-b ", []string{"key-a", "key-b"}},
		{"only separators", " , ,", []string{"fallback"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_LIST", tt.value)
			assert.Equal(t, tt.want, LoadEnvStringList("TEST_LIST", []string{"fallback"}))
		})
	}
}

// ============================================================================
// Test Group 2: LoadEnvWithFallback
// ============================================================================

func TestLoadEnvWithFallback_WithValidValue(t *testing.T) {
	t.Setenv("TEST_CRON", "*/10 * * * *")

	result := LoadEnvWithFallback("TEST_CRON", "*/5 * * * *", ValidateCronSchedule)

	assert.Equal(t, "*/10 * * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_WithoutValue(t *testing.T) {
	result := LoadEnvWithFallback("TEST_CRON_UNSET", "*/5 * * * *", ValidateCronSchedule)

	assert.Equal(t, "*/5 * * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_NoValidator(t *testing.T) {
	t.Setenv("TEST_ANY", "anything goes")

	result := LoadEnvWithFallback("TEST_ANY", "default", nil)

	assert.Equal(t, "anything goes", result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_InvalidTimezone(t *testing.T) {
	t.Setenv("TEST_TZ", "Mars/Olympus_Mons")

	result := LoadEnvWithFallback("TEST_TZ", "UTC", ValidateTimezone)

	assert.Equal(t, "UTC", result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_TZ='Mars/Olympus_Mons'")
	assert.Contains(t, result.Warnings[0], "falling back to default 'UTC'")
}

// ============================================================================
// Test Group 3: LoadEnvDuration
// ============================================================================

func TestLoadEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		want         time.Duration
		wantFallback bool
	}{
		{"unset", "", 4 * time.Hour, false},
		{"milliseconds", "400ms", 400 * time.Millisecond, false},
		{"compound", "1h30m", 90 * time.Minute, false},
		{"bad format", "four hours", 4 * time.Hour, true},
		{"zero rejected", "0s", 4 * time.Hour, true},
		{"negative rejected", "-1m", 4 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_TTL", tt.value)

			result := LoadEnvDuration("TEST_TTL", 4*time.Hour, ValidatePositiveDuration)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
			if tt.wantFallback {
				assert.Len(t, result.Warnings, 1)
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestLoadEnvDuration_WithRangeValidator(t *testing.T) {
	t.Setenv("TEST_DELAY", "10s")

	result := LoadEnvDuration("TEST_DELAY", 400*time.Millisecond, func(d time.Duration) error {
		return ValidateDuration(d, 50*time.Millisecond, 5*time.Second)
	})

	assert.Equal(t, 400*time.Millisecond, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "exceeds maximum")
}

// ============================================================================
// Test Group 4: LoadEnvInt / LoadEnvFloat
// ============================================================================

func TestLoadEnvInt(t *testing.T) {
	inRange := func(v int) error { return ValidateIntRange(v, 1, 250) }

	tests := []struct {
		name         string
		value        string
		want         int
		wantFallback bool
	}{
		{"unset", "", 10, false},
		{"valid", "25", 25, false},
		{"decimal", "2.5", 10, true},
		{"spaces", " 25 ", 10, true},
		{"garbage", "ten", 10, true},
		{"below minimum", "0", 10, true},
		{"above maximum", "251", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)

			result := LoadEnvInt("TEST_INT", 10, inRange)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
		})
	}
}

func TestLoadEnvInt_WarningMentionsFormat(t *testing.T) {
	t.Setenv("TEST_INT", "ten")

	result := LoadEnvInt("TEST_INT", 10, nil)

	assert.Contains(t, result.Warnings[0], "invalid integer format")
}

func TestLoadEnvFloat(t *testing.T) {
	t.Setenv("TEST_RATE", "0.5")
	result := LoadEnvFloat("TEST_RATE", 1, ValidatePositiveFloat)
	assert.InDelta(t, 0.5, result.Value, 1e-9)
	assert.False(t, result.FallbackApplied)

	t.Setenv("TEST_RATE", "-2")
	result = LoadEnvFloat("TEST_RATE", 1, ValidatePositiveFloat)
	assert.InDelta(t, 1.0, result.Value, 1e-9)
	assert.True(t, result.FallbackApplied)

	t.Setenv("TEST_RATE", "fast")
	result = LoadEnvFloat("TEST_RATE", 1, ValidatePositiveFloat)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "invalid number format")
}

// ============================================================================
// Test Group 5: LoadEnvBool
// ============================================================================

func TestLoadEnvBool(t *testing.T) {
	for _, v := range []string{"1", "t", "true", "TRUE", "True"} {
		t.Setenv("TEST_BOOL", v)
		assert.True(t, LoadEnvBool("TEST_BOOL", false).Value, v)
	}
	for _, v := range []string{"0", "f", "false", "FALSE", "False"} {
		t.Setenv("TEST_BOOL", v)
		assert.False(t, LoadEnvBool("TEST_BOOL", true).Value, v)
	}
}

func TestLoadEnvBool_InvalidFormat(t *testing.T) {
	t.Setenv("TEST_BOOL", "yes")

	result := LoadEnvBool("TEST_BOOL", true)

	assert.True(t, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "expected 'true' or 'false'")
}
