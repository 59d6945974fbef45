package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one configuration value.
//
// Loaders never fail. A value that cannot be parsed or does not pass its
// validator is replaced by the default and reported in Warnings, so the
// caller can log it and count the fallback.
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// Validator checks a parsed value. A nil Validator accepts everything.
type Validator[T any] func(T) error

// LoadEnvString returns the value of envKey, or defaultValue when unset.
// No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string and validates it.
//
// Warning format:
//
//	"Invalid {envKey}='{value}': {error}, falling back to default '{default}'"
func LoadEnvWithFallback(envKey, defaultValue string, validator Validator[string]) LoadResult[string] {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a Go duration string such as "400ms" or "4h".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator Validator[time.Duration]) LoadResult[time.Duration] {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer. Surrounding spaces and decimals are rejected.
func LoadEnvInt(envKey string, defaultValue int, validator Validator[int]) LoadResult[int] {
	return load(envKey, defaultValue, func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// LoadEnvFloat loads a floating point number, used for request rates.
func LoadEnvFloat(envKey string, defaultValue float64, validator Validator[float64]) LoadResult[float64] {
	return load(envKey, defaultValue, func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number format")
		}
		return v, nil
	}, validator)
}

// LoadEnvBool loads a boolean. Accepted spellings follow strconv.ParseBool.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	return load(envKey, defaultValue, func(s string) (bool, error) {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return v, nil
	}, nil)
}

// LoadEnvStringList loads a comma-separated list. Blank items are dropped
// and an empty result falls back to defaultValue.
func LoadEnvStringList(envKey string, defaultValue []string) []string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validator Validator[T]) LoadResult[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	fallback := func(err error) LoadResult[T] {
		return LoadResult[T]{
			Value: defaultValue,
			Warnings: []string{fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, raw, err, defaultValue,
			)},
			FallbackApplied: true,
		}
	}

	parsed, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(err)
		}
	}
	return LoadResult[T]{Value: parsed}
}
