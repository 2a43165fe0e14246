// Package config provides shared configuration utilities.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// Environment variables read by Load.
const (
	EnvTick        = "SNAKE_TICK"
	EnvBordersKill = "SNAKE_BORDERS_KILL"
	EnvLogFile     = "SNAKE_LOG_FILE"
	EnvLogLevel    = "SNAKE_LOG_LEVEL"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetDuration parses the variable as a Go duration. Unset returns fallback;
// malformed or non-positive values return fallback and an error.
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return fallback, fmt.Errorf("%s: duration must be positive, got %s", key, raw)
	}
	return d, nil
}

// GetBool parses the variable with strconv.ParseBool.
func GetBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// Settings are the runtime overrides of the game.
type Settings struct {
	Tick        time.Duration
	BordersKill bool
	LogFile     string
	LogLevel    log.Level
}

// Load reads Settings from the environment, starting from defaults.
// Problems are returned alongside the usable result so the caller can log
// them once a logger exists.
func Load(defaults Settings) (Settings, []error) {
	s := defaults
	var problems []error

	var err error
	if s.Tick, err = GetDuration(EnvTick, defaults.Tick); err != nil {
		problems = append(problems, err)
	}
	if s.BordersKill, err = GetBool(EnvBordersKill, defaults.BordersKill); err != nil {
		problems = append(problems, err)
	}
	s.LogFile = GetEnv(EnvLogFile, defaults.LogFile)
	if raw, ok := os.LookupEnv(EnvLogLevel); ok {
		lvl, err := log.ParseLevel(raw)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", EnvLogLevel, err))
		} else {
			s.LogLevel = lvl
		}
	}
	return s, problems
}
