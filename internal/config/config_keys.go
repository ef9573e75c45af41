// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic used by the "safechange config" command.
//
// Design: Pointers are used for optional fields so we can distinguish
// between "not set" (nil) and "explicitly set to zero/false". Defaults only
// apply when the user hasn't set a value.

package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"backup.dir", "backup.tag", "backup.scheme", "backup.always",
		"log.file", "log.db",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string. Path keys
// return the configured value only - the command layer resolves defaults
// against the state directory.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "backup.dir":
		return deref(c.Backup.Dir), nil
	case "backup.tag":
		return c.Tag(), nil
	case "backup.scheme":
		return c.Scheme(), nil
	case "backup.always":
		if c.BackupAlways() {
			return "true", nil
		}
		return "false", nil
	case "log.file":
		return deref(c.Log.File), nil
	case "log.db":
		return deref(c.Log.DB), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "backup.dir":
		c.Backup.Dir = &value
	case "backup.tag":
		if value == "" || strings.ContainsAny(value, "/ \t\n") {
			return fmt.Errorf("%w: backup.tag must be non-empty with no spaces or slashes", ErrInvalidValue)
		}
		c.Backup.Tag = &value
	case "backup.scheme":
		if value != "sequential" && value != "timestamp" {
			return fmt.Errorf("%w: backup.scheme must be sequential or timestamp", ErrInvalidValue)
		}
		c.Backup.Scheme = &value
	case "backup.always":
		v := strings.ToLower(value)
		if v != "true" && v != "false" {
			return fmt.Errorf("%w: backup.always must be true or false", ErrInvalidValue)
		}
		b := v == "true"
		c.Backup.Always = &b
	case "log.file":
		c.Log.File = &value
	case "log.db":
		c.Log.DB = &value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns every key with its effective value, in ValidKeys order.
func (c *Config) All() map[string]string {
	out := make(map[string]string, len(ValidKeys()))
	for _, k := range ValidKeys() {
		v, _ := c.Get(k)
		out[k] = v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
