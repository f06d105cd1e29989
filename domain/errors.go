package domain

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownStandardError reports standard identifiers that are not registered.
// This is a configuration error: it aborts the review before any scanning.
type UnknownStandardError struct {
	IDs []string
}

func (e *UnknownStandardError) Error() string {
	return fmt.Sprintf("unknown standard id(s): %s", strings.Join(e.IDs, ", "))
}

// ConfigError wraps malformed or invalid configuration. Surfaced at load
// time, never at review time.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// AdapterError describes a recoverable adapter-level failure: tool crash,
// non-zero exit, or timeout. It never propagates past the controller; it is
// captured in ScanResult.Error and reflected as a capability note.
type AdapterError struct {
	Adapter string
	Timeout bool
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("adapter %s timed out: %v", e.Adapter, e.Err)
	}
	return fmt.Sprintf("adapter %s failed: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// ErrInternal marks an aggregation invariant violation. Reviews that hit it
// fail closed: no findings are returned rather than a possibly wrong list.
var ErrInternal = errors.New("internal invariant violated")
