// Package errors provides standardized error handling for the skiff runtime.
// It defines common error types, constants, and helper functions for consistent
// error creation, wrapping, and handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package functions that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Lock error kinds
	LockHeld
	LockLost
	LockExpired
	// Source error kinds
	SourceConnectFailed
	SourcePollFailed
	SourceNotFound
	// Hook error kinds
	HookFailed
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Keymap error kinds
	DuplicateBinding
	SubmapCollision
	// State error kinds
	StateWriteFailed
	TerminalFailed
)

// Common error constants for frequently occurring errors
var (
	ErrLockHeld      = NewLockError("index lock held by another process", LockHeld, nil)
	ErrLockLost      = NewLockError("index lock no longer owned by this process", LockLost, nil)
	ErrLockExpired   = NewLockError("index lock lease expired", LockExpired, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the error kind
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// New creates a new ApplicationError with the given message
func New(msg string) *ApplicationError {
	return &ApplicationError{msg: msg, kind: Unknown}
}

// Newf creates a new ApplicationError with a formatted message
func Newf(format string, args ...interface{}) *ApplicationError {
	return &ApplicationError{msg: fmt.Sprintf(format, args...), kind: Unknown}
}

// Wrap wraps an error with a message. Returns nil if err is nil.
func Wrap(err error, msg string) *ApplicationError {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err, kind: kindOf(err)}
}

// Wrapf wraps an error with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) *ApplicationError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// LockError represents an error involving the exclusive index lock
type LockError struct {
	ApplicationError
}

// NewLockError creates a new LockError
func NewLockError(msg string, kind ErrorKind, err error) *LockError {
	return &LockError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
	}
}

// SourceError represents an error involving a mail source
type SourceError struct {
	ApplicationError
	source string
}

// NewSourceError creates a new SourceError for the named source
func NewSourceError(msg, source string, kind ErrorKind, err error) *SourceError {
	return &SourceError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		source:           source,
	}
}

// Error returns the error message including the source name
func (e *SourceError) Error() string {
	if e.source == "" {
		return e.ApplicationError.Error()
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.msg, e.source, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, e.source)
}

// Source returns the name of the source the error relates to
func (e *SourceError) Source() string {
	return e.source
}

// ConfigError represents a configuration error
type ConfigError struct {
	ApplicationError
	path string
}

// NewConfigError creates a new ConfigError for the given config path
func NewConfigError(msg, path string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		path:             path,
	}
}

// Error returns the error message including the config path
func (e *ConfigError) Error() string {
	if e.path == "" {
		return e.ApplicationError.Error()
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, e.path)
}

// Path returns the config path the error relates to
func (e *ConfigError) Path() string {
	return e.path
}

// KeymapError represents a keymap construction error
type KeymapError struct {
	ApplicationError
	key string
}

// NewKeymapError creates a new KeymapError for the given key
func NewKeymapError(msg, key string, kind ErrorKind) *KeymapError {
	return &KeymapError{
		ApplicationError: ApplicationError{msg: msg, kind: kind},
		key:              key,
	}
}

// Error returns the error message including the offending key
func (e *KeymapError) Error() string {
	if e.key == "" {
		return e.ApplicationError.Error()
	}
	return fmt.Sprintf("%s: %q", e.msg, e.key)
}

// Key returns the offending key
func (e *KeymapError) Key() string {
	return e.key
}

// NewHookError creates an error for a failed hook script
func NewHookError(msg string, err error) *ApplicationError {
	return &ApplicationError{msg: msg, err: err, kind: HookFailed}
}

// NewTerminalError creates an error for terminal setup or teardown
// trouble
func NewTerminalError(msg string, err error) *ApplicationError {
	return &ApplicationError{msg: msg, err: err, kind: TerminalFailed}
}

// IsLockHeld checks if the error indicates the lock is held elsewhere
func IsLockHeld(err error) bool {
	return kindOf(err) == LockHeld
}

// IsLockLost checks if the error indicates our lease was lost
func IsLockLost(err error) bool {
	return kindOf(err) == LockLost
}

// IsSourceConnectFailed checks if the error is an expected source
// connection failure, handled inside poll operations rather than
// escalated to the exception registry.
func IsSourceConnectFailed(err error) bool {
	return kindOf(err) == SourceConnectFailed
}

func kindOf(err error) ErrorKind {
	type kinder interface{ Kind() ErrorKind }
	var k kinder
	if As(err, &k) {
		return k.Kind()
	}
	return Unknown
}
