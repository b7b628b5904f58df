package models

import (
	"errors"
	"fmt"
)

// Timeouts on new-context and idle waits are valid "no navigation" outcomes,
// not errors, so no error type exists for them.

// MalformedURLError marks input that could not be parsed as a URL. Soft:
// callers log it and continue with a safe default.
type MalformedURLError struct {
	Raw string
	Err error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed url %q: %v", e.Raw, e.Err)
}

func (e *MalformedURLError) Unwrap() error { return e.Err }

// NavigationError marks a page load that failed after the automation layer
// exhausted its bounded retries. The request carrying the URL is abandoned.
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ActivationError marks a clickable candidate that could not be activated:
// element detached, not interactable, or activation timed out. Soft: the
// candidate is skipped.
type ActivationError struct {
	Kind string
	Err  error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activation of %s candidate failed: %v", e.Kind, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// IsNavigationError reports whether err wraps a NavigationError.
func IsNavigationError(err error) bool {
	var target *NavigationError
	return errors.As(err, &target)
}

// IsActivationError reports whether err wraps an ActivationError.
func IsActivationError(err error) bool {
	var target *ActivationError
	return errors.As(err, &target)
}
