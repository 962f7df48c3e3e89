// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import (
	"errors"
	"fmt"
	"sync"
)

// Status is the submission lifecycle state of a form.
type Status int

// Submission states.
const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

var (
	// ErrSubmissionInFlight is returned when a form is submitted while a
	// previous submission has not resolved yet.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrInvalidTransition is returned for lifecycle transitions that do not
	// start from the submitting state.
	ErrInvalidTransition = errors.New("invalid submission state transition")
)

// Machine tracks the idle → submitting → success|error lifecycle.
// The zero value is an idle machine.
type Machine struct {
	mu      sync.Mutex
	status  Status
	lastErr error
}

// Status returns the current state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err returns the error that moved the machine into StatusError, if any.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Begin enters StatusSubmitting. Allowed from every state except submitting.
func (m *Machine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusSubmitting {
		return ErrSubmissionInFlight
	}
	m.status = StatusSubmitting
	m.lastErr = nil
	return nil
}

// Succeed leaves StatusSubmitting for StatusSuccess.
func (m *Machine) Succeed() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusSubmitting {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.status, StatusSuccess)
	}
	m.status = StatusSuccess
	return nil
}

// Fail leaves StatusSubmitting for StatusError and records cause.
func (m *Machine) Fail(cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusSubmitting {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.status, StatusError)
	}
	m.status = StatusError
	m.lastErr = cause
	return nil
}
