// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMachineLifecycle(t *testing.T) {
	var m Machine
	if m.Status() != StatusIdle {
		t.Fatalf("zero Machine status = %s, want idle", m.Status())
	}

	if err := m.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := m.Succeed(); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	if m.Status() != StatusSuccess {
		t.Errorf("status = %s, want success", m.Status())
	}

	// resubmission from success
	if err := m.Begin(); err != nil {
		t.Fatalf("Begin from success: %v", err)
	}
	cause := errors.New("backend down")
	if err := m.Fail(cause); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if m.Status() != StatusError || !errors.Is(m.Err(), cause) {
		t.Errorf("status = %s err = %v, want error/%v", m.Status(), m.Err(), cause)
	}

	// resubmission from error clears the previous cause
	if err := m.Begin(); err != nil {
		t.Fatalf("Begin from error: %v", err)
	}
	if m.Err() != nil {
		t.Errorf("Err after Begin = %v, want nil", m.Err())
	}
}

func TestMachineInvalidTransitions(t *testing.T) {
	var m Machine
	if err := m.Succeed(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Succeed from idle = %v, want ErrInvalidTransition", err)
	}
	if err := m.Fail(errors.New("x")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fail from idle = %v, want ErrInvalidTransition", err)
	}
	_ = m.Begin()
	if err := m.Begin(); !errors.Is(err, ErrSubmissionInFlight) {
		t.Errorf("second Begin = %v, want ErrSubmissionInFlight", err)
	}
	_ = m.Succeed()
	if err := m.Succeed(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Succeed from success = %v, want ErrInvalidTransition", err)
	}
}

func TestMachineSingleInFlight(t *testing.T) {
	var m Machine
	var started atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Begin() == nil {
				started.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := started.Load(); got != 1 {
		t.Errorf("%d concurrent Begin calls succeeded, want 1", got)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusIdle:       "idle",
		StatusSubmitting: "submitting",
		StatusSuccess:    "success",
		StatusError:      "error",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), s.String(), want)
		}
	}
}
