package errors

import (
	"errors"
	"fmt"
	"time"
)

// RemoteExecutionError indicates a remote command failed to run or exited
// with a non-zero status.
type RemoteExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func NewRemoteExecutionError(command string, exitCode int, stderr string, err error) error {
	return &RemoteExecutionError{Command: command, ExitCode: exitCode, Stderr: stderr, Err: err}
}

func (e *RemoteExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote command %q failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("remote command %q exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
}

func (e *RemoteExecutionError) Unwrap() error {
	return e.Err
}

func IsRemoteExecutionError(err error) bool {
	var t *RemoteExecutionError
	return errors.As(err, &t)
}

// TimeoutError indicates a poll session reached its deadline before the
// guest reported a terminal state.
type TimeoutError struct {
	Op       string
	Deadline time.Time
}

func NewTimeoutError(op string, deadline time.Time) error {
	return &TimeoutError{Op: op, Deadline: deadline}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: deadline %s exceeded", e.Op, e.Deadline.Format(time.RFC3339))
}

func IsTimeoutError(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}

// ProvisioningError indicates a VM lifecycle operation failed before the
// test payload could run.
type ProvisioningError struct {
	Resource string
	Err      error
}

func NewProvisioningError(resource string, err error) error {
	return &ProvisioningError{Resource: resource, Err: err}
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to provision %s: %v", e.Resource, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

func IsProvisioningError(err error) bool {
	var t *ProvisioningError
	return errors.As(err, &t)
}

// ClassificationUnknownError indicates the guest state file was absent,
// unreadable or held unrecognized text.
type ClassificationUnknownError struct {
	Raw string
}

func NewClassificationUnknownError(raw string) error {
	return &ClassificationUnknownError{Raw: raw}
}

func (e *ClassificationUnknownError) Error() string {
	return fmt.Sprintf("unrecognized guest state %q", e.Raw)
}

func IsClassificationUnknownError(err error) bool {
	var t *ClassificationUnknownError
	return errors.As(err, &t)
}

// RunNotFoundError indicates the requested test run does not exist in the
// result store.
type RunNotFoundError struct {
	ID string
}

func NewRunNotFoundError(id string) error {
	return &RunNotFoundError{ID: id}
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("test run %q not found", e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var t *RunNotFoundError
	return errors.As(err, &t)
}
