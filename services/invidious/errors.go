package invidious

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMalformedRequest is returned before any network attempt when the
	// request does not match a recognized resource shape.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrAllInstancesUnavailable matches every *AllInstancesUnavailableError
	// through errors.Is.
	ErrAllInstancesUnavailable = errors.New("all instances unavailable")
)

// FailureKind classifies why a single instance attempt failed.
type FailureKind string

const (
	FailureNetwork  FailureKind = "network"
	FailureTimeout  FailureKind = "timeout"
	FailureStatus   FailureKind = "status"
	FailureParse    FailureKind = "parse"
	FailureCanceled FailureKind = "canceled"
)

// InstanceError records one failed instance attempt. It never reaches the
// caller on its own, only inside an AllInstancesUnavailableError.
type InstanceError struct {
	Instance   string
	Kind       FailureKind
	StatusCode int
	Elapsed    time.Duration
	Err        error
}

func (e *InstanceError) Error() string {
	switch {
	case e.Kind == FailureStatus:
		return fmt.Sprintf("instance %s: unexpected status %d", e.Instance, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("instance %s: %s: %v", e.Instance, e.Kind, e.Err)
	default:
		return fmt.Sprintf("instance %s: %s", e.Instance, e.Kind)
	}
}

func (e *InstanceError) Unwrap() error {
	return e.Err
}

// AllInstancesUnavailableError is the terminal failure of a resolution:
// every configured instance was tried once and failed. Failures is ordered
// like the instance list and has one entry per instance.
type AllInstancesUnavailableError struct {
	ResolutionID string
	Path         string
	Failures     []*InstanceError
}

func (e *AllInstancesUnavailableError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.Error())
	}
	return fmt.Sprintf("all %d instances unavailable for %s: %s",
		len(e.Failures), e.Path, strings.Join(reasons, "; "))
}

// Is makes errors.Is(err, ErrAllInstancesUnavailable) hold.
func (e *AllInstancesUnavailableError) Is(target error) bool {
	return target == ErrAllInstancesUnavailable
}

// Unwrap exposes the per-instance errors to errors.Is / errors.As.
func (e *AllInstancesUnavailableError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Instances returns the failing instance base URLs in trial order.
func (e *AllInstancesUnavailableError) Instances() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Instance
	}
	return out
}
