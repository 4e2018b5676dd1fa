package dbcore

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_UnwrapMatchesSentinel(t *testing.T) {
	err := newError("dbcore-test-1", fmt.Errorf("%w: boom", ErrTruncated))
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("errors.Is(err, ErrTruncated) = false, want true")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(err, ErrNotFound) = true, want false")
	}
}

func TestNewIOError_CarriesContext(t *testing.T) {
	err := newIOError("dbcore-test-2", "/tmp/CLIENT.FIC", 256, 64, errors.New("disk gone"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("errors.Is(err, ErrIO) = false, want true")
	}
	got := err.Error()
	if got == "" {
		t.Fatal("Error() returned empty string")
	}
}

func TestAggregateErrors(t *testing.T) {
	if err := aggregateErrors([]error{nil, nil}); err != nil {
		t.Errorf("aggregateErrors(all nil) = %v, want nil", err)
	}
	err := aggregateErrors([]error{nil, errors.New("a"), errors.New("b")})
	if err == nil {
		t.Fatal("aggregateErrors() = nil, want combined error")
	}
}
