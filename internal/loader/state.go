package loader

import (
	"encoding/json"

	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
)

// Status is the lifecycle tag of a State.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is the lifecycle of one remote resource. Exactly one tag is active;
// data is only meaningful for success, message and kind only for error.
type State[T any] struct {
	status  Status
	data    T
	message string
	kind    apperrors.Kind
}

// Idle is the state before the first trigger.
func Idle[T any]() State[T] { return State[T]{status: StatusIdle} }

// Loading is the state while a fetch is in flight.
func Loading[T any]() State[T] { return State[T]{status: StatusLoading} }

// Success holds a committed result.
func Success[T any](data T) State[T] { return State[T]{status: StatusSuccess, data: data} }

// Failure holds a user-facing message and the failure kind.
func Failure[T any](message string, kind apperrors.Kind) State[T] {
	return State[T]{status: StatusError, message: message, kind: kind}
}

func (s State[T]) Status() Status { return s.status }

// Data returns the committed result. ok is false unless the state is success.
func (s State[T]) Data() (data T, ok bool) {
	if s.status != StatusSuccess {
		var zero T
		return zero, false
	}
	return s.data, true
}

// Message is the user-facing error message, empty unless the state is error.
func (s State[T]) Message() string { return s.message }

// Kind is the failure classification, empty unless the state is error.
func (s State[T]) Kind() apperrors.Kind { return s.kind }

// IsSettled reports whether the state is success or error.
func (s State[T]) IsSettled() bool {
	return s.status == StatusSuccess || s.status == StatusError
}

type stateJSON[T any] struct {
	Status  Status `json:"status"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func (s State[T]) MarshalJSON() ([]byte, error) {
	out := stateJSON[T]{Status: s.status}
	switch s.status {
	case StatusSuccess:
		data := s.data
		out.Data = &data
	case StatusError:
		out.Message = s.message
		out.Kind = string(s.kind)
	}
	return json.Marshal(out)
}
