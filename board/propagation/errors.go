package propagation

import (
	"fmt"
	"strings"

	"gopkg.in/mgo.v2/bson"
)

// StepError is the failure of a single cascade step.
type StepError struct {
	Step string `json:"step"`
	Err  error  `json:"-"`
}

func (e StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

// Error reports an incomplete propagation. The primary mutation stays
// committed; running the propagator again repairs it.
type Error struct {
	PostID   bson.ObjectId
	Failures []StepError
}

func (e *Error) Error() string {
	list := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		list[i] = f.Error()
	}
	return fmt.Sprintf("propagation incomplete for post %s (%s)", e.PostID.Hex(), strings.Join(list, "; "))
}

// Steps that failed, by name.
func (e *Error) Steps() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Step
	}
	return names
}

// Unwrap exposes the underlying step errors to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	list := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		list[i] = f.Err
	}
	return list
}
