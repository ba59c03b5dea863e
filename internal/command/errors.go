// internal/command/errors.go
package command

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedCommand is returned when a descriptor has neither data nor action,
	// or when a print entry carries no content
	ErrMalformedCommand = errors.New("malformed command")
	// ErrUnknownAction is returned for an action string outside the action table
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownType is returned for a print type string outside the type table
	ErrUnknownType = errors.New("unknown print type")
	// ErrInvalidField is returned when a present field fails validation
	ErrInvalidField = errors.New("invalid field")
)

// UnknownValueError reports a string value that is not part of a closed table
type UnknownValueError struct {
	Field string
	Value string
	kind  error
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("%s is not a valid %s value", e.Value, e.Field)
}

// Is matches the sentinel for the table the value was looked up in
func (e *UnknownValueError) Is(target error) bool {
	return target == e.kind
}

// FieldTypeError reports a field whose value has the wrong dynamic type
type FieldTypeError struct {
	Field string
	Type  string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("invalid %s value type %s", e.Field, e.Type)
}

func (e *FieldTypeError) Is(target error) bool {
	return target == ErrInvalidField
}

// FieldValueError reports a well typed field whose value is out of range
type FieldValueError struct {
	Field string
	Value interface{}
}

func (e *FieldValueError) Error() string {
	return fmt.Sprintf("invalid %s value %v", e.Field, e.Value)
}

func (e *FieldValueError) Is(target error) bool {
	return target == ErrInvalidField
}

func typeError(field string, value interface{}) error {
	return &FieldTypeError{Field: field, Type: fmt.Sprintf("%T", value)}
}
