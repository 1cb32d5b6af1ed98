package sfvalid

import (
	"fmt"
	"strings"
)

// ErrTriggersMissing is returned when none of the requested trigger paths
// exist in a dataset. It aborts the processing of that dataset.
type ErrTriggersMissing struct {
	Dataset string
	Paths   []string
}

func (e *ErrTriggersMissing) Error() string {
	return fmt.Sprintf("HLT paths [%s] are all invalid in %q", strings.Join(e.Paths, ", "), e.Dataset)
}

// ErrLengthMismatch represents a per-event array that is not aligned with its batch.
type ErrLengthMismatch struct {
	Name     string
	Length   int
	Expected int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("%q has length %d, expected %d", e.Name, e.Length, e.Expected)
}

// ErrUnknownHistogram represents a histogram definition that cannot be resolved.
type ErrUnknownHistogram struct {
	Name   string
	Reason string
}

func (e *ErrUnknownHistogram) Error() string {
	return fmt.Sprintf("histogram %q: %s", e.Name, e.Reason)
}

// ErrInvalidName represents a dataset or histogram name that cannot be stored.
type ErrInvalidName struct {
	Name   string
	Reason string
}

func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
}

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }
