package ops

import (
	"fmt"
)

type ErrLocked struct {
	name string
	pid  int
}

func (e *ErrLocked) Error() string {
	return fmt.Sprintf("clipboard '%s' is in use by process %d", e.name, e.pid)
}

type ErrNoMatch struct {
	msg string
}

func (e *ErrNoMatch) Error() string {
	return e.msg
}

type ErrWrongMode struct {
	msg string
}

func (e *ErrWrongMode) Error() string {
	return e.msg
}

type ErrEmptySource struct {
	name string
}

func (e *ErrEmptySource) Error() string {
	return fmt.Sprintf("clipboard '%s' is empty", e.name)
}

type ErrSelfLoad struct {
	name string
}

func (e *ErrSelfLoad) Error() string {
	return fmt.Sprintf("cannot load clipboard '%s' into itself", e.name)
}
