package xfer

import (
	"fmt"
)

type ErrBadDecision struct {
	name string
}

func (e *ErrBadDecision) Error() string {
	return fmt.Sprintf("decider returned no decision for '%s'", e.name)
}

type ErrNotTransferable struct {
	path string
	mode string
}

func (e *ErrNotTransferable) Error() string {
	return fmt.Sprintf("source is not transferable: %s is a %s", e.path, e.mode)
}
