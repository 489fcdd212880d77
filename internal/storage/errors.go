package storage

import (
	"errors"
	"fmt"
)

var ErrDocumentNotFound = errors.New("document not found")

// PersistenceError reports a failed store operation: connectivity loss,
// constraint violation or a missing parent row.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
