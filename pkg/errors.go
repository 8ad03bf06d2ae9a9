package pkg

import "fmt"

// ErrDBProcedure wraps a failed store call with what was attempted.
type ErrDBProcedure struct {
	Cause string
	Info  string
	Err   error
}

func (e *ErrDBProcedure) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("%s; got error: %s", e.Cause, e.Err)
	}
	return fmt.Sprintf("%s; got error: %s; info: %s", e.Cause, e.Err, e.Info)
}

func (e *ErrDBProcedure) Unwrap() error {
	return e.Err
}
