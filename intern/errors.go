package intern

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyCanonical is returned when an alias would shadow a canonical name.
	ErrAlreadyCanonical = errors.New("already declared as a canonical name")
	// ErrAlreadyAlias is returned when a name is already an alias.
	ErrAlreadyAlias = errors.New("already declared as an alias")
)

// Error reports a conflicting declaration.
type Error struct {
	Name     string
	Existing string // canonical name the conflicting entry refers to
	Err      error
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrAlreadyAlias) {
		return fmt.Sprintf("%q is already declared as an alias of %q", e.Name, e.Existing)
	}
	return fmt.Sprintf("%q is already declared as a canonical name", e.Name)
}

func (e *Error) Unwrap() error {
	return e.Err
}
