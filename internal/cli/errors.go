package cli

import (
	"errors"
	"fmt"
)

var errNotATerminal = errors.New("the TUI needs an interactive terminal; use a subcommand for scripted use")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type usageError struct {
	arg  string
	want string
}

func (e usageError) Error() string {
	return fmt.Sprintf("invalid argument %q (want %s)", e.arg, e.want)
}
