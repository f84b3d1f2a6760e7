package script

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every *ParseError.
	ErrSyntax = errors.New("script: syntax error")

	// ErrUnknownName indicates free of a name that holds no allocation.
	ErrUnknownName = errors.New("script: unknown name")

	// ErrNameInUse indicates alloc into a name that already holds an allocation.
	ErrNameInUse = errors.New("script: name already holds an allocation")

	// ErrUnexpectedSuccess indicates an expect-fail step whose allocation succeeded.
	ErrUnexpectedSuccess = errors.New("script: expected failure but allocation succeeded")
)

// ParseError reports a malformed script line.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("script: line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }
