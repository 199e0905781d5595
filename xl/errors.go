package xl

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a rejected argument; nothing was written.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedType indicates a value kind with no cell representation.
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrProtocol indicates a call out of the forward-only write order:
	// rows or columns going backwards, a row created while another is
	// open, or a cell written to a closed row.
	ErrProtocol = errors.New("protocol violation")

	// ErrClosed indicates use of a writer after Close. It matches
	// ErrProtocol as well.
	ErrClosed = fmt.Errorf("%w: writer is closed", ErrProtocol)
)

// CellError reports a failed cell write.
type CellError struct {
	Sheet string
	Ref   string // as requested, or computed for implicit cells
	Err   error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("sheet %q cell %s: %v", e.Sheet, e.Ref, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func protocolErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}
