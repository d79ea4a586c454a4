package board

import (
	"errors"
	"fmt"
)

// NormalizationError means an export could not be turned into a board.
// Callers must not render anything from a document that produced one.
type NormalizationError struct {
	Reason string
	Err    error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("normalize export: %s: %v", e.Reason, e.Err)
	}
	return "normalize export: " + e.Reason
}

func (e *NormalizationError) Unwrap() error { return e.Err }

func normErr(format string, args ...any) error {
	return &NormalizationError{Reason: fmt.Sprintf(format, args...)}
}

const (
	OpMoveList = "moveList"
	OpMoveCard = "moveCard"
)

const (
	KindList = "list"
	KindCard = "card"
)

// OperationError reports a move that was rejected. The state it was applied
// to is left unchanged.
type OperationError struct {
	Op     string
	Kind   string
	ID     string
	Reason string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", e.Op, e.Kind, e.ID, e.Reason)
}

func opErr(op, kind, id, reason string) error {
	return &OperationError{Op: op, Kind: kind, ID: id, Reason: reason}
}

func IsNormalizationError(err error) bool {
	var ne *NormalizationError
	return errors.As(err, &ne)
}

func IsOperationError(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe)
}
