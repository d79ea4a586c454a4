package cli

import (
	"errors"
	"fmt"
	"strings"

	"boardview/internal/board"
	"boardview/internal/store"
)

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

// explainLoad rewrites store and normalization failures into messages that
// name the file and say what to do next.
func explainLoad(name string, err error) error {
	var pe *store.ParseError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w (run `boardview files` to list uploads)", errNotFound("file", name))
	case errors.As(err, &pe):
		return fmt.Errorf("%s is not a board export: %v", name, pe.Err)
	case board.IsNormalizationError(err):
		return fmt.Errorf("%s cannot be shown: %w", name, err)
	}
	return err
}

func requireArg(args []string, what string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("missing %s", what)
	}
	return strings.TrimSpace(args[0]), nil
}
