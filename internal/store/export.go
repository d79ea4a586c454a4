package store

import (
	"context"

	"boardview/internal/model"
)

// FetchExport opens and decodes a stored upload. It returns ErrNotFound for a
// missing upload and a *ParseError when the content is not an export document.
func (s Store) FetchExport(ctx context.Context, name string) (*model.Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := model.ParseExport(f)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return doc, nil
}
