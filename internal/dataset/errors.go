package dataset

import (
	"errors"
	"fmt"
)

// Source names used in DataLoadError.
const (
	SourceGames      = "games"
	SourceSimilarity = "similarity"
	SourceDatabase   = "sqlite"
)

var (
	// ErrInvalidData marks failures caused by the content of a source rather
	// than its availability. Loads failing with it are never retried.
	ErrInvalidData = errors.New("invalid dataset")

	ErrMissingTitleColumn = fmt.Errorf("%w: missing Title column", ErrInvalidData)
	ErrDuplicateTitle     = fmt.Errorf("%w: duplicate title", ErrInvalidData)
	ErrEmptyTitle         = fmt.Errorf("%w: empty title", ErrInvalidData)
	ErrNotSquare          = fmt.Errorf("%w: similarity table is not square", ErrInvalidData)
	ErrUnknownTitle       = fmt.Errorf("%w: similarity title has no game record", ErrInvalidData)
)

// DataLoadError reports that a dataset source could not be read or did not
// satisfy the table schema. It is fatal at startup.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func loadErr(source string, err error) error {
	var le *DataLoadError
	if errors.As(err, &le) {
		return err
	}
	return &DataLoadError{Source: source, Err: err}
}
