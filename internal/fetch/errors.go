package fetch

import (
	"fmt"

	"github.com/abelbrown/hnreader/internal/model"
)

// TransportError means the ID listing for a category could not be retrieved.
// It fails the whole category fetch.
type TransportError struct {
	Category model.Category
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s stories: %v", e.Category, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ItemError is a single item that failed to load. It is logged and the
// item is skipped; it never reaches callers of FetchCategory.
type ItemError struct {
	ID  uint64
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.ID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
