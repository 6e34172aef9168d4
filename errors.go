package gtfs

import (
	"errors"
	"fmt"
)

var ErrUnknownSource = errors.New("unknown source")

const (
	OpDownload = "download"
	OpDecode   = "decode"
)

// A source that could not be fetched or whose archive could not be
// read.
type FetchError struct {
	SourceID string
	Op       string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.SourceID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
