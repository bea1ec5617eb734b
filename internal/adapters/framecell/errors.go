package framecell

import "errors"

// Sentinel kinds for cell errors.
var (
	ErrClosed = errors.New("cell closed")
)
