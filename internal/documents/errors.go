package documents

import "errors"

// ErrUnsupportedFormat indicates a file extension the loader does not
// recognize. Callers treat it as a silent skip, not a failure.
var ErrUnsupportedFormat = errors.New("unsupported file format")
