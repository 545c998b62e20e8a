package storage

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrParse              = errors.New("import failed")
	ErrUnsupportedVersion = errors.New("unsupported import file (expected version 1)")
	ErrUnknownFormat      = errors.New("unknown document format")
	ErrNoState            = errors.New("no saved state")
)
