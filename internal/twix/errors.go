package twix

import "errors"

var (
	// ErrFormatMismatch reports a container whose declared layout disagrees
	// with the configured extents.
	ErrFormatMismatch = errors.New("twix: format mismatch")
	// ErrShortBlock is returned when a header block is too small for the
	// field being decoded.
	ErrShortBlock = errors.New("twix: header block too short")
)
