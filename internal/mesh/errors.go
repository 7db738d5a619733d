package mesh

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when the file extension is not one
// of the supported mesh formats.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// ParseError reports a buffer that is structurally invalid for its
// claimed format. The cause is safe to show to the uploading user.
type ParseError struct {
	Format Format
	Cause  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Format, e.Cause)
}

func parseErrorf(format Format, cause string, args ...any) *ParseError {
	return &ParseError{Format: format, Cause: fmt.Sprintf(cause, args...)}
}
