package export

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedText is wrapped when the PDF core font cannot show the text.
	ErrUnsupportedText = errors.New("text contains characters the PDF font cannot represent")

	// ErrUnknownFormat is wrapped for formats the exporter does not produce.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrNoContent is wrapped when a document has nothing to export.
	ErrNoContent = errors.New("nothing to export")
)

// ExportError reports a failed export. Nothing is written when it is returned.
type ExportError struct {
	Format Format
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
