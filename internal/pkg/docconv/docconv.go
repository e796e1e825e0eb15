// Package docconv converts between Word documents (.docx) and the Markdown
// representation used as exam and correction content. Only the subset of
// WordprocessingML that survives a Markdown round trip is handled:
// headings, plain paragraphs, bold/italic runs, line breaks and flat lists.
package docconv

import "errors"

// Conversion errors
var (
	ErrNotDocx       = errors.New("file is not a .docx document")
	ErrEmptyDocument = errors.New("document contains no readable text")
)

// Section is one labeled block of a combined document, used when exporting
// a multi-section report as a single .docx file.
type Section struct {
	Label string
	Text  string
}
