package document

import (
	"fmt"
	"strings"

	"github.com/ironsheep/doc-tools-mcp/internal/capability"
)

const (
	ocrPrompt = `Transcribe all printed and handwritten text in this document image.
Preserve the reading order, line breaks and paragraph structure.
Return only the transcribed text, without commentary or formatting.`

	handwritingPrompt = `Transcribe only the handwritten text in this document image.
Ignore printed text. Keep line breaks as written. Mark words you cannot read as [illegible].
Return only the transcription.`

	tablePrompt = `Extract the main table from this document image.
Return the column headers in "headers" and every data row in "rows", each row
listing its cells in header order as strings. Use an empty string for empty cells.`

	removeHandwritingPrompt = `Remove all handwriting, pen marks, signatures and annotations from this document image.
Keep the printed content, layout and paper background unchanged.
Return the cleaned image.`
)

func fieldsPrompt(wanted []string) string {
	var b strings.Builder
	b.WriteString("Extract the labelled fields from this document image (forms, invoices, receipts, IDs).\n")
	b.WriteString(`Return each field in "fields" with its "label" as printed and its "value" as written.`)
	if len(wanted) > 0 {
		fmt.Fprintf(&b, "\nOnly extract these fields, using exactly these labels: %s.", strings.Join(wanted, ", "))
		b.WriteString("\nUse an empty value for a field that is not present.")
	}
	return b.String()
}

func tableSchema() *capability.Schema {
	return &capability.Schema{
		Type:        "object",
		Description: "A table extracted from a document.",
		Properties: map[string]*capability.Schema{
			"headers": {
				Type:  "array",
				Items: &capability.Schema{Type: "string"},
			},
			"rows": {
				Type: "array",
				Items: &capability.Schema{
					Type:  "array",
					Items: &capability.Schema{Type: "string"},
				},
			},
		},
		Required: []string{"headers", "rows"},
	}
}

func fieldsSchema() *capability.Schema {
	return &capability.Schema{
		Type:        "object",
		Description: "Labelled fields extracted from a document.",
		Properties: map[string]*capability.Schema{
			"fields": {
				Type: "array",
				Items: &capability.Schema{
					Type: "object",
					Properties: map[string]*capability.Schema{
						"label": {Type: "string"},
						"value": {Type: "string"},
					},
					Required: []string{"label", "value"},
				},
			},
		},
		Required: []string{"fields"},
	}
}
