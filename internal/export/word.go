package export

import (
	"bytes"
	"html/template"
)

// wordTemplate is the minimal HTML Word opens as a document when served
// with the msword media type.
var wordTemplate = template.Must(template.New("word").Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<pre style="font-family: 'Courier New', monospace; white-space: pre-wrap;">{{.Text}}</pre>
</body>
</html>
`))

// Word renders text as Word-compatible HTML. The text is HTML-escaped and
// keeps its line breaks.
func Word(title, text string) ([]byte, error) {
	var buf bytes.Buffer
	err := wordTemplate.Execute(&buf, struct{ Title, Text string }{title, text})
	if err != nil {
		return nil, &ExportError{Format: FormatWord, Err: err}
	}
	return buf.Bytes(), nil
}
