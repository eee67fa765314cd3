package export

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/doc-tools-mcp/internal/config"
)

func TestCSV(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		want  string
	}{
		{"plain", Table{Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}}, "A,B\n1,2"},
		{"headers only", Table{Headers: []string{"Name"}}, "Name"},
		{"empty cells", Table{Headers: []string{"A", "B"}, Rows: [][]string{{"", "x"}}}, "A,B\n,x"},
		{"comma", Table{Headers: []string{"City"}, Rows: [][]string{{"Paris, France"}}}, "City\n\"Paris, France\""},
		{"quote", Table{Headers: []string{"Q"}, Rows: [][]string{{`say "hi"`}}}, "Q\n\"say \"\"hi\"\"\""},
		{"newline", Table{Headers: []string{"N"}, Rows: [][]string{{"a\nb"}}}, "N\n\"a\nb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(CSV(tt.table)))
		})
	}
}

func TestWord(t *testing.T) {
	data, err := Word("Report", "line 1\n<b>bold</b> & more")
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, `xmlns:o="urn:schemas-microsoft-com:office:office"`)
	assert.Contains(t, html, `xmlns:w="urn:schemas-microsoft-com:office:word"`)
	assert.Contains(t, html, `<meta charset="utf-8">`)
	assert.Contains(t, html, "<title>Report</title>")
	assert.Contains(t, html, "white-space: pre-wrap")
	assert.Contains(t, html, "line 1\n&lt;b&gt;bold&lt;/b&gt; &amp; more")
	assert.NotContains(t, html, "<b>bold</b>")
}

func TestPDF(t *testing.T) {
	data, err := PDF("Notes", "Hello, world. Café, naïve, 10 €.", PDFOptions{FontSize: 11})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDF_Paginates(t *testing.T) {
	short, err := renderPDF("t", "one line", PDFOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, short.PageCount())

	long, err := renderPDF("t", strings.Repeat("A line of text that keeps going.\n", 200), PDFOptions{})
	require.NoError(t, err)
	assert.Greater(t, long.PageCount(), 2)

	wrapped, err := renderPDF("t", strings.Repeat("word ", 3000), PDFOptions{})
	require.NoError(t, err)
	assert.Greater(t, wrapped.PageCount(), 1)
}

func TestPDF_UnrepresentableText(t *testing.T) {
	_, err := PDF("t", "こんにちは", PDFOptions{})

	var ee *ExportError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, FormatPDF, ee.Format)
	assert.ErrorIs(t, err, ErrUnsupportedText)
}

func TestPDF_MissingFontFile(t *testing.T) {
	_, err := PDF("t", "text", PDFOptions{FontFile: filepath.Join(t.TempDir(), "missing.ttf")})
	var ee *ExportError
	assert.ErrorAs(t, err, &ee)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title  string
		format Format
		want   string
	}{
		{"Invoice 42", FormatPDF, "Invoice 42.pdf"},
		{"report", FormatWord, "report.doc"},
		{"", FormatCSV, "document.csv"},
		{"../../etc/passwd", FormatCSV, "_.._etc_passwd.csv"},
		{"a/b\\c:d", FormatPDF, "a_b_c_d.pdf"},
		{"cleaned-document.png", FormatPNG, "cleaned-document.png"},
		{"  tab\there  ", FormatWord, "tabhere.doc"},
		{"...", FormatPDF, "document.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.title, tt.format))
		})
	}
}

func TestFormat_MimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.MimeType())
	assert.Equal(t, "application/msword", FormatWord.MimeType())
	assert.Equal(t, "text/csv", FormatCSV.MimeType())
	assert.Equal(t, "image/png", FormatPNG.MimeType())
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		doc     Document
		wantErr error
	}{
		{"csv without table", FormatCSV, Document{Title: "x"}, ErrNoContent},
		{"png with jpeg bytes", FormatPNG, Document{Image: []byte{0xFF, 0xD8, 0xFF}}, ErrNoContent},
		{"unknown", Format("odt"), Document{Text: "x"}, ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.format, tt.doc, PDFOptions{})
			var ee *ExportError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.format, ee.Format)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	e := New(config.ExportConfig{OutputDir: dir, PDFFontSize: 11}, nil)

	tests := []struct {
		name     string
		format   Format
		doc      Document
		filename string
		mime     string
	}{
		{"pdf", FormatPDF, Document{Title: "Scan", Text: "Hello"}, "Scan.pdf", "application/pdf"},
		{"word", FormatWord, Document{Title: "Scan", Text: "Hello"}, "Scan.doc", "application/msword"},
		{"csv", FormatCSV, Document{Title: "Table", Table: &Table{Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}}}, "Table.csv", "text/csv"},
		{"png", FormatPNG, Document{Title: "cleaned-document", Image: pngBytes(t)}, "cleaned-document.png", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dl, err := e.Export(tt.format, tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.filename, dl.Filename)
			assert.Equal(t, tt.mime, dl.MimeType)
			assert.Equal(t, filepath.Join(dir, tt.filename), dl.Path)

			data, err := os.ReadFile(dl.Path)
			require.NoError(t, err)
			assert.Equal(t, dl.SizeBytes, len(data))
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, "Table.csv"))
	require.NoError(t, err)
	assert.Equal(t, "A,B\n1,2", string(data))
}

func TestExporter_FailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	e := New(config.ExportConfig{OutputDir: dir}, nil)

	_, err := e.Export(FormatPDF, Document{Title: "jp", Text: "日本語"})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
