package export

import "strings"

// Table is tabular content for CSV export.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// CSV joins the header line and the rows with commas and the lines with
// "\n", without a trailing newline. Cells containing a comma, quote, CR or
// LF are quoted with inner quotes doubled; all other cells are written as
// is, so delimiter-free tables produce plain comma-joined lines.
func CSV(t Table) []byte {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, csvLine(t.Headers))
	for _, row := range t.Rows {
		lines = append(lines, csvLine(row))
	}
	return []byte(strings.Join(lines, "\n"))
}

func csvLine(cells []string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = csvCell(c)
	}
	return strings.Join(out, ",")
}

func csvCell(c string) string {
	if !strings.ContainsAny(c, ",\"\r\n") {
		return c
	}
	return `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
}
