package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/doc-tools-mcp/internal/export"
)

var (
	exportTitle  string
	exportOutDir string
)

var exportCmd = &cobra.Command{
	Use:   "export <pdf|word|csv> <file>",
	Short: "Export a text file as PDF or Word, or a tab-separated file as CSV",
	Long: `Export a file into the output directory.

pdf and word read plain UTF-8 text. csv reads tab-separated lines; the
first line holds the headers.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"pdf", "word", "csv"},
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportTitle, "title", "t", "", "document title and file name (default input file name)")
	exportCmd.Flags().StringVarP(&exportOutDir, "out-dir", "o", "", "override export.output_dir")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format := export.Format(strings.ToLower(args[0]))
	switch format {
	case export.FormatPDF, export.FormatWord, export.FormatCSV:
	default:
		return fmt.Errorf("unknown format %q: use pdf, word or csv", args[0])
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	title := exportTitle
	if title == "" {
		base := filepath.Base(args[1])
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	doc := export.Document{Title: title, Text: string(data)}
	if format == export.FormatCSV {
		doc.Table = parseTabular(string(data))
		if len(doc.Table.Headers) == 0 {
			return fmt.Errorf("%s has no header line", args[1])
		}
	}

	ecfg := cfg.Export
	if exportOutDir != "" {
		ecfg.OutputDir = exportOutDir
	}
	dl, err := export.New(ecfg, logger.Named("export")).Export(format, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d bytes)\n", dl.Path, dl.MimeType, dl.SizeBytes)
	return nil
}

// parseTabular splits tab-separated text into a table. The first non-empty
// line is the header.
func parseTabular(text string) *export.Table {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var t export.Table
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		if t.Headers == nil {
			t.Headers = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return &t
}
