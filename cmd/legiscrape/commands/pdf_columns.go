package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"legiscrape/lib/pdfcolumns"

	"github.com/spf13/cobra"
)

var (
	pdfColumn     int
	pdfHeader     string
	pdfPageHeader string
	pdfPageSkip   int
	pdftotextPath string
)

func init() {
	pdfColumnsCmd.Flags().IntVar(&pdfColumn, "column", 40, "The rune offset the right column starts at.")
	pdfColumnsCmd.Flags().StringVar(&pdfHeader, "header", "", "A regex matching the first line of every entry.")
	pdfColumnsCmd.Flags().StringVar(&pdfPageHeader, "page-header", "", "A regex matching a page banner to drop.")
	pdfColumnsCmd.Flags().IntVar(&pdfPageSkip, "page-header-skip", 0, "Lines to drop after every page banner.")
	pdfColumnsCmd.Flags().StringVar(&pdftotextPath, "pdftotext", "", "The pdftotext binary, looked up on PATH by default.")
	rootCmd.AddCommand(pdfColumnsCmd)
}

var pdfColumnsCmd = &cobra.Command{
	Use:   "pdf-columns <file.pdf|file.txt> [--column 40] [--header regex]",
	Short: "Prints the entries recovered from a two-column roster, to check a column offset against a new document.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := pdfOptions()
		if err != nil {
			return fmt.Errorf("invalid options: %w", err)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		var converter pdfcolumns.Converter = pdfcolumns.Text(data)
		if strings.EqualFold(filepath.Ext(args[0]), ".pdf") {
			converter = pdfcolumns.Pdftotext{Path: pdftotextPath}
		}
		text, err := converter.Convert(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("failed to convert document: %w", err)
		}

		for i, entry := range pdfcolumns.Recover(pdfcolumns.SplitLines(text), opts) {
			fmt.Printf("--- %d\n", i+1)
			for _, line := range entry {
				fmt.Println(line)
			}
		}
		return nil
	},
}

func pdfOptions() (pdfcolumns.Options, error) {
	opts := pdfcolumns.Options{
		Column:         pdfColumn,
		PageHeaderSkip: pdfPageSkip,
	}
	if pdfHeader != "" {
		header, err := regexp.Compile(pdfHeader)
		if err != nil {
			return opts, fmt.Errorf("--header: %w", err)
		}
		opts.Header = header
	}
	if pdfPageHeader != "" {
		pageHeader, err := regexp.Compile(pdfPageHeader)
		if err != nil {
			return opts, fmt.Errorf("--page-header: %w", err)
		}
		opts.PageHeader = pageHeader
	}
	return opts, nil
}
