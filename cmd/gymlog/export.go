// ABOUTME: CLI commands for exporting and importing workout data.
// ABOUTME: Supports CSV, JSON, YAML, Markdown and full backup files.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harperreed/gymlog/internal/transfer"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportWithIDs  bool
	exportExercise string
	exportSince    string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export workout data",
	Long: `Export workout data in various formats.

FORMATS:

  csv        Sets as CSV (spreadsheet friendly, re-importable)
  json       Sets as a JSON array (re-importable)
  yaml       Sets grouped by exercise plus personal records
  markdown   Markdown tables (for documentation/sharing)
  backup     Every collection as one JSON object (restore with 'gymlog import')

OPTIONS:

  --output, -o     Write to file instead of stdout
  --with-ids       Include set IDs (csv only)
  --exercise, -e   Only this exercise (markdown only)
  --since          Only sets since this date (markdown only, YYYY-MM-DD)

EXAMPLES:

  gymlog export csv -o sets.csv
  gymlog export json > sets.json
  gymlog export markdown --exercise Squat --since 2024-01-01
  gymlog export backup -o gymlog-backup.json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "json", "yaml", "markdown", "backup"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var buf bytes.Buffer
		var err error

		switch args[0] {
		case "csv":
			err = gym.Transfer.ExportCSV(ctx, &buf, transfer.CSVOptions{IncludeID: exportWithIDs})
		case "json":
			err = gym.Transfer.ExportJSON(ctx, &buf)
		case "yaml":
			err = gym.Transfer.ExportYAML(ctx, &buf)
		case "markdown", "md":
			opts := transfer.MarkdownOptions{Exercise: exportExercise}
			if exportSince != "" {
				t, perr := parseTime(exportSince, gym.Location)
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				opts.Since = &t
			}
			err = gym.Transfer.ExportMarkdown(ctx, &buf, opts)
		case "backup":
			err = gym.Transfer.ExportBackup(ctx, &buf)
		default:
			return fmt.Errorf("unknown format: %s (use csv, json, yaml, markdown or backup)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			success(cmd.OutOrStdout(), "Exported to %s", exportOutput)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import workout data",
	Long: `Import sets from a CSV or JSON export, or restore a backup.

The format is chosen from the file: .csv files are read as CSV, a JSON
array as exported sets, and a JSON object as a backup. Entries whose ID
already exists are skipped, so importing the same file twice is safe.

EXAMPLES:

  gymlog import sets.csv
  gymlog import sets.json
  gymlog import gymlog-backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer func() { _ = f.Close() }()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		r := bufio.NewReader(f)

		kind, err := detectImport(args[0], r)
		if err != nil {
			return err
		}

		var res transfer.Result
		switch kind {
		case "csv":
			res, err = gym.Transfer.ImportCSV(ctx, r)
		case "json":
			res, err = gym.Transfer.ImportJSON(ctx, r)
		case "backup":
			results, berr := gym.Transfer.ImportBackup(ctx, r)
			if berr != nil {
				return fmt.Errorf("import failed: %w", berr)
			}
			names := make([]string, 0, len(results))
			for name := range results {
				names = append(names, name)
			}
			sort.Strings(names)
			success(out, "Restored backup from %s", args[0])
			for _, name := range names {
				fmt.Fprintf(out, "  %s %s\n", padRight(name, 14), faint.Sprint(results[name].String()))
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		success(out, "Imported %s", args[0])
		fmt.Fprintf(out, "  %s\n", res)
		return nil
	},
}

// detectImport picks csv, json or backup from the file name and the first
// non-space byte.
func detectImport(name string, r *bufio.Reader) (string, error) {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return "csv", nil
	}
	for {
		b, err := r.Peek(1)
		if err == io.EOF {
			return "", fmt.Errorf("import failed: %s is empty", name)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = r.ReadByte()
			continue
		case '[':
			return "json", nil
		case '{':
			return "backup", nil
		default:
			return "csv", nil
		}
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
	exportCmd.Flags().BoolVar(&exportWithIDs, "with-ids", false, "include set IDs (csv)")
	exportCmd.Flags().StringVarP(&exportExercise, "exercise", "e", "", "only this exercise (markdown)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only sets since date (markdown)")

	rootCmd.AddCommand(exportCmd, importCmd)
}
