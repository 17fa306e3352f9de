package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// outputFormat is set by the root command's -o flag.
var outputFormat string

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// checkOutputFormat rejects unknown -o values before any request is made.
func checkOutputFormat() error {
	switch outputFormat {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
	}
}

// writeTable writes aligned columns to w.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow := func(cols []string) {
		for i, col := range cols {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col)
		}
		fmt.Fprintln(tw)
	}
	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	return tw.Flush()
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v interface{}) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// printList prints items in the selected format. Structured formats encode
// the slice as-is; tables use headers and one toRow call per item.
func printList[T any](items []T, headers []string, toRow func(*T) []string) error {
	return writeList(os.Stdout, outputFormat, items, headers, toRow)
}

// printOne prints a single record.
func printOne[T any](item *T, headers []string, toRow func(*T) []string) error {
	if outputFormat != formatTable {
		return writeStructured(os.Stdout, outputFormat, item)
	}
	return writeTable(os.Stdout, headers, [][]string{toRow(item)})
}

// printValue prints v as JSON or YAML. It is a no-op for table output and
// reports whether it printed.
func printValue(v interface{}) (bool, error) {
	if outputFormat == formatTable {
		return false, nil
	}
	return true, writeStructured(os.Stdout, outputFormat, v)
}

func writeList[T any](w io.Writer, format string, items []T, headers []string, toRow func(*T) []string) error {
	if format != formatTable {
		return writeStructured(w, format, items)
	}
	rows := make([][]string, 0, len(items))
	for i := range items {
		rows = append(rows, toRow(&items[i]))
	}
	return writeTable(w, headers, rows)
}

// formatAge returns a human-readable duration since t, such as "5s", "3m",
// "2h" or "4d".
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "<unknown>"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
