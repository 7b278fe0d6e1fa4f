package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outputFormat returns the --output setting, defaulting to a table.
func outputFormat() (string, error) {
	format := viper.GetString("output")
	if format == "" {
		return constants.FormatTable, nil
	}

	err := validateOutputFormat(format)
	if err != nil {
		return "", err
	}

	return format, nil
}

func validateOutputFormat(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q (use table, json or yaml)", constants.ErrInvalidOutputFormat, format)
	}
}

func encodeStructured(out io.Writer, format string, value any) (bool, error) {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return true, encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		return true, encoder.Encode(value)
	default:
		return false, nil
	}
}

// renderDocument prints one document as a property table or as JSON/YAML.
func renderDocument(out io.Writer, format string, doc Document) error {
	handled, err := encodeStructured(out, format, doc)
	if handled {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, field := range documentFields([]Document{doc}) {
		_ = table.Append([]string{field, formatCell(doc[field])})
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderDocuments prints documents as one row each or as JSON/YAML.
func renderDocuments(out io.Writer, format string, docs []Document) error {
	if docs == nil {
		docs = []Document{}
	}

	handled, err := encodeStructured(out, format, docs)
	if handled {
		return err
	}

	if len(docs) == 0 {
		_, _ = fmt.Fprintln(out, "No items found")

		return nil
	}

	fields := documentFields(docs)

	header := make([]any, len(fields))
	for i, field := range fields {
		header[i] = field
	}

	table := tablewriter.NewWriter(out)
	table.Header(header...)

	for _, doc := range docs {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = formatCell(doc[field])
		}

		_ = table.Append(row)
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// documentFields lists the key field first, then every other field name in
// sorted order.
func documentFields(docs []Document) []string {
	seen := map[string]bool{}

	var others []string

	for _, doc := range docs {
		for field := range doc {
			if field == constants.DocumentKeyField || seen[field] {
				continue
			}

			seen[field] = true
			others = append(others, field)
		}
	}

	sort.Strings(others)

	return append([]string{constants.DocumentKeyField}, others...)
}

func formatCell(value any) string {
	var cell string

	switch v := value.(type) {
	case nil:
		return ""
	case string:
		cell = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			cell = fmt.Sprint(v)
		} else {
			cell = string(encoded)
		}
	}

	return truncate(cell, constants.StringTruncationLength)
}

func truncate(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")

	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}

	return string(runes[:limit-3]) + "..."
}
