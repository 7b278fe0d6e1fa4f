package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/breeze-client/internal/constants"
)

// Document is a schemaless item addressed by its "key" field.
type Document map[string]any

// Key implements breeze.KeyedItem.
func (d Document) Key() string {
	switch key := d[constants.DocumentKeyField].(type) {
	case nil:
		return ""
	case string:
		return key
	default:
		return fmt.Sprint(key)
	}
}

// parseDocument decodes a JSON object, keeping numbers exact.
func parseDocument(data []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value any

	err := decoder.Decode(&value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item JSON: %w", err)
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, constants.ErrItemNotObject
	}

	return Document(object), nil
}

// readDocument loads a document from --data or --file. A file of "-" reads
// stdin.
func readDocument(data, file string, stdin io.Reader) (Document, error) {
	switch {
	case strings.TrimSpace(data) != "":
		return parseDocument([]byte(data))
	case file == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read item from stdin: %w", err)
		}

		return parseDocument(content)
	case file != "":
		// #nosec G304 -- the path is supplied by the user on the command line
		content, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return nil, fmt.Errorf("failed to read item file: %w", err)
		}

		return parseDocument(content)
	default:
		return nil, constants.ErrItemDataRequired
	}
}
