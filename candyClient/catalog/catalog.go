// Package catalog loads the ordered list of mintable items.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pushchain/candy-machine-client/candyClient/layout"
)

// Parse decodes a JSON array of {"name", "uri"} objects and validates every
// entry against calc before anything is sent to the ledger.
func Parse(r io.Reader, calc *layout.Calculator) ([]layout.CatalogLine, error) {
	var lines []layout.CatalogLine
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&lines); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	if err := calc.ValidateCatalog(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Load reads and validates the catalog file at path.
func Load(path string, calc *layout.Calculator) ([]layout.CatalogLine, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	lines, err := Parse(f, calc)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return lines, nil
}

// Batch is a contiguous slice of the catalog and the index of its first line.
type Batch struct {
	Offset uint32
	Lines  []layout.CatalogLine
}

// Batches splits lines into chunks of at most size, keeping catalog order.
// start is the index of lines[0] in the config account.
func Batches(lines []layout.CatalogLine, start uint32, size int) []Batch {
	if size <= 0 {
		size = len(lines)
	}
	var out []Batch
	for i := 0; i < len(lines); i += size {
		end := i + size
		if end > len(lines) {
			end = len(lines)
		}
		out = append(out, Batch{Offset: start + uint32(i), Lines: lines[i:end]})
	}
	return out
}
