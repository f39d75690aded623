// Package layout computes the exact byte sizes of the candy machine config
// account and encodes catalog lines into their fixed-width on-chain form.
package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"

	cerrors "github.com/pushchain/candy-machine-client/candyClient/errors"
)

// Field widths of the config account header.
const (
	AuthorityWidth = 32
	UUIDWidth      = 6
	SymbolWidth    = 10
	MaxCreators    = 5
	CreatorWidth   = 32 + 1 + 1 // address, verified, share
	MaxBasisPoints = 10000

	lengthPrefix = 4

	// HeaderSize is the fixed part of the config account preceding the line vector.
	HeaderSize = AuthorityWidth +
		lengthPrefix + UUIDWidth +
		lengthPrefix + SymbolWidth +
		2 + // seller fee basis points
		1 + // creators option tag
		lengthPrefix + MaxCreators*CreatorWidth +
		8 + // max supply
		1 + // is mutable
		1 + // retain authority
		4 // max number of lines
)

// Reference widths of the pinned program build.
const (
	DefaultNameWidth = 32
	DefaultURIWidth  = 200
)

// EntryLayout describes the fixed widths of one encoded catalog line.
type EntryLayout struct {
	NameWidth int
	URIWidth  int
}

// NewEntryLayout validates the widths once so every later computation can trust them.
func NewEntryLayout(nameWidth, uriWidth int) (EntryLayout, error) {
	if nameWidth <= 0 || uriWidth <= 0 {
		return EntryLayout{}, cerrors.NewLayoutError("entry_layout",
			fmt.Sprintf("entry widths must be positive, got name=%d uri=%d", nameWidth, uriWidth))
	}
	return EntryLayout{NameWidth: nameWidth, URIWidth: uriWidth}, nil
}

// DefaultEntryLayout returns the 32/200 layout of the pinned program.
func DefaultEntryLayout() EntryLayout {
	return EntryLayout{NameWidth: DefaultNameWidth, URIWidth: DefaultURIWidth}
}

// EntryWidth is the encoded size of one line: two length prefixes plus both fields.
func (l EntryLayout) EntryWidth() int {
	return lengthPrefix + l.NameWidth + lengthPrefix + l.URIWidth
}

// CatalogLine is one mintable item.
type CatalogLine struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Calculator sizes config accounts for a given entry layout.
type Calculator struct {
	entry EntryLayout
}

// NewCalculator returns a calculator for entry. The layout is re-validated so a
// zero-value EntryLayout cannot slip through.
func NewCalculator(entry EntryLayout) (*Calculator, error) {
	validated, err := NewEntryLayout(entry.NameWidth, entry.URIWidth)
	if err != nil {
		return nil, err
	}
	return &Calculator{entry: validated}, nil
}

// Entry returns the layout the calculator was built with.
func (c *Calculator) Entry() EntryLayout {
	return c.entry
}

// RequiredStorage returns the exact allocation for a config account holding n lines:
// header, line vector prefix, n entries, line count and a trailing byte.
func (c *Calculator) RequiredStorage(n uint32) uint64 {
	return uint64(HeaderSize) +
		lengthPrefix +
		uint64(n)*uint64(c.entry.EntryWidth()) +
		4 +
		1
}

// ValidateLine rejects lines whose fields do not fit the layout.
func (c *Calculator) ValidateLine(line CatalogLine) error {
	if err := checkField("name", line.Name, c.entry.NameWidth); err != nil {
		return err
	}
	return checkField("uri", line.URI, c.entry.URIWidth)
}

// ValidateCatalog checks every line and reports the first offending index.
func (c *Calculator) ValidateCatalog(lines []CatalogLine) error {
	for i, line := range lines {
		if err := c.ValidateLine(line); err != nil {
			return cerrors.WrapCandyError(err, cerrors.ErrCodeLayout, "validate_catalog", "invalid catalog line").
				WithContext("index", i)
		}
	}
	return nil
}

// EncodeLine writes a line in its fixed-width form. Each field is zero padded
// to its width and prefixed with the width as a little-endian u32.
func (c *Calculator) EncodeLine(line CatalogLine) ([]byte, error) {
	if err := c.ValidateLine(line); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, c.entry.EntryWidth())
	buf = appendPadded(buf, line.Name, c.entry.NameWidth)
	buf = appendPadded(buf, line.URI, c.entry.URIWidth)
	return buf, nil
}

// DecodeLine reverses EncodeLine, trimming the zero padding.
func (c *Calculator) DecodeLine(data []byte) (CatalogLine, error) {
	if len(data) != c.entry.EntryWidth() {
		return CatalogLine{}, cerrors.NewLayoutError("decode_line",
			fmt.Sprintf("expected %d bytes, got %d", c.entry.EntryWidth(), len(data)))
	}
	name, rest, err := readPadded(data, c.entry.NameWidth)
	if err != nil {
		return CatalogLine{}, err
	}
	uri, _, err := readPadded(rest, c.entry.URIWidth)
	if err != nil {
		return CatalogLine{}, err
	}
	return CatalogLine{Name: name, URI: uri}, nil
}

// ValidateUUID checks that an identifier fills exactly the 6-byte uuid field.
func ValidateUUID(uuid string) error {
	if len(uuid) != UUIDWidth {
		return cerrors.NewLayoutError("validate_uuid",
			fmt.Sprintf("uuid must be exactly %d bytes, got %d", UUIDWidth, len(uuid)))
	}
	return nil
}

func checkField(field, value string, width int) error {
	if len(value) > width {
		return cerrors.NewLayoutError("validate_line",
			fmt.Sprintf("%s is %d bytes, exceeds width %d", field, len(value), width))
	}
	if bytes.IndexByte([]byte(value), 0) >= 0 {
		return cerrors.NewLayoutError("validate_line",
			fmt.Sprintf("%s contains a NUL byte", field))
	}
	return nil
}

func appendPadded(buf []byte, value string, width int) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(width))
	buf = append(buf, value...)
	return append(buf, make([]byte, width-len(value))...)
}

func readPadded(data []byte, width int) (string, []byte, error) {
	if got := binary.LittleEndian.Uint32(data[:lengthPrefix]); got != uint32(width) {
		return "", nil, cerrors.NewLayoutError("decode_line",
			fmt.Sprintf("length prefix %d does not match width %d", got, width))
	}
	field := data[lengthPrefix : lengthPrefix+width]
	return string(bytes.TrimRight(field, "\x00")), data[lengthPrefix+width:], nil
}
