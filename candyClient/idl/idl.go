// Package idl embeds the Anchor interface description of the pinned
// candy machine program build.
package idl

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

//go:embed nft_candy_machine.json
var rawIDL []byte

// IDL is the subset of the Anchor IDL format this client reads.
type IDL struct {
	Version      string        `json:"version"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
	Accounts     []TypeDef     `json:"accounts"`
	Types        []TypeDef     `json:"types"`
}

type Instruction struct {
	Name     string    `json:"name"`
	Accounts []Account `json:"accounts"`
	Args     []Field   `json:"args"`
}

type Account struct {
	Name     string `json:"name"`
	IsMut    bool   `json:"isMut"`
	IsSigner bool   `json:"isSigner"`
}

type Field struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type TypeDef struct {
	Name string `json:"name"`
	Type struct {
		Kind   string  `json:"kind"`
		Fields []Field `json:"fields"`
	} `json:"type"`
}

var (
	loadOnce sync.Once
	loaded   *IDL
	loadErr  error
)

// Load parses the embedded IDL. The result is shared and must not be modified.
func Load() (*IDL, error) {
	loadOnce.Do(func() {
		var doc IDL
		if err := json.Unmarshal(rawIDL, &doc); err != nil {
			loadErr = fmt.Errorf("failed to parse embedded idl: %w", err)
			return
		}
		loaded = &doc
	})
	return loaded, loadErr
}

// Raw returns the embedded IDL document.
func Raw() []byte {
	out := make([]byte, len(rawIDL))
	copy(out, rawIDL)
	return out
}

// Instruction looks up an instruction by its camelCase or snake_case name.
func (d *IDL) Instruction(name string) (*Instruction, error) {
	for i := range d.Instructions {
		ix := &d.Instructions[i]
		if ix.Name == name || ix.SnakeName() == name {
			return ix, nil
		}
	}
	return nil, fmt.Errorf("instruction %q not found in idl %s", name, d.Name)
}

// Type looks up a defined type or account layout by name.
func (d *IDL) Type(name string) (*TypeDef, error) {
	for _, defs := range [][]TypeDef{d.Accounts, d.Types} {
		for i := range defs {
			if defs[i].Name == name {
				return &defs[i], nil
			}
		}
	}
	return nil, fmt.Errorf("type %q not found in idl %s", name, d.Name)
}

// SnakeName returns the method name Anchor hashes into the discriminator.
func (ix *Instruction) SnakeName() string {
	return SnakeCase(ix.Name)
}

// SnakeCase converts a camelCase identifier to snake_case.
func SnakeCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
