package catalog

import (
	_ "embed"
	"fmt"
)

//go:embed builtin_tools.yaml
var builtinTools []byte

// BuiltinSource is the location reported for the embedded tool list.
const BuiltinSource = "builtin"

// Builtin returns the tool list shipped with the binary.
func Builtin() ([]Item, error) {
	items, err := Decode(builtinTools, FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("decoding builtin tools: %w", err)
	}
	return Normalize(items)
}
