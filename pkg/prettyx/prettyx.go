// Package prettyx renders arbitrary values as indented, colourless
// key/value text for chat messages.
package prettyx

import (
	"bytes"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

const indent = 2

// Render returns an indentation-preserving text block for v. It never fails:
// values yaml cannot encode fall back to Go's %+v form.
func Render(v any) (out string) {
	defer func() {
		// yaml.v3 panics on some unsupported kinds (channels, funcs)
		if r := recover(); r != nil {
			out = fmt.Sprintf("%+v", v)
		}
	}()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%+v", v)
	}
	if err := enc.Close(); err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
