package infra

import (
	"bytes"
	"encoding/json"
)

// PrettyJSON indents raw JSON with two spaces. Anything that is not valid
// JSON renders as "null".
func PrettyJSON(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return "null"
	}
	return buf.String()
}
