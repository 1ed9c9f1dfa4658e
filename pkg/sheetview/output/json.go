// Package output serializes rendered results as JSON or as an HTML table.
package output

import "encoding/json"

// ToJSON serializes v, indented with two spaces when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
