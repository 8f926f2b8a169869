package export

import (
	"encoding/json"
	"io"
)

// WriteJSON serializes a report dataset as indented JSON. The typed rows'
// struct tags define the field names and order.
func WriteJSON(w io.Writer, dataset any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dataset)
}
