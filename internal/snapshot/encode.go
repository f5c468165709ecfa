package snapshot

import (
	"encoding/json"
	"io"
)

// Encode writes s as indented JSON (four spaces, trailing newline), the
// format of the export file. Map keys are emitted sorted.
func Encode(w io.Writer, s *Snapshot) error {
	if err := Supported(s); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(s)
}
