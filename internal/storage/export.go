package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/bow-simulation/virtualbow-sub001/internal/model"
)

// ExportJSON writes the complete output of a simulation to path.
func ExportJSON(path string, out *model.Output) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, out)
}

// WriteJSON encodes the output indented to w.
func WriteJSON(w io.Writer, out *model.Output) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
