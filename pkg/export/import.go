package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadFrame decodes a frame written by [WriteFrame]. The count field must
// match the number of instances.
func ReadFrame(r io.Reader) (Frame, error) {
	var f Frame
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Frame{}, fmt.Errorf("decode: %w", err)
	}
	if f.Count != len(f.Instances) {
		return Frame{}, fmt.Errorf("frame count %d does not match %d instances", f.Count, len(f.Instances))
	}
	return f, nil
}

// ReadElements decodes elements written by [WriteElements].
func ReadElements(r io.Reader) (Elements, error) {
	var e Elements
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return Elements{}, fmt.Errorf("decode: %w", err)
	}
	if e.Count != len(e.Elements) {
		return Elements{}, fmt.Errorf("element count %d does not match %d elements", e.Count, len(e.Elements))
	}
	return e, nil
}

// ImportElements reads an elements file at path.
func ImportElements(path string) (Elements, error) {
	f, err := os.Open(path)
	if err != nil {
		return Elements{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadElements(f)
}
