package scene

import (
	"encoding/json"
	"io"
	"os"

	"github.com/yunchaoli/cablerig/pkg/errors"
)

// WriteJSON encodes a batch as indented JSON and writes it to w.
// The output round-trips through [ReadJSON].
func WriteJSON(b *Batch, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode batch")
	}
	return nil
}

// ReadJSON decodes a batch from r and checks its structural integrity.
func ReadJSON(r io.Reader) (*Batch, error) {
	var b Batch
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode batch")
	}

	if len(b.Assemblies) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "batch has no assemblies")
	}
	for i := range b.Assemblies {
		a := &b.Assemblies[i]
		if a.NumLinks() == 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "assembly %d has no links", a.Index)
		}
		for _, g := range a.Groups() {
			if _, ok := a.Archetypes[g.Archetype]; !ok {
				return nil, errors.New(errors.ErrCodeInvalidFormat,
					"assembly %d: group %s references unknown archetype %q", a.Index, g.Name, g.Archetype)
			}
		}
	}
	return &b, nil
}

// ExportJSON writes a batch to a JSON file at path.
func ExportJSON(b *Batch, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(b, f)
}

// ImportJSON reads a batch from a JSON file at path.
func ImportJSON(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
