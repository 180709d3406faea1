package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/snaphist/internal/ir"
)

// FileSource reads objects and attributes from a pair of CSV files.
type FileSource struct {
	ObjectsPath    string
	AttributesPath string
}

// Objects reads the object file.
func (s FileSource) Objects(_ context.Context) ([]ir.Object, error) {
	return readFile(s.ObjectsPath, ReadObjects)
}

// Attributes reads the attribute file.
func (s FileSource) Attributes(_ context.Context) ([]ir.Attribute, error) {
	return readFile(s.AttributesPath, ReadAttributes)
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		var re *RowError
		if errors.As(err, &re) {
			re.File = path
		}
		return nil, err
	}
	return rows, nil
}
