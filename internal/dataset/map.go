package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrMapNotFound is returned when the pre-rendered trip map is absent.
var ErrMapNotFound = errors.New("map file not found")

// MapFile reads the pre-rendered trip map document.
type MapFile struct {
	Path string
}

// NewMapFile returns a reader bound to path.
func NewMapFile(path string) *MapFile {
	return &MapFile{Path: path}
}

// ReadMap implements source.MapReader.
func (m *MapFile) ReadMap(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return LoadMapHTML(m.Path)
}

// LoadMapHTML returns the raw HTML text at path.
func LoadMapHTML(path string) (string, error) {
	if path == "" {
		return "", ErrMapNotFound
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrMapNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("read map html: %w", err)
	}
	return string(b), nil
}
