package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// countingWriter tracks bytes for artifact metrics.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteAtomic writes through fn to a temp file in the target directory and
// renames it into place, so readers never observe a half-written artifact.
// It returns the bytes written.
func WriteAtomic(path string, fn func(io.Writer) error) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	cw := &countingWriter{w: tmp}
	if err := fn(cw); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("rename into %s: %w", path, err)
	}
	return cw.n, nil
}
