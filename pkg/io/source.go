package io

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/ganttsync/pkg/errors"
)

// ReadSource reads a chart from path. A missing file yields
// ErrCodeFileNotFound; oversized or binary content yields ErrCodeInvalidInput.
func ReadSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "chart not found: %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadSourceFrom(f)
}

// ReadSourceFrom reads a chart from r. It does not close r.
func ReadSourceFrom(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, errors.MaxSourceBytes+1))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read chart")
	}
	src := string(data)
	if err := errors.ValidateSource(src); err != nil {
		return "", err
	}
	return src, nil
}

// WriteSource replaces the chart at path with src. The data goes to a
// temporary file first and is renamed into place; the file mode of an
// existing chart is kept.
func WriteSource(path, src string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ganttsync-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(src); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "chmod %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "replace %s", path)
	}
	return nil
}
