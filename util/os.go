package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// MkExclDir creates a new child directory that did not exist prior to this invocation.
//
// Stem is the desired name of the directory. If "parent/stem" already exists, the names "stem (2)", "stem (3)", etc.
// are tried in that order until os.Mkdir succeeds. The return value "name" is the actual path to the newly created
// directory. Because each attempt is an exclusive os.Mkdir, two concurrent callers never receive the same directory.
func MkExclDir(parent, stem string, perm os.FileMode) (name string, err error) {
	name = filepath.Join(parent, stem)
	for i := 1; ; {
		switch err = os.Mkdir(name, perm); {
		case err == nil:
			return
		case errors.Is(err, os.ErrExist):
			i++
			name = filepath.Join(parent, stem+" ("+strconv.Itoa(i)+")")
		default:
			return "", fmt.Errorf("create directory error: %w", err)
		}
	}
}

// CreateSiblingTemp creates a hidden temporary file in the same directory as name.
//
// The file is meant to be renamed to name once it has been completely written so that readers never observe a
// partially written file. Caller is responsible for closing and, on failure, removing the returned file.
func CreateSiblingTemp(name string) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file error: %w", err)
	}

	return f, nil
}

// DirBase joins both filepath.Dir and filepath.Base for the given file name.
//
// The idea is that sometimes the working directory is not clear so by printing both the directory and the basename of
// a file, it is clearer where the file is.
func DirBase(name string) string {
	dir := filepath.Dir(name)
	base := filepath.Base(name)
	if dir != "" && dir != "." {
		return filepath.Join(filepath.Base(dir), base)
	}

	abs, err := filepath.Abs(name)
	if err == nil {
		return filepath.Join(filepath.Base(filepath.Dir(abs)), base)
	}

	return base
}
