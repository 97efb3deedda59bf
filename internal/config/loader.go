package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

// Name is the name of the configuration file (or directory containing config.ini) that Loader looks for.
const Name = ".fastzip"

// Loader can be used for loading .fastzip configuration as well as overridden with default settings.
type Loader struct {
	// Home overrides the user's home directory that is used as the fallback location "$HOME/.fastzip/config.ini".
	Home string

	cfg  *ini.File
	path string
}

// Load will traverse the directory hierarchy upwards from the current working directory to find the first ".fastzip"
// file available and load its contents into the Loader.
//
// The name of the loaded file is returned, or empty string if no configuration file was found.
func (l *Loader) Load(ctx context.Context) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory error: %w", err)
	}

	return l.LoadFrom(ctx, wd)
}

// LoadFrom is a variant of Load that starts the search from the given directory.
//
// At each level, a regular file named ".fastzip" wins over a directory ".fastzip" containing "config.ini". If no
// ancestor has either, "$HOME/.fastzip/config.ini" is tried.
func (l *Loader) LoadFrom(ctx context.Context, dir string) (string, error) {
	l.cfg, l.path = ini.Empty(), ""

	cur, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory error: %w", err)
	}

	for {
		if err = ctx.Err(); err != nil {
			return "", err
		}

		path, err := find(cur)
		if err != nil {
			return "", err
		}
		if path != "" {
			return path, l.load(path)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	home := l.Home
	if home == "" {
		if home, err = os.UserHomeDir(); err != nil {
			return "", nil
		}
	}

	path := filepath.Join(home, Name, "config.ini")
	switch fi, err := os.Stat(path); {
	case err == nil && !fi.IsDir():
		return path, l.load(path)
	case err == nil, errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf(`stat "%s" error: %w`, path, err)
	}
}

// Path returns the name of the file that was loaded, or empty string if none.
func (l *Loader) Path() string {
	return l.path
}

func (l *Loader) load(path string) (err error) {
	if l.cfg, err = ini.Load(path); err != nil {
		l.cfg = ini.Empty()
		return fmt.Errorf(`load config "%s" error: %w`, path, err)
	}

	l.path = path
	return nil
}

// find returns the path to the configuration file in the given directory, or empty string if there is none.
func find(dir string) (string, error) {
	path := filepath.Join(dir, Name)

	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	case err != nil:
		return "", fmt.Errorf(`stat "%s" error: %w`, path, err)
	case !fi.IsDir():
		return path, nil
	}

	path = filepath.Join(path, "config.ini")
	switch fi, err = os.Stat(path); {
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	case err != nil:
		return "", fmt.Errorf(`stat "%s" error: %w`, path, err)
	case fi.IsDir():
		return "", nil
	default:
		return path, nil
	}
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = &Loader{cfg: ini.Empty()}

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}
