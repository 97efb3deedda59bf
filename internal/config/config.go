package config

import (
	"path/filepath"

	"github.com/go-ini/ini"
)

// ExtractConfig contains the defaults of the extract command from the [extract] section.
type ExtractConfig struct {
	// Dest is the base directory to extract to. A relative path is resolved against the configuration file's directory.
	Dest        string
	Smart       bool
	Overwrite   bool
	Concurrency int
}

// ForExtract returns configuration for extract.
//
// Smart defaults to true; everything else defaults to its zero value.
func (l *Loader) ForExtract() (c ExtractConfig) {
	c.Smart = true

	sec := l.section("extract")
	if sec == nil {
		return c
	}

	if c.Dest = sec.Key("dest").String(); c.Dest != "" && !filepath.IsAbs(c.Dest) && l.path != "" {
		c.Dest = filepath.Join(filepath.Dir(l.path), c.Dest)
	}
	c.Smart = sec.Key("smart").MustBool(true)
	c.Overwrite = sec.Key("overwrite").MustBool(false)
	c.Concurrency = sec.Key("concurrency").MustInt(0)

	return
}

// ForExtract calls Loader.ForExtract on the DefaultLoader instance.
func ForExtract() ExtractConfig {
	return DefaultLoader.ForExtract()
}

// CompressConfig contains the defaults of the compress command from the [compress] section.
type CompressConfig struct {
	Fast      bool
	Recursive bool
}

// ForCompress returns configuration for compress.
//
// Both settings default to true.
func (l *Loader) ForCompress() (c CompressConfig) {
	c.Fast, c.Recursive = true, true

	sec := l.section("compress")
	if sec == nil {
		return c
	}

	c.Fast = sec.Key("fast").MustBool(true)
	c.Recursive = sec.Key("recursive").MustBool(true)

	return
}

// ForCompress calls Loader.ForCompress on the DefaultLoader instance.
func ForCompress() CompressConfig {
	return DefaultLoader.ForCompress()
}

func (l *Loader) section(name string) *ini.Section {
	if l.cfg == nil {
		return nil
	}

	sec, err := l.cfg.GetSection(name)
	if err != nil {
		return nil
	}

	return sec
}
