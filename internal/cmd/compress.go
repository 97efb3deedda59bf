package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/fastzip"
	"github.com/nguyengg/fastzip/internal"
	"github.com/nguyengg/fastzip/internal/config"
)

type Compress struct {
	Output      flags.Filename `short:"o" long:"output" description:"the archive to create; its extension (.zip, .7z, .tar, .tar.gz, .tar.xz, .tar.bz2, .tar.zst) decides the format" required:"yes"`
	NoFast      bool           `long:"no-fast" description:"deflate ZIP entries instead of storing them"`
	NoRecursive bool           `long:"no-recursive" description:"add directories as empty entries instead of descending into them"`
	Quiet
	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the files/directories to be compressed" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Compress) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := config.Load(ctx); err != nil {
		log.Printf("%s %v", yellow("[WARN]"), err)
	}

	sources := existing(c.Args.Files)
	if len(sources) == 0 {
		return fastzip.ErrNoSources
	}

	opts := c.options(config.ForCompress())

	logger, w := c.logger()
	ctx = fastzip.WithLogger(ctx, logger)

	size := totalSize(sources, opts.Recursive)
	bar := internal.DefaultBytes(w, size, "compressing")
	opts.OnAdd = func(_ string, n int64) {
		_ = bar.Add64(n)
	}

	err := fastzip.CompressToFile(ctx, sources, string(c.Output), opts)
	_ = bar.Finish()
	if err != nil {
		log.Printf(`%s compress to "%s" error: %v`, red("[ERROR]"), c.Output, err)
		return err
	}

	log.Printf(`%s compressed %d sources (%s) to "%s"`, green("[OK]"), len(sources), humanize.IBytes(uint64(size)), c.Output)
	return nil
}

// options merges the command line flags on top of the configuration file's defaults.
func (c *Compress) options(cfg config.CompressConfig) fastzip.CompressOptions {
	return fastzip.CompressOptions{
		Recursive: cfg.Recursive && !c.NoRecursive,
		Fast:      cfg.Fast && !c.NoFast,
	}
}

// totalSize sums the sizes of regular files that would be added.
func totalSize(sources []string, recursive bool) (size int64) {
	for _, src := range sources {
		fi, err := os.Stat(src)
		switch {
		case err != nil:
			continue
		case !fi.IsDir():
			size += fi.Size()
			continue
		case !recursive:
			continue
		}

		_ = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.Type().IsRegular() {
				return nil
			}

			if fi, err := d.Info(); err == nil {
				size += fi.Size()
			}
			return nil
		})
	}

	return
}
