package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/fastzip"
	"github.com/nguyengg/fastzip/internal"
	"github.com/nguyengg/fastzip/internal/config"
)

type Extract struct {
	Dest           flags.Filename `short:"d" long:"dest" description:"base directory to extract to; defaults to each archive's own directory"`
	Flat           bool           `long:"flat" description:"always extract archives to <dest>/<archive-stem> instead of picking the output directory smartly"`
	Overwrite      bool           `short:"o" long:"overwrite" description:"overwrite existing files"`
	Password       string         `short:"p" long:"password" description:"password of encrypted archives; defaults to FASTZIP_PASSWORD environment variable"`
	MaxConcurrency int            `short:"P" long:"max-concurrency" description:"number of archives to extract at the same time; defaults to the number of CPUs"`
	Quiet
	Args struct {
		Files []flags.Filename `positional-arg-name:"archive" description:"the archives to be extracted" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Extract) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := config.Load(ctx); err != nil {
		log.Printf("%s %v", yellow("[WARN]"), err)
	}

	paths := existing(c.Args.Files)
	if len(paths) == 0 {
		return errors.New("no archives to extract")
	}

	opts := c.options(config.ForExtract())

	logger, w := c.logger()
	ctx = fastzip.WithLogger(ctx, logger)

	bar := internal.DefaultCount(w, len(paths), "extracting")
	opts.OnResult = func(int, fastzip.ExtractResult) {
		_ = bar.Add(1)
	}

	results := fastzip.ExtractMany(ctx, paths, opts)
	_ = bar.Finish()

	success := 0
	for _, r := range results {
		if r.Err != nil {
			log.Printf(`%s extract "%s" error: %v`, red("[ERROR]"), r.Path, r.Err)
			continue
		}

		log.Printf(`%s extracted "%s" to "%s"`, green("[OK]"), r.Path, r.Dest)
		success++
	}

	log.Printf("successfully extracted %s files", cyan(fmt.Sprintf("%d/%d", success, len(paths))))

	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return ctx.Err()
	case success != len(paths):
		return fmt.Errorf("failed to extract %d archives", len(paths)-success)
	default:
		return nil
	}
}

// options merges the command line flags on top of the configuration file's defaults.
func (c *Extract) options(cfg config.ExtractConfig) fastzip.ExtractOptions {
	opts := fastzip.ExtractOptions{
		Dest:        cfg.Dest,
		Smart:       cfg.Smart && !c.Flat,
		Overwrite:   cfg.Overwrite || c.Overwrite,
		Password:    password(c.Password),
		Concurrency: cfg.Concurrency,
	}

	if c.Dest != "" {
		opts.Dest = string(c.Dest)
	}
	if c.MaxConcurrency > 0 {
		opts.Concurrency = c.MaxConcurrency
	}

	return opts
}
