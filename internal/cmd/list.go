package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/fastzip"
)

type List struct {
	Args struct {
		Files []flags.Filename `positional-arg-name:"archive" description:"the archives to be listed" required:"yes"`
	} `positional-args:"yes"`
}

func (c *List) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	failed := 0
	for _, path := range existing(c.Args.Files) {
		format, top, err := fastzip.ListArchiveTopLevel(path)
		if err != nil {
			log.Printf(`%s list "%s" error: %v`, red("[ERROR]"), path, err)
			failed++
			continue
		}

		_, _ = fmt.Fprintf(os.Stdout, "%s (%s)\n", path, cyan(format))
		switch {
		case top.SingleFile && len(top.Entries) == 0:
			_, _ = fmt.Fprintf(os.Stdout, "  <single compressed file>\n")
		case top.SingleRootDir != "":
			_, _ = fmt.Fprintf(os.Stdout, "  %s/ %s\n", top.SingleRootDir, green("(single root directory)"))
		default:
			for _, e := range top.Entries {
				_, _ = fmt.Fprintf(os.Stdout, "  %s\n", e)
			}
		}
	}

	if failed != 0 {
		return fmt.Errorf("failed to list %d archives", failed)
	}

	return nil
}
