package cmd

import (
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
)

// PasswordEnv is the environment variable that provides the password when --password is not given.
const PasswordEnv = "FASTZIP_PASSWORD"

type Fastzip struct {
	Extract  Extract  `command:"extract" alias:"x" description:"extract archives, picking the output directory smartly"`
	Compress Compress `command:"compress" alias:"c" description:"create an archive from files and directories"`
	List     List     `command:"list" alias:"ls" description:"print the format and top-level entries of archives"`
}

func NewParser() (*flags.Parser, error) {
	opts := &Fastzip{}

	p := flags.NewNamedParser("fastzip", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		return nil, err
	}

	return p, nil
}

// Quiet can be embedded by commands that accept -q/--quiet.
type Quiet struct {
	Quiet bool `short:"q" long:"quiet" description:"only print the final summary"`
}

// logger returns the logger for per-archive messages along with the writer for progress bars.
func (q Quiet) logger() (*log.Logger, io.Writer) {
	if q.Quiet {
		return log.New(io.Discard, "", 0), io.Discard
	}

	return log.New(os.Stderr, "", log.LstdFlags), os.Stderr
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// password returns the given password, falling back to PasswordEnv.
func password(p string) string {
	if p != "" {
		return p
	}

	return os.Getenv(PasswordEnv)
}

// existing returns the files that exist, warning about those that don't.
func existing(files []flags.Filename) []string {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(string(file)); err != nil {
			log.Printf(`%s skipping "%s": %v`, yellow("[WARN]"), file, err)
			continue
		}

		paths = append(paths, string(file))
	}

	return paths
}
