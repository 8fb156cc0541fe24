package pullgrep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logging"

	"go.llib.dev/lazyiter/pkg/pullobserve"
)

// ExitCode is the process exit status of the command, following grep's convention.
type ExitCode int

const (
	ExitCodeMatch   ExitCode = 0
	ExitCodeNoMatch ExitCode = 1
	ExitCodeError   ExitCode = 2
)

// CLI is the pullgrep command bound to its input and output streams.
type CLI struct {
	Config Config
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// ResolveInput turns a command line argument into an Input.
	// When nil, arguments are resolved on the local file system.
	ResolveInput func(arg string) (Input, error)

	exitCode ExitCode
}

type flags struct {
	Options Options
	Verbose bool
	Metrics bool
}

func bindFlags(fs *pflag.FlagSet, f *flags, cfg Config) {
	fs.BoolVarP(&f.Options.Invert, "invert", "v", false, "select non-matching lines")
	fs.BoolVarP(&f.Options.WithFilename, "with-filename", "H", false, "print the file name for each match")
	fs.BoolVarP(&f.Options.LineNumber, "line-number", "n", false, "print the line number for each match")
	fs.IntVar(&f.Options.Skip, "skip", 0, "skip the first N matches")
	fs.IntVarP(&f.Options.MaxCount, "max-count", "m", 0, "stop after N matches, 0 means no limit")
	fs.IntVar(&f.Options.Nth, "nth", 0, "print only the Nth match after the skipped ones")
	fs.IntVar(&f.Options.MaxLineBytes, "max-line-bytes", cfg.MaxLineBytes, "longest accepted line in bytes (PULLGREP_MAX_LINE_BYTES)")
	fs.BoolVar(&f.Metrics, "metrics", cfg.Metrics, "write iterator metrics to stderr when done (PULLGREP_METRICS)")
	fs.BoolVar(&f.Verbose, "verbose", false, "set debug logging level")
}

// Command builds the cobra command of the CLI, with flag defaults taken from Config.
func (c *CLI) Command() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "pullgrep [flags] PATTERN [FILE|DIR ...]",
		Short:         "Print lines matching a pattern.",
		Long:          "Print lines matching a regular expression. Directories are searched recursively. Without inputs the standard input is searched.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Options.Skip < 0 || f.Options.MaxCount < 0 || f.Options.Nth < 0 {
				return errors.New("--skip, --max-count and --nth can't be negative")
			}
			f.Options.Pattern = args[0]
			return c.run(cmd.Context(), f, args[1:])
		},
	}
	bindFlags(cmd.Flags(), &f, c.Config)
	return cmd
}

// Run executes the command with the given arguments.
func (c *CLI) Run(ctx context.Context, args []string) ExitCode {
	c.exitCode = ExitCodeError
	cmd := c.Command()
	cmd.SetArgs(args)
	cmd.SetIn(c.Stdin)
	cmd.SetOut(c.Stdout)
	cmd.SetErr(c.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(c.Stderr, "pullgrep: %s\n", err)
		return ExitCodeError
	}
	return c.exitCode
}

func (c *CLI) run(ctx context.Context, f flags, args []string) (rErr error) {
	logger := &logging.Logger{Out: c.Stderr, Level: c.Config.LogLevel}
	if f.Verbose {
		logger.Level = logging.LevelDebug
	}
	search := Search{
		Options:  f.Options,
		Stdin:    c.Stdin,
		Observer: pullobserve.Observer{Logger: logger},
	}

	if f.Metrics {
		reg := prometheus.NewRegistry()
		m, err := pullobserve.NewMetrics(reg)
		if err != nil {
			return err
		}
		search.Observer.Metrics = m
		defer errorkit.Finish(&rErr, func() error { return writeMetrics(c.Stderr, reg) })
	}

	resolve := c.ResolveInput
	if resolve == nil {
		resolve = ResolveOSInput
	}
	inputs := make([]Input, 0, len(args))
	for _, arg := range args {
		in, err := resolve(arg)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	n, err := search.Run(ctx, inputs, c.Stdout)
	if err != nil {
		logger.Debug(ctx, "search failed", logging.ErrField(err), logging.Field("matches", n))
		return err
	}
	logger.Debug(ctx, "search finished", logging.Field("matches", n))
	if n == 0 {
		c.exitCode = ExitCodeNoMatch
	} else {
		c.exitCode = ExitCodeMatch
	}
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// ResolveOSInput resolves arg as a path on the local file system.
func ResolveOSInput(arg string) (Input, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return Input{}, err
	}
	root := filepath.VolumeName(abs) + string(filepath.Separator)
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return Input{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return Input{}, fmt.Errorf("%s: %w", arg, err)
	}
	return Input{FS: os.DirFS(root), Name: arg, Path: filepath.ToSlash(rel)}, nil
}
