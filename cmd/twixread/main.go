package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/twixread/internal/cfl"
	"github.com/samcharles93/twixread/internal/convert"
	"github.com/samcharles93/twixread/internal/logger"
)

var errUsage = errors.New("usage")

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }
func (e usageError) Unwrap() error { return errUsage }

func usageErrorf(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr, configPath())
	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			app.Writer = stderr
			_ = cli.ShowAppHelp(app)
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer, defaultConfig string) *cli.Command {
	o := &options{defaultConfig: defaultConfig}
	return &cli.Command{
		Name:      "twixread",
		Usage:     "Convert twix MRI raw data into a CFL array",
		ArgsUsage: "<dat file> <output>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     append(extentFlags(o), loggingFlags(o)...),
		Action:    convertAction(o),
		Commands: []*cli.Command{
			inspectCmd(o),
			serveCmd(o),
			versionCmd(),
		},
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			return usageErrorf("%v", err)
		},
	}
}

func convertAction(o *options) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.NArg() != 2 {
			return usageErrorf("expected <dat file> <output>, got %d arguments", cmd.NArg())
		}
		ctx, _, err := o.prepare(ctx, cmd)
		if err != nil {
			return err
		}
		if err := o.checkExtents(allExtents...); err != nil {
			return err
		}
		if o.acquisitions < 0 {
			return usageErrorf("invalid acquisition count %d", o.acquisitions)
		}

		in, out := cmd.Args().Get(0), cfl.Base(cmd.Args().Get(1))
		opts := convert.Options{Dims: o.extents().Dims(), Acquisitions: int(o.acquisitions)}
		if err := opts.Validate(); err != nil {
			return usageErrorf("%v", err)
		}

		res, err := convert.File(ctx, in, out, opts)
		if err != nil {
			return err
		}
		logger.FromContext(ctx).Info("wrote output",
			"header", out+".hdr",
			"data", out+".cfl",
			"dims", res.Dims,
			"acquisitions", res.Acquisitions,
		)
		return nil
	}
}

// isSet reports whether name was set on c or any of its parents.
func isSet(c *cli.Command, name string) bool {
	for _, cmd := range c.Lineage() {
		if cmd.IsSet(name) {
			return true
		}
	}
	return false
}
