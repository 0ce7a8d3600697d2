package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/twixread/internal/convert"
	"github.com/samcharles93/twixread/internal/logger"
	"github.com/samcharles93/twixread/internal/mri"
)

func inspectCmd(o *options) *cli.Command {
	var (
		asJSON bool
		scan   int64
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the container header and the positions of the first acquisitions",
		ArgsUsage: "<dat file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON", Destination: &asJSON},
			&cli.Int64Flag{
				Name:        "scan",
				Usage:       "decode the first N acquisitions (needs --readout and --channels)",
				Destination: &scan,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return usageErrorf("inspect expects <dat file>, got %d arguments", cmd.NArg())
			}
			if scan < 0 {
				return usageErrorf("invalid scan count %d", scan)
			}
			ctx, _, err := o.prepare(ctx, cmd)
			if err != nil {
				return err
			}

			if scan > 0 {
				if err := o.checkExtents("readout", "channels"); err != nil {
					return err
				}
			}

			path := cmd.Args().First()
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() { _ = f.Close() }()

			rep, err := convert.Inspect(f, convert.InspectOptions{
				Scan:     int(scan),
				Readout:  int(o.readout),
				Channels: int(o.channels),
			})
			if err != nil {
				return err
			}
			logger.FromContext(ctx).Debug("inspected", "path", path, "format", rep.Format, "acquisitions", len(rep.Acquisitions))

			w := cmd.Root().Writer
			if asJSON {
				b, err := json.MarshalIndent(rep, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(b))
				return err
			}
			printReport(w, rep)
			return nil
		},
	}
}

func printReport(w io.Writer, rep convert.Report) {
	_, _ = fmt.Fprintf(w, "format:       %s\n", rep.Format)
	_, _ = fmt.Fprintf(w, "meas id:      %d\n", rep.Header.MeasID)
	_, _ = fmt.Fprintf(w, "file id:      %d\n", rep.Header.FileID)
	_, _ = fmt.Fprintf(w, "scans:        %d\n", rep.Header.Scans)
	_, _ = fmt.Fprintf(w, "offset:       %d\n", rep.Header.Offset)
	_, _ = fmt.Fprintf(w, "data offset:  %d\n", rep.Header.DataOffset)
	_, _ = fmt.Fprintf(w, "first acq:    %d\n", rep.DataStart)
	if len(rep.Acquisitions) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "acquisitions: %d\n", len(rep.Acquisitions))
	for _, a := range rep.Acquisitions {
		_, _ = fmt.Fprintf(w, "  %4d  samples=%d channels=%d center=%d  %s\n",
			a.Index, a.Samples, a.Channels, a.ColumnCenter, formatPosition(a.Position))
	}
}

// formatPosition lists the non-zero positions in dimension order.
func formatPosition(pos map[string]int) string {
	if len(pos) == 0 {
		return "origin"
	}
	parts := make([]string, 0, len(pos))
	for d := mri.Dim(0); int(d) < mri.NumDims; d++ {
		if v, ok := pos[d.String()]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", d, v))
		}
	}
	return strings.Join(parts, " ")
}
