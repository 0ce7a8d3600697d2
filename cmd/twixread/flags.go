package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/twixread/internal/convert"
)

// options holds the flag destinations of one application instance.
type options struct {
	readout      int64
	phase1       int64
	phase2       int64
	slices       int64
	channels     int64
	acquisitions int64

	configFile    string
	defaultConfig string
	logLevel      string
	logFormat     string
	debug         bool
}

func (o *options) extents() convert.Extents {
	return convert.Extents{
		Readout:  int(o.readout),
		Phase1:   int(o.phase1),
		Phase2:   int(o.phase2),
		Slices:   int(o.slices),
		Channels: int(o.channels),
	}
}

// checkExtents rejects explicit extents below 1. Only the config file and
// request bodies treat zero as "not set".
func (o *options) checkExtents(names ...string) error {
	values := map[string]int64{
		"readout":  o.readout,
		"phase1":   o.phase1,
		"phase2":   o.phase2,
		"slices":   o.slices,
		"channels": o.channels,
	}
	for _, name := range names {
		if v := values[name]; v < 1 {
			return usageErrorf("invalid --%s %d: must be at least 1", name, v)
		}
	}
	return nil
}

var allExtents = []string{"readout", "phase1", "phase2", "slices", "channels"}

func extentFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "readout",
			Aliases:     []string{"x"},
			Usage:       "readout samples per channel",
			Value:       1,
			Destination: &o.readout,
		},
		&cli.Int64Flag{
			Name:        "phase1",
			Aliases:     []string{"y"},
			Usage:       "phase-encode lines",
			Value:       1,
			Destination: &o.phase1,
		},
		&cli.Int64Flag{
			Name:        "phase2",
			Aliases:     []string{"z"},
			Usage:       "partitions (second phase-encode dimension)",
			Value:       1,
			Destination: &o.phase2,
		},
		&cli.Int64Flag{
			Name:        "slices",
			Aliases:     []string{"s"},
			Usage:       "slices",
			Value:       1,
			Destination: &o.slices,
		},
		&cli.Int64Flag{
			Name:        "channels",
			Aliases:     []string{"c"},
			Usage:       "receive channels",
			Value:       1,
			Destination: &o.channels,
		},
		&cli.Int64Flag{
			Name:        "acquisitions",
			Aliases:     []string{"a"},
			Usage:       "total acquisitions to read (default phase1*phase2*slices)",
			Destination: &o.acquisitions,
		},
	}
}

func loggingFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default $XDG_CONFIG_HOME/twixread/config.yaml)",
			Destination: &o.configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &o.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &o.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &o.debug,
		},
	}
}
